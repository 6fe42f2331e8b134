package completion

import (
	"strings"

	"github.com/oakwood-commons/replkit/pkg/parser"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

// ContextType is the semantic slot under the cursor.
type ContextType int

const (
	ContextNone ContextType = iota
	ContextGroupOrCommand
	ContextArgumentName
	ContextArgumentAlias
	ContextArgumentValue
	ContextPositional
)

func (t ContextType) String() string {
	switch t {
	case ContextGroupOrCommand:
		return "group-or-command"
	case ContextArgumentName:
		return "argument-name"
	case ContextArgumentAlias:
		return "argument-alias"
	case ContextArgumentValue:
		return "argument-value"
	case ContextPositional:
		return "positional"
	default:
		return "none"
	}
}

// CursorContext is the resolved meaning of a cursor position.
type CursorContext struct {
	Type ContextType
	// Query is the text typed so far for the slot, stripped of dashes and quotes.
	Query string
	// Typed is the raw text of the element from its start up to the cursor.
	Typed string

	// Group is the scope reached by the walk. Command is set once a command resolved.
	Group    *registry.Group
	Command  *registry.Command
	Argument *registry.Argument

	// Values holds values already on the line keyed by argument name. Flags map
	// to "true".
	Values map[string]string
	// Positionals holds the bare values bound before the cursor, in order.
	Positionals []string
	// Used holds the names of arguments supplied anywhere except the cursor slot.
	Used map[string]bool

	// Namespace is the dotted prefix typed before the query, for Namespace.Command input.
	Namespace string
	// Quote is the open quote rune when the element is unterminated.
	Quote rune

	// ReplaceStart and ReplaceEnd bound the text an accepted option replaces.
	ReplaceStart int
	ReplaceEnd   int

	Line   string
	Cursor int
}

func newContext(line string, cursor int) *CursorContext {
	return &CursorContext{
		Type:         ContextNone,
		Values:       map[string]string{},
		Used:         map[string]bool{},
		Line:         line,
		Cursor:       cursor,
		ReplaceStart: cursor,
		ReplaceEnd:   cursor,
	}
}

// Resolve maps the cursor onto a slot of the registry. It never returns nil.
func Resolve(line string, cursor int, reg *registry.Registry) *CursorContext {
	cc := newContext(line, cursor)
	if reg == nil || cursor < 0 || cursor > len(line) {
		return cc
	}
	seg, _, ok := parser.Parse(line).SegmentAt(cursor)
	if !ok {
		return cc
	}
	r := &resolver{reg: reg, cc: cc, seg: seg}
	r.run()
	return cc
}

type resolver struct {
	reg *registry.Registry
	cc  *CursorContext
	seg parser.Command

	tokens []parser.Element
	// target is the index into tokens of the element under the cursor, or -1
	// when the cursor sits in whitespace or an empty segment.
	target int
	// before counts the tokens that end at or before the cursor when target is -1.
	before int

	group *registry.Group
	cmd   *registry.Command
	// walked is the number of leading tokens consumed by the scope walk.
	walked  int
	stopped bool
	// slots are the positional arguments not supplied by name.
	slots []*registry.Argument
}

func (r *resolver) run() {
	r.tokens = r.seg.Tokens()
	r.target = -1
	if e, ok := r.seg.ElementAt(r.cc.Cursor); ok && !e.IsBlank() {
		for i, t := range r.tokens {
			if t.Index == e.Index {
				r.target = i
			}
		}
	}
	if r.target < 0 {
		for _, t := range r.tokens {
			if t.End <= r.cc.Cursor {
				r.before++
			}
		}
	}

	r.walk()
	r.collect()

	if r.target >= 0 {
		r.onToken(r.tokens[r.target])
		return
	}
	r.onGap()
}

// walk narrows the scope over the leading command words that precede the cursor.
// Words past a resolved command are left for positional binding.
func (r *resolver) walk() {
	r.group = r.reg.Root()
	limit := r.before
	if r.target >= 0 {
		limit = r.target
	}
	for i := 0; i < limit; i++ {
		tok := r.tokens[i]
		if tok.Kind != parser.KindCommand || r.cmd != nil {
			break
		}
		for _, part := range strings.Split(tok.Value, ".") {
			if r.cmd != nil {
				// a dotted word cannot continue past a command
				r.stopped = true
				return
			}
			if !r.step(part) {
				r.stopped = true
				return
			}
		}
		r.walked = i + 1
	}
}

// step narrows the scope by one name: exact match first, then a unique prefix.
func (r *resolver) step(name string) bool {
	node := r.group.Child(name)
	if node == nil {
		matches := r.group.MatchPrefix(name)
		if len(matches) != 1 {
			return false
		}
		node = matches[0]
	}
	switch n := node.(type) {
	case *registry.Group:
		r.group = n
	case *registry.Command:
		r.cmd = n
	}
	return true
}

// bareValue reports whether tok is a value bound by position rather than name.
func (r *resolver) bareValue(i int) bool {
	tok := r.tokens[i]
	switch tok.Kind {
	case parser.KindCommand:
		return r.cmd != nil && i >= r.walked
	case parser.KindUnexpected:
		return tok.HasError(parser.ErrOrphanValue)
	case parser.KindArgumentValue:
		arg := r.pairedArgument(tok)
		return arg != nil && arg.Flag
	}
	return false
}

// pairedArgument returns the argument named by the element paired with tok.
func (r *resolver) pairedArgument(tok parser.Element) *registry.Argument {
	owner, ok := r.seg.PairedWith(tok)
	if !ok {
		return nil
	}
	return r.argumentFor(owner)
}

func (r *resolver) argumentFor(tok parser.Element) *registry.Argument {
	if r.cmd == nil {
		return nil
	}
	switch tok.Kind {
	case parser.KindArgumentName:
		return r.cmd.Argument(tok.Value)
	case parser.KindArgumentAlias:
		return r.cmd.ArgumentByAlias(tok.Value)
	}
	return nil
}

// collect records the values supplied outside the cursor slot.
func (r *resolver) collect() {
	if r.cmd == nil {
		return
	}
	cc := r.cc
	var bare []string
	for i, tok := range r.tokens {
		if i == r.target {
			continue
		}
		if r.bareValue(i) {
			if r.isBefore(i) {
				bare = append(bare, tok.Value)
			}
			continue
		}
		if !tok.IsArgument() {
			continue
		}
		arg := r.argumentFor(tok)
		if arg == nil {
			continue
		}
		cc.Used[arg.Name] = true
		switch {
		case arg.Flag:
			cc.Values[arg.Name] = "true"
		default:
			if v, ok := r.seg.PairedWith(tok); ok && r.tokenIndex(v) != r.target {
				cc.Values[arg.Name] = v.Value
			}
		}
	}
	cc.Positionals = bare
	r.slots = r.freeSlots()
	for i, slot := range r.slots {
		if i >= len(bare) {
			break
		}
		cc.Values[slot.Name] = bare[i]
		cc.Used[slot.Name] = true
	}
}

func (r *resolver) isBefore(i int) bool {
	if r.target >= 0 {
		return i < r.target
	}
	return i < r.before
}

func (r *resolver) tokenIndex(e parser.Element) int {
	for i, t := range r.tokens {
		if t.Index == e.Index {
			return i
		}
	}
	return -1
}

// freeSlots returns the positional arguments not supplied by name.
func (r *resolver) freeSlots() []*registry.Argument {
	var out []*registry.Argument
	for _, a := range r.cmd.Positionals() {
		if !r.cc.Used[a.Name] {
			out = append(out, a)
		}
	}
	return out
}

func (r *resolver) onToken(tok parser.Element) {
	cc := r.cc
	cc.ReplaceStart, cc.ReplaceEnd = tok.Start, tok.End
	cc.Typed = cc.Line[tok.Start:cc.Cursor]
	cc.Quote = tok.Quote

	switch tok.Kind {
	case parser.KindCommand:
		if r.cmd != nil {
			r.positional(unquote(cc.Typed))
			return
		}
		r.commandSlot(cc.Typed)
	case parser.KindArgumentName:
		r.argumentSlot(ContextArgumentName, strings.TrimPrefix(cc.Typed, "--"))
	case parser.KindArgumentAlias:
		r.argumentSlot(ContextArgumentAlias, strings.TrimPrefix(cc.Typed, "-"))
	case parser.KindArgumentValue:
		arg := r.pairedArgument(tok)
		switch {
		case arg == nil:
			return
		case arg.Flag:
			r.positional(unquote(cc.Typed))
		default:
			r.valueSlot(arg, unquote(cc.Typed))
		}
	case parser.KindUnexpected:
		switch {
		case tok.HasError(parser.ErrEmptyArgumentName):
			r.argumentSlot(ContextArgumentName, strings.TrimLeft(cc.Typed, "-"))
		case tok.HasError(parser.ErrOrphanValue):
			r.positional(unquote(cc.Typed))
		}
	}
}

// onGap handles a cursor in whitespace or an empty segment: a new element
// following the previous token.
func (r *resolver) onGap() {
	if r.before == 0 {
		r.commandSlot("")
		return
	}
	prev := r.tokens[r.before-1]
	if prev.IsArgument() && prev.Paired < 0 {
		if arg := r.argumentFor(prev); arg != nil && !arg.Flag {
			r.valueSlot(arg, "")
			return
		}
	}
	if r.walked == r.before && r.cmd == nil {
		r.commandSlot("")
		return
	}
	r.positional("")
}

func (r *resolver) commandSlot(typed string) {
	if r.stopped || r.cmd != nil {
		return
	}
	// every word before the cursor must have been a command word
	if r.target >= 0 && r.walked != r.target {
		return
	}
	parts := strings.Split(typed, ".")
	for _, part := range parts[:len(parts)-1] {
		if !r.step(part) || r.cmd != nil {
			return
		}
	}
	cc := r.cc
	cc.Type = ContextGroupOrCommand
	cc.Group = r.group
	cc.Query = parts[len(parts)-1]
	if len(parts) > 1 {
		cc.Namespace = strings.Join(parts[:len(parts)-1], ".")
	}
}

func (r *resolver) argumentSlot(t ContextType, query string) {
	if r.cmd == nil || r.stopped {
		return
	}
	cc := r.cc
	cc.Type = t
	cc.Query = query
	cc.Group = r.group
	cc.Command = r.cmd
}

func (r *resolver) valueSlot(arg *registry.Argument, query string) {
	if r.cmd == nil || r.stopped {
		return
	}
	cc := r.cc
	cc.Type = ContextArgumentValue
	cc.Query = query
	cc.Group = r.group
	cc.Command = r.cmd
	cc.Argument = arg
}

func (r *resolver) positional(query string) {
	if r.cmd == nil || r.stopped {
		return
	}
	idx := len(r.cc.Positionals)
	if idx >= len(r.slots) {
		return
	}
	cc := r.cc
	cc.Type = ContextPositional
	cc.Query = query
	cc.Group = r.group
	cc.Command = r.cmd
	cc.Argument = r.slots[idx]
}

// unquote strips an opening quote and, if present, the matching closing quote.
func unquote(raw string) string {
	if raw == "" {
		return raw
	}
	q := raw[0]
	if q != '"' && q != '\'' {
		return raw
	}
	body := raw[1:]
	if len(body) > 0 && body[len(body)-1] == q {
		body = body[:len(body)-1]
	}
	if q == '"' {
		body = strings.ReplaceAll(body, `\"`, `"`)
	}
	return body
}
