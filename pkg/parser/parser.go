// Package parser splits a raw REPL input line into positioned elements.
//
// Parsing is total and lossless: every byte of the input belongs to exactly one
// element, whitespace runs included, so callers can map cursor offsets back onto
// the line and re-render it unchanged. Problems such as a malformed alias are
// recorded on the element instead of being returned as errors.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the semantic classification of an element.
type Kind int

const (
	KindEmpty Kind = iota // whitespace run
	KindCommand
	KindArgumentName
	KindArgumentAlias
	KindArgumentValue
	KindUnexpected
)

var kindNames = map[Kind]string{
	KindEmpty:         "empty",
	KindCommand:       "command",
	KindArgumentName:  "argument-name",
	KindArgumentAlias: "argument-alias",
	KindArgumentValue: "argument-value",
	KindUnexpected:    "unexpected",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// PipeSeparator splits one line into independently parsed command segments.
const PipeSeparator = '|'

// Element is one lexical unit of an input line.
type Element struct {
	// Raw is the exact source text, including quotes and whitespace.
	Raw string
	// Kind is the semantic classification.
	Kind Kind
	// Value is the unquoted text with escapes processed. For names and aliases
	// the leading dashes are stripped.
	Value string
	// Start and End are byte offsets into the whole line, End exclusive.
	Start int
	End   int
	// Index is the position of the element among its segment siblings.
	Index int
	// Paired is the sibling index of the element this one is paired with
	// (an argument name with its value, or the reverse), or -1.
	Paired int
	// Quote is the quote rune still open at the end of the element, or 0.
	Quote rune
	// Errors holds non-fatal validation problems found while classifying.
	Errors []ValidationError
}

// IsBlank reports whether the element is a whitespace run.
func (e Element) IsBlank() bool { return e.Kind == KindEmpty }

// IsArgument reports whether the element is an argument name or alias.
func (e Element) IsArgument() bool {
	return e.Kind == KindArgumentName || e.Kind == KindArgumentAlias
}

// HasErrors reports whether validation errors were recorded.
func (e Element) HasErrors() bool { return len(e.Errors) > 0 }

// HasError reports whether a validation error with the given code was recorded.
func (e Element) HasError(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code == code {
			return true
		}
	}
	return false
}

// Contains reports whether the cursor offset touches the element. A cursor placed
// right after the last rune is still on the element.
func (e Element) Contains(pos int) bool { return pos >= e.Start && pos <= e.End }

// Unterminated reports whether the element ends inside an open quote.
func (e Element) Unterminated() bool { return e.Quote != 0 }

// Command is the ordered element sequence of one pipe-separated segment.
type Command struct {
	Elements []Element
	// Start and End are byte offsets of the segment in the whole line.
	Start int
	End   int
}

// Raw reconstructs the segment text.
func (c Command) Raw() string {
	var b strings.Builder
	for _, e := range c.Elements {
		b.WriteString(e.Raw)
	}
	return b.String()
}

// Tokens returns the non-whitespace elements in order.
func (c Command) Tokens() []Element {
	tokens := make([]Element, 0, len(c.Elements))
	for _, e := range c.Elements {
		if !e.IsBlank() {
			tokens = append(tokens, e)
		}
	}
	return tokens
}

// PairedWith returns the element paired with e, if any.
func (c Command) PairedWith(e Element) (Element, bool) {
	if e.Paired < 0 || e.Paired >= len(c.Elements) {
		return Element{}, false
	}
	return c.Elements[e.Paired], true
}

// ElementAt returns the element under the cursor offset. Tokens win over the
// whitespace that touches them.
func (c Command) ElementAt(pos int) (Element, bool) {
	if pos < c.Start || pos > c.End {
		return Element{}, false
	}
	for _, e := range c.Elements {
		if !e.IsBlank() && e.Contains(pos) {
			return e, true
		}
	}
	for _, e := range c.Elements {
		if e.IsBlank() && e.Contains(pos) {
			return e, true
		}
	}
	return Element{}, false
}

// Input is the parse result of a whole line.
type Input struct {
	Line     string
	Segments []Command
}

// String reconstructs the original line from the elements.
func (in *Input) String() string {
	parts := make([]string, len(in.Segments))
	for i, seg := range in.Segments {
		parts[i] = seg.Raw()
	}
	return strings.Join(parts, string(PipeSeparator))
}

// SegmentAt returns the segment holding the cursor offset and its index.
func (in *Input) SegmentAt(pos int) (Command, int, bool) {
	if pos < 0 || pos > len(in.Line) {
		return Command{}, -1, false
	}
	for i, seg := range in.Segments {
		if pos >= seg.Start && pos <= seg.End {
			return seg, i, true
		}
	}
	return Command{}, -1, false
}

// ElementAt returns the element under the cursor offset across all segments.
func (in *Input) ElementAt(pos int) (Element, bool) {
	seg, _, ok := in.SegmentAt(pos)
	if !ok {
		return Element{}, false
	}
	return seg.ElementAt(pos)
}

// Parse splits line into segments and classifies every element. It never fails.
func Parse(line string) *Input {
	in := &Input{Line: line}
	for _, span := range splitSegments(line) {
		toks := lex(line[span.start:span.end], span.start)
		in.Segments = append(in.Segments, Command{
			Elements: classify(toks),
			Start:    span.start,
			End:      span.end,
		})
	}
	return in
}

// ElementAtCursor parses line and returns the element under pos, or nil when the
// offset is out of bounds or touches nothing.
func ElementAtCursor(line string, pos int) *Element {
	e, ok := Parse(line).ElementAt(pos)
	if !ok {
		return nil
	}
	return &e
}

type span struct{ start, end int }

// splitSegments finds unquoted pipe separators.
func splitSegments(line string) []span {
	var spans []span
	start := 0
	var quote rune
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else if r == '\\' && quote == '"' {
				escaped = true
			}
		case r == '"' || r == '\'':
			quote = r
		case r == PipeSeparator:
			spans = append(spans, span{start, i})
			start = i + utf8.RuneLen(r)
		}
	}
	return append(spans, span{start, len(line)})
}

type token struct {
	raw   string
	value string
	start int
	end   int
	blank bool
	quote rune
}

// lex cuts a segment into whitespace runs and quote-aware words.
func lex(text string, base int) []token {
	var (
		toks    []token
		val     strings.Builder
		start   int
		inBlank bool
		quote   rune
		escaped bool
	)
	flush := func(end int) {
		if end <= start {
			return
		}
		t := token{raw: text[start:end], start: base + start, end: base + end, blank: inBlank}
		if !inBlank {
			t.value = val.String()
			t.quote = quote
		}
		toks = append(toks, t)
		val.Reset()
		start = end
	}
	for i, r := range text {
		switch {
		case escaped:
			val.WriteRune(r)
			escaped = false
		case quote != 0:
			switch {
			case r == quote:
				quote = 0
			case r == '\\' && quote == '"':
				escaped = true
			default:
				val.WriteRune(r)
			}
		case unicode.IsSpace(r):
			if !inBlank {
				flush(i)
				inBlank = true
			}
		default:
			if inBlank {
				flush(i)
				inBlank = false
			}
			if r == '"' || r == '\'' {
				quote = r
			} else {
				val.WriteRune(r)
			}
		}
	}
	flush(len(text))
	return toks
}

// classify assigns kinds and pairs names with the values that follow them.
func classify(toks []token) []Element {
	elems := make([]Element, len(toks))
	pending := -1
	commandPhase := true
	for i, t := range toks {
		e := Element{
			Raw:    t.raw,
			Start:  t.start,
			End:    t.end,
			Index:  i,
			Paired: -1,
			Quote:  t.quote,
		}
		switch {
		case t.blank:
			e.Kind = KindEmpty
		case strings.HasPrefix(t.raw, "--"):
			commandPhase = false
			name := strings.TrimPrefix(t.value, "--")
			if name == "" {
				e.Kind = KindUnexpected
				e.Errors = append(e.Errors, newError(ErrEmptyArgumentName, "argument name is empty"))
				pending = -1
				break
			}
			e.Kind = KindArgumentName
			e.Value = name
			pending = i
		case strings.HasPrefix(t.raw, "-") && !(pending >= 0 && isNegativeNumber(t.raw)):
			commandPhase = false
			alias := strings.TrimPrefix(t.value, "-")
			e.Kind = KindArgumentAlias
			e.Value = alias
			if utf8.RuneCountInString(alias) > 1 {
				e.Errors = append(e.Errors, newError(ErrInvalidAlias, "alias must be a single character: -"+alias))
			}
			pending = i
		case pending >= 0:
			e.Kind = KindArgumentValue
			e.Value = t.value
			e.Paired = pending
			elems[pending].Paired = i
			pending = -1
		case commandPhase:
			e.Kind = KindCommand
			e.Value = t.value
		default:
			e.Kind = KindUnexpected
			e.Value = t.value
			e.Errors = append(e.Errors, newError(ErrOrphanValue, "value does not follow an argument name: "+t.value))
		}
		elems[i] = e
	}
	return elems
}

func isNegativeNumber(raw string) bool {
	return len(raw) > 1 && raw[0] == '-' && raw[1] >= '0' && raw[1] <= '9'
}
