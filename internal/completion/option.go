package completion

import (
	"sort"
	"strings"
	"unicode"
)

// OptionKind classifies a candidate for display.
type OptionKind int

const (
	OptionValue OptionKind = iota
	OptionGroup
	OptionCommand
	OptionArgument
	OptionAlias
)

func (k OptionKind) String() string {
	switch k {
	case OptionGroup:
		return "group"
	case OptionCommand:
		return "command"
	case OptionArgument:
		return "argument"
	case OptionAlias:
		return "alias"
	default:
		return "value"
	}
}

// Placeholder marks where the value goes in an Option format.
const Placeholder = "{}"

// Option is one completion candidate.
type Option struct {
	Value string
	// Format is the insertion template, e.g. "--{}". Empty means the bare value.
	Format      string
	Description string
	Kind        OptionKind
}

// Formatted returns the value rendered through Format.
func (o Option) Formatted() string {
	if o.Format == "" {
		return o.Value
	}
	return strings.ReplaceAll(o.Format, Placeholder, o.Value)
}

// SortKey is the case-insensitive ordering key.
func (o Option) SortKey() string { return strings.ToLower(o.Value) }

// OptionSet is a filtered, sorted candidate list with its replacement span.
type OptionSet struct {
	Options []Option
	Context *CursorContext

	ReplaceStart int
	ReplaceEnd   int
	// AppendSeparator is set when more input is expected after the insertion.
	AppendSeparator bool
}

// Len returns the number of options; nil sets are empty.
func (s *OptionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Options)
}

// Values returns the option values in order.
func (s *OptionSet) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Options))
	for i, o := range s.Options {
		out[i] = o.Value
	}
	return out
}

// Index returns the position of the option with the given value, or -1.
func (s *OptionSet) Index(value string) int {
	if s == nil {
		return -1
	}
	for i, o := range s.Options {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// Insertion returns the text that replaces the span when option i is accepted.
// Values with whitespace, or typed inside an open quote, are quoted.
func (s *OptionSet) Insertion(i int) string {
	if s == nil || i < 0 || i >= len(s.Options) {
		return ""
	}
	o := s.Options[i]
	var quote rune
	if s.Context != nil {
		quote = s.Context.Quote
	}
	if o.Kind == OptionValue && (quote != 0 || strings.IndexFunc(o.Value, unicode.IsSpace) >= 0) {
		if quote == 0 {
			quote = '"'
		}
		o.Value = quoteValue(o.Value, quote)
	}
	return o.Formatted()
}

// Ghost returns the suffix of the best candidate's insertion beyond the typed
// text. It is empty when the best candidate equals the query, does not extend
// what was typed, or the cursor is not at the end of the replaced element.
func (s *OptionSet) Ghost() string {
	if s.Len() == 0 {
		return ""
	}
	typed, query := "", ""
	if s.Context != nil {
		if s.Context.Cursor != s.ReplaceEnd {
			return ""
		}
		typed, query = s.Context.Typed, s.Context.Query
	}
	if strings.EqualFold(s.Options[0].Value, query) {
		return ""
	}
	ins := s.Insertion(0)
	if len(typed) > len(ins) || !strings.EqualFold(ins[:len(typed)], typed) {
		return ""
	}
	return ins[len(typed):]
}

func quoteValue(v string, quote rune) string {
	q := string(quote)
	if quote == '"' {
		v = strings.ReplaceAll(v, `"`, `\"`)
	}
	return q + v + q
}

// filterAndSort keeps options whose value starts with query, ignoring case, and
// orders them alphabetically. The sort is stable so equal keys keep source order.
func filterAndSort(opts []Option, query string) []Option {
	lower := strings.ToLower(query)
	out := make([]Option, 0, len(opts))
	seen := make(map[string]bool, len(opts))
	for _, o := range opts {
		if !strings.HasPrefix(o.SortKey(), lower) {
			continue
		}
		key := o.Formatted()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortKey() < out[j].SortKey() })
	return out
}
