// Package highlight classifies the tokens of an input line for coloured
// display, reusing the parser so highlighting agrees with completion.
package highlight

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/replkit/pkg/parser"
	"github.com/oakwood-commons/replkit/pkg/registry"
)

// Class is the display category of a token.
type Class int

const (
	ClassPlain Class = iota
	ClassGroup
	ClassCommand
	ClassArgument
	ClassValue
	ClassPipe
	ClassError
)

// Token is a classified slice of the line.
type Token struct {
	Text  string
	Class Class
	Start int
	End   int
}

// Classify splits line into tokens covering every byte. With a registry,
// command words are checked against the tree and unknown names are errors.
func Classify(line string, reg *registry.Registry) []Token {
	in := parser.Parse(line)
	var out []Token
	for i, seg := range in.Segments {
		if i > 0 {
			start := seg.Start - 1
			out = append(out, Token{Text: line[start:seg.Start], Class: ClassPipe, Start: start, End: seg.Start})
		}
		out = append(out, classifySegment(seg, reg)...)
	}
	return out
}

func classifySegment(seg parser.Command, reg *registry.Registry) []Token {
	var (
		group  *registry.Group
		cmd    *registry.Command
		broken bool
	)
	if reg != nil {
		group = reg.Root()
	}
	out := make([]Token, 0, len(seg.Elements))
	for _, e := range seg.Elements {
		tok := Token{Text: e.Raw, Start: e.Start, End: e.End}
		switch e.Kind {
		case parser.KindEmpty:
			tok.Class = ClassPlain
		case parser.KindCommand:
			tok.Class = ClassCommand
			if group == nil || broken {
				break
			}
			if cmd != nil {
				tok.Class = ClassValue
				break
			}
			for _, part := range strings.Split(e.Value, ".") {
				n := group.Child(part)
				switch v := n.(type) {
				case *registry.Group:
					group = v
					tok.Class = ClassGroup
				case *registry.Command:
					cmd = v
					tok.Class = ClassCommand
				default:
					// a prefix of a known name is still being typed
					if len(group.MatchPrefix(part)) == 0 {
						tok.Class = ClassError
					}
					broken = true
				}
				if n == nil || cmd != nil {
					break
				}
			}
		case parser.KindArgumentName, parser.KindArgumentAlias:
			tok.Class = ClassArgument
			if cmd != nil && !e.HasErrors() {
				var arg *registry.Argument
				if e.Kind == parser.KindArgumentName {
					arg = cmd.Argument(e.Value)
				} else {
					arg = cmd.ArgumentByAlias(e.Value)
				}
				if arg == nil && e.Value != "" {
					tok.Class = ClassError
				}
			}
		case parser.KindArgumentValue:
			tok.Class = ClassValue
		case parser.KindUnexpected:
			tok.Class = ClassValue
			if e.HasError(parser.ErrEmptyArgumentName) {
				tok.Class = ClassArgument
			}
		}
		if e.HasError(parser.ErrInvalidAlias) {
			tok.Class = ClassError
		}
		out = append(out, tok)
	}
	return out
}

// Styles maps classes to lipgloss styles. Missing classes render unstyled.
type Styles map[Class]lipgloss.Style

// Render joins the tokens, styling each by class.
func (s Styles) Render(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		style, ok := s[t.Class]
		if !ok || t.Class == ClassPlain {
			b.WriteString(t.Text)
			continue
		}
		b.WriteString(style.Render(t.Text))
	}
	return b.String()
}

// Plain concatenates token text without styling.
func Plain(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}
