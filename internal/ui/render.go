package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/oakwood-commons/replkit/internal/highlight"
)

// renderInput styles the line and draws the cursor at byte offset cursor; a
// negative cursor draws none. Ghost text is inserted at the cursor with its
// first rune under the cursor block.
func (m *Model) renderInput(text string, cursor int, ghost string) string {
	var b strings.Builder
	drawn := cursor < 0
	for _, t := range m.tokens(text) {
		if drawn || cursor < t.Start || cursor >= t.End {
			b.WriteString(m.styleToken(t.Class, t.Text))
			continue
		}
		at := cursor - t.Start
		b.WriteString(m.styleToken(t.Class, t.Text[:at]))
		b.WriteString(m.cursorBlock(t.Class, t.Text[at:], ghost))
		drawn = true
	}
	if !drawn {
		b.WriteString(m.cursorBlock(highlight.ClassPlain, "", ghost))
	}
	return b.String()
}

// cursorBlock draws the cursor followed by rest. With ghost text the block
// covers the ghost's first rune, otherwise the first rune of rest, or a blank.
func (m *Model) cursorBlock(class highlight.Class, rest, ghost string) string {
	if ghost != "" {
		_, size := utf8.DecodeRuneInString(ghost)
		return m.theme.Cursor.Render(ghost[:size]) + m.theme.Ghost.Render(ghost[size:]) + m.styleToken(class, rest)
	}
	if rest == "" {
		return m.theme.Cursor.Render(" ")
	}
	_, size := utf8.DecodeRuneInString(rest)
	return m.theme.Cursor.Render(rest[:size]) + m.styleToken(class, rest[size:])
}

func (m *Model) tokens(text string) []highlight.Token {
	if !m.app.Config.UI.Highlight {
		return []highlight.Token{{Text: text, Class: highlight.ClassPlain, Start: 0, End: len(text)}}
	}
	return highlight.Classify(text, m.app.Registry)
}

func (m *Model) styleToken(class highlight.Class, s string) string {
	if s == "" {
		return ""
	}
	if class == highlight.ClassPlain {
		return m.theme.Input.Render(s)
	}
	return m.theme.Tokens.Render([]highlight.Token{{Text: s, Class: class}})
}
