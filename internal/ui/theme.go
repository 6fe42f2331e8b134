package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/replkit/internal/config"
	"github.com/oakwood-commons/replkit/internal/highlight"
	"github.com/oakwood-commons/replkit/internal/prompt"
)

// Theme is the set of styles the REPL view draws with.
type Theme struct {
	Prompt lipgloss.Style
	Input  lipgloss.Style
	Ghost  lipgloss.Style
	Cursor lipgloss.Style
	Output lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style

	// Spans styles menu rows by span style.
	Spans map[prompt.Style]lipgloss.Style
	// Tokens styles highlighted input by token class.
	Tokens highlight.Styles
}

func fg(c config.ColorValue) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c != "" {
		s = s.Foreground(lipgloss.Color(string(c)))
	}
	return s
}

// NewTheme builds styles from a theme config. With noColor every style,
// including the cursor, renders plain text.
func NewTheme(tc config.ThemeConfig, noColor bool) Theme {
	if noColor {
		tc = config.ThemeConfig{}
	}
	selected := fg(tc.MenuSelectedFG)
	if tc.MenuSelectedBG != "" {
		selected = selected.Background(lipgloss.Color(string(tc.MenuSelectedBG)))
	} else {
		selected = selected.Reverse(!noColor)
	}
	return Theme{
		Prompt: fg(tc.Prompt).Bold(!noColor),
		Input:  fg(tc.Input),
		Ghost:  fg(tc.Ghost).Faint(!noColor),
		Cursor: lipgloss.NewStyle().Reverse(!noColor),
		Output: fg(tc.Output),
		Error:  fg(tc.Error),
		Status: fg(tc.Status),
		Spans: map[prompt.Style]lipgloss.Style{
			prompt.StyleItem:        fg(tc.MenuItem),
			prompt.StyleSelected:    selected,
			prompt.StyleDescription: fg(tc.MenuDescription),
			prompt.StyleIndicator:   fg(tc.Indicator),
		},
		Tokens: highlight.Styles{
			highlight.ClassPlain:    fg(tc.Input),
			highlight.ClassGroup:    fg(tc.Group),
			highlight.ClassCommand:  fg(tc.Command).Bold(!noColor),
			highlight.ClassArgument: fg(tc.Argument),
			highlight.ClassValue:    fg(tc.Value),
			highlight.ClassPipe:     fg(tc.Pipe),
			highlight.ClassError:    fg(tc.Error).Underline(!noColor),
		},
	}
}

// ThemeFor resolves the configured theme.
func ThemeFor(cfg *config.Config) Theme {
	return NewTheme(cfg.Theme(), cfg.UI.NoColor)
}

// Span renders one overlay span.
func (t Theme) Span(s prompt.Span) string {
	style, ok := t.Spans[s.Style]
	if !ok {
		return s.Text
	}
	return style.Render(s.Text)
}
