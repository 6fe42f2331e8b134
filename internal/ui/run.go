package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/replkit/internal/prompt"
)

// Run starts the interactive program and blocks until it exits.
func Run(m *Model, opts ...tea.ProgramOption) error {
	if m.width > 0 && m.height > 0 {
		opts = append(opts, tea.WithWindowSize(m.width, m.height))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// Press feeds scripted keys through Update as if typed. It stops early if a
// key quits the program.
func (m *Model) Press(keys []prompt.KeyEvent) {
	for _, ev := range keys {
		if m.quitting {
			return
		}
		m.Update(teaKey(ev))
	}
}

// Snapshot renders the view followed by a status line describing the
// completion state, for scripted runs:
//
//	> h
//	[mode=ghost cursor=1 ghost="elp" options=help,history]
func (m *Model) Snapshot() string {
	var b strings.Builder
	b.WriteString(m.Render())
	if m.quitting {
		return b.String()
	}
	b.WriteString("\n[")
	if m.cycling() {
		fmt.Fprintf(&b, "style=cycle index=%d", m.cycler.Index())
		b.WriteString(optionList(m.cycler.Options().Values()))
	} else {
		fmt.Fprintf(&b, "mode=%s cursor=%d ghost=%q", m.session.Mode(), m.line.Cursor(), m.session.Ghost())
		if m.session.Mode() == prompt.ModeMenu {
			fmt.Fprintf(&b, " selected=%d", m.session.Menu().SelectedIndex())
		}
		b.WriteString(optionList(m.session.Options().Values()))
	}
	b.WriteString("]\n")
	return b.String()
}

func optionList(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return " options=" + strings.Join(values, ",")
}
