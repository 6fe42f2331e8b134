package ui

import (
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/replkit/internal/prompt"
)

// KeyMap holds the REPL bindings that act outside the completion session.
type KeyMap struct {
	Submit      key.Binding
	Complete    key.Binding
	Previous    key.Binding
	HistoryUp   key.Binding
	HistoryDown key.Binding
	Home        key.Binding
	End         key.Binding
	Delete      key.Binding
	KillLine    key.Binding
	ClearScreen key.Binding
	Help        key.Binding
	Quit        key.Binding
	EOF         key.Binding
}

// DefaultKeyMap returns the standard line-editor bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run line"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Previous: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous candidate"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("up/C-p", "previous line"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("down/C-n", "next line"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("C-a", "line start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("C-e", "line end"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("del", "delete"),
		),
		KillLine: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("C-u", "clear line"),
		),
		ClearScreen: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear screen"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		EOF: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "quit on empty line"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Complete, k.Submit, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Complete, k.Previous, k.Submit},
		{k.HistoryUp, k.HistoryDown},
		{k.Home, k.End, k.Delete, k.KillLine},
		{k.ClearScreen, k.Help, k.Quit, k.EOF},
	}
}

// promptKey translates a terminal key press into the session's key set.
func promptKey(msg tea.KeyPressMsg) prompt.KeyEvent {
	switch msg.String() {
	case "tab":
		return prompt.Press(prompt.KeyTab)
	case "shift+tab":
		return prompt.Press(prompt.KeyShiftTab)
	case "enter":
		return prompt.Press(prompt.KeyEnter)
	case "esc":
		return prompt.Press(prompt.KeyEscape)
	case "up":
		return prompt.Press(prompt.KeyUp)
	case "down":
		return prompt.Press(prompt.KeyDown)
	case "left":
		return prompt.Press(prompt.KeyLeft)
	case "right":
		return prompt.Press(prompt.KeyRight)
	case "space":
		return prompt.Press(prompt.KeySpace)
	case "backspace":
		return prompt.Press(prompt.KeyBackspace)
	}
	if utf8.RuneCountInString(msg.Text) == 1 {
		r, _ := utf8.DecodeRuneInString(msg.Text)
		return prompt.Char(r)
	}
	return prompt.KeyEvent{Key: prompt.KeyOther}
}

// teaKey is the inverse of promptKey, used to replay scripted keys.
func teaKey(ev prompt.KeyEvent) tea.KeyPressMsg {
	switch ev.Key {
	case prompt.KeyTab:
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case prompt.KeyShiftTab:
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	case prompt.KeyEnter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case prompt.KeyEscape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case prompt.KeyUp:
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case prompt.KeyDown:
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case prompt.KeyLeft:
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case prompt.KeyRight:
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case prompt.KeySpace:
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case prompt.KeyBackspace:
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case prompt.KeyRune:
		return tea.KeyPressMsg{Code: ev.Rune, Text: string(ev.Rune)}
	default:
		return tea.KeyPressMsg{}
	}
}
