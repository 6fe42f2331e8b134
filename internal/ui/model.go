// Package ui is the bubbletea front end of the REPL: it owns the line
// buffer, forwards keys to the completion session, and draws the input with
// highlighting, ghost text and the menu below it.
package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/replkit/internal/commands"
	"github.com/oakwood-commons/replkit/internal/completion"
	"github.com/oakwood-commons/replkit/internal/config"
	"github.com/oakwood-commons/replkit/internal/prompt"
)

// DefaultScrollback bounds the output lines kept above the prompt.
const DefaultScrollback = 1000

// Model is the REPL program state.
type Model struct {
	app     *commands.App
	engine  *completion.Engine
	session *prompt.Session
	cycler  *prompt.Cycler
	line    *prompt.Buffer
	history *lineHistory

	keys  KeyMap
	help  help.Model
	theme Theme
	log   logr.Logger
	ctx   context.Context

	scrollback []string
	width      int
	height     int
	showHelp   bool
	quitting   bool
}

// Option configures a Model.
type Option func(*Model)

func WithLogger(l logr.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithContext sets the context handler calls and commands run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithSize fixes the view size, as a window size message would.
func WithSize(width, height int) Option {
	return func(m *Model) { m.width, m.height = width, height }
}

// New builds a model over app. The completion style and theme are read from
// app.Config on every key, so config set takes effect immediately.
func New(app *commands.App, opts ...Option) (*Model, error) {
	if app == nil {
		return nil, errors.New("ui: nil app")
	}
	m := &Model{
		app:     app,
		line:    prompt.NewBuffer(""),
		history: newLineHistory(0),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		log:     logr.Discard(),
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}
	var err error
	m.engine, err = app.Engine(completion.WithLogger(m.log))
	if err != nil {
		return nil, err
	}
	m.session, err = prompt.NewSession(m.engine,
		prompt.WithMenuRows(app.Config.Completion.MenuRows),
		prompt.WithSessionLogger(m.log))
	if err != nil {
		return nil, err
	}
	m.cycler, err = prompt.NewCycler(m.engine)
	if err != nil {
		return nil, err
	}
	m.theme = ThemeFor(app.Config)
	return m, nil
}

// Line returns the input buffer.
func (m *Model) Line() *prompt.Buffer { return m.line }

// Session returns the ghost/menu session.
func (m *Model) Session() *prompt.Session { return m.session }

// Scrollback returns the output lines above the prompt.
func (m *Model) Scrollback() []string { return m.scrollback }

// Quitting reports whether the program is exiting.
func (m *Model) Quitting() bool { return m.quitting }

func (m *Model) cycling() bool {
	return m.app.Config.Completion.Style == config.StyleCycle
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.EOF):
		if m.line.Text() == "" {
			m.quitting = true
			return tea.Quit
		}
		return nil
	case key.Matches(msg, m.keys.ClearScreen):
		m.scrollback = nil
		return nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return nil
	}

	if m.cycling() {
		return m.handleCycleKey(msg)
	}

	ev := promptKey(msg)
	if m.session.HandleKey(m.ctx, ev, m.line) {
		return nil
	}
	if ev.Key == prompt.KeyTab || ev.Key == prompt.KeyShiftTab {
		// nothing was suggested yet: resolve now and offer the key again
		m.session.Update(m.ctx, m.line)
		m.session.HandleKey(m.ctx, ev, m.line)
		return nil
	}
	cmd, edited := m.edit(msg)
	if edited {
		m.session.Update(m.ctx, m.line)
	}
	return cmd
}

func (m *Model) handleCycleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Complete):
		m.cycler.Next(m.ctx, m.line)
		return nil
	case key.Matches(msg, m.keys.Previous):
		m.cycler.Previous(m.ctx, m.line)
		return nil
	}
	m.cycler.Reset()
	m.line.Render(prompt.Overlay{})
	cmd, _ := m.edit(msg)
	return cmd
}

// edit applies the default line-editing behaviour for keys the session did
// not consume. It reports whether the buffer or cursor changed.
func (m *Model) edit(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit(), false
	case key.Matches(msg, m.keys.HistoryUp):
		if text, ok := m.history.prev(m.line.Text()); ok {
			m.recall(text)
		}
		return nil, false
	case key.Matches(msg, m.keys.HistoryDown):
		if text, ok := m.history.next(); ok {
			m.recall(text)
		}
		return nil, false
	case key.Matches(msg, m.keys.Home):
		m.line.Home()
		return nil, true
	case key.Matches(msg, m.keys.End):
		m.line.End()
		return nil, true
	case key.Matches(msg, m.keys.Delete):
		return nil, m.line.Delete()
	case key.Matches(msg, m.keys.KillLine):
		m.line.Clear()
		return nil, true
	}
	switch ev := promptKey(msg); ev.Key {
	case prompt.KeyLeft:
		return nil, m.line.Left()
	case prompt.KeyRight:
		return nil, m.line.Right()
	case prompt.KeyBackspace:
		return nil, m.line.Backspace()
	case prompt.KeySpace, prompt.KeyRune:
		m.line.Insert(string(ev.Rune))
		return nil, true
	}
	return nil, false
}

// recall replaces the line with a history entry. Suggestions stay off until
// the next edit.
func (m *Model) recall(text string) {
	m.session.Reset()
	m.cycler.Reset()
	m.line.Set(text)
	m.line.Render(prompt.Overlay{})
}

func (m *Model) submit() tea.Cmd {
	text := m.line.Text()
	m.history.add(strings.TrimSpace(text))
	m.scrollback = append(m.scrollback, m.theme.Prompt.Render(m.app.Config.App.Prompt)+m.renderInput(text, -1, ""))
	m.line.Clear()
	m.session.Reset()
	m.cycler.Reset()

	var out bytes.Buffer
	err := m.app.Execute(m.ctx, text, &out)
	m.appendOutput(out.String())
	var cmd tea.Cmd
	switch {
	case errors.Is(err, commands.ErrExit):
		m.quitting = true
		cmd = tea.Quit
	case errors.Is(err, commands.ErrClearScreen):
		m.scrollback = nil
	case err != nil:
		m.log.V(1).Info("line rejected", "line", text, "error", err.Error())
		m.scrollback = append(m.scrollback, m.theme.Error.Render("error: "+err.Error()))
	}
	m.trimScrollback()
	// config set may have changed the theme
	m.theme = ThemeFor(m.app.Config)
	return cmd
}

func (m *Model) appendOutput(s string) {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return
	}
	for _, l := range strings.Split(s, "\n") {
		m.scrollback = append(m.scrollback, m.theme.Output.Render(l))
	}
}

func (m *Model) trimScrollback() {
	if n := len(m.scrollback); n > DefaultScrollback {
		m.scrollback = m.scrollback[n-DefaultScrollback:]
	}
}

func (m *Model) View() tea.View {
	return tea.NewView(m.Render())
}

// Render draws scrollback, the input line, its overlay and the optional help.
func (m *Model) Render() string {
	var b strings.Builder
	lines := m.scrollback
	if m.height > 0 {
		reserved := 1 + len(m.line.Overlay().Rows)
		if m.showHelp {
			reserved += 4
		}
		if room := m.height - reserved; room >= 0 && len(lines) > room {
			lines = lines[len(lines)-room:]
		}
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if m.quitting {
		return b.String()
	}
	overlay := m.line.Overlay()
	b.WriteString(m.theme.Prompt.Render(m.app.Config.App.Prompt))
	b.WriteString(m.renderInput(m.line.Text(), m.line.Cursor(), overlay.Ghost))
	for _, row := range overlay.Rows {
		b.WriteByte('\n')
		for _, span := range row {
			b.WriteString(m.theme.Span(span))
		}
	}
	if m.showHelp {
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}
