package ui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/replkit/internal/commands"
	"github.com/oakwood-commons/replkit/internal/config"
	"github.com/oakwood-commons/replkit/internal/prompt"
)

func newTestModel(t *testing.T, mutate ...func(*config.Config)) *Model {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.UI.NoColor = true
	for _, fn := range mutate {
		fn(cfg)
	}
	app, err := commands.New(cfg)
	require.NoError(t, err)
	m, err := New(app)
	require.NoError(t, err)
	return m
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func press(m *Model, code rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func TestNewRejectsNilApp(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestTypingShowsGhostText(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "h")
	assert.Equal(t, prompt.ModeGhostText, m.Session().Mode())
	assert.Equal(t, "elp", m.Session().Ghost())
	assert.Equal(t, "> help", m.Render())
}

func TestCursorMidWordDrawsNoGhost(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "exit")
	press(m, tea.KeyLeft)
	press(m, tea.KeyLeft)
	assert.Equal(t, 2, m.Line().Cursor())
	assert.Empty(t, m.Session().Ghost())
	assert.Equal(t, "> exit", m.Render())

	press(m, tea.KeyRight)
	assert.Equal(t, "exit", m.Line().Text())
	assert.Equal(t, 3, m.Line().Cursor())
}

func TestTabOpensMenuAndEnterAccepts(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "h")
	press(m, tea.KeyTab)
	require.Equal(t, prompt.ModeMenu, m.Session().Mode())
	assert.Equal(t, 0, m.Session().Menu().SelectedIndex())
	assert.Contains(t, m.Render(), "help")
	assert.Contains(t, m.Render(), "history")

	press(m, tea.KeyDown)
	assert.Equal(t, 1, m.Session().Menu().SelectedIndex())
	press(m, tea.KeyEnter)
	assert.Equal(t, "history ", m.Line().Text())
	assert.Empty(t, m.Scrollback(), "accepting a candidate does not run the line")
}

func TestTabOnEmptyLineOffersCommands(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyTab)
	assert.Equal(t, prompt.ModeMenu, m.Session().Mode())
	assert.Contains(t, m.Session().Options().Values(), "server")
}

func TestEnterRunsLine(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "echo hi")
	cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"> echo hi", "hi"}, m.Scrollback())
	assert.Empty(t, m.Line().Text())
	assert.Equal(t, prompt.ModeIdle, m.Session().Mode())
}

func TestPipedLine(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "echo hi | echo -u")
	press(m, tea.KeyEnter)
	assert.Equal(t, "HI", m.Scrollback()[len(m.Scrollback())-1])
}

func TestRejectedLineShowsError(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "bogus")
	press(m, tea.KeyEnter)
	last := m.Scrollback()[len(m.Scrollback())-1]
	assert.Contains(t, last, "error: ")
	assert.Contains(t, last, "bogus")
}

func TestExitQuits(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "exit")
	cmd := press(m, tea.KeyEnter)
	assert.NotNil(t, cmd)
	assert.True(t, m.Quitting())
}

func TestCtrlCQuits(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	assert.NotNil(t, cmd)
	assert.True(t, m.Quitting())
}

func TestCtrlDQuitsOnlyOnEmptyLine(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "ec")
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	assert.Nil(t, cmd)
	assert.False(t, m.Quitting())

	m.Line().Clear()
	_, cmd = m.Update(tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	assert.NotNil(t, cmd)
}

func TestClearCommandAndCtrlL(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "echo a")
	press(m, tea.KeyEnter)
	require.NotEmpty(t, m.Scrollback())
	m.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	assert.Empty(t, m.Scrollback())

	typeText(m, "echo b")
	press(m, tea.KeyEnter)
	typeText(m, "clear")
	press(m, tea.KeyEnter)
	assert.Empty(t, m.Scrollback())
}

func TestHistoryRecall(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "echo one")
	press(m, tea.KeyEnter)
	typeText(m, "echo two")
	press(m, tea.KeyEnter)

	typeText(m, "dra")
	press(m, tea.KeyUp)
	assert.Equal(t, "echo two", m.Line().Text())
	press(m, tea.KeyUp)
	assert.Equal(t, "echo one", m.Line().Text())
	press(m, tea.KeyUp)
	assert.Equal(t, "echo one", m.Line().Text(), "stays on the oldest entry")
	press(m, tea.KeyDown)
	press(m, tea.KeyDown)
	assert.Equal(t, "dra", m.Line().Text(), "the draft comes back")
}

func TestEditingKeys(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "ecxho")
	press(m, tea.KeyLeft)
	press(m, tea.KeyLeft)
	press(m, tea.KeyBackspace)
	assert.Equal(t, "echo", m.Line().Text())
	assert.Equal(t, 2, m.Line().Cursor())

	m.Update(tea.KeyPressMsg{Code: 'e', Mod: tea.ModCtrl})
	assert.Equal(t, 4, m.Line().Cursor())
	m.Update(tea.KeyPressMsg{Code: 'u', Mod: tea.ModCtrl})
	assert.Empty(t, m.Line().Text())
}

func TestCycleStyle(t *testing.T) {
	m := newTestModel(t, func(c *config.Config) { c.Completion.Style = config.StyleCycle })
	typeText(m, "h")
	assert.Equal(t, prompt.ModeIdle, m.Session().Mode(), "the ghost session is bypassed")

	press(m, tea.KeyTab)
	assert.Equal(t, "help", m.Line().Text())
	press(m, tea.KeyTab)
	assert.Equal(t, "history", m.Line().Text())
	assert.Contains(t, m.Render(), "2/2")
	m.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, "help", m.Line().Text())

	typeText(m, " ")
	assert.Equal(t, "help ", m.Line().Text())
	assert.NotContains(t, m.Render(), "/2", "typing ends the cycle")
}

func TestConfigSetSwitchesStyle(t *testing.T) {
	m := newTestModel(t)
	typeText(m, "config set completion.style cycle")
	press(m, tea.KeyEnter)
	assert.True(t, m.cycling())
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)
	press(m, tea.KeyF1)
	assert.Contains(t, m.Render(), "run line")
	press(m, tea.KeyF1)
	assert.NotContains(t, m.Render(), "run line")
}

func TestWindowSizeLimitsScrollback(t *testing.T) {
	m := newTestModel(t)
	for _, s := range []string{"echo 1", "echo 2", "echo 3"} {
		typeText(m, s)
		press(m, tea.KeyEnter)
	}
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 3})
	assert.Equal(t, "> echo 3\n3\n>  ", m.Render())
}

func TestPromptKey(t *testing.T) {
	tests := []struct {
		msg  tea.KeyPressMsg
		want prompt.KeyEvent
	}{
		{tea.KeyPressMsg{Code: tea.KeyTab}, prompt.Press(prompt.KeyTab)},
		{tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}, prompt.Press(prompt.KeyShiftTab)},
		{tea.KeyPressMsg{Code: tea.KeyEscape}, prompt.Press(prompt.KeyEscape)},
		{tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, prompt.Press(prompt.KeySpace)},
		{tea.KeyPressMsg{Code: tea.KeyBackspace}, prompt.Press(prompt.KeyBackspace)},
		{tea.KeyPressMsg{Code: 'x', Text: "x"}, prompt.Char('x')},
		{tea.KeyPressMsg{Code: tea.KeyF5}, prompt.KeyEvent{Key: prompt.KeyOther}},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, promptKey(tt.msg))
			if tt.want.Key != prompt.KeyOther {
				assert.Equal(t, tt.want, promptKey(teaKey(tt.want)), "teaKey round trips")
			}
		})
	}
}
