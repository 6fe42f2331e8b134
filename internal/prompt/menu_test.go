package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/replkit/internal/completion"
)

func numbered(n int) []completion.Option {
	opts := make([]completion.Option, n)
	for i := range opts {
		opts[i] = completion.Option{Value: fmt.Sprintf("opt%02d", i)}
	}
	return opts
}

func TestMenuShowEmptyStaysHidden(t *testing.T) {
	m := NewMenu(5)
	m.Show(nil)
	assert.False(t, m.Visible())
	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Nil(t, m.VisibleOptions())
	assert.Equal(t, 0, m.MoreBelowCount())
}

func TestMenuScrollToLast(t *testing.T) {
	for name, move := range map[string]func(m *Menu){
		"prev wraps": func(m *Menu) { m.Prev() },
		"next nine times": func(m *Menu) {
			for i := 0; i < 9; i++ {
				m.Next()
			}
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := NewMenu(5)
			m.Show(numbered(10))
			move(m)
			assert.Equal(t, 9, m.SelectedIndex())
			assert.Equal(t, 5, m.VisibleStartIndex())
			assert.False(t, m.HasMoreBelow())
			assert.True(t, m.HasMoreAbove())
			assert.Equal(t, 5, m.MoreAboveCount())
			assert.Len(t, m.VisibleOptions(), 5)
		})
	}
}

func TestMenuWrapsToTop(t *testing.T) {
	m := NewMenu(5)
	m.Show(numbered(10))
	m.Prev()
	m.Next()
	assert.Equal(t, 0, m.SelectedIndex())
	assert.Equal(t, 0, m.VisibleStartIndex())
	assert.True(t, m.HasMoreBelow())
	assert.Equal(t, 5, m.MoreBelowCount())
	assert.False(t, m.HasMoreAbove())
}

func TestMenuWindowShorterThanRows(t *testing.T) {
	m := NewMenu(0)
	assert.Equal(t, DefaultMenuRows, m.Rows())
	m.Show(numbered(3))
	assert.Len(t, m.VisibleOptions(), 3)
	assert.False(t, m.HasMoreAbove())
	assert.False(t, m.HasMoreBelow())
}

func TestMenuSelectedIndexStaysInBounds(t *testing.T) {
	m := NewMenu(5)
	m.Show(numbered(7))
	sizes := []int{7, 3, 12, 1, 6}
	for step := 0; step < 60; step++ {
		switch step % 4 {
		case 0, 1:
			m.Next()
		case 2:
			m.Prev()
		case 3:
			m.UpdateFilter(numbered(sizes[step%len(sizes)]))
		}
		require.True(t, m.Visible())
		require.GreaterOrEqual(t, m.SelectedIndex(), 0)
		require.Less(t, m.SelectedIndex(), m.Count())
		require.LessOrEqual(t, len(m.VisibleOptions()), DefaultMenuRows)
		require.GreaterOrEqual(t, m.SelectedIndex(), m.VisibleStartIndex())
		require.Less(t, m.SelectedIndex(), m.VisibleStartIndex()+len(m.VisibleOptions()))
	}
}

func TestMenuUpdateFilter(t *testing.T) {
	m := NewMenu(5)
	m.Show([]completion.Option{{Value: "hat"}, {Value: "hello"}, {Value: "help"}})
	m.Next()

	m.UpdateFilter([]completion.Option{{Value: "hello"}, {Value: "help"}})
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "hello", sel.Value)
	assert.Equal(t, 0, m.SelectedIndex())

	m.UpdateFilter([]completion.Option{{Value: "help"}})
	assert.Equal(t, 0, m.SelectedIndex())

	m.UpdateFilter(nil)
	assert.False(t, m.Visible())
	assert.Equal(t, 0, m.Count())
}

func TestMenuControllerRows(t *testing.T) {
	c := NewMenuController(5)
	require.True(t, c.Open(&completion.OptionSet{Options: append(numbered(6), completion.Option{Value: "zz", Description: "last"})}))
	rows := c.Rows()
	require.Len(t, rows, 6, "five items and a more-below indicator")
	assert.Equal(t, StyleSelected, rows[0][0].Style)
	assert.Equal(t, StyleItem, rows[1][0].Style)
	assert.Equal(t, "▼ 2 more", rows[5][0].Text)

	c.Menu().Prev()
	rows = c.Rows()
	assert.Equal(t, "▲ 2 more", rows[0][0].Text)
	last := rows[len(rows)-1]
	require.Len(t, last, 2)
	assert.Equal(t, "zz   ", last[0].Text, "padded to the widest item")
	assert.Equal(t, StyleDescription, last[1].Style)
}

func TestMenuControllerShowMenu(t *testing.T) {
	c := NewMenuController(5)
	b := NewBuffer("o")

	c.ShowMenu(b)
	assert.False(t, c.Menu().Visible(), "no options loaded")
	assert.True(t, b.Overlay().Empty())

	c.Open(&completion.OptionSet{Options: numbered(3)})
	c.Menu().Next()
	require.Equal(t, MenuDismissed, c.HandleMenuKey(Press(KeyLeft)))

	c.ShowMenu(b)
	require.True(t, c.Menu().Visible())
	assert.Equal(t, 0, c.Menu().SelectedIndex(), "reopening starts at the top")
	assert.Len(t, b.Overlay().Rows, 3)
	assert.Equal(t, "o", b.Text())
}

func TestMenuControllerKeys(t *testing.T) {
	c := NewMenuController(5)
	assert.Equal(t, MenuNotHandled, c.HandleMenuKey(Press(KeyDown)), "hidden menu")

	c.Open(&completion.OptionSet{Options: numbered(3)})
	assert.Equal(t, MenuHandled, c.HandleMenuKey(Press(KeyDown)))
	assert.Equal(t, 1, c.Menu().SelectedIndex())
	assert.Equal(t, MenuHandled, c.HandleMenuKey(Press(KeyUp)))
	assert.Equal(t, MenuSelected, c.HandleMenuKey(Press(KeyTab)))
	assert.Equal(t, MenuSelected, c.HandleMenuKey(Press(KeyEnter)))
	assert.Equal(t, MenuSelected, c.HandleMenuKey(Press(KeySpace)))
	assert.Equal(t, MenuNotHandled, c.HandleMenuKey(Press(KeyBackspace)))
	assert.Equal(t, MenuNotHandled, c.HandleMenuKey(Char('x')))
	assert.Equal(t, MenuDismissed, c.HandleMenuKey(Press(KeyLeft)))
	assert.False(t, c.Menu().Visible())
}

func TestMenuControllerSpaceInsideQuote(t *testing.T) {
	c := NewMenuController(5)
	c.Open(&completion.OptionSet{
		Options: numbered(2),
		Context: &completion.CursorContext{Quote: '"'},
	})
	assert.Equal(t, MenuNotHandled, c.HandleMenuKey(Press(KeySpace)))
	assert.True(t, c.Menu().Visible())
}

func TestMenuResultString(t *testing.T) {
	assert.Equal(t, "dismissed", MenuDismissed.String())
	assert.Equal(t, "not-handled", MenuNotHandled.String())
}
