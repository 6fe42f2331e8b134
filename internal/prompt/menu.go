package prompt

import "github.com/oakwood-commons/replkit/internal/completion"

// DefaultMenuRows is the visible window height of the menu.
const DefaultMenuRows = 5

// Menu is a scrolling window over a filtered option list. While visible it
// holds at least one option and the selection stays in range.
type Menu struct {
	options  []completion.Option
	selected int
	start    int
	visible  bool
	rows     int
}

// NewMenu returns a hidden menu showing up to rows options at a time.
func NewMenu(rows int) *Menu {
	if rows <= 0 {
		rows = DefaultMenuRows
	}
	return &Menu{rows: rows}
}

// Show opens the menu over options with the first one selected. An empty
// list leaves the menu hidden.
func (m *Menu) Show(options []completion.Option) {
	m.options = append([]completion.Option(nil), options...)
	m.selected, m.start = 0, 0
	m.visible = len(m.options) > 0
}

// Hide closes the menu and drops its options.
func (m *Menu) Hide() {
	m.options = nil
	m.selected, m.start = 0, 0
	m.visible = false
}

func (m *Menu) Visible() bool { return m.visible }
func (m *Menu) Count() int    { return len(m.options) }
func (m *Menu) Rows() int     { return m.rows }

func (m *Menu) SelectedIndex() int { return m.selected }

// Selected returns the highlighted option.
func (m *Menu) Selected() (completion.Option, bool) {
	if !m.visible || len(m.options) == 0 {
		return completion.Option{}, false
	}
	return m.options[m.selected], true
}

// Next moves the selection down, wrapping to the top.
func (m *Menu) Next() {
	if len(m.options) == 0 {
		return
	}
	m.Select((m.selected + 1) % len(m.options))
}

// Prev moves the selection up, wrapping to the bottom.
func (m *Menu) Prev() {
	if len(m.options) == 0 {
		return
	}
	m.Select((m.selected - 1 + len(m.options)) % len(m.options))
}

// Select highlights option i and scrolls it into view. Out-of-range indexes
// are ignored.
func (m *Menu) Select(i int) {
	if i < 0 || i >= len(m.options) {
		return
	}
	m.selected = i
	m.scroll()
}

func (m *Menu) scroll() {
	window := m.windowLen()
	if m.selected < m.start {
		m.start = m.selected
	}
	if m.selected >= m.start+window {
		m.start = m.selected - window + 1
	}
	if limit := len(m.options) - window; m.start > limit {
		m.start = limit
	}
	if m.start < 0 {
		m.start = 0
	}
}

func (m *Menu) windowLen() int {
	return min(m.rows, len(m.options))
}

func (m *Menu) VisibleStartIndex() int { return m.start }

// VisibleOptions returns the options inside the window.
func (m *Menu) VisibleOptions() []completion.Option {
	if !m.visible {
		return nil
	}
	return m.options[m.start : m.start+m.windowLen()]
}

func (m *Menu) HasMoreAbove() bool { return m.MoreAboveCount() > 0 }
func (m *Menu) HasMoreBelow() bool { return m.MoreBelowCount() > 0 }

func (m *Menu) MoreAboveCount() int {
	if !m.visible {
		return 0
	}
	return m.start
}

func (m *Menu) MoreBelowCount() int {
	if !m.visible {
		return 0
	}
	return len(m.options) - (m.start + m.windowLen())
}

// UpdateFilter swaps in a re-filtered option list. The selected option stays
// selected when it survives the filter; otherwise the first option is. An
// empty list hides the menu.
func (m *Menu) UpdateFilter(options []completion.Option) {
	var keep string
	if opt, ok := m.Selected(); ok {
		keep = opt.Formatted()
	}
	m.options = append([]completion.Option(nil), options...)
	if len(m.options) == 0 {
		m.Hide()
		return
	}
	m.visible = true
	m.selected, m.start = 0, 0
	for i, o := range m.options {
		if o.Formatted() == keep {
			m.selected = i
			break
		}
	}
	m.scroll()
}
