package prompt

import (
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/replkit/internal/completion"
)

// MenuResult tells the caller what HandleMenuKey did with a key.
type MenuResult int

const (
	// MenuNotHandled leaves the key to the caller.
	MenuNotHandled MenuResult = iota
	// MenuHandled consumed the key (selection moved).
	MenuHandled
	// MenuSelected asks the caller to accept the selection.
	MenuSelected
	// MenuDismissed closed the menu.
	MenuDismissed
)

func (r MenuResult) String() string {
	switch r {
	case MenuHandled:
		return "handled"
	case MenuSelected:
		return "selected"
	case MenuDismissed:
		return "dismissed"
	default:
		return "not-handled"
	}
}

const descriptionWidth = 48

// MenuController drives a Menu from key presses and renders it.
type MenuController struct {
	menu    *Menu
	set     *completion.OptionSet
	inQuote bool
}

// NewMenuController returns a controller over a menu of rows lines.
func NewMenuController(rows int) *MenuController {
	return &MenuController{menu: NewMenu(rows)}
}

// Menu exposes the underlying model.
func (c *MenuController) Menu() *Menu { return c.menu }

// Options returns the option set the menu was built from.
func (c *MenuController) Options() *completion.OptionSet { return c.set }

// Open loads set without rendering. It reports whether the menu became visible.
func (c *MenuController) Open(set *completion.OptionSet) bool {
	c.set = set
	c.inQuote = set != nil && set.Context != nil && set.Context.Quote != 0
	if set.Len() == 0 {
		c.menu.Hide()
		return false
	}
	c.menu.Show(set.Options)
	return true
}

// ShowMenu opens the menu over the loaded option set and renders it.
func (c *MenuController) ShowMenu(line Line) {
	c.Open(c.set)
	c.render(line)
}

// HandleMenuKey applies one key to the open menu.
func (c *MenuController) HandleMenuKey(key KeyEvent) MenuResult {
	if !c.menu.Visible() {
		return MenuNotHandled
	}
	switch key.Key {
	case KeyDown:
		c.menu.Next()
		return MenuHandled
	case KeyUp, KeyShiftTab:
		c.menu.Prev()
		return MenuHandled
	case KeyTab, KeyEnter:
		return MenuSelected
	case KeySpace:
		if c.inQuote {
			return MenuNotHandled
		}
		return MenuSelected
	case KeyEscape, KeyLeft, KeyRight:
		c.menu.Hide()
		return MenuDismissed
	default:
		return MenuNotHandled
	}
}

// AcceptMenuSelection writes the selected option into line and closes the
// menu. The separator follows the option set's rule unless forced.
func (c *MenuController) AcceptMenuSelection(line Line) bool {
	return c.accept(line, false)
}

func (c *MenuController) accept(line Line, forceSeparator bool) bool {
	if !c.menu.Visible() || c.set == nil {
		return false
	}
	ok := apply(line, c.set, c.menu.SelectedIndex(), c.set.AppendSeparator || forceSeparator)
	c.Reset()
	line.Render(Overlay{})
	return ok
}

// UpdateFilter re-filters the open menu in place.
func (c *MenuController) UpdateFilter(set *completion.OptionSet, line Line) {
	c.set = set
	c.inQuote = set != nil && set.Context != nil && set.Context.Quote != 0
	if set.Len() == 0 {
		c.menu.Hide()
	} else {
		c.menu.UpdateFilter(set.Options)
	}
	c.render(line)
}

// Reset closes the menu and forgets the option set.
func (c *MenuController) Reset() {
	c.menu.Hide()
	c.set = nil
	c.inQuote = false
}

func (c *MenuController) render(line Line) {
	if line == nil {
		return
	}
	line.Render(Overlay{Rows: c.Rows()})
}

// Rows lays out the visible window: one row per option with its description
// aligned in a second column, plus scroll indicators.
func (c *MenuController) Rows() [][]Span {
	m := c.menu
	if !m.Visible() {
		return nil
	}
	visible := m.VisibleOptions()
	width := 0
	for _, o := range visible {
		width = max(width, runewidth.StringWidth(o.Formatted()))
	}
	var rows [][]Span
	if m.HasMoreAbove() {
		rows = append(rows, []Span{{Text: fmt.Sprintf("▲ %d more", m.MoreAboveCount()), Style: StyleIndicator}})
	}
	for i, o := range visible {
		style := StyleItem
		if m.VisibleStartIndex()+i == m.SelectedIndex() {
			style = StyleSelected
		}
		row := []Span{{Text: runewidth.FillRight(o.Formatted(), width), Style: style}}
		if o.Description != "" {
			row = append(row, Span{
				Text:  "  " + runewidth.Truncate(o.Description, descriptionWidth, "…"),
				Style: StyleDescription,
			})
		}
		rows = append(rows, row)
	}
	if m.HasMoreBelow() {
		rows = append(rows, []Span{{Text: fmt.Sprintf("▼ %d more", m.MoreBelowCount()), Style: StyleIndicator}})
	}
	return rows
}
