// Package prompt is the interactive layer over the completion engine: it
// decides between inline ghost text and the selection menu and what each key
// does in each mode.
//
// A Session is owned by one input loop. Every edit is followed by Update, which
// recomputes the candidates for the cursor; HandleKey is offered each key before
// the caller applies its default editing behaviour.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/replkit/internal/completion"
)

var (
	ErrNilCompleter = errors.New("prompt: nil completer")
	ErrNilLine      = errors.New("prompt: nil line")
)

// Completer produces candidates for a cursor position. *completion.Engine
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, line string, cursor int) *completion.OptionSet
}

// Mode is the suggestion state of the current line.
type Mode int

const (
	ModeIdle Mode = iota
	ModeGhostText
	ModeMenu
)

func (m Mode) String() string {
	switch m {
	case ModeGhostText:
		return "ghost"
	case ModeMenu:
		return "menu"
	default:
		return "idle"
	}
}

// Session holds the per-prompt suggestion state.
type Session struct {
	completer Completer
	menu      *MenuController
	log       logr.Logger

	mode Mode
	set  *completion.OptionSet
	// suppressed is the replace start of the element whose ghost text was
	// dismissed with Escape, or -1.
	suppressed int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMenuRows sets the menu window height.
func WithMenuRows(n int) SessionOption {
	return func(s *Session) { s.menu = NewMenuController(n) }
}

// WithSessionLogger sets the logger for recovered key-handling panics.
func WithSessionLogger(l logr.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// NewSession returns an idle session.
func NewSession(c Completer, opts ...SessionOption) (*Session, error) {
	if c == nil {
		return nil, ErrNilCompleter
	}
	s := &Session{
		completer:  c,
		menu:       NewMenuController(DefaultMenuRows),
		log:        logr.Discard(),
		suppressed: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Mode() Mode { return s.mode }

// Menu returns the menu model.
func (s *Session) Menu() *Menu { return s.menu.Menu() }

// Options returns the candidates from the last Update.
func (s *Session) Options() *completion.OptionSet { return s.set }

// Suppressed reports whether ghost text is hidden for the current element.
func (s *Session) Suppressed() bool {
	return s.set != nil && s.suppressed == s.set.ReplaceStart
}

// Ghost returns the ghost suffix to draw after the cursor.
func (s *Session) Ghost() string {
	if s.mode != ModeGhostText || s.Suppressed() {
		return ""
	}
	return s.set.Ghost()
}

// Update recomputes the candidates for the line. With zero candidates the
// session is idle, with one it shows ghost text, and with more it keeps the
// menu open if it was, re-filtered, or shows ghost text for the first one.
// An open menu is dismissed once the cursor leaves the element it completes.
func (s *Session) Update(ctx context.Context, line Line) {
	if line == nil {
		return
	}
	set := s.completer.Complete(ctx, line.Text(), line.Cursor())
	s.set = set
	if s.suppressed >= 0 && (set == nil || set.ReplaceStart != s.suppressed) {
		s.suppressed = -1
	}
	switch n := set.Len(); {
	case n == 0:
		s.menu.Reset()
		s.mode = ModeIdle
	case n == 1:
		s.menu.Reset()
		s.mode = ModeGhostText
	case s.mode == ModeMenu && s.sameElement(set):
		s.menu.UpdateFilter(set, nil)
	default:
		s.menu.Reset()
		s.mode = ModeGhostText
	}
	s.render(line)
}

func (s *Session) sameElement(set *completion.OptionSet) bool {
	open := s.menu.Options()
	return open != nil && open.ReplaceStart == set.ReplaceStart
}

// HandleKey offers key to the session and reports whether it was consumed.
// A panic anywhere below is recovered and reported as not handled.
func (s *Session) HandleKey(ctx context.Context, key KeyEvent, line Line) (handled bool) {
	if line == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(fmt.Errorf("%v", r), "recovered panic in key handler", "key", key.String())
			s.Reset()
			handled = false
		}
	}()
	switch s.mode {
	case ModeMenu:
		return s.handleMenuKey(ctx, key, line)
	case ModeGhostText:
		return s.handleGhostKey(ctx, key, line)
	default:
		return false
	}
}

func (s *Session) handleGhostKey(ctx context.Context, key KeyEvent, line Line) bool {
	if s.Suppressed() {
		return false
	}
	switch key.Key {
	case KeyTab, KeyShiftTab:
		if s.set.Len() >= 2 {
			s.openMenu(line)
			if key.Key == KeyShiftTab {
				s.menu.Menu().Prev()
				s.render(line)
			}
			return true
		}
		return s.Accept(ctx, line)
	case KeyRight:
		if s.Ghost() == "" {
			return false
		}
		return s.Accept(ctx, line)
	case KeyEscape:
		s.Suppress(line)
		return true
	case KeyUp, KeyDown:
		s.Dismiss(line)
		return false
	default:
		return false
	}
}

func (s *Session) handleMenuKey(ctx context.Context, key KeyEvent, line Line) bool {
	switch s.menu.HandleMenuKey(key) {
	case MenuHandled:
		s.render(line)
		return true
	case MenuSelected:
		s.menu.accept(line, key.Key == KeySpace)
		s.mode = ModeIdle
		s.Update(ctx, line)
		return true
	case MenuDismissed:
		s.mode = ModeIdle
		s.render(line)
		return key.Key == KeyEscape
	default:
		return false
	}
}

func (s *Session) openMenu(line Line) {
	s.menu.Open(s.set)
	s.mode = ModeMenu
	s.render(line)
}

// ShowMenu opens the menu when at least two candidates are available.
func (s *Session) ShowMenu(line Line) bool {
	if s.set.Len() < 2 {
		return false
	}
	s.openMenu(line)
	return true
}

// Accept commits the current candidate: the menu selection in menu mode, the
// ghost candidate otherwise. Resolution re-runs right away so a follow-up slot
// is suggested without another key press.
func (s *Session) Accept(ctx context.Context, line Line) bool {
	if line == nil || s.set.Len() == 0 {
		return false
	}
	var ok bool
	if s.mode == ModeMenu {
		ok = s.menu.AcceptMenuSelection(line)
	} else {
		ok = apply(line, s.set, 0, s.set.AppendSeparator)
	}
	s.menu.Reset()
	s.mode = ModeIdle
	s.suppressed = -1
	s.Update(ctx, line)
	return ok
}

// Dismiss drops the suggestion without touching the buffer.
func (s *Session) Dismiss(line Line) {
	s.menu.Reset()
	s.mode = ModeIdle
	s.render(line)
}

// Suppress hides ghost text until the cursor moves to another element.
func (s *Session) Suppress(line Line) {
	if s.set != nil {
		s.suppressed = s.set.ReplaceStart
	}
	s.render(line)
}

// Reset clears all state, for a freshly submitted line.
func (s *Session) Reset() {
	s.menu.Reset()
	s.mode = ModeIdle
	s.set = nil
	s.suppressed = -1
}

// Overlay returns what the session wants drawn around the line.
func (s *Session) Overlay() Overlay {
	if s.mode == ModeMenu {
		return Overlay{Rows: s.menu.Rows()}
	}
	return Overlay{Ghost: s.Ghost()}
}

func (s *Session) render(line Line) {
	if line != nil {
		line.Render(s.Overlay())
	}
}
