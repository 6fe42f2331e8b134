package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key is a terminal-independent key identity.
type Key int

const (
	KeyOther Key = iota
	KeyRune
	KeyTab
	KeyShiftTab
	KeyEnter
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyBackspace
)

var keyNames = map[Key]string{
	KeyOther:     "other",
	KeyRune:      "rune",
	KeyTab:       "tab",
	KeyShiftTab:  "shift+tab",
	KeyEnter:     "enter",
	KeyEscape:    "esc",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeySpace:     "space",
	KeyBackspace: "backspace",
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "unknown"
}

// KeyEvent is one key press. Rune is set for KeyRune and KeySpace.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// Press builds a KeyEvent for a named key.
func Press(k Key) KeyEvent {
	if k == KeySpace {
		return KeyEvent{Key: KeySpace, Rune: ' '}
	}
	return KeyEvent{Key: k}
}

// Char builds a KeyEvent for a printable rune.
func Char(r rune) KeyEvent {
	if r == ' ' {
		return Press(KeySpace)
	}
	return KeyEvent{Key: KeyRune, Rune: r}
}

func (e KeyEvent) String() string {
	if e.Key == KeyRune {
		return string(e.Rune)
	}
	return e.Key.String()
}

// ParseKey reads a key name as printed by KeyEvent.String. "escape", "bs" and
// "return" are accepted as aliases; any other single rune is a KeyRune.
func ParseKey(name string) (KeyEvent, error) {
	lower := strings.ToLower(name)
	switch lower {
	case "escape":
		return Press(KeyEscape), nil
	case "bs":
		return Press(KeyBackspace), nil
	case "return":
		return Press(KeyEnter), nil
	}
	for k, n := range keyNames {
		if k != KeyOther && k != KeyRune && n == lower {
			return Press(k), nil
		}
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return Char(r), nil
	}
	return KeyEvent{}, fmt.Errorf("unknown key %q", name)
}

// ParseKeys splits a comma separated key list such as "h,tab,down,enter".
// A literal comma is written as "comma".
func ParseKeys(list string) ([]KeyEvent, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var out []KeyEvent
	for _, part := range strings.Split(list, ",") {
		if part == "comma" {
			out = append(out, Char(','))
			continue
		}
		if part != " " {
			part = strings.TrimSpace(part)
		}
		ev, err := ParseKey(part)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
