package prompt

import (
	"unicode/utf8"

	"github.com/oakwood-commons/replkit/internal/completion"
)

// Style tags a span of overlay text for the renderer.
type Style int

const (
	StyleItem Style = iota
	StyleSelected
	StyleDescription
	StyleIndicator
)

// Span is a run of text with one style.
type Span struct {
	Text  string
	Style Style
}

// Overlay is everything drawn around the input that is not part of the buffer:
// the dim ghost suffix after the cursor and the menu rows below the line.
type Overlay struct {
	Ghost string
	Rows  [][]Span
}

// Empty reports whether there is nothing to draw.
func (o Overlay) Empty() bool { return o.Ghost == "" && len(o.Rows) == 0 }

// Line is the editable input buffer. Offsets are byte offsets into Text.
type Line interface {
	Text() string
	Cursor() int
	Replace(start, end int, text string)
	SetCursor(pos int)
	Render(o Overlay)
}

// Buffer is an in-memory Line with rune-aware editing helpers.
type Buffer struct {
	text    string
	cursor  int
	overlay Overlay
}

// NewBuffer returns a buffer holding text with the cursor at the end.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, cursor: len(text)}
}

func (b *Buffer) Text() string { return b.text }
func (b *Buffer) Cursor() int  { return b.cursor }

// Overlay returns the last rendered overlay.
func (b *Buffer) Overlay() Overlay { return b.overlay }

func (b *Buffer) Render(o Overlay) { b.overlay = o }

// Replace swaps text[start:end] for s. Out-of-range bounds are clamped. The
// cursor keeps its position relative to the unchanged text around the edit.
func (b *Buffer) Replace(start, end int, s string) {
	start, end = b.clamp(start), b.clamp(end)
	if end < start {
		start, end = end, start
	}
	b.text = b.text[:start] + s + b.text[end:]
	switch {
	case b.cursor >= end:
		b.cursor += len(s) - (end - start)
	case b.cursor > start:
		b.cursor = start + len(s)
	}
}

func (b *Buffer) SetCursor(pos int) { b.cursor = b.clamp(pos) }

func (b *Buffer) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(b.text) {
		return len(b.text)
	}
	return pos
}

// Set replaces the whole text and moves the cursor to the end.
func (b *Buffer) Set(text string) {
	b.text = text
	b.cursor = len(text)
}

// Insert types s at the cursor.
func (b *Buffer) Insert(s string) {
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	b.cursor += len(s)
}

// Backspace deletes the rune before the cursor.
func (b *Buffer) Backspace() bool {
	if b.cursor == 0 {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	b.text = b.text[:b.cursor-size] + b.text[b.cursor:]
	b.cursor -= size
	return true
}

// Delete removes the rune under the cursor.
func (b *Buffer) Delete() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
	b.text = b.text[:b.cursor] + b.text[b.cursor+size:]
	return true
}

// Left moves the cursor back one rune.
func (b *Buffer) Left() bool {
	if b.cursor == 0 {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	b.cursor -= size
	return true
}

// Right moves the cursor forward one rune.
func (b *Buffer) Right() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
	b.cursor += size
	return true
}

func (b *Buffer) Home() { b.cursor = 0 }
func (b *Buffer) End()  { b.cursor = len(b.text) }

// Clear empties the buffer and the overlay.
func (b *Buffer) Clear() {
	b.text, b.cursor = "", 0
	b.overlay = Overlay{}
}

// apply accepts option i of set into line. It replaces the option's span,
// appends a separator when one is wanted and not already present, and leaves
// the cursor after the inserted text.
func apply(line Line, set *completion.OptionSet, i int, separator bool) bool {
	if set.Len() == 0 || i < 0 || i >= set.Len() {
		return false
	}
	text := line.Text()
	start, end := set.ReplaceStart, set.ReplaceEnd
	if start < 0 || end > len(text) || start > end {
		return false
	}
	ins := set.Insertion(i)
	cursor := start + len(ins)
	if separator {
		if end < len(text) && text[end] == ' ' {
			cursor++
		} else {
			ins += " "
			cursor++
		}
	}
	line.Replace(start, end, ins)
	line.SetCursor(cursor)
	return true
}
