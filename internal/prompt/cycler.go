package prompt

import (
	"context"
	"fmt"

	"github.com/oakwood-commons/replkit/internal/completion"
)

// Cycler is the index-cycling completion style: each Next replaces the
// current element with the following candidate in order, Previous steps back,
// and any other edit ends the cycle. It shares the engine with Session.
type Cycler struct {
	completer Completer

	set   *completion.OptionSet
	index int
	// start and length locate the text inserted by the last step.
	start  int
	length int
}

// NewCycler returns an inactive cycler.
func NewCycler(c Completer) (*Cycler, error) {
	if c == nil {
		return nil, ErrNilCompleter
	}
	return &Cycler{completer: c, index: -1}, nil
}

// Active reports whether a cycle is in progress.
func (c *Cycler) Active() bool { return c.set != nil }

// Index returns the position of the current candidate, or -1.
func (c *Cycler) Index() int { return c.index }

// Current returns the candidate currently in the buffer.
func (c *Cycler) Current() (completion.Option, bool) {
	if c.set == nil || c.index < 0 {
		return completion.Option{}, false
	}
	return c.set.Options[c.index], true
}

// Options returns the candidates being cycled.
func (c *Cycler) Options() *completion.OptionSet { return c.set }

// Next moves to the following candidate, wrapping at the end.
func (c *Cycler) Next(ctx context.Context, line Line) bool {
	return c.step(ctx, line, 1)
}

// Previous moves to the preceding candidate, wrapping at the start.
func (c *Cycler) Previous(ctx context.Context, line Line) bool {
	return c.step(ctx, line, -1)
}

func (c *Cycler) step(ctx context.Context, line Line, delta int) bool {
	if line == nil {
		return false
	}
	if c.set == nil {
		set := c.completer.Complete(ctx, line.Text(), line.Cursor())
		if set.Len() == 0 {
			return false
		}
		c.set = set
		c.start = set.ReplaceStart
		c.length = set.ReplaceEnd - set.ReplaceStart
		if delta > 0 {
			c.index = 0
		} else {
			c.index = set.Len() - 1
		}
	} else {
		n := c.set.Len()
		c.index = (c.index + delta + n) % n
	}
	ins := c.set.Insertion(c.index)
	line.Replace(c.start, c.start+c.length, ins)
	line.SetCursor(c.start + len(ins))
	c.length = len(ins)
	line.Render(Overlay{Rows: c.rows()})
	return true
}

// rows shows the cycle as a single indicator row, e.g. "2/5".
func (c *Cycler) rows() [][]Span {
	if c.set.Len() < 2 {
		return nil
	}
	opt := c.set.Options[c.index]
	row := []Span{{Text: fmt.Sprintf("%d/%d", c.index+1, c.set.Len()), Style: StyleIndicator}}
	if opt.Description != "" {
		row = append(row, Span{Text: "  " + opt.Description, Style: StyleDescription})
	}
	return [][]Span{row}
}

// Reset ends the cycle, keeping whatever candidate is in the buffer.
func (c *Cycler) Reset() {
	c.set = nil
	c.index = -1
	c.start, c.length = 0, 0
}
