package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCyclerWalksCandidates(t *testing.T) {
	c, err := NewCycler(testEngine(t))
	require.NoError(t, err)
	ctx := context.Background()
	b := NewBuffer("h")

	require.True(t, c.Next(ctx, b))
	assert.Equal(t, "hat", b.Text())
	assert.Equal(t, 3, b.Cursor())
	assert.True(t, c.Active())
	require.Len(t, b.Overlay().Rows, 1)
	assert.Equal(t, "1/4", b.Overlay().Rows[0][0].Text)

	require.True(t, c.Next(ctx, b))
	assert.Equal(t, "hello", b.Text())
	require.True(t, c.Next(ctx, b))
	require.True(t, c.Next(ctx, b))
	assert.Equal(t, "history", b.Text())
	require.True(t, c.Next(ctx, b))
	assert.Equal(t, "hat", b.Text(), "wraps to the first candidate")

	require.True(t, c.Previous(ctx, b))
	assert.Equal(t, "history", b.Text())
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "history", cur.Value)
	assert.Equal(t, 3, c.Index())

	c.Reset()
	assert.False(t, c.Active())
	_, ok = c.Current()
	assert.False(t, ok)
}

func TestCyclerPreviousStartsAtLast(t *testing.T) {
	c, err := NewCycler(testEngine(t))
	require.NoError(t, err)
	b := NewBuffer("server connect --host ")
	require.True(t, c.Previous(context.Background(), b))
	assert.Equal(t, "server connect --host beta", b.Text())
}

func TestCyclerKeepsSurroundingText(t *testing.T) {
	c, err := NewCycler(testEngine(t))
	require.NoError(t, err)
	ctx := context.Background()
	b := NewBuffer("he | x")
	b.SetCursor(2)
	require.True(t, c.Next(ctx, b))
	assert.Equal(t, "hello | x", b.Text())
	require.True(t, c.Next(ctx, b))
	assert.Equal(t, "help | x", b.Text())
	assert.Equal(t, 4, b.Cursor())
}

func TestCyclerNoCandidates(t *testing.T) {
	c, err := NewCycler(testEngine(t))
	require.NoError(t, err)
	assert.False(t, c.Next(context.Background(), NewBuffer("zzz")))
	assert.False(t, c.Next(context.Background(), nil))

	_, err = NewCycler(nil)
	assert.ErrorIs(t, err, ErrNilCompleter)
}
