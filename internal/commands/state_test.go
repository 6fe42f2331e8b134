package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateVars(t *testing.T) {
	s := NewState(0)
	v, ok := s.Get(VarConnected)
	assert.True(t, ok)
	assert.Equal(t, false, v)

	s.Set(VarHost, "alpha")
	vars := s.Vars()
	vars[VarHost] = "mutated"
	got, _ := s.Get(VarHost)
	assert.Equal(t, "alpha", got, "Vars returns a copy")

	s.Delete(VarHost)
	_, ok = s.Get(VarHost)
	assert.False(t, ok)
}

func TestStateLinesAreBounded(t *testing.T) {
	s := NewState(2)
	s.Record("")
	s.Record("a")
	s.Record("b")
	s.Record("c")
	assert.Equal(t, []string{"b", "c"}, s.Lines())

	lines := s.Lines()
	lines[0] = "x"
	assert.Equal(t, []string{"b", "c"}, s.Lines())

	s.ClearLines()
	assert.Empty(t, s.Lines())
}
