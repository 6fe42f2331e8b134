package commands

import (
	"maps"
	"sync"
)

// Session variable names exposed to conditions as session.<name>.
const (
	VarConnected = "connected"
	VarHost      = "host"
	VarPort      = "port"
)

// State is the mutable REPL session: variables read by conditions and the
// lines submitted so far. It lives in memory only.
type State struct {
	mu    sync.Mutex
	vars  map[string]any
	lines []string
	limit int
}

// NewState starts a session with connected=false and room for limit lines
// of history (limit <= 0 means 500).
func NewState(limit int) *State {
	if limit <= 0 {
		limit = 500
	}
	return &State{
		vars:  map[string]any{VarConnected: false},
		limit: limit,
	}
}

func (s *State) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

func (s *State) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	return v, ok
}

func (s *State) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.vars, name)
}

// Vars returns a copy of the session variables.
func (s *State) Vars() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.vars)
}

// Record appends a submitted line, dropping the oldest past the limit.
func (s *State) Record(line string) {
	if line == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if len(s.lines) > s.limit {
		s.lines = s.lines[len(s.lines)-s.limit:]
	}
}

// Lines returns the submitted lines, oldest first.
func (s *State) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *State) ClearLines() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}
