package ui

// lineHistory is the Up/Down recall list. It keeps every submitted line,
// including ones the dispatcher rejected.
type lineHistory struct {
	lines []string
	limit int
	// pos indexes lines while browsing; len(lines) means the draft.
	pos   int
	draft string
}

func newLineHistory(limit int) *lineHistory {
	if limit <= 0 {
		limit = 500
	}
	return &lineHistory{limit: limit}
}

func (h *lineHistory) add(line string) {
	if line == "" {
		return
	}
	if n := len(h.lines); n == 0 || h.lines[n-1] != line {
		h.lines = append(h.lines, line)
		if len(h.lines) > h.limit {
			h.lines = h.lines[len(h.lines)-h.limit:]
		}
	}
	h.pos = len(h.lines)
	h.draft = ""
}

// prev steps back from current, remembering it as the draft when browsing
// starts.
func (h *lineHistory) prev(current string) (string, bool) {
	if h.pos == 0 {
		return "", false
	}
	if h.pos == len(h.lines) {
		h.draft = current
	}
	h.pos--
	return h.lines[h.pos], true
}

func (h *lineHistory) next() (string, bool) {
	if h.pos >= len(h.lines) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.lines) {
		return h.draft, true
	}
	return h.lines[h.pos], true
}

func (h *lineHistory) reset() {
	h.pos = len(h.lines)
	h.draft = ""
}
