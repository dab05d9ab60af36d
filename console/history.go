package console

const defaultHistoryMax = 200

// history is an ordered log of submitted lines. Positions are 0-based;
// pos == len(entries) denotes the live (uncommitted) line.
type history struct {
	entries []string
	pos     int
	dedup   bool
	max     int
}

func newHistory(dedup bool, max int) *history {
	if max <= 0 {
		max = defaultHistoryMax
	}
	return &history{dedup: dedup, max: max}
}

// Add appends entry. With dedup enabled the most recent textually
// identical entry is removed first, so the newest duplicate wins position.
func (h *history) Add(entry string) {
	if entry == "" {
		return
	}
	if h.dedup {
		for i := len(h.entries) - 1; i >= 0; i-- {
			if h.entries[i] == entry {
				h.entries = append(h.entries[:i], h.entries[i+1:]...)
				break
			}
		}
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.max {
		trim := len(h.entries) - h.max
		h.entries = append([]string(nil), h.entries[trim:]...)
		h.pos -= trim
		if h.pos < 0 {
			h.pos = 0
		}
	}
}

// Goto moves to pos, clamped into [0, len(entries)]. Leaving the live
// position with a non-empty line that does not repeat the newest entry
// first commits that line via Add, so it survives navigation. Returns the
// text to load and whether the position changed.
func (h *history) Goto(pos int, live string) (string, bool) {
	lenBefore := len(h.entries)
	if pos > lenBefore {
		pos = lenBefore
	}
	if pos < 0 {
		pos = 0
	}
	old := h.pos
	if pos == old {
		return "", false
	}
	h.pos = pos
	if old == lenBefore && live != "" &&
		(lenBefore == 0 || h.entries[lenBefore-1] != live) {
		h.Add(live)
	}
	if h.pos >= len(h.entries) {
		h.pos = len(h.entries)
		return "", true
	}
	return h.entries[h.pos], true
}

// Move navigates by delta relative to the current position.
func (h *history) Move(delta int, live string) (string, bool) {
	return h.Goto(h.pos+delta, live)
}

// ResetToLive points the position at the live line.
func (h *history) ResetToLive() {
	h.pos = len(h.entries)
}

// AtLive reports whether the position is the live line.
func (h *history) AtLive() bool {
	return h.pos >= len(h.entries)
}

// Entries returns a copy of the stored lines, oldest first.
func (h *history) Entries() []string {
	return append([]string(nil), h.entries...)
}

// SetEntries replaces the stored lines, trimming to the configured bound,
// and resets the position to the live line.
func (h *history) SetEntries(entries []string) {
	if len(entries) > h.max {
		entries = entries[len(entries)-h.max:]
	}
	h.entries = append([]string(nil), entries...)
	h.pos = len(h.entries)
}
