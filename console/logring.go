package console

import "github.com/danbezerra/mpv/schema"

// logCapacity bounds the diagnostic ring; insertion beyond it evicts the
// oldest entry.
const logCapacity = 100

// logStyle tags a log entry with its severity-derived display style.
type logStyle int

const (
	styleInfo logStyle = iota
	styleWarn
	styleError
	styleFatal
	styleVerbose
	styleDebug
)

// styleForSeverity is the static severity-to-style mapping. Entries below
// the configured verbosity never reach the ring; the collaborator drops
// them upstream.
func styleForSeverity(level schema.Severity) logStyle {
	switch level {
	case schema.SeverityFatal:
		return styleFatal
	case schema.SeverityError:
		return styleError
	case schema.SeverityWarn:
		return styleWarn
	case schema.SeverityVerbose, schema.SeverityStatus:
		return styleVerbose
	case schema.SeverityDebug, schema.SeverityTrace:
		return styleDebug
	default:
		return styleInfo
	}
}

// logEntry is one diagnostic line with its display style.
type logEntry struct {
	style logStyle
	text  string
}

// logRing is a bounded FIFO of recent diagnostic lines.
type logRing struct {
	entries []logEntry
	max     int
}

func newLogRing(max int) *logRing {
	if max <= 0 {
		max = logCapacity
	}
	return &logRing{max: max}
}

// Append adds an entry, evicting the oldest beyond capacity.
func (r *logRing) Append(style logStyle, text string) {
	r.entries = append(r.entries, logEntry{style: style, text: text})
	if len(r.entries) > r.max {
		trim := len(r.entries) - r.max
		r.entries = append([]logEntry(nil), r.entries[trim:]...)
	}
}

// Tail returns the most recent n entries, oldest first.
func (r *logRing) Tail(n int) []logEntry {
	if n <= 0 || len(r.entries) == 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]logEntry, n)
	copy(out, r.entries[len(r.entries)-n:])
	return out
}

func (r *logRing) Len() int {
	return len(r.entries)
}

// Compact reallocates the backing slice at exact size, releasing the
// capacity retained by prior growth.
func (r *logRing) Compact() {
	if len(r.entries) == 0 {
		r.entries = nil
		return
	}
	r.entries = append(make([]logEntry, 0, len(r.entries)), r.entries...)
}
