package console

import (
	"unicode"
	"unicode/utf8"
)

// isCont reports whether b is a UTF-8 continuation byte (0x80-0xBF).
func isCont(b byte) bool {
	return b&0xc0 == 0x80
}

// nextBoundary returns the first codepoint boundary after pos, or len(text)
// when pos is already at the end. Unexpected continuation-byte runs are
// stepped over best-effort.
func nextBoundary(text []byte, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	if pos < 0 {
		pos = 0
	}
	pos++
	for pos < len(text) && isCont(text[pos]) {
		pos++
	}
	return pos
}

// prevBoundary returns the last codepoint boundary before pos, or 0 when
// pos is already at the start.
func prevBoundary(text []byte, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	pos--
	for pos > 0 && isCont(text[pos]) {
		pos--
	}
	return pos
}

// lineBuffer owns the line being edited. The cursor is a byte offset into
// text and always sits on a codepoint boundary: 0 <= cursor <= len(text).
type lineBuffer struct {
	text   []byte
	cursor int
}

func (b *lineBuffer) String() string {
	return string(b.text)
}

func (b *lineBuffer) Len() int {
	return len(b.text)
}

// Before returns the text left of the cursor.
func (b *lineBuffer) Before() string {
	return string(b.text[:b.cursor])
}

func (b *lineBuffer) Clear() bool {
	if len(b.text) == 0 && b.cursor == 0 {
		return false
	}
	b.text = nil
	b.cursor = 0
	return true
}

// Set replaces the buffer content and clamps the cursor to the nearest
// boundary at or before the requested byte offset.
func (b *lineBuffer) Set(text string, cursor int) {
	b.text = []byte(text)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(b.text) {
		cursor = len(b.text)
	}
	for cursor > 0 && cursor < len(b.text) && isCont(b.text[cursor]) {
		cursor--
	}
	b.cursor = cursor
}

// Insert places text at the cursor. When overwrite is set the codepoint
// under the cursor is replaced instead of shifting the tail.
func (b *lineBuffer) Insert(text string, overwrite bool) bool {
	if text == "" {
		return false
	}
	tail := b.cursor
	if overwrite && b.cursor < len(b.text) {
		tail = nextBoundary(b.text, b.cursor)
	}
	out := make([]byte, 0, len(b.text)+len(text))
	out = append(out, b.text[:b.cursor]...)
	out = append(out, text...)
	out = append(out, b.text[tail:]...)
	b.text = out
	b.cursor += len(text)
	return true
}

// DeleteBefore removes the codepoint left of the cursor.
func (b *lineBuffer) DeleteBefore() bool {
	if b.cursor <= 0 {
		return false
	}
	start := prevBoundary(b.text, b.cursor)
	b.text = append(b.text[:start], b.text[b.cursor:]...)
	b.cursor = start
	return true
}

// DeleteAfter removes the codepoint under the cursor.
func (b *lineBuffer) DeleteAfter() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	end := nextBoundary(b.text, b.cursor)
	b.text = append(b.text[:b.cursor], b.text[end:]...)
	return true
}

// DeleteWordBack removes from the start of the current or previous word up
// to the cursor.
func (b *lineBuffer) DeleteWordBack() bool {
	start := b.wordStart()
	if start >= b.cursor {
		return false
	}
	b.text = append(b.text[:start], b.text[b.cursor:]...)
	b.cursor = start
	return true
}

// DeleteWordForward removes from the cursor to the end of the next word.
func (b *lineBuffer) DeleteWordForward() bool {
	end := b.wordEnd()
	if end <= b.cursor {
		return false
	}
	b.text = append(b.text[:b.cursor], b.text[end:]...)
	return true
}

// DeleteToStart removes everything left of the cursor.
func (b *lineBuffer) DeleteToStart() bool {
	if b.cursor <= 0 {
		return false
	}
	b.text = append([]byte(nil), b.text[b.cursor:]...)
	b.cursor = 0
	return true
}

// DeleteToEnd removes everything from the cursor to the end of the line.
func (b *lineBuffer) DeleteToEnd() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.text = b.text[:b.cursor]
	return true
}

func (b *lineBuffer) MoveLeft() bool {
	if b.cursor <= 0 {
		return false
	}
	b.cursor = prevBoundary(b.text, b.cursor)
	return true
}

func (b *lineBuffer) MoveRight() bool {
	if b.cursor >= len(b.text) {
		return false
	}
	b.cursor = nextBoundary(b.text, b.cursor)
	return true
}

func (b *lineBuffer) MoveStart() bool {
	if b.cursor == 0 {
		return false
	}
	b.cursor = 0
	return true
}

func (b *lineBuffer) MoveEnd() bool {
	if b.cursor == len(b.text) {
		return false
	}
	b.cursor = len(b.text)
	return true
}

func (b *lineBuffer) MoveWordLeft() bool {
	start := b.wordStart()
	if start == b.cursor {
		return false
	}
	b.cursor = start
	return true
}

func (b *lineBuffer) MoveWordRight() bool {
	end := b.wordEnd()
	if end == b.cursor {
		return false
	}
	b.cursor = end
	return true
}

// wordStart finds the start of the current or previous run of
// non-whitespace before the cursor.
func (b *lineBuffer) wordStart() int {
	i := b.cursor
	for i > 0 {
		r, size := utf8.DecodeLastRune(b.text[:i])
		if !unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	for i > 0 {
		r, size := utf8.DecodeLastRune(b.text[:i])
		if unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	return i
}

// wordEnd finds the position just past the next run of non-whitespace
// after the cursor.
func (b *lineBuffer) wordEnd() int {
	i := b.cursor
	for i < len(b.text) {
		r, size := utf8.DecodeRune(b.text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	for i < len(b.text) {
		r, size := utf8.DecodeRune(b.text[i:])
		if unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
