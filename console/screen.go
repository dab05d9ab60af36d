package console

import (
	"io"
	"strings"
)

// screen owns the plain-text output surface. Frames are full redraws;
// the rendered frame carries its own cursor marker, so the real
// terminal cursor stays hidden while a frame is up.
type screen struct {
	out io.Writer
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out}
}

func (s *screen) EnterAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1049h\x1b[H\x1b[2J")
}

func (s *screen) ExitAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1049l\x1b[?25h")
}

func (s *screen) Clear() error {
	_, err := io.WriteString(s.out, "\x1b[H\x1b[2J\x1b[?25h")
	return err
}

func (s *screen) Render(frame string) error {
	var b strings.Builder
	b.WriteString("\x1b[?25l")
	b.WriteString("\x1b[H\x1b[2J")
	b.WriteString(strings.ReplaceAll(frame, "\n", "\r\n"))
	_, err := io.WriteString(s.out, b.String())
	return err
}
