package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/danbezerra/mpv/schema"
)

func newTestConsole(client Client) *Console {
	c := New(client, Options{HistoryDedup: true})
	c.Enable()
	return c
}

func ringTexts(c *Console) []string {
	var out []string
	for _, entry := range c.ring.Tail(c.ring.Len()) {
		out = append(out, entry.text)
	}
	return out
}

func typeLine(c *Console, text string) {
	for _, r := range text {
		c.handleInput(Input{Action: ActionText, Text: string(r)})
	}
}

func TestEnableDisableIdempotent(t *testing.T) {
	c := New(&stubClient{}, Options{})
	if c.Active() {
		t.Fatalf("expected new console hidden")
	}
	c.Enable()
	c.Enable()
	if !c.Active() {
		t.Fatalf("expected console shown")
	}
	c.suggestions = []string{"seek"}
	c.Disable()
	c.Disable()
	if c.Active() {
		t.Fatalf("expected console hidden")
	}
	if c.suggestions != nil {
		t.Fatalf("expected suggestions dropped on disable")
	}
}

func TestHiddenConsoleIgnoresInput(t *testing.T) {
	c := New(&stubClient{}, Options{})
	c.handleInput(Input{Action: ActionText, Text: "x"})
	if c.buf.Len() != 0 {
		t.Fatalf("expected input ignored while hidden, buffer %q", c.buf.String())
	}
}

func TestSubmitForwardsVerbatimAndClears(t *testing.T) {
	var sent string
	c := newTestConsole(&stubClient{
		commandStringFn: func(_ context.Context, line string) error {
			sent = line
			return nil
		},
	})
	typeLine(c, "seek 10 relative")
	c.handleInput(Input{Action: ActionSubmit})
	if sent != "seek 10 relative" {
		t.Fatalf("expected line forwarded verbatim, got %q", sent)
	}
	if c.buf.Len() != 0 {
		t.Fatalf("expected buffer cleared after submit, got %q", c.buf.String())
	}
	if got := c.hist.Entries(); len(got) != 1 || got[0] != "seek 10 relative" {
		t.Fatalf("expected line in history, got %v", got)
	}
}

func TestSubmitBlankLineDoesNothing(t *testing.T) {
	called := false
	c := newTestConsole(&stubClient{
		commandStringFn: func(context.Context, string) error {
			called = true
			return nil
		},
	})
	typeLine(c, "   ")
	c.handleInput(Input{Action: ActionSubmit})
	if called {
		t.Fatalf("expected blank line not forwarded")
	}
	if len(c.hist.Entries()) != 0 {
		t.Fatalf("expected blank line not in history, got %v", c.hist.Entries())
	}
}

func TestSubmitErrorLandsInRing(t *testing.T) {
	c := newTestConsole(&stubClient{
		commandStringFn: func(context.Context, string) error {
			return errInvalidCommand{}
		},
	})
	typeLine(c, "bogus")
	c.handleInput(Input{Action: ActionSubmit})
	texts := ringTexts(c)
	if len(texts) == 0 || texts[len(texts)-1] != "invalid command" {
		t.Fatalf("expected command error in ring, got %v", texts)
	}
	if c.buf.Len() != 0 {
		t.Fatalf("expected buffer cleared even on error")
	}
}

type errInvalidCommand struct{}

func (errInvalidCommand) Error() string { return "invalid command" }

func TestHelpUnknownTopic(t *testing.T) {
	c := newTestConsole(commandStub("seek", "quit"))
	typeLine(c, "help nope")
	c.handleInput(Input{Action: ActionSubmit})
	texts := ringTexts(c)
	if len(texts) == 0 || !strings.Contains(texts[len(texts)-1], `no command matches "nope"`) {
		t.Fatalf("expected no-match line, got %v", texts)
	}
}

func TestHelpListsCommands(t *testing.T) {
	c := newTestConsole(commandStub("seek", "quit"))
	typeLine(c, "help")
	c.handleInput(Input{Action: ActionSubmit})
	joined := strings.Join(ringTexts(c), "\n")
	if !strings.Contains(joined, "seek") || !strings.Contains(joined, "quit") {
		t.Fatalf("expected command names listed, got %q", joined)
	}
}

func TestHelpDescribesArguments(t *testing.T) {
	c := newTestConsole(&stubClient{
		commandListFn: func(context.Context) ([]schema.CommandDef, error) {
			return []schema.CommandDef{{
				Name: "seek",
				Args: []schema.CommandArg{
					{Name: "target", Type: "Double"},
					{Name: "flags", Type: "Flags", Optional: true},
				},
			}}, nil
		},
	})
	typeLine(c, "help seek")
	c.handleInput(Input{Action: ActionSubmit})
	joined := strings.Join(ringTexts(c), "\n")
	if !strings.Contains(joined, "target (Double)") {
		t.Fatalf("expected argument description, got %q", joined)
	}
	if !strings.Contains(joined, "flags (Flags) (optional)") {
		t.Fatalf("expected optional flag noted, got %q", joined)
	}
}

func TestLogFilterDropsOwnAndTrace(t *testing.T) {
	c := newTestConsole(&stubClient{})
	c.handleLog(schema.LogEvent{Prefix: consoleLogPrefix, Level: schema.SeverityInfo, Text: "self"})
	c.handleLog(schema.LogEvent{Prefix: overflowLogPrefix, Level: schema.SeverityWarn, Text: "lost"})
	c.handleLog(schema.LogEvent{Prefix: "cplayer", Level: schema.SeverityTrace, Text: "noise"})
	c.handleLog(schema.LogEvent{Prefix: "cplayer", Level: schema.SeverityInfo, Text: "Playing: x"})
	texts := ringTexts(c)
	if len(texts) != 1 || texts[0] != "[cplayer] Playing: x" {
		t.Fatalf("expected only the player line, got %v", texts)
	}
}

func TestLogsBufferedWhileHidden(t *testing.T) {
	c := New(&stubClient{}, Options{})
	c.handleLog(schema.LogEvent{Prefix: "cplayer", Level: schema.SeverityInfo, Text: "early"})
	if c.ring.Len() != 1 {
		t.Fatalf("expected event buffered while hidden, ring len %d", c.ring.Len())
	}
}

func TestClientMessageTypeReveals(t *testing.T) {
	c := New(&stubClient{}, Options{})
	c.handleEvent(Event{Message: []string{"type", "seek ", "5"}})
	if !c.Active() {
		t.Fatalf("expected console revealed")
	}
	if c.buf.String() != "seek " || c.buf.cursor != 5 {
		t.Fatalf("expected prefilled line, got %q cursor %d", c.buf.String(), c.buf.cursor)
	}
}

func TestPaste(t *testing.T) {
	clip := "from clipboard"
	c := newTestConsole(&stubClient{
		clipboardFn: func(context.Context) string { return clip },
	})
	c.handleInput(Input{Action: ActionPaste})
	if c.buf.String() != clip {
		t.Fatalf("expected clipboard inserted, got %q", c.buf.String())
	}
	clip = ""
	c.handleInput(Input{Action: ActionPaste})
	if c.buf.String() != "from clipboard" {
		t.Fatalf("expected empty clipboard to be a no-op, got %q", c.buf.String())
	}
}

func TestCompletionSuggestionsClearedByEdit(t *testing.T) {
	c := newTestConsole(commandStub("set", "set-property", "seek"))
	typeLine(c, "se")
	c.handleInput(Input{Action: ActionComplete})
	if len(c.suggestions) != 3 {
		t.Fatalf("expected pending suggestions, got %v", c.suggestions)
	}
	c.handleInput(Input{Action: ActionText, Text: "e"})
	if c.suggestions != nil {
		t.Fatalf("expected suggestions cleared on edit, got %v", c.suggestions)
	}
}

func TestCompletionReplacesWord(t *testing.T) {
	c := newTestConsole(commandStub("volume"))
	typeLine(c, "vol")
	c.handleInput(Input{Action: ActionComplete})
	if c.buf.String() != "volume " {
		t.Fatalf("expected completed line, got %q", c.buf.String())
	}
	if c.buf.cursor != len("volume ") {
		t.Fatalf("expected cursor after completion, got %d", c.buf.cursor)
	}
}

func TestHistoryNavigationResetsOverwrite(t *testing.T) {
	c := newTestConsole(&stubClient{})
	typeLine(c, "one")
	c.handleInput(Input{Action: ActionSubmit})
	c.handleInput(Input{Action: ActionToggleInsert})
	if !c.overwrite {
		t.Fatalf("expected overwrite mode on")
	}
	c.handleInput(Input{Action: ActionHistoryPrev})
	if c.buf.String() != "one" {
		t.Fatalf("expected history entry loaded, got %q", c.buf.String())
	}
	if c.overwrite {
		t.Fatalf("expected overwrite mode reset by history load")
	}
}

func TestHistoryFirstAndLast(t *testing.T) {
	c := newTestConsole(&stubClient{})
	for _, line := range []string{"one", "two", "three"} {
		typeLine(c, line)
		c.handleInput(Input{Action: ActionSubmit})
	}
	c.handleInput(Input{Action: ActionHistoryFirst})
	if c.buf.String() != "one" {
		t.Fatalf("expected oldest entry, got %q", c.buf.String())
	}
	c.handleInput(Input{Action: ActionHistoryLast})
	if c.buf.String() != "" {
		t.Fatalf("expected live line restored, got %q", c.buf.String())
	}
}

func TestTerminalModeRendersFrame(t *testing.T) {
	var out bytes.Buffer
	c := New(&stubClient{}, Options{Terminal: &out})
	c.Enable()
	typeLine(c, "seek")
	c.redrawTick()
	frame := out.String()
	if !strings.Contains(frame, "> seek") {
		t.Fatalf("expected prompt and line in frame, got %q", frame)
	}
	if !strings.Contains(frame, ansiInvert) {
		t.Fatalf("expected inverted cursor cell in frame, got %q", frame)
	}
}

func TestTerminalSessionWrapsAltScreen(t *testing.T) {
	var out bytes.Buffer
	c := New(&stubClient{}, Options{Terminal: &out})
	inputs := make(chan Input)
	close(inputs)
	if err := c.Run(context.Background(), inputs, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "\x1b[?1049h") {
		t.Fatalf("expected alternate screen entered first, got %q", got)
	}
	if !strings.HasSuffix(got, "\x1b[?1049l\x1b[?25h") {
		t.Fatalf("expected primary screen restored last, got %q", got)
	}
}

func TestSubmitEchoesLine(t *testing.T) {
	c := newTestConsole(&stubClient{})
	typeLine(c, "stop")
	c.handleInput(Input{Action: ActionSubmit})
	texts := ringTexts(c)
	if len(texts) == 0 || texts[0] != "> stop" {
		t.Fatalf("expected submitted line echoed, got %v", texts)
	}
}

func TestCloseOrDeleteOnEmptyHides(t *testing.T) {
	c := newTestConsole(&stubClient{})
	if exit := c.handleInput(Input{Action: ActionCloseOrDelete}); exit {
		t.Fatalf("expected overlay console to hide, not exit")
	}
	if c.Active() {
		t.Fatalf("expected console hidden after close on empty line")
	}
}
