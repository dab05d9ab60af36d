package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/danbezerra/mpv/schema"
)

// consoleLogPrefix tags log lines the console emits itself; incoming
// events carrying it are dropped to avoid feedback.
const consoleLogPrefix = "console"

// overflowLogPrefix marks the player's "messages were dropped" notice,
// which would otherwise flood the ring during bursts.
const overflowLogPrefix = "overflow"

// redrawInterval is the minimum spacing between successive renders.
// The first redraw after an idle period is immediate; further requests
// within the interval coalesce into one render on the next tick.
const redrawInterval = 50 * time.Millisecond

// Size is a terminal surface in character cells.
type Size struct {
	Width  int
	Height int
}

// Event is one occurrence relevant to the console: a player-side event
// or a terminal resize. Exactly one field is set.
type Event struct {
	Log      *schema.LogEvent
	Geometry *schema.Geometry
	Message  []string
	Resize   *Size
	Shutdown bool
}

// Options configures a console session.
type Options struct {
	Prompt       string
	Font         string
	FontSize     int
	HistoryDedup bool
	HistoryMax   int
	LogLines     int

	// Terminal switches the console to plain-text rendering on the
	// given writer instead of ASS overlays through the client.
	Terminal io.Writer
}

// Console is one interactive session against a player. All state is
// owned by the Run goroutine; methods are not safe for concurrent use.
type Console struct {
	client Client
	opts   Options
	screen *screen

	buf         lineBuffer
	hist        *history
	ring        *logRing
	suggestions []string
	overwrite   bool
	active      bool
	geom        schema.Geometry

	width  int
	height int

	redrawTimer *time.Timer
	timerArmed  bool
	pending     bool

	ctx context.Context
}

// New builds a console session around a player client.
func New(client Client, opts Options) *Console {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 16
	}
	c := &Console{
		client: client,
		opts:   opts,
		hist:   newHistory(opts.HistoryDedup, opts.HistoryMax),
		ring:   newLogRing(opts.LogLines),
		geom:   schema.Geometry{Width: 1280, Height: 720, Scale: 1},
		ctx:    context.Background(),
	}
	if opts.Terminal != nil {
		c.screen = newScreen(opts.Terminal)
		c.width = 80
		c.height = 24
	}
	c.redrawTimer = time.NewTimer(time.Hour)
	if !c.redrawTimer.Stop() {
		<-c.redrawTimer.C
	}
	return c
}

func (c *Console) log() pslog.Logger {
	ctx := c.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return pslog.Ctx(ctx).With("component", "console")
}

// SetSize updates the terminal dimensions for plain-text rendering.
func (c *Console) SetSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	c.width = width
	c.height = height
	c.requestRedraw()
}

// History exposes the committed entries for persistence on detach.
func (c *Console) History() []string {
	return c.hist.Entries()
}

// SetHistory seeds the store, typically from a persisted snapshot.
func (c *Console) SetHistory(entries []string) {
	c.hist.SetEntries(entries)
}

// Active reports whether the console is currently shown.
func (c *Console) Active() bool {
	return c.active
}

// Enable shows the console. Enabling an enabled console is a no-op.
func (c *Console) Enable() {
	if c.active {
		return
	}
	c.active = true
	c.log().Debug("console enabled")
	c.requestRedraw()
}

// Disable hides the console. The typed line and history survive; the
// suggestion set is dropped and the ring releases spare capacity.
func (c *Console) Disable() {
	if !c.active {
		return
	}
	c.active = false
	c.suggestions = nil
	c.ring.Compact()
	c.clearDisplay()
	c.log().Debug("console disabled")
}

// Toggle flips between shown and hidden.
func (c *Console) Toggle() {
	if c.active {
		c.Disable()
		return
	}
	c.Enable()
}

// Show reveals the console pre-populated with text and a byte cursor
// offset, for script-driven prompts.
func (c *Console) Show(text string, cursor int) {
	c.buf.Set(text, cursor)
	c.suggestions = nil
	c.overwrite = false
	c.Enable()
	c.requestRedraw()
}

func (c *Console) clearDisplay() {
	if c.screen != nil {
		if err := c.screen.Clear(); err != nil {
			c.log().Warn("terminal clear failed", "err", err)
		}
		return
	}
	if err := c.client.SetOverlay(c.ctx, ""); err != nil {
		c.log().Warn("overlay clear failed", "err", err)
	}
}

// Run drives the session until the context ends, the input stream
// closes, or the player shuts down. Inputs, events and the redraw timer
// are serviced by this single goroutine.
func (c *Console) Run(ctx context.Context, inputs <-chan Input, events <-chan Event) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.log().Info("console session start")
	if c.screen != nil {
		c.screen.EnterAltScreen()
		defer c.screen.ExitAltScreen()
		c.requestRedraw()
	}
	defer c.clearDisplay()

	for {
		select {
		case <-ctx.Done():
			return nil
		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			if c.handleInput(in) {
				return nil
			}
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Shutdown {
				c.log().Info("player shut down")
				return nil
			}
			c.handleEvent(ev)
		case <-c.redrawTimer.C:
			c.redrawTick()
		}
	}
}

func (c *Console) handleEvent(ev Event) {
	switch {
	case ev.Log != nil:
		c.handleLog(*ev.Log)
	case ev.Geometry != nil:
		c.geom = *ev.Geometry
		c.requestRedraw()
	case ev.Resize != nil:
		c.SetSize(ev.Resize.Width, ev.Resize.Height)
	case len(ev.Message) > 0:
		c.handleClientMessage(ev.Message)
	}
}

func (c *Console) handleClientMessage(args []string) {
	switch args[0] {
	case "enable":
		c.Enable()
	case "disable":
		c.Disable()
	case "toggle":
		c.Toggle()
	case "type":
		text := ""
		if len(args) > 1 {
			text = args[1]
		}
		cursor := len(text)
		if len(args) > 2 {
			if _, err := fmt.Sscanf(args[2], "%d", &cursor); err != nil {
				cursor = len(text)
			}
		}
		c.Show(text, cursor)
	}
}

// handleLog filters and buffers one player log event. While the console
// is hidden the entry is kept silently for the next reveal.
func (c *Console) handleLog(ev schema.LogEvent) {
	if ev.Prefix == consoleLogPrefix || ev.Prefix == overflowLogPrefix {
		return
	}
	if ev.Level == schema.SeverityTrace {
		return
	}
	text := strings.TrimRight(ev.Text, "\n")
	if text == "" {
		return
	}
	c.ring.Append(styleForSeverity(ev.Level), fmt.Sprintf("[%s] %s", ev.Prefix, text))
	if c.active {
		c.requestRedraw()
	}
}

// handleInput applies one decoded key. Returns true when the session
// should end. While hidden, nothing is dispatched.
func (c *Console) handleInput(in Input) bool {
	if !c.active {
		return false
	}
	changed := false
	keepSuggestions := false
	switch in.Action {
	case ActionText:
		changed = c.buf.Insert(in.Text, c.overwrite)
	case ActionSubmit:
		c.handleSubmit()
		changed = true
	case ActionBackspace:
		changed = c.buf.DeleteBefore()
	case ActionDelete:
		changed = c.buf.DeleteAfter()
	case ActionDeleteWordBack:
		changed = c.buf.DeleteWordBack()
	case ActionDeleteWordForward:
		changed = c.buf.DeleteWordForward()
	case ActionDeleteToStart:
		changed = c.buf.DeleteToStart()
	case ActionDeleteToEnd:
		changed = c.buf.DeleteToEnd()
	case ActionMoveLeft:
		changed = c.buf.MoveLeft()
	case ActionMoveRight:
		changed = c.buf.MoveRight()
	case ActionMoveWordLeft:
		changed = c.buf.MoveWordLeft()
	case ActionMoveWordRight:
		changed = c.buf.MoveWordRight()
	case ActionMoveStart:
		changed = c.buf.MoveStart()
	case ActionMoveEnd:
		changed = c.buf.MoveEnd()
	case ActionHistoryPrev:
		changed = c.loadHistory(-1)
	case ActionHistoryNext:
		changed = c.loadHistory(1)
	case ActionHistoryFirst:
		changed = c.gotoHistory(0)
	case ActionHistoryLast:
		changed = c.gotoHistory(len(c.hist.Entries()))
	case ActionComplete:
		c.handleComplete()
		keepSuggestions = true
		changed = true
	case ActionToggleInsert:
		c.overwrite = !c.overwrite
	case ActionPaste:
		text := c.client.ClipboardText(c.ctx)
		if text != "" {
			changed = c.buf.Insert(text, false)
		}
	case ActionClearLine:
		c.buf.Clear()
		changed = true
	case ActionClose:
		if c.screen != nil {
			return true
		}
		c.Disable()
		return false
	case ActionCloseOrDelete:
		if c.buf.Len() == 0 {
			if c.screen != nil {
				return true
			}
			c.Disable()
			return false
		}
		changed = c.buf.DeleteAfter()
	}
	if changed {
		if !keepSuggestions {
			c.suggestions = nil
		}
		c.requestRedraw()
	}
	return false
}

// handleSubmit commits the line: it always lands in history and the
// buffer is always cleared, even when the player rejects the command.
func (c *Console) handleSubmit() {
	raw := c.buf.String()
	c.buf.Clear()
	c.suggestions = nil
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	c.hist.Add(raw)
	c.hist.ResetToLive()
	c.ring.Append(styleInfo, c.opts.Prompt+raw)

	fields := strings.Fields(line)
	if fields[0] == "help" {
		topic := ""
		if len(fields) > 1 {
			topic = fields[1]
		}
		c.handleHelp(topic)
		return
	}
	if err := c.client.CommandString(c.ctx, raw); err != nil {
		c.log().Warn("command failed", "input", line, "err", err)
		c.ring.Append(styleError, err.Error())
	}
}

// handleHelp answers the built-in help command from the player's own
// command metadata.
func (c *Console) handleHelp(topic string) {
	defs, err := c.client.CommandList(c.ctx)
	if err != nil {
		c.log().Warn("command list unavailable", "err", err)
		c.ring.Append(styleError, fmt.Sprintf("command list unavailable: %v", err))
		return
	}
	if topic == "" {
		names := make([]string, 0, len(defs))
		for _, def := range defs {
			names = append(names, def.Name)
		}
		c.ring.Append(styleInfo, "Available commands:")
		for _, row := range formatTable(names, c.contentWidth(), len(names)) {
			c.ring.Append(styleInfo, "  "+row)
		}
		c.ring.Append(styleInfo, `Use "help <command>" for a command's arguments.`)
		return
	}
	for _, def := range defs {
		if def.Name != topic {
			continue
		}
		c.ring.Append(styleInfo, fmt.Sprintf("Command %q", def.Name))
		for _, arg := range def.Args {
			line := fmt.Sprintf("  %s (%s)", arg.Name, arg.Type)
			if arg.Optional {
				line += " (optional)"
			}
			if arg.Variadic {
				line += "..."
			}
			c.ring.Append(styleInfo, line)
		}
		return
	}
	c.ring.Append(styleError, fmt.Sprintf("no command matches %q", topic))
}

func (c *Console) handleComplete() {
	res, ok := completeLine(c.ctx, c.client, c.buf.Before())
	if !ok {
		return
	}
	text := c.buf.String()
	rest := text[c.buf.cursor:]
	newText := text[:res.start] + res.insert + rest
	c.buf.Set(newText, res.start+len(res.insert))
	c.suggestions = res.suggestions
}

// loadHistory replaces the line with a neighboring history entry; the
// current draft is committed by the store's safety net.
func (c *Console) loadHistory(delta int) bool {
	text, ok := c.hist.Move(delta, c.buf.String())
	if !ok {
		return false
	}
	c.buf.Set(text, len(text))
	c.overwrite = false
	return true
}

func (c *Console) gotoHistory(pos int) bool {
	text, ok := c.hist.Goto(pos, c.buf.String())
	if !ok {
		return false
	}
	c.buf.Set(text, len(text))
	c.overwrite = false
	return true
}

// requestRedraw renders immediately after an idle period, then holds
// further renders until the interval timer fires.
func (c *Console) requestRedraw() {
	if !c.active {
		return
	}
	if c.timerArmed {
		c.pending = true
		return
	}
	c.render()
	c.redrawTimer.Reset(redrawInterval)
	c.timerArmed = true
}

// redrawTick fires on the interval timer: flush a coalesced redraw and
// re-arm, or disarm when nothing is pending.
func (c *Console) redrawTick() {
	if !c.pending {
		c.timerArmed = false
		return
	}
	c.pending = false
	c.render()
	c.redrawTimer.Reset(redrawInterval)
}

func (c *Console) contentWidth() int {
	if c.screen != nil {
		return c.width
	}
	cell := c.opts.FontSize / 2
	if cell < 1 {
		cell = 1
	}
	return c.geom.Columns(cell)
}

func (c *Console) render() {
	if !c.active {
		return
	}
	st := frameState{
		prompt:      c.opts.Prompt,
		line:        c.buf.String(),
		cursor:      c.buf.cursor,
		suggestions: c.suggestions,
		logs:        c.ring.Tail(c.ring.Len()),
	}
	if c.screen != nil {
		if err := c.screen.Render(renderTerminal(st, c.width, c.height)); err != nil {
			c.log().Warn("terminal render failed", "err", err)
		}
		return
	}
	frame := renderOverlay(st, c.geom, renderOptions{Font: c.opts.Font, FontSize: c.opts.FontSize})
	if err := c.client.SetOverlay(c.ctx, frame); err != nil {
		c.log().Warn("overlay update failed", "err", err)
	}
}
