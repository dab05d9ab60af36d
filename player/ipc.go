// Package player speaks mpv's JSON IPC protocol over a unix socket and
// adapts it to the console's collaborator interface.
package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"

	"github.com/danbezerra/mpv/console"
	"github.com/danbezerra/mpv/schema"
)

// overlayID is the osd-overlay slot the console owns.
const overlayID = 0

// eventBacklog bounds the outbound event channel. The player keeps
// emitting while a frame renders, so excess events are dropped rather
// than stalling the socket reader.
const eventBacklog = 64

// IPC is a connection to a player's JSON IPC socket. It implements
// console.Client. Requests may be issued from any goroutine; responses
// are correlated by request id.
type IPC struct {
	conn net.Conn

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan schema.IPCMessage
	nextID    atomic.Int64
	observeID atomic.Int64

	events chan console.Event
	closed chan struct{}

	ctx context.Context
}

var _ console.Client = (*IPC)(nil)

// Dial connects to the player socket and starts the reader.
func Dial(ctx context.Context, socket string) (*IPC, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, fmt.Errorf("dial player socket: %w", err)
	}
	return newIPC(ctx, conn), nil
}

func newIPC(ctx context.Context, conn net.Conn) *IPC {
	c := &IPC{
		conn:    conn,
		pending: make(map[int64]chan schema.IPCMessage),
		events:  make(chan console.Event, eventBacklog),
		closed:  make(chan struct{}),
		ctx:     ctx,
	}
	go c.readLoop()
	return c
}

func (c *IPC) log() pslog.Logger {
	return pslog.Ctx(c.ctx).With("component", "ipc")
}

// Events delivers player-side events. The channel closes when the
// connection ends.
func (c *IPC) Events() <-chan console.Event {
	return c.events
}

// Subscribe asks the player for the event streams the console consumes:
// log messages at the given level, geometry changes and script messages.
func (c *IPC) Subscribe(ctx context.Context, logLevel string) error {
	if logLevel == "" {
		logLevel = "info"
	}
	if err := c.Command(ctx, "request_log_messages", logLevel); err != nil {
		return fmt.Errorf("request log messages: %w", err)
	}
	if err := c.ObserveProperty(ctx, "osd-dimensions"); err != nil {
		return fmt.Errorf("observe osd-dimensions: %w", err)
	}
	return nil
}

// ObserveProperty registers a property-change subscription.
func (c *IPC) ObserveProperty(ctx context.Context, name string) error {
	return c.Command(ctx, "observe_property", c.observeID.Add(1), name)
}

// Close tears down the connection and fails all pending requests.
func (c *IPC) Close() error {
	return c.conn.Close()
}

func (c *IPC) readLoop() {
	defer func() {
		close(c.closed)
		c.pendingMu.Lock()
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.pendingMu.Unlock()
		close(c.events)
	}()
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg schema.IPCMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			c.log().Warn("bad ipc line", "err", err)
			continue
		}
		if msg.IsResponse() {
			c.deliver(msg)
			continue
		}
		c.dispatchEvent(msg)
	}
	if err := scanner.Err(); err != nil {
		c.log().Debug("ipc read ended", "err", err)
	}
}

func (c *IPC) deliver(msg schema.IPCMessage) {
	c.pendingMu.Lock()
	ch, ok := c.pending[msg.RequestID]
	if ok {
		delete(c.pending, msg.RequestID)
	}
	c.pendingMu.Unlock()
	if ok {
		ch <- msg
	}
}

func (c *IPC) dispatchEvent(msg schema.IPCMessage) {
	var ev console.Event
	switch msg.Event {
	case schema.IPCEventLogMessage:
		log := msg.LogEvent()
		ev = console.Event{Log: &log}
	case schema.IPCEventPropertyChange:
		if msg.Name != "osd-dimensions" {
			return
		}
		geom, ok := parseGeometry(msg.Data)
		if !ok {
			return
		}
		ev = console.Event{Geometry: &geom}
	case schema.IPCEventClientMessage:
		if len(msg.Args) == 0 {
			return
		}
		ev = console.Event{Message: msg.Args}
	case schema.IPCEventShutdown:
		ev = console.Event{Shutdown: true}
	default:
		return
	}
	select {
	case c.events <- ev:
	default:
		c.log().Debug("event dropped", "event", msg.Event)
	}
}

// osdDimensions mirrors the player's osd-dimensions property.
type osdDimensions struct {
	W  int     `json:"w"`
	H  int     `json:"h"`
	ML int     `json:"ml"`
	MR int     `json:"mr"`
	MT int     `json:"mt"`
	MB int     `json:"mb"`
	AR float64 `json:"aspect"`
}

func parseGeometry(data json.RawMessage) (schema.Geometry, bool) {
	var dims osdDimensions
	if err := json.Unmarshal(data, &dims); err != nil || dims.W <= 0 || dims.H <= 0 {
		return schema.Geometry{}, false
	}
	return schema.Geometry{
		Width:   dims.W,
		Height:  dims.H,
		MarginX: dims.ML,
		MarginY: dims.MB,
		Scale:   1,
	}, true
}

// roundTrip issues one command and waits for its response.
func (c *IPC) roundTrip(ctx context.Context, payload any, id int64) (json.RawMessage, error) {
	ch := make(chan schema.IPCMessage, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	line, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	line = append(line, '\n')
	c.writeMu.Lock()
	_, err = c.conn.Write(line)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, fmt.Errorf("player connection closed")
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("player connection closed")
		}
		if resp.Error != "" && resp.Error != schema.IPCSuccess {
			return nil, fmt.Errorf("player: %s", resp.Error)
		}
		return resp.Data, nil
	}
}

// Command sends one command in array form and discards the result.
func (c *IPC) Command(ctx context.Context, args ...any) error {
	id := c.nextID.Add(1)
	_, err := c.roundTrip(ctx, schema.IPCRequest{Command: args, RequestID: id}, id)
	return err
}

// CommandString forwards a raw input-syntax command line unmodified, so
// the player's own parser decides quoting and statement separators.
func (c *IPC) CommandString(ctx context.Context, line string) error {
	id := c.nextID.Add(1)
	payload := struct {
		Command   string `json:"command"`
		RequestID int64  `json:"request_id"`
	}{Command: line, RequestID: id}
	_, err := c.roundTrip(ctx, payload, id)
	return err
}

func (c *IPC) query(ctx context.Context, out any, args ...any) error {
	id := c.nextID.Add(1)
	data, err := c.roundTrip(ctx, schema.IPCRequest{Command: args, RequestID: id}, id)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetProperty fetches a property's string form.
func (c *IPC) GetProperty(ctx context.Context, name string) (string, error) {
	var value string
	if err := c.query(ctx, &value, "get_property_string", name); err != nil {
		return "", err
	}
	return value, nil
}

// CommandList fetches the player's command metadata.
func (c *IPC) CommandList(ctx context.Context) ([]schema.CommandDef, error) {
	var defs []schema.CommandDef
	if err := c.query(ctx, &defs, "get_property", "command-list"); err != nil {
		return nil, err
	}
	return defs, nil
}

// Properties fetches completable property names: the property list plus
// the per-option sub-properties under options/.
func (c *IPC) Properties(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.query(ctx, &names, "get_property", "property-list"); err != nil {
		return nil, err
	}
	var options []string
	if err := c.query(ctx, &options, "get_property", "options"); err == nil {
		for _, opt := range options {
			names = append(names, "options/"+opt)
		}
	}
	return names, nil
}

// ChoiceValues fetches the valid values of a choice-typed property.
// Flag-typed properties complete as yes/no.
func (c *IPC) ChoiceValues(ctx context.Context, property string) ([]string, error) {
	var info struct {
		Type    string   `json:"type"`
		Choices []string `json:"choices"`
	}
	if err := c.query(ctx, &info, "get_property", "option-info/"+property); err != nil {
		return nil, err
	}
	if info.Type == "Flag" {
		return []string{"no", "yes"}, nil
	}
	return info.Choices, nil
}

// ProfileNames fetches the configured profile names.
func (c *IPC) ProfileNames(ctx context.Context) ([]string, error) {
	var profiles []struct {
		Name string `json:"name"`
	}
	if err := c.query(ctx, &profiles, "get_property", "profile-list"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names, nil
}

// ClipboardText returns the system clipboard via the player, or the
// empty string when unavailable.
func (c *IPC) ClipboardText(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	text, err := c.GetProperty(ctx, "clipboard/text")
	if err != nil {
		c.log().Debug("clipboard unavailable", "err", err)
		return ""
	}
	return text
}

// SetOverlay installs or clears the console's ASS overlay.
func (c *IPC) SetOverlay(ctx context.Context, data string) error {
	if data == "" {
		return c.Command(ctx, "osd-overlay", overlayID, "none", "")
	}
	return c.Command(ctx, "osd-overlay", overlayID, "ass-events", data)
}
