package schema

import "encoding/json"

// IPC message kinds emitted by the player.
const (
	IPCEventLogMessage     = "log-message"
	IPCEventPropertyChange = "property-change"
	IPCEventClientMessage  = "client-message"
	IPCEventShutdown       = "shutdown"
)

// IPCSuccess is the error field value of a successful IPC response.
const IPCSuccess = "success"

// IPCRequest is one command sent on the player's JSON IPC socket.
type IPCRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
	Async     bool  `json:"async,omitempty"`
}

// IPCMessage is one line read from the socket: either a response to a
// request (RequestID set) or an asynchronous event (Event set).
type IPCMessage struct {
	Event     string          `json:"event,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`

	// Observed property fields (property-change).
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`

	// Log fields (log-message).
	Prefix string `json:"prefix,omitempty"`
	Level  string `json:"level,omitempty"`
	Text   string `json:"text,omitempty"`

	// Script message arguments (client-message).
	Args []string `json:"args,omitempty"`
}

// IsResponse reports whether the message answers a pending request.
func (m IPCMessage) IsResponse() bool {
	return m.Event == "" && m.RequestID != 0
}

// LogEvent converts a log-message event to its typed form.
func (m IPCMessage) LogEvent() LogEvent {
	return LogEvent{
		Prefix: m.Prefix,
		Level:  Severity(m.Level),
		Text:   m.Text,
	}
}
