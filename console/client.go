package console

import (
	"context"

	"github.com/danbezerra/mpv/schema"
)

// Client is the player collaborator the console talks to. All calls are
// synchronous; candidate enumerations are queried live on every use so
// completion reflects current player state.
type Client interface {
	// Command submits a command as an argument vector.
	Command(ctx context.Context, args ...any) error
	// CommandString submits a raw command line verbatim.
	CommandString(ctx context.Context, line string) error
	// GetProperty returns the string form of a property value.
	GetProperty(ctx context.Context, name string) (string, error)
	// CommandList enumerates available commands with argument metadata.
	CommandList(ctx context.Context) ([]schema.CommandDef, error)
	// Properties enumerates settable property names, including
	// per-option sub-fields.
	Properties(ctx context.Context) ([]string, error)
	// ChoiceValues enumerates the valid discrete values of a
	// choice-typed property.
	ChoiceValues(ctx context.Context, property string) ([]string, error)
	// ProfileNames enumerates configuration profile names.
	ProfileNames(ctx context.Context) ([]string, error)
	// ClipboardText returns clipboard contents, or "" on failure.
	ClipboardText(ctx context.Context) string
	// SetOverlay replaces the console's on-screen overlay with ASS data;
	// empty data removes the overlay.
	SetOverlay(ctx context.Context, data string) error
}
