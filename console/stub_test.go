package console

import (
	"context"

	"github.com/danbezerra/mpv/schema"
)

type stubClient struct {
	commandFn       func(ctx context.Context, args ...any) error
	commandStringFn func(ctx context.Context, line string) error
	getPropertyFn   func(ctx context.Context, name string) (string, error)
	commandListFn   func(ctx context.Context) ([]schema.CommandDef, error)
	propertiesFn    func(ctx context.Context) ([]string, error)
	choiceValuesFn  func(ctx context.Context, property string) ([]string, error)
	profileNamesFn  func(ctx context.Context) ([]string, error)
	clipboardFn     func(ctx context.Context) string
	setOverlayFn    func(ctx context.Context, data string) error
}

func (s *stubClient) Command(ctx context.Context, args ...any) error {
	if s.commandFn == nil {
		return nil
	}
	return s.commandFn(ctx, args...)
}

func (s *stubClient) CommandString(ctx context.Context, line string) error {
	if s.commandStringFn == nil {
		return nil
	}
	return s.commandStringFn(ctx, line)
}

func (s *stubClient) GetProperty(ctx context.Context, name string) (string, error) {
	if s.getPropertyFn == nil {
		return "", nil
	}
	return s.getPropertyFn(ctx, name)
}

func (s *stubClient) CommandList(ctx context.Context) ([]schema.CommandDef, error) {
	if s.commandListFn == nil {
		return nil, nil
	}
	return s.commandListFn(ctx)
}

func (s *stubClient) Properties(ctx context.Context) ([]string, error) {
	if s.propertiesFn == nil {
		return nil, nil
	}
	return s.propertiesFn(ctx)
}

func (s *stubClient) ChoiceValues(ctx context.Context, property string) ([]string, error) {
	if s.choiceValuesFn == nil {
		return nil, nil
	}
	return s.choiceValuesFn(ctx, property)
}

func (s *stubClient) ProfileNames(ctx context.Context) ([]string, error) {
	if s.profileNamesFn == nil {
		return nil, nil
	}
	return s.profileNamesFn(ctx)
}

func (s *stubClient) ClipboardText(ctx context.Context) string {
	if s.clipboardFn == nil {
		return ""
	}
	return s.clipboardFn(ctx)
}

func (s *stubClient) SetOverlay(ctx context.Context, data string) error {
	if s.setOverlayFn == nil {
		return nil
	}
	return s.setOverlayFn(ctx, data)
}

func commandStub(names ...string) *stubClient {
	defs := make([]schema.CommandDef, 0, len(names))
	for _, name := range names {
		defs = append(defs, schema.CommandDef{Name: name})
	}
	return &stubClient{
		commandListFn: func(context.Context) ([]schema.CommandDef, error) {
			return defs, nil
		},
	}
}
