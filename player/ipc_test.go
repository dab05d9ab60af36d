package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danbezerra/mpv/console"
	"github.com/danbezerra/mpv/schema"
)

// servePlayer answers requests on the far end of a pipe. The handler
// receives the decoded request and returns the response object, or nil
// for no reply.
func servePlayer(t *testing.T, conn net.Conn, handler func(req map[string]any) any) {
	t.Helper()
	go func() {
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var req map[string]any
			if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
				continue
			}
			resp := handler(req)
			if resp == nil {
				continue
			}
			line, err := json.Marshal(resp)
			if err != nil {
				continue
			}
			if _, err := conn.Write(append(line, '\n')); err != nil {
				return
			}
		}
	}()
}

func requestID(req map[string]any) int64 {
	id, _ := req["request_id"].(float64)
	return int64(id)
}

func TestRoundTripCorrelation(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	pending := make(chan map[string]any, 2)
	servePlayer(t, server, func(req map[string]any) any {
		pending <- req
		if len(pending) < 2 {
			return nil
		}
		// Answer both, newest first, so correlation is exercised.
		first := <-pending
		second := <-pending
		for _, r := range []map[string]any{second, first} {
			cmd := r["command"].([]any)
			resp := map[string]any{
				"error":      "success",
				"data":       cmd[1],
				"request_id": requestID(r),
			}
			line, _ := json.Marshal(resp)
			if _, err := server.Write(append(line, '\n')); err != nil {
				return nil
			}
		}
		return nil
	})

	ipc := newIPC(context.Background(), client)
	defer ipc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		value string
		err   error
	}
	results := make(chan result, 2)
	for _, name := range []string{"volume", "mute"} {
		go func(name string) {
			v, err := ipc.GetProperty(ctx, name)
			results <- result{v, err}
		}(name)
	}
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			t.Fatalf("unexpected error: %v", r.err)
		}
		seen[r.value] = true
	}
	if !seen["volume"] || !seen["mute"] {
		t.Fatalf("responses miscorrelated: %v", seen)
	}
}

func TestErrorResponse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	servePlayer(t, server, func(req map[string]any) any {
		return map[string]any{
			"error":      "property not found",
			"request_id": requestID(req),
		}
	})
	ipc := newIPC(context.Background(), client)
	defer ipc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := ipc.GetProperty(ctx, "no-such"); err == nil {
		t.Fatalf("expected error from failed response")
	}
	if text := ipc.ClipboardText(ctx); text != "" {
		t.Fatalf("expected empty clipboard on failure, got %q", text)
	}
}

func TestCommandStringSendsRawLine(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	got := make(chan any, 1)
	servePlayer(t, server, func(req map[string]any) any {
		got <- req["command"]
		return map[string]any{"error": "success", "request_id": requestID(req)}
	})
	ipc := newIPC(context.Background(), client)
	defer ipc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ipc.CommandString(ctx, `show-text "hi there"; seek 5`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cmd := <-got
	line, ok := cmd.(string)
	if !ok || line != `show-text "hi there"; seek 5` {
		t.Fatalf("expected raw command line, got %#v", cmd)
	}
}

func TestEventsDelivered(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	ipc := newIPC(context.Background(), client)
	defer ipc.Close()

	lines := []string{
		`{"event":"log-message","prefix":"cplayer","level":"info","text":"Playing: x"}`,
		`{"event":"property-change","id":1,"name":"osd-dimensions","data":{"w":1920,"h":1080,"ml":28,"mr":28,"mt":16,"mb":16}}`,
		`{"event":"client-message","args":["type","seek "]}`,
		`{"event":"shutdown"}`,
	}
	go func() {
		for _, line := range lines {
			if _, err := server.Write([]byte(line + "\n")); err != nil {
				return
			}
		}
	}()

	deadline := time.After(5 * time.Second)
	next := func() console.Event {
		select {
		case ev := <-ipc.Events():
			return ev
		case <-deadline:
			t.Fatalf("timed out waiting for event")
			return console.Event{}
		}
	}

	ev := next()
	if ev.Log == nil || ev.Log.Prefix != "cplayer" || ev.Log.Level != schema.SeverityInfo {
		t.Fatalf("expected log event first, got %+v", ev)
	}
	ev = next()
	if ev.Geometry == nil || ev.Geometry.Width != 1920 || ev.Geometry.MarginX != 28 {
		t.Fatalf("expected geometry event, got %+v", ev)
	}
	ev = next()
	if len(ev.Message) != 2 || ev.Message[0] != "type" {
		t.Fatalf("expected client message, got %+v", ev)
	}
	ev = next()
	if !ev.Shutdown {
		t.Fatalf("expected shutdown event, got %+v", ev)
	}
}

func TestWaitForSocketExisting(t *testing.T) {
	dir := t.TempDir()
	socket := filepath.Join(dir, "mpv.sock")
	if err := os.WriteFile(socket, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := WaitForSocket(ctx, socket); err != nil {
		t.Fatalf("expected immediate return for existing socket, got %v", err)
	}
}

func TestWaitForSocketAppearing(t *testing.T) {
	dir := t.TempDir()
	socket := filepath.Join(dir, "mpv.sock")
	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = os.WriteFile(socket, nil, 0o600)
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := WaitForSocket(ctx, socket); err != nil {
		t.Fatalf("expected socket to be noticed, got %v", err)
	}
}
