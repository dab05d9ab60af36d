package player

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pkt.systems/pslog"
)

// WaitForSocket blocks until the player socket exists or the context
// ends. It watches the socket's directory for creation events, with a
// slow stat poll as a fallback for filesystems without notify support.
func WaitForSocket(ctx context.Context, socket string) error {
	if _, err := os.Stat(socket); err == nil {
		return nil
	}
	dir := filepath.Dir(socket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch socket directory: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// The socket may have appeared between the stat and the watch.
	if _, err := os.Stat(socket); err == nil {
		return nil
	}
	pslog.Ctx(ctx).Debug("waiting for player socket", "socket", socket)

	poll := time.NewTicker(time.Second)
	defer poll.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("socket watch closed")
			}
			if ev.Op.Has(fsnotify.Create) && ev.Name == socket {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("socket watch closed")
			}
			pslog.Ctx(ctx).Warn("socket watch error", "err", err)
		case <-poll.C:
			if _, err := os.Stat(socket); err == nil {
				return nil
			}
		}
	}
}
