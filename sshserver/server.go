// Package sshserver serves the terminal-mode console over SSH so a
// player on a headless box can be driven remotely.
package sshserver

import (
	"context"
	"io"
	"net"

	gliderssh "github.com/gliderlabs/ssh"
	"github.com/hashicorp/go-multierror"

	"pkt.systems/pslog"

	"github.com/danbezerra/mpv/console"
	"github.com/danbezerra/mpv/internal/persist"
	"github.com/danbezerra/mpv/player"
)

// Server attaches SSH sessions to a local player socket. There is no
// user database; bind to localhost (the default) or front it with OS
// level trust.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Socket      string
	Console     console.Options
	LogLevel    string
	Store       *persist.Store
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}

	comment := ""
	if s.Addr != "" {
		comment = "mpvc@" + s.Addr
	}
	signer, err := EnsureHostKey(s.HostKeyPath, comment)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	remote := sess.RemoteAddr().String()
	log = log.With("remote", remote)

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		return
	}
	log.Info("ssh session opened", "term", pty.Term)

	if err := s.runConsole(sess, pty, winCh, log); err != nil {
		log.Warn("ssh session failed", "err", err)
		_, _ = io.WriteString(sess, err.Error()+"\n")
	}
	log.Info("ssh session closed", "term", pty.Term)
}

func (s *Server) runConsole(sess gliderssh.Session, pty gliderssh.Pty, winCh <-chan gliderssh.Window, log pslog.Logger) error {
	ctx := pslog.ContextWithLogger(sess.Context(), log)

	ipc, err := player.Dial(ctx, s.Socket)
	if err != nil {
		return err
	}
	if err := ipc.Subscribe(ctx, s.LogLevel); err != nil {
		_ = ipc.Close()
		return err
	}

	opts := s.Console
	opts.Terminal = sess
	c := console.New(ipc, opts)
	if s.Store != nil {
		if snapshot, ok, err := s.Store.Load(s.Socket); err == nil && ok {
			c.SetHistory(snapshot.History)
		}
	}
	c.SetSize(pty.Window.Width, pty.Window.Height)
	c.Enable()

	keys := make(chan console.Input, 16)
	go console.ReadInputs(sess, keys)

	// Resizes join the player events so Run stays the only goroutine
	// touching console state.
	events := make(chan console.Event, 16)
	go func() {
		defer close(events)
		ipcEvents := ipc.Events()
		for {
			select {
			case ev, ok := <-ipcEvents:
				if !ok {
					return
				}
				events <- ev
			case win, ok := <-winCh:
				if !ok {
					winCh = nil
					continue
				}
				events <- console.Event{Resize: &console.Size{Width: win.Width, Height: win.Height}}
			}
		}
	}()

	runErr := c.Run(ctx, keys, events)

	result := runErr
	if s.Store != nil {
		if err := s.Store.Save(s.Socket, persist.Snapshot{History: c.History()}); err != nil {
			result = multierror.Append(result, err).ErrorOrNil()
		}
	}
	if err := ipc.Close(); err != nil {
		result = multierror.Append(result, err).ErrorOrNil()
	}
	return result
}
