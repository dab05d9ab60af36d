package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pkt.systems/pslog"

	"github.com/danbezerra/mpv/console"
	"github.com/danbezerra/mpv/internal/appconfig"
	"github.com/danbezerra/mpv/internal/persist"
	"github.com/danbezerra/mpv/player"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var socket string
	var wait bool
	var terminalMode bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Attach a console to a player socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if socket != "" {
				cfg.Socket = socket
			}

			if wait {
				logger.Info("waiting for player", "socket", cfg.Socket)
				if err := player.WaitForSocket(ctx, cfg.Socket); err != nil {
					return err
				}
			}

			ipc, err := player.Dial(ctx, cfg.Socket)
			if err != nil {
				return err
			}
			if err := ipc.Subscribe(ctx, cfg.Console.LogLevel); err != nil {
				_ = ipc.Close()
				return err
			}
			logger.Info("attached to player", "socket", cfg.Socket)

			store, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
			if err != nil {
				_ = ipc.Close()
				return err
			}

			opts := console.Options{
				Prompt:       cfg.Console.Prompt,
				Font:         cfg.Console.Font,
				FontSize:     cfg.Console.FontSize,
				HistoryDedup: cfg.Console.HistoryDedup,
				HistoryMax:   cfg.Console.HistoryMax,
				LogLines:     cfg.Console.LogLines,
			}
			if terminalMode {
				opts.Terminal = os.Stdout
			}
			c := console.New(ipc, opts)
			if snapshot, ok, err := store.Load(cfg.Socket); err == nil && ok {
				c.SetHistory(snapshot.History)
			}

			fd := int(os.Stdin.Fd())
			if term.IsTerminal(fd) {
				oldState, err := term.MakeRaw(fd)
				if err != nil {
					_ = ipc.Close()
					return fmt.Errorf("raw terminal: %w", err)
				}
				defer func() { _ = term.Restore(fd, oldState) }()
				if terminalMode {
					if w, h, err := term.GetSize(fd); err == nil {
						c.SetSize(w, h)
					}
				}
			} else if terminalMode {
				return fmt.Errorf("terminal mode requires a tty")
			}
			c.Enable()

			keys := make(chan console.Input, 16)
			go console.ReadInputs(os.Stdin, keys)

			runErr := c.Run(ctx, keys, ipc.Events())

			result := runErr
			if err := store.Save(cfg.Socket, persist.Snapshot{History: c.History()}); err != nil {
				result = multierror.Append(result, err).ErrorOrNil()
			}
			if err := ipc.Close(); err != nil {
				result = multierror.Append(result, err).ErrorOrNil()
			}
			return result
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&socket, "socket", "s", "", "player IPC socket (overrides config)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for the socket to appear")
	cmd.Flags().BoolVarP(&terminalMode, "terminal", "t", false, "render in the terminal instead of the player OSD")
	return cmd
}
