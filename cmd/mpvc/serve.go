package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/danbezerra/mpv/console"
	"github.com/danbezerra/mpv/internal/appconfig"
	"github.com/danbezerra/mpv/internal/persist"
	"github.com/danbezerra/mpv/sshserver"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console over SSH",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.SSH.Addr = addr
			}

			store, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
			if err != nil {
				return err
			}

			server := &sshserver.Server{
				Addr:        cfg.SSH.Addr,
				HostKeyPath: cfg.SSH.HostKeyPath,
				Socket:      cfg.Socket,
				LogLevel:    cfg.Console.LogLevel,
				Store:       store,
				Console: console.Options{
					Prompt:       cfg.Console.Prompt,
					Font:         cfg.Console.Font,
					FontSize:     cfg.Console.FontSize,
					HistoryDedup: cfg.Console.HistoryDedup,
					HistoryMax:   cfg.Console.HistoryMax,
					LogLines:     cfg.Console.LogLines,
				},
			}
			logger.Info("ssh console listening", "addr", cfg.SSH.Addr, "socket", cfg.Socket)
			return server.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")
	return cmd
}
