package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"viral-scout/internal/config"
	"viral-scout/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Scan repeatedly every scan.interval until stopped",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, closeAll, err := buildScanner(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeAll()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigc
			slog.Info("serve: received signal, shutting down", "signal", sig.String())
			cancel()
		}()

		interval := config.Duration(cfg.Scan.Interval)
		slog.Info("serve: starting scanner", "interval", interval)
		return worker.NewManager(&worker.Periodic{Scanner: s, Interval: interval}).Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
