package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaqzi/employee-reviews/internal/app"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Addr, _ = cmd.Flags().GetString("addr")
			}

			return serve(cmd.Context(), c.cfg)
		},
	}
	cmd.Flags().String("addr", "", "address to listen on (env ADDR)")

	return cmd
}

func serve(parent context.Context, cfg app.Config) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	server, err := app.Start(ctx, cfg)
	if err != nil {
		slog.Error("failed to start server", "error", err)
		return err
	}

	slog.Info("server started", "addr", "http://"+server.Config.Addr)

	shutdown := make(chan os.Signal, 2)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	for {
		sig := <-shutdown
		switch sig {
		case os.Interrupt, syscall.SIGTERM:
			cancel()
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutCancel()

			if err := server.Stop(shutCtx); err != nil {
				slog.Error("failed to shut safely", "error", err)
				return err
			}

			return nil
		default:
			slog.Warn("unhandled signal", "signal", sig.String())
		}
	}
}
