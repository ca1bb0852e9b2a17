package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kharcha/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction HTTP API",
		Long: `Serve the extraction pipeline over HTTP.

Endpoints:
  POST /api/v1/extract            extract one transcript
  GET  /api/v1/extractions        recent audit log entries
  GET  /api/v1/extractions/:id    one audit log entry
  GET  /health                    liveness
  GET  /metrics                   Prometheus metrics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, appOptions{audit: true, watch: true})
			if err != nil {
				return err
			}
			defer a.close()

			var history server.History
			if a.audit != nil {
				history = a.audit
			}

			srv, err := server.New(a.engine, history, slog.Default(), a.settings.ServerAddr)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down server: %w", err)
			}
			return <-errCh
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
