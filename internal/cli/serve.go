package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aristath/mvt-analytics/internal/di"
	"github.com/aristath/mvt-analytics/internal/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if port != 0 {
				a.cfg.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			a.log.Info().Str("data_dir", a.cfg.DataDir).Msg("Starting mvt-analytics")

			container, _, err := di.Wire(a.cfg, a.log)
			if err != nil {
				return err
			}
			defer container.Close()

			container.Scheduler.Start()
			defer container.Scheduler.Stop()

			srv := server.New(server.Config{
				Log:       a.log,
				Config:    a.cfg,
				Container: container,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
				a.log.Info().Msg("Shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Error().Err(err).Msg("Server forced to shutdown")
				return err
			}

			a.log.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Override PORT")
	return cmd
}
