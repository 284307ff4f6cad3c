package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/pkiviz/internal/cli"
	"github.com/aretw0/pkiviz/internal/metrics"
	httpadapter "github.com/aretw0/pkiviz/pkg/adapters/http"
	"github.com/aretw0/pkiviz/pkg/clipboard"
	"github.com/aretw0/pkiviz/pkg/session"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves one viewer over HTTP: a JSON API to drive it, SVG and Mermaid
exports of the graph, Server-Sent Events for view changes, the OpenAPI
document and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("addr") {
				addr, _ := cmd.Flags().GetString("addr")
				overrides["http"] = map[string]any{"addr": addr}
			}
			env, err := loadEnv(cmd, overrides)
			if err != nil {
				return err
			}
			env.Metrics = metrics.New()

			// Copies over HTTP land in memory; the command text is returned to the client.
			v, err := cli.NewViewer(env, session.WithClipboard(clipboard.NewMemory()))
			if err != nil {
				return err
			}
			defer v.Close()

			handler := httpadapter.NewHandler(v,
				httpadapter.WithLogger(env.Logger),
				httpadapter.WithMetrics(env.Metrics.Handler()),
			)
			srv := &http.Server{
				Addr:              env.Config.HTTP.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				env.Logger.Info("Starting pkiviz server", "address", srv.Addr, "session_id", v.ID())
				fmt.Fprintf(cmd.OutOrStdout(), "Serving pkiviz on %s\n", srv.Addr)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				env.Logger.Info("Start shutdown", "signal", fmt.Sprint(ctx.Signal()))

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				// SSE streams only end once the viewer closes them.
				_ = v.Close()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					env.Logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("error killing server: %w", err)
					}
				}
				env.Logger.Info("pkiviz server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	return cmd
}
