package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/imgtranslate/internal/batch"
	"github.com/lehigh-university-libraries/imgtranslate/internal/config"
	"github.com/lehigh-university-libraries/imgtranslate/internal/handlers"
	"github.com/lehigh-university-libraries/imgtranslate/internal/metrics"
	"github.com/lehigh-university-libraries/imgtranslate/internal/translation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API for batch translation",
		Long: `Starts the imgtranslate HTTP API on the specified port.

Upload images to /api/upload, poll /api/items for their status and
download finished translations from /api/items/{id}/download. API keys
can be changed at runtime through /api/settings.`,
		Example: `  # Start server on default port 8888
  imgtranslate serve

  # Start server on custom port
  imgtranslate serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = l.env.Port
			}

			metrics.Register()

			o := batch.New(l.cfg, func(c config.Config) batch.Translator {
				return translation.FromConfig(c)
			})
			defer o.Close()

			handler := handlers.New(o, l.env, l.settingsPath, l.settings)

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux)
			mux.Handle("GET /metrics", promhttp.Handler())
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("imgtranslate API available", "addr", addr, "url", "http://localhost"+addr, "provider", l.cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (default from PORT)")

	return cmd
}
