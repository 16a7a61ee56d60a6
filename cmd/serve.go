package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/recommender/internal/config"
	"github.com/lehigh-university-libraries/recommender/internal/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the recommendation interface",
		Long: `Loads the catalog and corpus, builds the semantic index and starts the
web interface on the specified port.

The page offers a description box, a category dropdown and a tone dropdown,
and shows matching books as a gallery of covers with captions.`,
		Example: `  # Start server on default port 7860
  recommender serve

  # Start server on custom port with local embeddings
  EMBEDDING_PROVIDER=ollama recommender serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			service, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			handler := handlers.New(service)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/recommend", handler.HandleRecommend)
			mux.HandleFunc("/api/options", handler.HandleOptions)
			mux.HandleFunc("/cover-not-found.png", handler.HandleCover)
			mux.HandleFunc("/", handler.HandleIndex)
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.Middleware(mux),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Recommender interface available", "addr", addr, "url", "http://localhost"+addr)
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

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default 7860, or PORT)")

	return cmd
}
