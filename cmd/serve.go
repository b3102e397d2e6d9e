package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hoshinet/pagelate/internal/config"
	"github.com/hoshinet/pagelate/internal/credentials"
	"github.com/hoshinet/pagelate/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the translation interface",
		Long: `Starts the Pagelate web interface on the specified port.

The web interface lets you batch-upload manga page images, translate them
into the selected target language with in-place inpainting, correct the
recognized text, regenerate individual pages, and download the results as a
zip archive.`,
		Example: `  # Start server on default port 8888
  pagelate serve

  # Start server on custom port
  pagelate serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			credPath, err := credentials.DefaultPath()
			if err != nil {
				return err
			}
			creds, err := credentials.New(credPath)
			if err != nil {
				return err
			}

			handler := handlers.New(cfg, creds)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/pages", handler.HandlePages)
			mux.HandleFunc("/api/pages/", handler.HandlePageDetail)
			mux.HandleFunc("/api/translate", handler.HandleTranslate)
			mux.HandleFunc("/api/progress", handler.HandleProgress)
			mux.HandleFunc("/api/credentials", handler.HandleCredentials)
			mux.HandleFunc("/api/export", handler.HandleExport)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Pagelate interface available", "addr", addr, "url", "http://localhost"+addr)
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

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "pagelate.yaml", "Path to config file")

	return cmd
}
