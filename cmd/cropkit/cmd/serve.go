package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/cropkit/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the crop editor session server",
	Long: `Run an HTTP server hosting interactive crop editing sessions. Clients
open a session with an image source and viewport, stream touch gestures over
a WebSocket, receive style descriptors for their rendering layer, and request
the projected crop parameters on demand.

Endpoints:
  POST   /session                      open a session
  GET    /session/{id}                 session state and styles
  GET    /session/{id}/gestures        WebSocket gesture stream
  POST   /session/{id}/save            project crop to source pixels
  POST   /session/{id}/reset|flip-x|flip-y|rotate-right
  GET    /health, /metrics`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cfg := GetConfig()

		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		corsOrigin, _ := cmd.Flags().GetString("cors-origin")
		maxUploadMB, _ := cmd.Flags().GetInt("max-upload-size")
		sessionTimeout, _ := cmd.Flags().GetInt("session-timeout")
		shutdownTimeout, _ := cmd.Flags().GetInt("shutdown-timeout")
		rateLimitEnabled, _ := cmd.Flags().GetBool("rate-limit")

		if host == "" {
			host = cfg.Server.Host
		}
		if port == 0 {
			port = cfg.Server.Port
		}
		if corsOrigin == "" {
			corsOrigin = cfg.Server.CORSOrigin
		}
		if maxUploadMB == 0 {
			maxUploadMB = int(cfg.Server.MaxUploadMB)
		}
		if sessionTimeout == 0 {
			sessionTimeout = cfg.Server.SessionTimeoutSec
		}

		serverConfig := server.Config{
			Host:           host,
			Port:           port,
			CORSOrigin:     corsOrigin,
			MaxUploadMB:    int64(maxUploadMB),
			SessionTimeout: time.Duration(sessionTimeout) * time.Second,
			EditorOptions:  cfg.ToEditorOptions(),
			LoaderConfig:   cfg.ToLoaderConfig(),
			RateLimit: server.RateLimitConfig{
				Enabled:           rateLimitEnabled || cfg.Server.RateLimit.Enabled,
				RequestsPerMinute: cfg.Server.RateLimit.RequestsPerMinute,
				RequestsPerHour:   cfg.Server.RateLimit.RequestsPerHour,
			},
		}

		sessionServer := server.NewServer(serverConfig)
		defer func() { _ = sessionServer.Close() }()

		mux := http.NewServeMux()
		sessionServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			slog.Info("Starting crop editor server", "host", host, "port", port)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", shutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(shutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		if err := sessionServer.Close(); err != nil {
			slog.Error("Server cleanup error", "error", err)
		}

		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "", "server host (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "server port (default from config)")
	serveCmd.Flags().String("cors-origin", "", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 0, "maximum request size in MB")
	serveCmd.Flags().Int("session-timeout", 0, "idle session expiry in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Bool("rate-limit", false, "enable per-client rate limiting")
}
