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

	"github.com/KUKARAF/ordning/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the ticket API",
	Long: `Start an HTTP server that exposes the ticket ingestion service.

The server provides the following endpoints:
  POST   /ingest                   - Upload and ingest a ticket PDF
  GET    /tickets                  - List stored tickets
  GET    /tickets/{id}             - Fetch a single ticket
  GET    /tickets/{id}/event       - Render a ticket as a calendar event
  POST   /tickets/{id}/reprocess   - Re-run extraction
  DELETE /tickets/{id}             - Delete a ticket
  GET    /stats                    - Database statistics
  GET    /health                   - Health check
  GET    /metrics                  - Prometheus metrics

Examples:
  ordning serve
  ordning serve --port 8080
  ordning serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		// Flags win over the configuration file.
		sc := cfg.Server
		if cmd.Flags().Changed("host") {
			sc.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			sc.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("cors-origin") {
			sc.CORSOrigin, _ = cmd.Flags().GetString("cors-origin")
		}
		if cmd.Flags().Changed("max-upload-size") {
			sc.MaxUploadMB, _ = cmd.Flags().GetInt("max-upload-size")
		}
		if cmd.Flags().Changed("timeout") {
			sc.TimeoutSec, _ = cmd.Flags().GetInt("timeout")
		}
		if cmd.Flags().Changed("shutdown-timeout") {
			sc.ShutdownTimeout, _ = cmd.Flags().GetInt("shutdown-timeout")
		}

		uploadDir, _ := cmd.Flags().GetString("upload-dir")

		rateLimitEnabled, _ := cmd.Flags().GetBool("rate-limit-enabled")
		uploadsPerMinute, _ := cmd.Flags().GetInt("uploads-per-minute")
		maxUploadsPerDay, _ := cmd.Flags().GetInt("max-uploads-per-day")
		maxDataPerDay, _ := cmd.Flags().GetInt64("max-data-per-day")

		if sc.Port < 1 || sc.Port > 65535 {
			return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", sc.Port)
		}

		svc, closeStore, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		serverConfig := server.Config{
			CORSOrigin:  sc.CORSOrigin,
			MaxUploadMB: int64(sc.MaxUploadMB),
			UploadDir:   uploadDir,
		}
		if cfg.Auth.SigningKey != "" {
			serverConfig.AuthSecret = []byte(cfg.Auth.SigningKey)
		}
		if rateLimitEnabled {
			serverConfig.RateLimiter = server.NewRateLimiter(uploadsPerMinute, maxUploadsPerDay, maxDataPerDay)
		}

		ticketServer := server.NewServer(svc, serverConfig)

		mux := http.NewServeMux()
		ticketServer.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              sc.Address(),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       sc.Timeout(),
			WriteTimeout:      sc.Timeout(),
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go func() {
			slog.Info("Starting ticket server", "address", sc.Address())
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

		slog.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", sc.ShutdownTimeout))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
			time.Duration(sc.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server shutdown completed")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().String("upload-dir", "uploads", "directory for spooled PDF uploads")
	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable upload rate limiting")
	serveCmd.Flags().Int("uploads-per-minute", 30, "maximum uploads per minute per client")
	serveCmd.Flags().Int("max-uploads-per-day", 1000, "maximum uploads per day per client")
	serveCmd.Flags().Int64("max-data-per-day", 100*1024*1024, "maximum upload bytes per day per client")
}
