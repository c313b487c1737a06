package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/killallgit/voicenote-api/api"
	"github.com/killallgit/voicenote-api/api/types"
	"github.com/killallgit/voicenote-api/internal/services/cleanup"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the Voicenote API server with the configured settings.

The server accepts voice uploads, runs the transcription pipeline and
serves the resulting notes.

Example:
  voicenote-api serve
  voicenote-api serve --port 9090
  voicenote-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.tools.Verify(ctx); err != nil {
		log.Warn().Err(err).Msg("ffmpeg tools unavailable, processing requests will fail until they are installed")
	}

	sweeper := cleanup.NewService(cfg.Storage.TempDir, cfg.Storage.MaxTempAge, cfg.Storage.CleanupInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := api.NewServer(&types.Dependencies{
		Config:     cfg,
		DB:         app.db,
		Recordings: app.recordings,
		Notes:      app.notes,
		Pipeline:   app.pipeline,
		Tools:      app.tools,
		Metrics:    app.metrics,
		Version:    Version,
	})
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	log.Info().Str("addr", server.Addr()).Str("version", Version).Msg("Voicenote API server is ready")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server gracefully stopped")
	return nil
}
