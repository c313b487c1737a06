package cmd

import (
	"context"
	"fmt"

	"github.com/killallgit/voicenote-api/internal/database"
	"github.com/killallgit/voicenote-api/internal/metrics"
	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/killallgit/voicenote-api/internal/services/asr"
	"github.com/killallgit/voicenote-api/internal/services/notes"
	"github.com/killallgit/voicenote-api/internal/services/pipeline"
	"github.com/killallgit/voicenote-api/internal/services/recordings"
	"github.com/killallgit/voicenote-api/internal/services/runs"
	"github.com/killallgit/voicenote-api/internal/services/storage"
	"github.com/killallgit/voicenote-api/pkg/config"
	"github.com/killallgit/voicenote-api/pkg/ffmpeg"
	"github.com/rs/zerolog/log"
)

// application holds the wired services shared by serve, process and ingest
type application struct {
	cfg         *config.Config
	db          *database.DB
	storage     storage.Backend
	recordings  recordings.Service
	notes       notes.Service
	runs        runs.Repository
	tools       *ffmpeg.FFmpeg
	transcriber *asr.Transcriber
	metrics     *metrics.Metrics
	pipeline    *pipeline.Orchestrator
}

// asrClientFactory builds the speech recognition client; tests swap it out
var asrClientFactory = func(cfg config.ASRConfig) asr.Client {
	return asr.NewOpenAIClient(cfg.APIKey, cfg.BaseURL)
}

// newApplication opens the database, migrates it and wires every service
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	backend, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	format, err := models.ParseNoteFormat(cfg.Processing.NoteFormat)
	if err != nil {
		format = models.NoteFormatText
	}

	app := &application{
		cfg:        cfg,
		db:         db,
		storage:    backend,
		recordings: recordings.NewService(recordings.NewRepository(db.DB), backend),
		notes:      notes.NewService(notes.NewRepository(db.DB), backend),
		runs:       runs.NewRepository(db.DB),
		metrics:    metrics.New(),
	}

	app.tools = ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, ffmpeg.WithOptions(ffmpeg.Options{
		VersionTimeout:  cfg.Processing.VersionTimeout,
		ProbeTimeout:    cfg.Processing.ProbeTimeout,
		SegmentTimeout:  cfg.Processing.SegmentTimeout,
		DefaultDuration: float64(cfg.Processing.DefaultDuration),
		TempDir:         cfg.Storage.TempDir,
	}))

	app.transcriber = asr.NewTranscriber(asrClientFactory(cfg.ASR), asr.Config{
		APIKey:         cfg.ASR.APIKey,
		BaseURL:        cfg.ASR.BaseURL,
		Model:          cfg.ASR.Model,
		Language:       cfg.ASR.Language,
		Prompt:         cfg.ASR.Prompt,
		MaxRetries:     cfg.ASR.MaxRetries,
		BackoffBase:    cfg.ASR.BackoffBase,
		RequestTimeout: cfg.ASR.RequestTimeout,
	})
	if cfg.ASR.APIKey == "" {
		log.Warn().Msg("no ASR API key configured, every segment will be marked failed")
	}

	app.pipeline = pipeline.New(app.recordings, app.notes, app.tools, app.transcriber, backend, pipeline.Settings{
		SegmentSeconds: cfg.Processing.SegmentSeconds,
		Concurrency:    cfg.ASR.MaxConcurrency,
		NoteFormat:     format,
		TempDir:        cfg.Storage.TempDir,
		StaleAfter:     cfg.Processing.StaleAfter,
	}, pipeline.WithRuns(app.runs), pipeline.WithMetrics(app.metrics))

	return app, nil
}

// Close releases the database connection
func (a *application) Close() {
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}
