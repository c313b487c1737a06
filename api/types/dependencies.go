package types

import (
	"context"

	"github.com/killallgit/voicenote-api/internal/database"
	"github.com/killallgit/voicenote-api/internal/metrics"
	"github.com/killallgit/voicenote-api/internal/services/notes"
	"github.com/killallgit/voicenote-api/internal/services/pipeline"
	"github.com/killallgit/voicenote-api/internal/services/recordings"
	"github.com/killallgit/voicenote-api/pkg/config"
)

// Processor runs the voice-to-note pipeline for one recording
type Processor interface {
	Process(ctx context.Context, id string) (*pipeline.Handoff, error)
}

// ToolChecker reports whether ffmpeg and ffprobe are usable
type ToolChecker interface {
	Verify(ctx context.Context) error
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	Config     *config.Config
	DB         *database.DB
	Recordings recordings.Service
	Notes      notes.Service
	Pipeline   Processor
	Tools      ToolChecker
	Metrics    *metrics.Metrics
	Version    string
}
