package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/voicenote-api/pkg/ffmpeg"
	"github.com/rs/zerolog/log"
)

// SourcePrefix names local copies of stored audio pulled from remote backends
const SourcePrefix = "voice_source_"

// Service removes scratch space that interrupted runs left behind
type Service struct {
	tempDir         string
	maxAge          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	cancel          context.CancelFunc
}

// NewService creates a new cleanup service. An empty tempDir means os.TempDir().
func NewService(tempDir string, maxAge, cleanupInterval time.Duration) *Service {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Service{
		tempDir:         tempDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start runs one sweep immediately, then one per interval until ctx is done or Stop is called
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.Sweep()

	if s.cleanupInterval <= 0 {
		log.Warn().Msg("cleanup interval not set, periodic sweeps disabled")
		return
	}

	ticker := time.NewTicker(s.cleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				log.Info().Msg("cleanup service stopped")
				return
			}
		}
	}()

	log.Info().
		Str("dir", s.tempDir).
		Dur("interval", s.cleanupInterval).
		Dur("max_age", s.maxAge).
		Msg("cleanup service started")
}

// Stop stops the cleanup service
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Sweep removes segment directories and source copies older than maxAge and
// returns how many entries were deleted.
func (s *Service) Sweep() int {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("dir", s.tempDir).Msg("cleanup scan failed")
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, ffmpeg.SegmentDirPrefix) && !strings.HasPrefix(name, SourcePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if s.now().Sub(info.ModTime()) <= s.maxAge {
			continue
		}

		path := filepath.Join(s.tempDir, name)
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove stale scratch entry")
			continue
		}
		log.Debug().Str("path", path).Msg("removed stale scratch entry")
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Str("dir", s.tempDir).Msg("stale scratch entries removed")
	}
	return removed
}
