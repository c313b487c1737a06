package ffmpeg

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	runner      Runner
	opts        Options
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, options ...Option) *FFmpeg {
	f := &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      ExecRunner{},
		opts:        DefaultOptions(),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Verify runs "-version" on both tools. Any tool that fails to start, times
// out or exits non-zero makes the pipeline unusable.
func (f *FFmpeg) Verify(ctx context.Context) error {
	checks := []struct {
		path     string
		sentinel error
	}{
		{f.ffmpegPath, ErrFFmpegNotFound},
		{f.ffprobePath, ErrFFprobeNotFound},
	}

	for _, c := range checks {
		res, err := f.runner.Run(ctx, f.opts.VersionTimeout, c.path, "-version")
		if err != nil {
			return fmt.Errorf("%w: %s: %v", c.sentinel, c.path, err)
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("%w: %s exited with code %d", c.sentinel, c.path, res.ExitCode)
		}
	}

	log.Debug().Str("ffmpeg", f.ffmpegPath).Str("ffprobe", f.ffprobePath).Msg("media tools available")
	return nil
}

// DefaultDuration is the duration assumed when probing fails
func (f *FFmpeg) DefaultDuration() float64 {
	return f.opts.DefaultDuration
}
