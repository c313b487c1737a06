package ffmpeg

import "time"

// Segment is one extracted slice of the source audio.
type Segment struct {
	Index          int           `json:"index"`
	Path           string        `json:"path"`
	Start          float64       `json:"start_time"` // seconds
	End            float64       `json:"end_time"`   // seconds
	Args           []string      `json:"-"`
	Command        string        `json:"ffmpeg_command"`
	ExtractionTime time.Duration `json:"extraction_time"`
}

// Options tunes the external tool invocations.
type Options struct {
	VersionTimeout  time.Duration
	ProbeTimeout    time.Duration
	SegmentTimeout  time.Duration
	DefaultDuration float64 // seconds, used when probing fails
	TempDir         string  // parent for per-run segment directories, "" means os.TempDir()
}

// DefaultOptions returns the timeouts the pipeline runs with unless configured otherwise
func DefaultOptions() Options {
	return Options{
		VersionTimeout:  5 * time.Second,
		ProbeTimeout:    10 * time.Second,
		SegmentTimeout:  30 * time.Second,
		DefaultDuration: 300,
	}
}

// Option configures an FFmpeg instance
type Option func(*FFmpeg)

// WithRunner replaces the process runner, mostly for tests
func WithRunner(r Runner) Option {
	return func(f *FFmpeg) {
		f.runner = r
	}
}

// WithOptions overrides timeouts and the temp directory
func WithOptions(opts Options) Option {
	return func(f *FFmpeg) {
		f.opts = opts
	}
}
