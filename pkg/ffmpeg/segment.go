package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SegmentDirPrefix names every per-run scratch directory; the cleanup sweeper matches on it.
const SegmentDirPrefix = "voice_segments_"

// SegmentSet is the ordered output of one split plus the directory that owns the files.
type SegmentSet struct {
	Dir      string
	Duration float64
	Segments []Segment
}

// Cleanup removes the segment directory and everything in it. Safe to call more than once.
func (s *SegmentSet) Cleanup() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("removing segment dir %s: %w", s.Dir, err)
	}
	return nil
}

// Split probes path and cuts it into segmentSeconds-long MP3 slices. When the
// probe fails the configured default duration is assumed.
func (f *FFmpeg) Split(ctx context.Context, path string, segmentSeconds int) (*SegmentSet, error) {
	duration, ok := f.ProbeDuration(ctx, path)
	if !ok {
		duration = f.opts.DefaultDuration
		log.Warn().Str("file", path).Float64("duration", duration).Msg("duration unknown, using default")
	}
	return f.SplitDuration(ctx, path, segmentSeconds, duration)
}

// SplitDuration cuts path into ceil(duration/segmentSeconds) slices of 16kHz
// mono MP3, one ffmpeg invocation at a time. On any failure the partial output
// is removed before the error is returned.
func (f *FFmpeg) SplitDuration(ctx context.Context, path string, segmentSeconds int, duration float64) (*SegmentSet, error) {
	if segmentSeconds <= 0 {
		return nil, fmt.Errorf("segment length must be positive, got %d", segmentSeconds)
	}

	dir, err := os.MkdirTemp(f.opts.TempDir, SegmentDirPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempDirCreation, err)
	}

	set := &SegmentSet{Dir: dir, Duration: duration}
	length := float64(segmentSeconds)
	count := SegmentCount(duration, segmentSeconds)

	log.Info().
		Str("file", path).
		Float64("duration", duration).
		Int("segment_seconds", segmentSeconds).
		Int("segments", count).
		Str("dir", dir).
		Msg("splitting audio")

	for i := 0; i < count; i++ {
		start := float64(i) * length
		end := math.Min(start+length, duration)
		out := filepath.Join(dir, fmt.Sprintf("segment_%03d.mp3", i))
		args := segmentArgs(path, start, end-start, out)

		began := time.Now()
		res, runErr := f.runner.Run(ctx, f.opts.SegmentTimeout, f.ffmpegPath, args...)
		elapsed := time.Since(began)

		if runErr == nil && res.ExitCode != 0 {
			runErr = fmt.Errorf("exit code %d", res.ExitCode)
		}
		if runErr != nil {
			if cleanupErr := set.Cleanup(); cleanupErr != nil {
				log.Error().Err(cleanupErr).Msg("failed to remove partial segments")
			}
			return nil, NewProcessingError("segment_extraction", path,
				fmt.Errorf("%w: segment %d: %v", ErrSegmentationFailed, i, runErr),
				strings.TrimSpace(res.Stderr))
		}

		seg := Segment{
			Index:          i,
			Path:           out,
			Start:          start,
			End:            end,
			Args:           args,
			Command:        strings.Join(append([]string{f.ffmpegPath}, args...), " "),
			ExtractionTime: elapsed,
		}
		log.Info().Int("index", i).Str("command", seg.Command).Dur("took", elapsed).Msg("segment extracted")
		set.Segments = append(set.Segments, seg)
	}

	return set, nil
}

// SegmentCount is the number of slices needed to cover duration.
func SegmentCount(duration float64, segmentSeconds int) int {
	if duration <= 0 || segmentSeconds <= 0 {
		return 0
	}
	return int(math.Ceil(duration / float64(segmentSeconds)))
}

func segmentArgs(src string, start, length float64, out string) []string {
	return []string{
		"-i", src,
		"-ss", formatSeconds(start),
		"-t", formatSeconds(length),
		"-acodec", "mp3",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		"-loglevel", "error",
		out,
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
