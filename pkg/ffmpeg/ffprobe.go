package ffmpeg

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ProbeDuration returns the container duration of path in seconds.
//
// It never fails: a tool error, timeout, non-zero exit or unparsable output
// yields ok=false and the caller decides on a fallback.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, bool) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}

	log.Info().Str("tool", f.ffprobePath).Strs("args", args).Msg("probing duration")
	res, err := f.runner.Run(ctx, f.opts.ProbeTimeout, f.ffprobePath, args...)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("ffprobe did not complete")
		return 0, false
	}
	if res.ExitCode != 0 {
		log.Warn().Int("exit_code", res.ExitCode).Str("stderr", strings.TrimSpace(res.Stderr)).Str("file", path).Msg("ffprobe failed")
		return 0, false
	}

	duration, ok := parseDuration(res.Stdout)
	if !ok {
		log.Warn().Str("stdout", strings.TrimSpace(res.Stdout)).Str("file", path).Msg("ffprobe returned no usable duration")
	}
	return duration, ok
}

// parseDuration reads the first line of ffprobe's bare "format=duration" output.
func parseDuration(out string) (float64, bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
