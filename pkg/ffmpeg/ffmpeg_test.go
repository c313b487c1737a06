package ffmpeg

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/killallgit/voicenote-api/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	timeout time.Duration
	name    string
	args    []string
}

// fakeRunner answers invocations from a handler and records them.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	handler func(name string, args []string) (Result, error)
}

func (r *fakeRunner) Run(_ context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{timeout: timeout, name: name, args: args})
	r.mu.Unlock()
	if r.handler == nil {
		return Result{}, nil
	}
	return r.handler(name, args)
}

func newTestFFmpeg(t *testing.T, r *fakeRunner) *FFmpeg {
	t.Helper()
	opts := DefaultOptions()
	opts.TempDir = t.TempDir()
	return New("ffmpeg", "ffprobe", WithRunner(r), WithOptions(opts))
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		handler func(name string, args []string) (Result, error)
		wantErr error
	}{
		{
			name: "both tools present",
		},
		{
			name: "ffmpeg missing",
			handler: func(name string, _ []string) (Result, error) {
				if name == "ffmpeg" {
					return Result{ExitCode: -1}, exec.ErrNotFound
				}
				return Result{}, nil
			},
			wantErr: ErrFFmpegNotFound,
		},
		{
			name: "ffprobe exits non-zero",
			handler: func(name string, _ []string) (Result, error) {
				if name == "ffprobe" {
					return Result{ExitCode: 1}, nil
				}
				return Result{}, nil
			},
			wantErr: ErrFFprobeNotFound,
		},
		{
			name: "version check times out",
			handler: func(string, []string) (Result, error) {
				return Result{ExitCode: -1}, ErrProcessingTimeout
			},
			wantErr: ErrFFmpegNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{handler: tt.handler}
			f := newTestFFmpeg(t, r)

			err := f.Verify(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, r.calls, 2)
			for _, c := range r.calls {
				assert.Equal(t, []string{"-version"}, c.args)
				assert.Equal(t, 5*time.Second, c.timeout)
			}
		})
	}
}

func TestProbeDuration(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		err    error
		want   float64
		wantOK bool
	}{
		{name: "plain value", result: Result{Stdout: "301.824000\n"}, want: 301.824, wantOK: true},
		{name: "not available", result: Result{Stdout: "N/A\n"}},
		{name: "empty output", result: Result{Stdout: ""}},
		{name: "zero duration", result: Result{Stdout: "0.000000"}},
		{name: "non-zero exit", result: Result{ExitCode: 1, Stderr: "Invalid data found"}},
		{name: "timeout", err: ErrProcessingTimeout},
		{name: "tool missing", err: exec.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{handler: func(string, []string) (Result, error) { return tt.result, tt.err }}
			f := newTestFFmpeg(t, r)

			got, ok := f.ProbeDuration(context.Background(), "/in/voice.m4a")
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)

			require.Len(t, r.calls, 1)
			assert.Equal(t, "ffprobe", r.calls[0].name)
			assert.Equal(t, 10*time.Second, r.calls[0].timeout)
			assert.Equal(t, []string{
				"-v", "error",
				"-show_entries", "format=duration",
				"-of", "default=noprint_wrappers=1:nokey=1",
				"/in/voice.m4a",
			}, r.calls[0].args)
		})
	}
}

// touchOutput emulates ffmpeg writing the last argument.
func touchOutput(t *testing.T) func(string, []string) (Result, error) {
	return func(_ string, args []string) (Result, error) {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("mp3"), 0o644); err != nil {
			t.Errorf("writing fake segment: %v", err)
		}
		return Result{}, nil
	}
}

func TestSplitDuration_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		duration  float64
		segLen    int
		wantCount int
	}{
		{name: "short file", duration: 60, segLen: 150, wantCount: 1},
		{name: "exact multiple", duration: 300, segLen: 150, wantCount: 2},
		{name: "with tail", duration: 400, segLen: 150, wantCount: 3},
		{name: "fractional tail", duration: 300.5, segLen: 150, wantCount: 3},
		{name: "one second segments", duration: 3, segLen: 1, wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			r.handler = touchOutput(t)
			f := newTestFFmpeg(t, r)

			set, err := f.SplitDuration(context.Background(), "/in/voice.m4a", tt.segLen, tt.duration)
			require.NoError(t, err)
			t.Cleanup(func() { _ = set.Cleanup() })

			require.Len(t, set.Segments, tt.wantCount)
			assert.Len(t, r.calls, tt.wantCount)

			for i, seg := range set.Segments {
				assert.Equal(t, i, seg.Index)
				assert.InDelta(t, float64(i*tt.segLen), seg.Start, 1e-9)
				assert.LessOrEqual(t, seg.End-seg.Start, float64(tt.segLen))
				assert.Greater(t, seg.End, seg.Start)
				if i > 0 {
					assert.InDelta(t, set.Segments[i-1].End, seg.Start, 1e-9, "segments must be contiguous")
				}
				assert.Equal(t, filepath.Join(set.Dir, filepathName(i)), seg.Path)
				assert.FileExists(t, seg.Path)
				assert.True(t, strings.HasPrefix(seg.Command, "ffmpeg -i /in/voice.m4a -ss "))
			}
			last := set.Segments[len(set.Segments)-1]
			assert.InDelta(t, tt.duration, last.End, 1e-9)
		})
	}
}

func filepathName(i int) string {
	return "segment_" + []string{"000", "001", "002"}[i] + ".mp3"
}

func TestSplitDuration_Arguments(t *testing.T) {
	r := &fakeRunner{}
	r.handler = touchOutput(t)
	f := newTestFFmpeg(t, r)

	set, err := f.SplitDuration(context.Background(), "/in/voice.m4a", 150, 200)
	require.NoError(t, err)
	defer set.Cleanup()

	require.Len(t, r.calls, 2)
	assert.Equal(t, "ffmpeg", r.calls[1].name)
	assert.Equal(t, 30*time.Second, r.calls[1].timeout)
	assert.Equal(t, []string{
		"-i", "/in/voice.m4a",
		"-ss", "150",
		"-t", "50",
		"-acodec", "mp3",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		"-loglevel", "error",
		set.Segments[1].Path,
	}, r.calls[1].args)
	assert.Equal(t, "ffmpeg "+strings.Join(r.calls[1].args, " "), set.Segments[1].Command)
}

func TestSplitDuration_FailureRemovesPartialOutput(t *testing.T) {
	r := &fakeRunner{}
	touch := touchOutput(t)
	r.handler = func(name string, args []string) (Result, error) {
		if strings.HasSuffix(args[len(args)-1], "segment_002.mp3") {
			return Result{ExitCode: 1, Stderr: "Conversion failed!"}, nil
		}
		return touch(name, args)
	}
	f := newTestFFmpeg(t, r)

	set, err := f.SplitDuration(context.Background(), "/in/voice.m4a", 150, 600)
	require.Error(t, err)
	assert.Nil(t, set)
	assert.ErrorIs(t, err, ErrSegmentationFailed)

	var perr *ProcessingError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "segment_extraction", perr.Operation)
	assert.Equal(t, "Conversion failed!", perr.Stderr)

	// stops at the failing segment and leaves nothing behind
	assert.Len(t, r.calls, 3)
	entries, readErr := os.ReadDir(f.opts.TempDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestSplitDuration_Timeout(t *testing.T) {
	r := &fakeRunner{handler: func(string, []string) (Result, error) {
		return Result{ExitCode: -1}, ErrProcessingTimeout
	}}
	f := newTestFFmpeg(t, r)

	_, err := f.SplitDuration(context.Background(), "/in/voice.m4a", 150, 100)
	assert.ErrorIs(t, err, ErrSegmentationFailed)
}

func TestSplitDuration_RejectsNonPositiveLength(t *testing.T) {
	r := &fakeRunner{}
	f := newTestFFmpeg(t, r)

	_, err := f.SplitDuration(context.Background(), "/in/voice.m4a", 0, 100)
	assert.Error(t, err)
	assert.Empty(t, r.calls)
}

func TestSplit_FallsBackToDefaultDuration(t *testing.T) {
	r := &fakeRunner{}
	touch := touchOutput(t)
	r.handler = func(name string, args []string) (Result, error) {
		if name == "ffprobe" {
			return Result{ExitCode: 1}, nil
		}
		return touch(name, args)
	}
	f := newTestFFmpeg(t, r)

	set, err := f.Split(context.Background(), "/in/voice.m4a", 150)
	require.NoError(t, err)
	defer set.Cleanup()

	assert.Equal(t, 300.0, set.Duration)
	assert.Len(t, set.Segments, 2)
}

func TestSegmentSet_CleanupIsIdempotent(t *testing.T) {
	r := &fakeRunner{}
	r.handler = touchOutput(t)
	f := newTestFFmpeg(t, r)

	set, err := f.SplitDuration(context.Background(), "/in/voice.m4a", 150, 150)
	require.NoError(t, err)

	require.NoError(t, set.Cleanup())
	require.NoError(t, set.Cleanup())
	assert.NoDirExists(t, set.Dir)

	var nilSet *SegmentSet
	assert.NoError(t, nilSet.Cleanup())
}

func TestSegmentCount(t *testing.T) {
	assert.Equal(t, 0, SegmentCount(0, 150))
	assert.Equal(t, 0, SegmentCount(10, 0))
	assert.Equal(t, 1, SegmentCount(0.1, 150))
	assert.Equal(t, 1, SegmentCount(150, 150))
	assert.Equal(t, 2, SegmentCount(150.01, 150))
	assert.Equal(t, 7, SegmentCount(1000, 150))
}

// The remaining tests drive the real binaries and are skipped when they are not installed.

func requireBinaries(t *testing.T) *FFmpeg {
	t.Helper()
	opts := DefaultOptions()
	opts.TempDir = t.TempDir()
	f := New("ffmpeg", "ffprobe", WithOptions(opts))
	if err := f.Verify(context.Background()); err != nil {
		t.Skipf("ffmpeg/ffprobe not installed: %v", err)
	}
	return f
}

func TestRealBinaries_ProbeAndSplit(t *testing.T) {
	f := requireBinaries(t)

	wavPath := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, audio.WriteToneFile(wavPath, audio.ToneOptions{Seconds: 5, Frequency: 440, SampleRate: 16000}))

	duration, ok := f.ProbeDuration(context.Background(), wavPath)
	require.True(t, ok)
	assert.InDelta(t, 5.0, duration, 0.1)

	set, err := f.SplitDuration(context.Background(), wavPath, 2, duration)
	if err != nil && strings.Contains(err.Error(), "Unknown encoder") {
		t.Skipf("ffmpeg built without an mp3 encoder: %v", err)
	}
	require.NoError(t, err)
	defer set.Cleanup()

	assert.Len(t, set.Segments, 3)
	for _, seg := range set.Segments {
		info, statErr := os.Stat(seg.Path)
		require.NoError(t, statErr)
		assert.Greater(t, info.Size(), int64(0))
	}
}
