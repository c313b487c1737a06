package asr

import (
	"context"
	"sort"
	"time"

	"github.com/killallgit/voicenote-api/pkg/ffmpeg"
	"github.com/killallgit/voicenote-api/pkg/transcript"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the fan-out width when none is configured
const DefaultConcurrency = 3

// Config holds the per-run transcription settings
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	Prompt         string
	MaxRetries     int
	BackoffBase    time.Duration // wait after failed attempt k is 2^k * BackoffBase
	RequestTimeout time.Duration
}

// Result is the outcome of transcribing one segment
type Result struct {
	Index       int           `json:"index"`
	Text        string        `json:"-"`
	Failed      bool          `json:"failed"`
	ASRDuration time.Duration `json:"asr_duration"` // last call only
	Attempts    int           `json:"attempts"`
	Retries     int           `json:"retry_attempts"`
	Model       string        `json:"model_used"`
	BaseURL     string        `json:"base_url_used"`
	Error       string        `json:"error,omitempty"`
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Transcriber turns segments into text with retry and exponential backoff
type Transcriber struct {
	client Client
	cfg    Config
	sleep  SleepFunc
}

// Option configures a Transcriber
type Option func(*Transcriber)

// WithSleep replaces the backoff wait, mostly for tests
func WithSleep(fn SleepFunc) Option {
	return func(t *Transcriber) {
		t.sleep = fn
	}
}

// NewTranscriber creates a Transcriber over client
func NewTranscriber(client Client, cfg Config, opts ...Option) *Transcriber {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	t := &Transcriber{
		client: client,
		cfg:    cfg,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the settings the transcriber runs with
func (t *Transcriber) Config() Config {
	return t.cfg
}

// Transcribe runs up to MaxRetries+1 calls for seg. It never fails: when no
// call succeeds the result text is transcript.Sentinel.
func (t *Transcriber) Transcribe(ctx context.Context, seg ffmpeg.Segment) Result {
	res := Result{
		Index:   seg.Index,
		Model:   t.cfg.Model,
		BaseURL: t.cfg.BaseURL,
	}
	logger := log.With().Int("segment", seg.Index).Logger()

	if t.cfg.APIKey == "" {
		logger.Error().Msg("no ASR API key configured")
		return t.failed(res, "no API key configured")
	}

	req := Request{
		FilePath: seg.Path,
		Model:    t.cfg.Model,
		Prompt:   t.cfg.Prompt,
		Language: t.cfg.Language,
	}

	total := t.cfg.MaxRetries + 1
	var lastErr error
	for attempt := 0; attempt < total; attempt++ {
		res.Attempts = attempt + 1
		logger.Info().Int("attempt", attempt+1).Int("of", total).Msg("starting ASR")

		text, elapsed, err := t.call(ctx, req)
		res.ASRDuration = elapsed
		if err == nil {
			res.Text = text
			res.Retries = attempt
			logger.Info().Dur("took", elapsed).Int("attempt", attempt+1).Msg("ASR completed")
			return res
		}

		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt+1).Msg("ASR attempt failed")

		if attempt == total-1 {
			break
		}
		wait := backoff(t.cfg.BackoffBase, attempt)
		if sleepErr := t.sleep(ctx, wait); sleepErr != nil {
			lastErr = sleepErr
			break
		}
	}

	res.Retries = res.Attempts - 1
	logger.Error().Err(lastErr).Int("attempts", res.Attempts).Msg("ASR gave up, marking segment failed")
	return t.failed(res, lastErr.Error())
}

func (t *Transcriber) call(ctx context.Context, req Request) (string, time.Duration, error) {
	if t.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.RequestTimeout)
		defer cancel()
	}
	began := time.Now()
	text, err := t.client.Transcribe(ctx, req)
	return text, time.Since(began), err
}

func (t *Transcriber) failed(res Result, reason string) Result {
	res.Text = transcript.Sentinel
	res.Failed = true
	res.Error = reason
	return res
}

// TranscribeAll transcribes every segment with at most width calls in
// flight and returns the results ordered by segment index.
func (t *Transcriber) TranscribeAll(ctx context.Context, segments []ffmpeg.Segment, width int) []Result {
	results := make([]Result, len(segments))
	if len(segments) == 0 {
		return results
	}

	width = EffectiveWidth(width, len(segments))
	log.Info().Int("segments", len(segments)).Int("concurrency", width).Msg("starting concurrent ASR")

	var g errgroup.Group
	g.SetLimit(width)
	for i, seg := range segments {
		g.Go(func() error {
			results[i] = t.Transcribe(ctx, seg)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Index < results[b].Index
	})
	return results
}

// EffectiveWidth clamps the configured width to [1, segments]
func EffectiveWidth(width, segments int) int {
	if width <= 0 {
		width = DefaultConcurrency
	}
	if width > segments {
		width = segments
	}
	if width < 1 {
		width = 1
	}
	return width
}

// Texts extracts the transcript text of each result, in order
func Texts(results []Result) []string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts
}

// maxBackoff bounds a single wait regardless of how many retries are configured.
const maxBackoff = 5 * time.Minute

func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base
	for i := 0; i < attempt && d < maxBackoff; i++ {
		d <<= 1
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
