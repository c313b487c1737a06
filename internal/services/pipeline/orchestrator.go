package pipeline

import (
	"context"
	"encoding/json"
	"time"
	"unicode/utf8"

	"github.com/killallgit/voicenote-api/internal/metrics"
	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/killallgit/voicenote-api/internal/services/asr"
	"github.com/killallgit/voicenote-api/internal/services/storage"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/killallgit/voicenote-api/pkg/ffmpeg"
	"github.com/killallgit/voicenote-api/pkg/transcript"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// RecordingStore is the part of the recording service the pipeline needs
type RecordingStore interface {
	Get(ctx context.Context, id string) (*models.Recording, error)
	Transition(ctx context.Context, id string, next models.RecordingStatus) (*models.Recording, error)
	SetDuration(ctx context.Context, id string, seconds int) error
	Reclaim(ctx context.Context, id string, staleBefore time.Time) (*models.Recording, error)
}

// NoteWriter persists the merged transcript
type NoteWriter interface {
	Create(ctx context.Context, recording *models.Recording, text string, format models.NoteFormat) (*models.Note, error)
	Delete(ctx context.Context, id string) error
}

// RunRecorder keeps hand-off records
type RunRecorder interface {
	Save(ctx context.Context, run *models.ProcessingRun) error
}

// MediaTools probes and splits audio
type MediaTools interface {
	Verify(ctx context.Context) error
	ProbeDuration(ctx context.Context, path string) (float64, bool)
	SplitDuration(ctx context.Context, path string, segmentSeconds int, duration float64) (*ffmpeg.SegmentSet, error)
	DefaultDuration() float64
}

// SegmentTranscriber turns segments into text
type SegmentTranscriber interface {
	TranscribeAll(ctx context.Context, segments []ffmpeg.Segment, width int) []asr.Result
	Config() asr.Config
}

// DefaultStaleAfter is how long a recording may sit in processing before
// another run can take it over
const DefaultStaleAfter = 2 * time.Hour

// Settings are the per-run knobs
type Settings struct {
	SegmentSeconds int
	Concurrency    int
	NoteFormat     models.NoteFormat
	TempDir        string
	StaleAfter     time.Duration // 0 means DefaultStaleAfter, negative never reclaims
}

// Orchestrator runs the whole voice-to-note pipeline for one recording
type Orchestrator struct {
	recordings  RecordingStore
	notes       NoteWriter
	runs        RunRecorder
	tools       MediaTools
	transcriber SegmentTranscriber
	storage     storage.Backend
	metrics     *metrics.Metrics
	settings    Settings
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithRuns stores a ProcessingRun per finished run
func WithRuns(runs RunRecorder) Option {
	return func(o *Orchestrator) {
		o.runs = runs
	}
}

// WithMetrics reports runs, segments and phase timings
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// New creates an Orchestrator
func New(recordings RecordingStore, notes NoteWriter, tools MediaTools, transcriber SegmentTranscriber,
	backend storage.Backend, settings Settings, opts ...Option) *Orchestrator {
	if settings.SegmentSeconds <= 0 {
		settings.SegmentSeconds = 150
	}
	if settings.Concurrency <= 0 {
		settings.Concurrency = asr.DefaultConcurrency
	}
	if settings.StaleAfter == 0 {
		settings.StaleAfter = DefaultStaleAfter
	}
	if settings.NoteFormat == "" {
		settings.NoteFormat = models.NoteFormatText
	}
	o := &Orchestrator{
		recordings:  recordings,
		notes:       notes,
		tools:       tools,
		transcriber: transcriber,
		storage:     backend,
		settings:    settings,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsNotFound reports whether Process failed because the recording does not exist
func IsNotFound(err error) bool {
	return apperrors.Is(err, apperrors.ErrCodeNotFound)
}

// IsProcessingFailure reports whether Process failed for any other reason
func IsProcessingFailure(err error) bool {
	return err != nil && !IsNotFound(err)
}

// Process turns the stored audio of recording id into a note. The returned
// Handoff is never nil.
func (o *Orchestrator) Process(ctx context.Context, id string) (*Handoff, error) {
	cfg := o.transcriber.Config()
	h := &Handoff{
		RecordingID:    id,
		SegmentSeconds: o.settings.SegmentSeconds,
		ASRModel:       cfg.Model,
		ASRBaseURL:     cfg.BaseURL,
		Concurrency:    o.settings.Concurrency,
		Segments:       []SegmentReport{},
		StartedAt:      time.Now().UTC(),
	}

	recording, err := o.recordings.Get(ctx, id)
	if err != nil {
		h.Error = err.Error()
		o.finish(ctx, h, false)
		return h, err
	}
	h.Status = recording.Status

	log.Info().Str("recording_id", id).Str("file", recording.OriginalName).Msg("processing started")

	began := time.Now()
	err = o.tools.Verify(ctx)
	h.Timings.Verify = time.Since(began).Seconds()
	o.metrics.ObservePhase("verify", time.Since(began))
	if err != nil {
		return o.fail(ctx, h, apperrors.Wrap(err, apperrors.ErrCodeToolUnavailable, "ffmpeg or ffprobe is not available"), false)
	}
	h.ToolsAvailable = true

	if recording, err = o.claim(ctx, recording); err != nil {
		// another run owns the recording or the state is not processable
		h.Error = err.Error()
		o.finish(ctx, h, false)
		return h, err
	}
	h.Status = models.RecordingStatusProcessing

	note, err := o.run(ctx, h, recording)
	if err != nil {
		return o.fail(ctx, h, err, true)
	}

	began = time.Now()
	if _, err := o.recordings.Transition(ctx, id, models.RecordingStatusDone); err != nil {
		// a failed recording keeps no note from this run
		if delErr := o.notes.Delete(context.WithoutCancel(ctx), note.ID); delErr != nil {
			log.Error().Err(delErr).Str("note_id", note.ID).Msg("failed to remove note of failed run")
		}
		return o.fail(ctx, h, apperrors.Wrap(err, apperrors.ErrCodePersistFailed, "failed to mark recording done"), true)
	}
	h.Timings.Persist += time.Since(began).Seconds()
	h.Status = models.RecordingStatusDone
	h.NoteID = note.ID
	h.NotePath = note.StoragePath
	h.NoteSize = note.SizeBytes

	o.finish(ctx, h, true)
	return h, nil
}

// claim moves the recording into processing. A recording already in
// processing is taken over only once it has gone stale.
func (o *Orchestrator) claim(ctx context.Context, recording *models.Recording) (*models.Recording, error) {
	if recording.Status == models.RecordingStatusProcessing && o.settings.StaleAfter > 0 {
		return o.recordings.Reclaim(ctx, recording.ID, time.Now().Add(-o.settings.StaleAfter))
	}
	return o.recordings.Transition(ctx, recording.ID, models.RecordingStatusProcessing)
}

// run covers the phases between claiming the recording and marking it done
func (o *Orchestrator) run(ctx context.Context, h *Handoff, recording *models.Recording) (*models.Note, error) {
	localPath, release, err := storage.Materialize(ctx, o.storage, recording.StoragePath, o.settings.TempDir)
	defer release()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProcessingFailed, "stored audio is not readable").
			WithDetail("key", recording.StoragePath)
	}

	began := time.Now()
	duration, ok := o.tools.ProbeDuration(ctx, localPath)
	h.Timings.Probe = time.Since(began).Seconds()
	o.metrics.ObservePhase("probe", time.Since(began))
	if ok {
		if err := o.recordings.SetDuration(ctx, recording.ID, int(duration)); err != nil {
			log.Warn().Err(err).Str("recording_id", recording.ID).Msg("failed to store duration")
		}
	} else {
		duration = o.tools.DefaultDuration()
		h.DurationFallback = true
		log.Warn().Str("recording_id", recording.ID).Float64("duration", duration).Msg("probe failed, assuming default duration")
	}
	h.TotalDuration = duration

	began = time.Now()
	set, err := o.tools.SplitDuration(ctx, localPath, o.settings.SegmentSeconds, duration)
	h.Timings.Split = time.Since(began).Seconds()
	o.metrics.ObservePhase("split", time.Since(began))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSegmentationFailed, "audio segmentation failed")
	}
	defer cleanupSegments(set)

	began = time.Now()
	results := o.transcriber.TranscribeAll(ctx, set.Segments, o.settings.Concurrency)
	h.Timings.Transcribe = time.Since(began).Seconds()
	o.metrics.ObservePhase("transcribe", time.Since(began))
	cleanupSegments(set)

	h.Segments = reports(set.Segments, results)
	for _, r := range results {
		o.metrics.ObserveSegment(r.Failed, r.Attempts)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProcessingFailed, "processing cancelled")
	}

	began = time.Now()
	texts := asr.Texts(results)
	merged := transcript.Merge(texts)
	h.FailedSegments = transcript.CountFailed(texts)
	h.MergedLength = utf8.RuneCountInString(merged)
	h.Timings.Merge = time.Since(began).Seconds()
	o.metrics.ObservePhase("merge", time.Since(began))

	began = time.Now()
	note, err := o.notes.Create(ctx, recording, merged, o.settings.NoteFormat)
	h.Timings.Persist = time.Since(began).Seconds()
	o.metrics.ObservePhase("persist", time.Since(began))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodePersistFailed, "failed to save note")
	}
	return note, nil
}

// fail marks the recording failed on a best-effort basis and returns err
// unchanged. A recording in processing is only touched by the run that owns it.
func (o *Orchestrator) fail(ctx context.Context, h *Handoff, err error, owned bool) (*Handoff, error) {
	h.Error = err.Error()
	h.Status = models.RecordingStatusFailed

	// the recording must not stay in processing when the caller goes away
	ctx = context.WithoutCancel(ctx)
	current, getErr := o.recordings.Get(ctx, h.RecordingID)
	switch {
	case getErr != nil:
		log.Error().Err(getErr).Str("recording_id", h.RecordingID).Msg("failed to reload recording")
	case current.Status == models.RecordingStatusProcessing && !owned,
		!current.Status.CanTransitionTo(models.RecordingStatusFailed):
		h.Status = current.Status
		log.Warn().Str("recording_id", h.RecordingID).Str("status", string(current.Status)).Msg("recording left in its current state")
	default:
		if _, tErr := o.recordings.Transition(ctx, h.RecordingID, models.RecordingStatusFailed); tErr != nil {
			log.Error().Err(tErr).Str("recording_id", h.RecordingID).Msg("failed to mark recording failed")
		}
	}

	o.finish(ctx, h, true)
	return h, err
}

// finish stamps the hand-off, logs it and, when the run touched the
// recording, stores it as a ProcessingRun.
func (o *Orchestrator) finish(ctx context.Context, h *Handoff, persist bool) {
	h.FinishedAt = time.Now().UTC()
	h.Timings.Total = h.FinishedAt.Sub(h.StartedAt).Seconds()

	if h.Error != "" {
		log.Error().EmbedObject(h).Msg("processing finished with error")
	} else {
		log.Info().EmbedObject(h).Msg("processing finished")
	}
	for _, s := range h.Segments {
		log.Debug().
			Str("recording_id", h.RecordingID).
			Int("index", s.Index).
			Int("attempts", s.Attempts).
			Bool("failed", s.Failed).
			Float64("asr_duration", s.ASRDuration).
			Msg("segment report")
	}

	if !persist {
		return
	}
	o.metrics.ObserveRun(string(h.Status))
	if o.runs == nil {
		return
	}

	payload, err := json.Marshal(h)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode hand-off record")
		return
	}
	run := &models.ProcessingRun{
		RecordingID:    h.RecordingID,
		Status:         h.Status,
		Error:          h.Error,
		FailedSegments: h.FailedSegments,
		Handoff:        datatypes.JSON(payload),
		StartedAt:      h.StartedAt,
		FinishedAt:     h.FinishedAt,
	}
	if h.NoteID != "" {
		noteID := h.NoteID
		run.NoteID = &noteID
	}
	if err := o.runs.Save(context.WithoutCancel(ctx), run); err != nil {
		log.Error().Err(err).Str("recording_id", h.RecordingID).Msg("failed to save processing run")
	}
}

func cleanupSegments(set *ffmpeg.SegmentSet) {
	if err := set.Cleanup(); err != nil {
		log.Warn().Err(err).Msg("failed to remove segments")
	}
}

func reports(segments []ffmpeg.Segment, results []asr.Result) []SegmentReport {
	byIndex := make(map[int]asr.Result, len(results))
	for _, r := range results {
		byIndex[r.Index] = r
	}

	out := make([]SegmentReport, 0, len(segments))
	for _, s := range segments {
		r := byIndex[s.Index]
		out = append(out, SegmentReport{
			Index:          s.Index,
			Start:          s.Start,
			End:            s.End,
			Command:        s.Command,
			ExtractionTime: s.ExtractionTime.Seconds(),
			ASRDuration:    r.ASRDuration.Seconds(),
			Attempts:       r.Attempts,
			Retries:        r.Retries,
			Failed:         r.Failed,
			Error:          r.Error,
			TextLength:     utf8.RuneCountInString(r.Text),
		})
	}
	return out
}
