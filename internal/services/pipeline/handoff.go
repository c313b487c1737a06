package pipeline

import (
	"time"

	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/rs/zerolog"
)

// Handoff describes one processing run. It is returned on success and on
// failure, persisted as a ProcessingRun and logged when the run ends.
type Handoff struct {
	RecordingID      string                 `json:"recording_id"`
	Status           models.RecordingStatus `json:"status"`
	Error            string                 `json:"error,omitempty"`
	ToolsAvailable   bool                   `json:"tools_available"`
	TotalDuration    float64                `json:"total_duration"`
	DurationFallback bool                   `json:"duration_fallback"`
	SegmentSeconds   int                    `json:"segment_length"`
	ASRModel         string                 `json:"asr_model"`
	ASRBaseURL       string                 `json:"asr_base_url"`
	Concurrency      int                    `json:"concurrency"`
	Timings          PhaseTimings           `json:"timings"`
	Segments         []SegmentReport        `json:"segments"`
	FailedSegments   int                    `json:"failed_segments"`
	MergedLength     int                    `json:"merged_length"` // runes
	NoteID           string                 `json:"note_id,omitempty"`
	NotePath         string                 `json:"note_path,omitempty"`
	NoteSize         int64                  `json:"note_size,omitempty"`
	StartedAt        time.Time              `json:"started_at"`
	FinishedAt       time.Time              `json:"finished_at"`
}

// PhaseTimings holds wall-clock seconds per phase
type PhaseTimings struct {
	Verify     float64 `json:"verify"`
	Probe      float64 `json:"probe"`
	Split      float64 `json:"split"`
	Transcribe float64 `json:"transcribe"`
	Merge      float64 `json:"merge"`
	Persist    float64 `json:"persist"`
	Total      float64 `json:"total"`
}

// SegmentReport is the per-segment part of the hand-off
type SegmentReport struct {
	Index          int     `json:"index"`
	Start          float64 `json:"start_time"`
	End            float64 `json:"end_time"`
	Command        string  `json:"ffmpeg_command"`
	ExtractionTime float64 `json:"extraction_time"`
	ASRDuration    float64 `json:"asr_duration"`
	Attempts       int     `json:"attempts"`
	Retries        int     `json:"retry_attempts"`
	Failed         bool    `json:"failed"`
	Error          string  `json:"error,omitempty"`
	TextLength     int     `json:"text_length"`
}

// MarshalZerologObject logs the summary fields; segments are logged one by one.
func (h *Handoff) MarshalZerologObject(e *zerolog.Event) {
	e.Str("recording_id", h.RecordingID).
		Str("status", string(h.Status)).
		Bool("tools_available", h.ToolsAvailable).
		Float64("total_duration", h.TotalDuration).
		Bool("duration_fallback", h.DurationFallback).
		Int("segment_length", h.SegmentSeconds).
		Int("segments", len(h.Segments)).
		Int("failed_segments", h.FailedSegments).
		Int("merged_length", h.MergedLength).
		Str("asr_model", h.ASRModel).
		Int("concurrency", h.Concurrency).
		Float64("total_seconds", h.Timings.Total)
	if h.NoteID != "" {
		e.Str("note_id", h.NoteID).Str("note_path", h.NotePath).Int64("note_size", h.NoteSize)
	}
	if h.Error != "" {
		e.Str("error", h.Error)
	}
}
