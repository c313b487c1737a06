package types

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/internal/models"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
)

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string                 `json:"status" example:"error"`
	Message string                 `json:"message" example:"recording not found"`
	Error   string                 `json:"error,omitempty" example:"NOT_FOUND"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NoteResponse describes one transcript note
type NoteResponse struct {
	ID          string `json:"id" example:"8a4c2d1e-7b90-4f3a-9e21-5d6c7b8a9f01"`
	Format      string `json:"format" example:"txt"`
	FileName    string `json:"file_name" example:"lecture_note.txt"`
	SizeBytes   int64  `json:"size_bytes" example:"2048"`
	ContentPath string `json:"content_path" example:"/api/notes/8a4c2d1e-7b90-4f3a-9e21-5d6c7b8a9f01/content"`
	CreatedAt   string `json:"created_at" example:"2026-10-17T09:12:00Z"`
}

// RecordingResponse describes an uploaded recording and its notes
type RecordingResponse struct {
	ID           string         `json:"id" example:"3f0c8f0e-1d2b-4c5a-8e9f-0a1b2c3d4e5f"`
	OriginalName string         `json:"original_name" example:"lecture.m4a"`
	MimeType     string         `json:"mime_type" example:"audio/m4a"`
	SizeBytes    int64          `json:"size_bytes" example:"1048576"`
	DurationSec  *int           `json:"duration_sec,omitempty" example:"300"`
	Status       string         `json:"status" example:"done"`
	Notes        []NoteResponse `json:"notes"`
	CreatedAt    string         `json:"created_at" example:"2026-10-17T09:10:00Z"`
	UpdatedAt    string         `json:"updated_at" example:"2026-10-17T09:12:00Z"`
}

// NewNoteResponse converts a note model
func NewNoteResponse(n models.Note) NoteResponse {
	return NoteResponse{
		ID:          n.ID,
		Format:      string(n.Format),
		FileName:    n.FileName,
		SizeBytes:   n.SizeBytes,
		ContentPath: "/api/notes/" + n.ID + "/content",
		CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewRecordingResponse converts a recording model with its preloaded notes
func NewRecordingResponse(r *models.Recording) RecordingResponse {
	resp := RecordingResponse{
		ID:           r.ID,
		OriginalName: r.OriginalName,
		MimeType:     r.MimeType,
		SizeBytes:    r.SizeBytes,
		DurationSec:  r.DurationSec,
		Status:       string(r.Status),
		Notes:        make([]NoteResponse, 0, len(r.Notes)),
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, n := range r.Notes {
		resp.Notes = append(resp.Notes, NewNoteResponse(n))
	}
	return resp
}

// Error writes err as an ErrorResponse with the status its code maps to
func Error(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "internal error")
	}
	c.JSON(appErr.GetHTTPCode(), ErrorResponse{
		Status:  StatusError,
		Message: appErr.Message,
		Error:   string(appErr.Code),
		Details: appErr.Details,
	})
}

// ErrorWithCode writes a response for code without an underlying error
func ErrorWithCode(c *gin.Context, status int, code apperrors.ErrorCode, message string) {
	c.JSON(status, ErrorResponse{
		Status:  StatusError,
		Message: message,
		Error:   string(code),
	})
}

// NotFound writes the generic 404 body
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Status:  StatusError,
		Message: "The requested endpoint was not found",
		Error:   string(apperrors.ErrCodeNotFound),
		Details: map[string]interface{}{"path": c.Request.URL.Path},
	})
}
