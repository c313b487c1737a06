package notes

import (
	"context"

	"github.com/killallgit/voicenote-api/internal/models"
)

// Service defines the operations on transcript notes
type Service interface {
	// Create writes text as a new note for recording
	Create(ctx context.Context, recording *models.Recording, text string, format models.NoteFormat) (*models.Note, error)

	// Get returns the note or a NOT_FOUND error
	Get(ctx context.Context, id string) (*models.Note, error)

	// Content returns the note with its stored text
	Content(ctx context.Context, id string) (*models.Note, []byte, error)

	// ListByRecording returns the notes of a recording, oldest first
	ListByRecording(ctx context.Context, recordingID string) ([]models.Note, error)

	// Delete removes the note row and its stored content
	Delete(ctx context.Context, id string) error
}

// Repository defines the interface for note persistence
type Repository interface {
	Create(ctx context.Context, note *models.Note) error

	// GetByID returns nil, nil when the note does not exist
	GetByID(ctx context.Context, id string) (*models.Note, error)

	ListByRecording(ctx context.Context, recordingID string) ([]models.Note, error)

	Delete(ctx context.Context, id string) error
}
