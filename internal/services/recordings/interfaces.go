package recordings

import (
	"context"
	"io"
	"time"

	"github.com/killallgit/voicenote-api/internal/models"
)

// Upload is an incoming audio file
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service defines the operations on uploaded recordings
type Service interface {
	// Store saves the audio content and creates a Recording in the uploaded state
	Store(ctx context.Context, upload Upload) (*models.Recording, error)

	// Get returns the recording or a NOT_FOUND error
	Get(ctx context.Context, id string) (*models.Recording, error)

	// GetWithNotes returns the recording with its notes preloaded
	GetWithNotes(ctx context.Context, id string) (*models.Recording, error)

	// List returns recordings newest first
	List(ctx context.Context, limit, offset int) ([]models.Recording, error)

	// Transition moves the recording to next if the state machine allows it
	Transition(ctx context.Context, id string, next models.RecordingStatus) (*models.Recording, error)

	// SetDuration records the probed duration in whole seconds
	SetDuration(ctx context.Context, id string, seconds int) error

	// Reclaim claims a recording for a new run. A recording stuck in
	// processing is only taken over when it was last updated before staleBefore.
	Reclaim(ctx context.Context, id string, staleBefore time.Time) (*models.Recording, error)
}

// Repository defines the interface for recording persistence
type Repository interface {
	Create(ctx context.Context, recording *models.Recording) error

	// GetByID returns nil, nil when the recording does not exist
	GetByID(ctx context.Context, id string, withNotes bool) (*models.Recording, error)

	List(ctx context.Context, limit, offset int) ([]models.Recording, error)

	// CompareAndSetStatus updates the status only if it still equals from
	CompareAndSetStatus(ctx context.Context, id string, from, to models.RecordingStatus) (bool, error)

	UpdateDuration(ctx context.Context, id string, seconds int) error

	// ReclaimStale touches a processing recording last updated before before
	ReclaimStale(ctx context.Context, id string, before time.Time) (bool, error)
}
