package recordings

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/killallgit/voicenote-api/internal/services/storage"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type service struct {
	repo    Repository
	storage storage.Backend
	now     func() time.Time
}

// ServiceOption configures the recording service
type ServiceOption func(*service)

// WithClock overrides the time source used for storage keys
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		s.now = now
	}
}

// NewService creates a new recording service
func NewService(repo Repository, backend storage.Backend, opts ...ServiceOption) Service {
	s := &service{
		repo:    repo,
		storage: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Store(ctx context.Context, upload Upload) (*models.Recording, error) {
	if upload.Body == nil {
		return nil, apperrors.MissingFieldError("audio")
	}

	id := uuid.NewString()
	name := sanitizeFilename(upload.Filename)
	key := path.Join("voices", s.now().UTC().Format("2006/01/02"), id, name)

	if _, err := s.storage.Save(ctx, upload.Body, key); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to store audio").WithDetail("key", key)
	}

	recording := &models.Recording{
		ID:           id,
		OriginalName: name,
		MimeType:     upload.ContentType,
		SizeBytes:    upload.Size,
		Status:       models.RecordingStatusUploaded,
		StoragePath:  key,
	}
	if err := s.repo.Create(ctx, recording); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned upload")
		}
		return nil, apperrors.DatabaseError("create recording", err)
	}

	log.Info().
		Str("recording_id", id).
		Str("name", name).
		Str("mime_type", upload.ContentType).
		Int64("size_bytes", upload.Size).
		Msg("recording stored")
	return recording, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Recording, error) {
	return s.get(ctx, id, false)
}

func (s *service) GetWithNotes(ctx context.Context, id string) (*models.Recording, error) {
	return s.get(ctx, id, true)
}

func (s *service) get(ctx context.Context, id string, withNotes bool) (*models.Recording, error) {
	recording, err := s.repo.GetByID(ctx, id, withNotes)
	if err != nil {
		return nil, apperrors.DatabaseError("get recording", err)
	}
	if recording == nil {
		return nil, apperrors.NotFound("recording", id)
	}
	return recording, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	recordings, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.DatabaseError("list recordings", err)
	}
	return recordings, nil
}

func (s *service) Transition(ctx context.Context, id string, next models.RecordingStatus) (*models.Recording, error) {
	recording, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current := recording.Status
	if !current.CanTransitionTo(next) {
		return nil, apperrors.Wrapf(models.ErrInvalidTransition, apperrors.ErrCodeConflict,
			"recording %s cannot move from %s to %s", id, current, next).
			WithDetail("from", string(current)).
			WithDetail("to", string(next))
	}

	updated, err := s.repo.CompareAndSetStatus(ctx, id, current, next)
	if err != nil {
		return nil, apperrors.DatabaseError("update recording status", err)
	}
	if !updated {
		return nil, apperrors.Wrapf(models.ErrInvalidTransition, apperrors.ErrCodeConflict,
			"recording %s changed status concurrently", id)
	}

	recording.Status = next
	log.Info().Str("recording_id", id).Str("from", string(current)).Str("to", string(next)).Msg("recording status changed")
	return recording, nil
}

func (s *service) SetDuration(ctx context.Context, id string, seconds int) error {
	if err := s.repo.UpdateDuration(ctx, id, seconds); err != nil {
		return apperrors.DatabaseError("update recording duration", err)
	}
	return nil
}

func (s *service) Reclaim(ctx context.Context, id string, staleBefore time.Time) (*models.Recording, error) {
	recording, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recording.Status != models.RecordingStatusProcessing {
		return s.Transition(ctx, id, models.RecordingStatusProcessing)
	}

	reclaimed, err := s.repo.ReclaimStale(ctx, id, staleBefore)
	if err != nil {
		return nil, apperrors.DatabaseError("reclaim recording", err)
	}
	if !reclaimed {
		return nil, apperrors.Wrapf(models.ErrInvalidTransition, apperrors.ErrCodeConflict,
			"recording %s is already being processed", id).
			WithDetail("from", string(recording.Status)).
			WithDetail("updated_at", recording.UpdatedAt)
	}

	log.Warn().
		Str("recording_id", id).
		Time("last_update", recording.UpdatedAt).
		Msg("reclaimed recording left in processing by an earlier run")
	return recording, nil
}

// sanitizeFilename keeps the base name of an uploaded file and strips
// characters that are unsafe in storage keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("voice_%d", time.Now().Unix())
	}
	return name
}
