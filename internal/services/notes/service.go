package notes

import (
	"bytes"
	"context"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/voicenote-api/internal/models"
	"github.com/killallgit/voicenote-api/internal/services/storage"
	apperrors "github.com/killallgit/voicenote-api/pkg/errors"
	"github.com/rs/zerolog/log"
)

type service struct {
	repo    Repository
	storage storage.Backend
	now     func() time.Time
}

// NewService creates a new note service
func NewService(repo Repository, backend storage.Backend) Service {
	return &service{
		repo:    repo,
		storage: backend,
		now:     time.Now,
	}
}

// Create stores text under notes/<date>/<note id>/<stem>_note.<format> and
// records the note. A stored file whose row cannot be written is removed.
func (s *service) Create(ctx context.Context, recording *models.Recording, text string, format models.NoteFormat) (*models.Note, error) {
	if recording == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "recording is required")
	}
	if _, err := models.ParseNoteFormat(string(format)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid note format")
	}

	id := uuid.NewString()
	fileName := models.NoteFileName(recording.Stem(), format)
	key := path.Join("notes", s.now().UTC().Format("2006/01/02"), id, fileName)
	content := []byte(text)

	if _, err := s.storage.Save(ctx, bytes.NewReader(content), key); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to store note content").WithDetail("key", key)
	}

	recordingID := recording.ID
	note := &models.Note{
		ID:          id,
		RecordingID: &recordingID,
		Format:      format,
		FileName:    fileName,
		StoragePath: key,
		SizeBytes:   int64(len(content)),
	}
	if err := s.repo.Create(ctx, note); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned note content")
		}
		return nil, apperrors.DatabaseError("create note", err)
	}

	log.Info().
		Str("note_id", id).
		Str("recording_id", recordingID).
		Str("file", fileName).
		Int64("size_bytes", note.SizeBytes).
		Msg("note saved")
	return note, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.DatabaseError("get note", err)
	}
	if note == nil {
		return nil, apperrors.NotFound("note", id)
	}
	return note, nil
}

func (s *service) Content(ctx context.Context, id string) (*models.Note, []byte, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.storage.Load(ctx, note.StoragePath)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to load note content").WithDetail("note_id", id)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read note content").WithDetail("note_id", id)
	}
	return note, data, nil
}

func (s *service) ListByRecording(ctx context.Context, recordingID string) ([]models.Note, error) {
	notes, err := s.repo.ListByRecording(ctx, recordingID)
	if err != nil {
		return nil, apperrors.DatabaseError("list notes", err)
	}
	return notes, nil
}

// Delete removes the note row first, then its content. Missing notes are
// reported as NOT_FOUND.
func (s *service) Delete(ctx context.Context, id string) error {
	note, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.DatabaseError("delete note", err)
	}
	if err := s.storage.Delete(ctx, note.StoragePath); err != nil {
		log.Warn().Err(err).Str("key", note.StoragePath).Msg("failed to remove note content")
	}
	log.Info().Str("note_id", id).Msg("note deleted")
	return nil
}
