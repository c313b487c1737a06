package runs

import (
	"context"
	"errors"

	"github.com/killallgit/voicenote-api/internal/models"
	"gorm.io/gorm"
)

// Repository persists processing run hand-off records
type Repository interface {
	Save(ctx context.Context, run *models.ProcessingRun) error
	ListByRecording(ctx context.Context, recordingID string) ([]models.ProcessingRun, error)
	Latest(ctx context.Context, recordingID string) (*models.ProcessingRun, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new processing run repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, run *models.ProcessingRun) error {
	if run == nil {
		return errors.New("run cannot be nil")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *repository) ListByRecording(ctx context.Context, recordingID string) ([]models.ProcessingRun, error) {
	var runs []models.ProcessingRun
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("id ASC").
		Find(&runs).Error
	return runs, err
}

// Latest returns nil, nil when the recording was never processed
func (r *repository) Latest(ctx context.Context, recordingID string) (*models.ProcessingRun, error) {
	var run models.ProcessingRun
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("id DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
