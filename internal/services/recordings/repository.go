package recordings

import (
	"context"
	"errors"
	"time"

	"github.com/killallgit/voicenote-api/internal/models"
	"gorm.io/gorm"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new recording repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, recording *models.Recording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	return r.db.WithContext(ctx).Create(recording).Error
}

func (r *repository) GetByID(ctx context.Context, id string, withNotes bool) (*models.Recording, error) {
	var recording models.Recording

	q := r.db.WithContext(ctx)
	if withNotes {
		q = q.Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	}
	if err := q.Where("id = ?", id).First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	var recordings []models.Recording
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&recordings).Error
	return recordings, err
}

func (r *repository) CompareAndSetStatus(ctx context.Context, id string, from, to models.RecordingStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) UpdateDuration(ctx context.Context, id string, seconds int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ?", id).
		Update("duration_sec", seconds)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ReclaimStale(ctx context.Context, id string, before time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Recording{}).
		Where("id = ? AND status = ? AND updated_at < ?", id, models.RecordingStatusProcessing, before.UTC()).
		Update("status", models.RecordingStatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
