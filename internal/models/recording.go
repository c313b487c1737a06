package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordingStatus is the lifecycle state of an uploaded recording
type RecordingStatus string

const (
	RecordingStatusUploaded   RecordingStatus = "uploaded"
	RecordingStatusProcessing RecordingStatus = "processing"
	RecordingStatusDone       RecordingStatus = "done"
	RecordingStatusFailed     RecordingStatus = "failed"
)

// ErrInvalidTransition is returned when a status change is not allowed
var ErrInvalidTransition = errors.New("invalid recording status transition")

// allowed lists the legal next states. done and failed may only re-enter
// processing, which starts a fresh attempt.
var allowed = map[RecordingStatus][]RecordingStatus{
	RecordingStatusUploaded:   {RecordingStatusProcessing, RecordingStatusFailed},
	RecordingStatusProcessing: {RecordingStatusDone, RecordingStatusFailed},
	RecordingStatusDone:       {RecordingStatusProcessing},
	RecordingStatusFailed:     {RecordingStatusProcessing},
}

// ParseRecordingStatus converts a stored or user supplied value into a status
func ParseRecordingStatus(s string) (RecordingStatus, error) {
	status := RecordingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown recording status %q", s)
	}
	return status, nil
}

// Valid reports whether s is one of the declared statuses
func (s RecordingStatus) Valid() bool {
	_, ok := allowed[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal
func (s RecordingStatus) CanTransitionTo(next RecordingStatus) bool {
	for _, candidate := range allowed[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether a processing attempt has ended in s
func (s RecordingStatus) Terminal() bool {
	return s == RecordingStatusDone || s == RecordingStatusFailed
}

// Value implements driver.Valuer
func (s RecordingStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown recording status %q", string(s))
	}
	return string(s), nil
}

// Scan implements sql.Scanner and rejects values outside the enumeration
func (s *RecordingStatus) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into RecordingStatus", value)
	}
	parsed, err := ParseRecordingStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Recording is an uploaded audio file and its processing state
type Recording struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OriginalName string          `json:"original_name" gorm:"not null"`
	MimeType     string          `json:"mime_type" gorm:"size:100"`
	SizeBytes    int64           `json:"size_bytes"`
	DurationSec  *int            `json:"duration_sec"` // whole seconds, nil until probed
	Status       RecordingStatus `json:"status" gorm:"type:varchar(20);not null;index;default:uploaded"`
	StoragePath  string          `json:"storage_path" gorm:"not null"`
	Notes        []Note          `json:"notes,omitempty" gorm:"foreignKey:RecordingID;constraint:OnDelete:SET NULL"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Recording
func (Recording) TableName() string {
	return "recordings"
}

// BeforeCreate assigns a UUID and the initial status
func (r *Recording) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RecordingStatusUploaded
	}
	return nil
}

// Stem is the original file name without directory or extension
func (r *Recording) Stem() string {
	base := filepath.Base(r.OriginalName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "voice"
	}
	return stem
}
