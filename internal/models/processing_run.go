package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProcessingRun keeps the hand-off record of one pipeline execution
type ProcessingRun struct {
	ID             uint            `json:"id" gorm:"primarykey"`
	RecordingID    string          `json:"recording_id" gorm:"type:varchar(36);not null;index"`
	Status         RecordingStatus `json:"status" gorm:"type:varchar(20);not null"`
	Error          string          `json:"error,omitempty" gorm:"type:text"`
	FailedSegments int             `json:"failed_segments"`
	NoteID         *string         `json:"note_id,omitempty" gorm:"type:varchar(36)"`
	Handoff        datatypes.JSON  `json:"handoff"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName specifies the table name for ProcessingRun
func (ProcessingRun) TableName() string {
	return "processing_runs"
}
