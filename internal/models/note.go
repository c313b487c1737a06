package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteFormat is the file format a transcript note is written in
type NoteFormat string

const (
	NoteFormatText     NoteFormat = "txt"
	NoteFormatMarkdown NoteFormat = "md"
)

// ParseNoteFormat accepts "txt" or "md"
func ParseNoteFormat(s string) (NoteFormat, error) {
	switch NoteFormat(s) {
	case NoteFormatText, NoteFormatMarkdown:
		return NoteFormat(s), nil
	}
	return "", fmt.Errorf("unsupported note format %q", s)
}

// ContentType is the MIME type the note is served with
func (f NoteFormat) ContentType() string {
	if f == NoteFormatMarkdown {
		return "text/markdown; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Note is the merged transcript produced by one successful processing run
type Note struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RecordingID *string    `json:"recording_id" gorm:"type:varchar(36);index"` // nil once the recording is deleted
	Recording   *Recording `json:"-" gorm:"foreignKey:RecordingID;constraint:OnDelete:SET NULL"`
	Format      NoteFormat `json:"format" gorm:"type:varchar(4);not null"`
	FileName    string     `json:"file_name" gorm:"not null"`
	StoragePath string     `json:"storage_path" gorm:"not null"`
	SizeBytes   int64      `json:"size_bytes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Note
func (Note) TableName() string {
	return "notes"
}

// BeforeCreate assigns a UUID
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NoteFileName builds "<stem>_note.<format>"
func NoteFileName(stem string, format NoteFormat) string {
	return fmt.Sprintf("%s_note.%s", stem, format)
}
