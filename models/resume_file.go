package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResumeFile is an uploaded resume PDF. At most one row is active.
type ResumeFile struct {
	ID         uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Filename   string    `json:"filename" db:"filename" gorm:"type:text;not null"`
	BlobURL    string    `json:"blob_url" db:"blob_url" gorm:"type:text;not null"`
	BlobKey    string    `json:"-" db:"blob_key" gorm:"type:text;not null"`
	FileSize   int64     `json:"file_size" db:"file_size" gorm:"not null"`
	IsActive   bool      `json:"is_active" db:"is_active" gorm:"not null;default:false;index"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at" gorm:"autoCreateTime"`
}

func (r *ResumeFile) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
