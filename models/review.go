package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a testimonial left by a visitor. Only approved reviews are public.
type Review struct {
	ID          uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" db:"name" gorm:"type:text;not null"`
	Email       string    `json:"email,omitempty" db:"email" gorm:"type:text;not null"`
	Role        string    `json:"role" db:"role" gorm:"type:text"`
	Company     string    `json:"company" db:"company" gorm:"type:text"`
	Content     string    `json:"content" db:"content" gorm:"type:text;not null"`
	Rating      int       `json:"rating" db:"rating" gorm:"not null;default:5"`
	LinkedInURL *string   `json:"linkedin_url,omitempty" db:"linkedin_url" gorm:"column:linkedin_url;type:text"`
	Verified    bool      `json:"verified" db:"verified" gorm:"not null;default:false"`
	Approved    bool      `json:"approved" db:"approved" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" gorm:"index"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
