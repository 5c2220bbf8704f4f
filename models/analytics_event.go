package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnalyticsEvent is one tracked page view
type AnalyticsEvent struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	PagePath  string    `json:"page_path" db:"page_path" gorm:"type:text;not null;index"`
	VisitorID string    `json:"visitor_id" db:"visitor_id" gorm:"type:text;not null"`
	UserAgent *string   `json:"user_agent,omitempty" db:"user_agent" gorm:"type:text"`
	Referrer  *string   `json:"referrer" db:"referrer" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"index"`
}

func (AnalyticsEvent) TableName() string { return "analytics" }

func (e *AnalyticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
