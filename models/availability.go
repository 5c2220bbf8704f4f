package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AvailabilitySlot marks one bookable time slot on a calendar date
type AvailabilitySlot struct {
	ID        uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Date      datatypes.Date `json:"date" db:"date" gorm:"not null;uniqueIndex:idx_availability_slot"`
	TimeSlot  string         `json:"time_slot" db:"time_slot" gorm:"type:text;not null;uniqueIndex:idx_availability_slot"`
	Available bool           `json:"available" db:"available" gorm:"not null"`
}

func (AvailabilitySlot) TableName() string { return "availability_settings" }

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
