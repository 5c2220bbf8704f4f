package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project represents a portfolio project card
type Project struct {
	ID              uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Title           string                      `json:"title" db:"title" gorm:"type:text;not null;uniqueIndex"`
	Description     string                      `json:"description" db:"description" gorm:"type:text;not null"`
	LongDescription *string                     `json:"long_description,omitempty" db:"long_description" gorm:"type:text"`
	Technologies    datatypes.JSONSlice[string] `json:"technologies" db:"technologies"`
	GithubURL       *string                     `json:"github_url,omitempty" db:"github_url" gorm:"type:text"`
	LiveURL         *string                     `json:"live_url,omitempty" db:"live_url" gorm:"type:text"`
	ImageURL        *string                     `json:"image_url,omitempty" db:"image_url" gorm:"type:text"`
	Featured        bool                        `json:"featured" db:"featured" gorm:"not null;default:false;index"`
	OrderIndex      int                         `json:"order_index" db:"order_index" gorm:"not null;default:0;index"`
	CreatedAt       time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at" db:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NormalizeTechnologies trims entries and drops blanks and duplicates,
// keeping first-seen order.
func (p *Project) NormalizeTechnologies() {
	seen := make(map[string]bool, len(p.Technologies))
	normalized := make([]string, 0, len(p.Technologies))
	for _, tech := range p.Technologies {
		tech = strings.TrimSpace(tech)
		if tech == "" || seen[strings.ToLower(tech)] {
			continue
		}
		seen[strings.ToLower(tech)] = true
		normalized = append(normalized, tech)
	}
	p.Technologies = normalized
}
