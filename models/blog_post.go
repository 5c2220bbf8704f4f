package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const wordsPerMinute = 200

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID             uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey"`
	Title          string     `json:"title" db:"title" gorm:"type:text;not null;uniqueIndex"`
	Slug           string     `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex"`
	Excerpt        *string    `json:"excerpt,omitempty" db:"excerpt" gorm:"type:text"`
	Content        string     `json:"content" db:"content" gorm:"type:text;not null"`
	CoverImageURL  *string    `json:"cover_image_url,omitempty" db:"cover_image_url" gorm:"type:text"`
	Published      bool       `json:"published" db:"published" gorm:"not null;default:false;index"`
	PublishedAt    *time.Time `json:"published_at,omitempty" db:"published_at"`
	ReadingMinutes int        `json:"reading_minutes" db:"reading_minutes" gorm:"not null;default:1"`
	Tags           []BlogTag  `json:"tags,omitempty" gorm:"foreignKey:BlogPostID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

func (b *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Prepare fills the derived fields: slug, reading time and first publish time.
func (b *BlogPost) Prepare(now time.Time) {
	if strings.TrimSpace(b.Slug) == "" {
		b.Slug = Slugify(b.Title)
	} else {
		b.Slug = Slugify(b.Slug)
	}
	b.ReadingMinutes = ReadingMinutes(b.Content)
	if b.Published && b.PublishedAt == nil {
		b.PublishedAt = &now
	}
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphens = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, turns whitespace into hyphens and drops anything
// outside [a-z0-9-].
func Slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	hyphenated := strings.Join(strings.Fields(lower), "-")
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")
	return strings.Trim(multiHyphens.ReplaceAllString(cleaned, "-"), "-")
}

// ReadingMinutes estimates reading time, never less than one minute.
func ReadingMinutes(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
