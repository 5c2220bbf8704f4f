package models

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("  Hello   World "))
	assert.Equal(t, "go-is-fun", Slugify("Go -- is fun!!"))
	assert.Equal(t, "c-tips", Slugify("C# tips"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestReadingMinutes(t *testing.T) {
	assert.Equal(t, 1, ReadingMinutes(""))
	assert.Equal(t, 1, ReadingMinutes("one two three"))

	words := bytes.Repeat([]byte("word "), 401)
	assert.Equal(t, 3, ReadingMinutes(string(words)))
}

func TestBlogPostPrepare(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	post := BlogPost{Title: "Shipping Go Services", Content: "short", Published: true}
	post.Prepare(now)

	assert.Equal(t, "shipping-go-services", post.Slug)
	assert.Equal(t, 1, post.ReadingMinutes)
	require.NotNil(t, post.PublishedAt)
	assert.Equal(t, now, *post.PublishedAt)

	earlier := now.Add(-time.Hour)
	post.PublishedAt = &earlier
	post.Prepare(now)
	assert.Equal(t, earlier, *post.PublishedAt, "first publish time is kept")

	draft := BlogPost{Title: "Draft", Slug: "My Custom Slug"}
	draft.Prepare(now)
	assert.Equal(t, "my-custom-slug", draft.Slug)
	assert.Nil(t, draft.PublishedAt)
}

func TestNormalizeTechnologies(t *testing.T) {
	p := Project{Technologies: []string{" Go ", "go", "", "React", "Postgres", "react"}}
	p.NormalizeTechnologies()
	assert.Equal(t, []string{"Go", "React", "Postgres"}, []string(p.Technologies))
}

func TestColumnMismatchReport(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Project{}, &ContactMessage{}))
	require.NoError(t, db.Exec("ALTER TABLE projects ADD COLUMN legacy_slug text").Error)

	reports, err := ColumnMismatchReport(db)
	require.NoError(t, err)

	byTable := make(map[string]TableReport)
	for _, r := range reports {
		byTable[r.Table] = r
	}

	assert.Equal(t, []string{"legacy_slug"}, byTable["projects"].Unaccounted)
	assert.Empty(t, byTable["contact_messages"].Unaccounted)
	assert.True(t, byTable["reviews"].Missing)

	var out bytes.Buffer
	WriteColumnReport(&out, reports)
	assert.Contains(t, out.String(), "  - legacy_slug")
	assert.Contains(t, out.String(), "Total mismatched columns across all tables: 1")
}
