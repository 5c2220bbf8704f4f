package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type BlogTagRepo struct {
	db *gorm.DB
}

func NewBlogTagRepo(db *gorm.DB) *BlogTagRepo {
	return &BlogTagRepo{db}
}

// TagCount is a tag value with the number of published posts carrying it.
type TagCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// PublishedCounts returns every tag used by a published post, most used first.
func (r *BlogTagRepo) PublishedCounts(ctx context.Context) ([]TagCount, error) {
	var counts []TagCount
	err := r.db.WithContext(ctx).
		Model(&models.BlogTag{}).
		Select("blog_tags.value AS value, COUNT(*) AS count").
		Joins("JOIN blog_posts ON blog_posts.id = blog_tags.blog_post_id").
		Where("blog_posts.published = ?", true).
		Group("blog_tags.value").
		Order("count DESC").
		Order("value ASC").
		Scan(&counts).Error
	return counts, err
}
