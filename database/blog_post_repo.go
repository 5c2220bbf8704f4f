package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// FindAll returns blog posts with their tags. Published listings are ordered
// by publish time, the admin listing by creation time.
func (r *BlogPostRepo) FindAll(ctx context.Context, publishedOnly bool) ([]*models.BlogPost, error) {
	var blogPosts []*models.BlogPost
	q := r.db.WithContext(ctx).Preload("Tags")
	if publishedOnly {
		q = q.Where("published = ?", true).Order("published_at DESC")
	} else {
		q = q.Order("created_at DESC")
	}
	err := q.Find(&blogPosts).Error
	return blogPosts, err
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := r.db.WithContext(ctx).Preload("Tags").First(&blogPost, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &blogPost, nil
}

// FindPublishedBySlug returns a published blog post by its slug
func (r *BlogPostRepo) FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := r.db.WithContext(ctx).Preload("Tags").
		Where("slug = ? AND published = ?", slug, true).
		First(&blogPost).Error
	if err != nil {
		return nil, err
	}
	return &blogPost, nil
}

// Add inserts a new blog post and its tags
func (r *BlogPostRepo) Add(ctx context.Context, blogPost *models.BlogPost) error {
	return r.db.WithContext(ctx).Create(blogPost).Error
}

// Update saves the post and replaces its tags with blogPost.Tags
func (r *BlogPostRepo) Update(ctx context.Context, blogPost *models.BlogPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := blogPost.Tags
		if err := tx.Omit("Tags").Save(blogPost).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_post_id = ?", blogPost.ID).Delete(&models.BlogTag{}).Error; err != nil {
			return err
		}
		for i := range tags {
			tags[i].ID = uuid.Nil
			tags[i].BlogPostID = blogPost.ID
		}
		if len(tags) > 0 {
			if err := tx.Create(&tags).Error; err != nil {
				return err
			}
		}
		blogPost.Tags = tags
		return nil
	})
}

// Delete removes a blog post and its tags by id
func (r *BlogPostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_post_id = ?", id).Delete(&models.BlogTag{}).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.BlogPost{}, id)
	})
}

func (r *BlogPostRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Count(&n).Error
	return n, err
}
