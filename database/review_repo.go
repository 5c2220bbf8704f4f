package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type ReviewRepo struct {
	db *gorm.DB
}

func NewReviewRepo(db *gorm.DB) *ReviewRepo {
	return &ReviewRepo{db}
}

func (r *ReviewRepo) Add(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// FindApproved returns the public reviews, newest first
func (r *ReviewRepo) FindApproved(ctx context.Context) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.db.WithContext(ctx).Where("approved = ?", true).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

// FindAll returns every review for moderation, newest first
func (r *ReviewRepo) FindAll(ctx context.Context) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateFlags sets the moderation flags that are non-nil
func (r *ReviewRepo) UpdateFlags(ctx context.Context, id uuid.UUID, approved, verified *bool) (*models.Review, error) {
	updates := map[string]any{}
	if approved != nil {
		updates["approved"] = *approved
	}
	if verified != nil {
		updates["verified"] = *verified
	}

	review, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return review, nil
	}
	if err := r.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *ReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.Review{}, id)
}

func (r *ReviewRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Review{}).Where("approved = ?", false).Count(&n).Error
	return n, err
}
