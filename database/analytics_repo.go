package database

import (
	"context"
	"time"

	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type AnalyticsRepo struct {
	db *gorm.DB
}

func NewAnalyticsRepo(db *gorm.DB) *AnalyticsRepo {
	return &AnalyticsRepo{db}
}

func (r *AnalyticsRepo) Add(ctx context.Context, event *models.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Recent returns the newest events, at most limit of them
func (r *AnalyticsRepo) Recent(ctx context.Context, limit int) ([]*models.AnalyticsEvent, error) {
	var events []*models.AnalyticsEvent
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func (r *AnalyticsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).Count(&n).Error
	return n, err
}

// DeleteOlderThan removes events created before cutoff and reports how many went
func (r *AnalyticsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AnalyticsEvent{})
	return result.RowsAffected, result.Error
}

// CountSince counts events created at or after t
func (r *AnalyticsRepo) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.AnalyticsEvent{}).Where("created_at >= ?", t).Count(&n).Error
	return n, err
}
