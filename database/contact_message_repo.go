package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type ContactMessageRepo struct {
	db *gorm.DB
}

func NewContactMessageRepo(db *gorm.DB) *ContactMessageRepo {
	return &ContactMessageRepo{db}
}

func (r *ContactMessageRepo) Add(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// FindAll returns messages newest first
func (r *ContactMessageRepo) FindAll(ctx context.Context, unreadOnly bool) ([]*models.ContactMessage, error) {
	var messages []*models.ContactMessage
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *ContactMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetRead flips the read flag and returns the updated message
func (r *ContactMessageRepo) SetRead(ctx context.Context, id uuid.UUID, read bool) (*models.ContactMessage, error) {
	result := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("read", read)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *ContactMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ContactMessage{}, id)
}

func (r *ContactMessageRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Count(&n).Error
	return n, err
}

func (r *ContactMessageRepo) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("read = ?", false).Count(&n).Error
	return n, err
}
