package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type ResumeRepo struct {
	db *gorm.DB
}

func NewResumeRepo(db *gorm.DB) *ResumeRepo {
	return &ResumeRepo{db}
}

func (r *ResumeRepo) Add(ctx context.Context, resume *models.ResumeFile) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

// FindAll returns every uploaded resume, newest first
func (r *ResumeRepo) FindAll(ctx context.Context) ([]*models.ResumeFile, error) {
	var resumes []*models.ResumeFile
	err := r.db.WithContext(ctx).Order("uploaded_at DESC").Find(&resumes).Error
	return resumes, err
}

func (r *ResumeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ResumeFile, error) {
	var resume models.ResumeFile
	if err := r.db.WithContext(ctx).First(&resume, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

// FindActive returns the active resume or gorm.ErrRecordNotFound
func (r *ResumeRepo) FindActive(ctx context.Context) (*models.ResumeFile, error) {
	var resume models.ResumeFile
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("uploaded_at DESC").
		First(&resume).Error
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

// Activate makes id the only active resume
func (r *ResumeRepo) Activate(ctx context.Context, id uuid.UUID) (*models.ResumeFile, error) {
	var activated models.ResumeFile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&activated, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ResumeFile{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&activated).Update("is_active", true).Error; err != nil {
			return err
		}
		activated.IsActive = true
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, errs.NewTransactionFailedError("resume activation", err)
	}
	return &activated, nil
}

func (r *ResumeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ResumeFile{}, id)
}
