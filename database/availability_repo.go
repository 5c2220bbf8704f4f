package database

import (
	"context"
	"time"

	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AvailabilityRepo struct {
	db *gorm.DB
}

func NewAvailabilityRepo(db *gorm.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db}
}

// FindAll returns every stored slot ordered by date then time slot
func (r *AvailabilityRepo) FindAll(ctx context.Context) ([]*models.AvailabilitySlot, error) {
	var slots []*models.AvailabilitySlot
	err := r.db.WithContext(ctx).Order("date ASC").Order("time_slot ASC").Find(&slots).Error
	return slots, err
}

// Upsert writes slots, updating the available flag of existing (date, time_slot) pairs.
// A pair repeated within slots is written once with its last value.
func (r *AvailabilityRepo) Upsert(ctx context.Context, slots []*models.AvailabilitySlot) error {
	slots = lastPerSlot(slots)
	if len(slots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "time_slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"available"}),
	}).Create(&slots).Error
}

// DeleteByDate removes every slot on the given day and reports how many went
func (r *AvailabilityRepo) DeleteByDate(ctx context.Context, day time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("date = ?", datatypes.Date(day)).Delete(&models.AvailabilitySlot{})
	return result.RowsAffected, result.Error
}

// lastPerSlot collapses repeated (date, time_slot) pairs; PostgreSQL rejects an
// upsert that touches the same row twice. Order of first appearance is kept.
func lastPerSlot(slots []*models.AvailabilitySlot) []*models.AvailabilitySlot {
	type slotKey struct {
		date string
		slot string
	}

	index := make(map[slotKey]int, len(slots))
	unique := make([]*models.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		key := slotKey{time.Time(s.Date).Format(time.DateOnly), s.TimeSlot}
		if i, ok := index[key]; ok {
			unique[i] = s
			continue
		}
		index[key] = len(unique)
		unique = append(unique, s)
	}
	return unique
}
