package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"driveconnect/internal/domain"
)

type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

type slotModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	InstructorID int64     `gorm:"column:instructor_id;uniqueIndex:idx_slot_start,priority:1"`
	Date         string    `gorm:"column:date;uniqueIndex:idx_slot_start,priority:2"`
	Time         string    `gorm:"column:time;uniqueIndex:idx_slot_start,priority:3"`
	Duration     float64   `gorm:"column:duration"`
	Price        int64     `gorm:"column:price"`
	Available    bool      `gorm:"column:available"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (slotModel) TableName() string { return "slots" }

func toDomainSlot(m slotModel) *domain.Slot {
	return &domain.Slot{
		ID:           m.ID,
		InstructorID: m.InstructorID,
		Date:         m.Date,
		Time:         m.Time,
		Duration:     m.Duration,
		Price:        m.Price,
		Available:    m.Available,
		CreatedAt:    m.CreatedAt,
	}
}

func toSlotModel(s *domain.Slot) slotModel {
	return slotModel{
		ID:           s.ID,
		InstructorID: s.InstructorID,
		Date:         s.Date,
		Time:         s.Time,
		Duration:     s.Duration,
		Price:        s.Price,
		Available:    s.Available,
		CreatedAt:    s.CreatedAt,
	}
}

func (r *SlotRepository) Create(ctx context.Context, s *domain.Slot) error {
	m := toSlotModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSlot(m)
	return nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	var m slotModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainSlot(m), nil
}

func (r *SlotRepository) ExistsAt(ctx context.Context, instructorID int64, date, timeOfDay string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&slotModel{}).
		Where("instructor_id = ? AND date = ? AND time = ?", instructorID, date, timeOfDay).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// ListAvailableByInstructor returns an instructor's open slots from the given
// date (inclusive) onward, ordered by date then time of day.
func (r *SlotRepository) ListAvailableByInstructor(ctx context.Context, instructorID int64, fromDate string) ([]domain.Slot, error) {
	var models []slotModel
	tx := r.db.WithContext(ctx).
		Where("instructor_id = ? AND available = ? AND date >= ?", instructorID, true, fromDate).
		Order("date ASC").
		Order("time ASC").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Slot, 0, len(models))
	for _, m := range models {
		out = append(out, *toDomainSlot(m))
	}
	return out, nil
}

// Reserve flips available true->false with a guarded single-row update. A
// false return means the slot existed a moment ago but another booking claimed
// it first; the store's conditional update is the only synchronization point.
func (r *SlotRepository) Reserve(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&slotModel{}).
		Where("id = ? AND available = ?", id, true).
		Update("available", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Release puts a slot back on the market (cancellation with refund >= 50%,
// rejection, or compensation after a failed booking insert).
func (r *SlotRepository) Release(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&slotModel{}).
		Where("id = ?", id).
		Update("available", true).Error
}

func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&slotModel{}, id).Error
}
