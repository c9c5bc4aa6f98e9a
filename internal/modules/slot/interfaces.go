package slot

import (
	"context"

	"driveconnect/internal/domain"
)

type SlotStore interface {
	Create(ctx context.Context, s *domain.Slot) error
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	ExistsAt(ctx context.Context, instructorID int64, date, timeOfDay string) (bool, error)
	ListAvailableByInstructor(ctx context.Context, instructorID int64, fromDate string) ([]domain.Slot, error)
	Delete(ctx context.Context, id int64) error
}

// BookingGuard answers whether a slot is still referenced by a live booking.
type BookingGuard interface {
	HasActiveBySlot(ctx context.Context, slotID int64) (bool, error)
}

type InstructorStore interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Instructor, error)
}
