package booking

import (
	"context"
	"time"

	"driveconnect/internal/domain"
	"driveconnect/internal/repository"
)

// SlotStore is the slice of slot persistence the reservation engine needs.
// Reserve must be an atomic conditional update: flip available true->false
// and report whether a row changed.
type SlotStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	Reserve(ctx context.Context, id int64) (bool, error)
	Release(ctx context.Context, id int64) error
}

type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByStudent(ctx context.Context, studentID int64) ([]repository.BookingWithParty, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]repository.BookingWithParty, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	MarkCancelled(ctx context.Context, id int64, by domain.CancelledBy, refundAmount int64, at time.Time) error
}

type InstructorStore interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Instructor, error)
	ApplyPenalty(ctx context.Context, id int64, until time.Time, points int) error
}
