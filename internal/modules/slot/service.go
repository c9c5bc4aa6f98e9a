package slot

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"driveconnect/internal/authz"
	"driveconnect/internal/domain"
)

// Params holds the publishing constraints.
type Params struct {
	MinHourlyRate int64
}

func DefaultParams() Params {
	return Params{MinHourlyRate: 1000}
}

type Service struct {
	slots       SlotStore
	bookings    BookingGuard
	instructors InstructorStore
	authz       *authz.Resolver
	params      Params
	now         func() time.Time
}

func NewService(slots SlotStore, bookings BookingGuard, instructors InstructorStore, resolver *authz.Resolver, params Params) *Service {
	return &Service{
		slots:       slots,
		bookings:    bookings,
		instructors: instructors,
		authz:       resolver,
		params:      params,
		now:         time.Now,
	}
}

// Publish creates a slot for the calling instructor. The (instructor, date,
// time) start is unique; a second slot at the same start fails with
// ErrDuplicateSlot whether caught by the pre-check or by the database
// constraint.
func (s *Service) Publish(ctx context.Context, callerUID int64, req CreateSlotRequest) (*domain.Slot, error) {
	parsedDate, err := time.ParseInLocation(domain.SlotDateLayout, req.Date, time.Local)
	if err != nil {
		return nil, ErrValidation
	}
	parsedTime, err := time.ParseInLocation(domain.SlotTimeLayout, req.Time, time.Local)
	if err != nil {
		return nil, ErrValidation
	}

	// Re-format through the layouts so variants like "9:30" cannot slip past
	// the uniqueness check as a string distinct from "09:30".
	date := parsedDate.Format(domain.SlotDateLayout)
	timeOfDay := parsedTime.Format(domain.SlotTimeLayout)

	if req.Price < s.params.MinHourlyRate {
		return nil, ErrRateTooLow
	}
	if date < s.now().Format(domain.SlotDateLayout) {
		return nil, ErrDateInPast
	}

	profile, err := s.instructors.GetByUserID(ctx, callerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	exists, err := s.slots.ExistsAt(ctx, profile.ID, date, timeOfDay)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSlot
	}

	slot := &domain.Slot{
		InstructorID: profile.ID,
		Date:         date,
		Time:         timeOfDay,
		Duration:     req.Duration,
		Price:        int64(math.Round(float64(req.Price) * req.Duration)),
		Available:    true,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSlot
		}
		return nil, err
	}

	return slot, nil
}

// ListAvailable returns one instructor's open future slots, ordered by date
// then time.
func (s *Service) ListAvailable(ctx context.Context, instructorID int64) ([]domain.Slot, error) {
	today := s.now().Format(domain.SlotDateLayout)
	return s.slots.ListAvailableByInstructor(ctx, instructorID, today)
}

// Delete removes a slot. Only the owning instructor may delete it, and only
// while no non-cancelled booking references it.
func (s *Service) Delete(ctx context.Context, ident domain.Identity, slotID int64) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		return err
	}

	own, err := s.authz.ForSlot(ctx, ident, slot)
	if err != nil {
		return err
	}
	if !own.IsInstructor() {
		return ErrNotOwner
	}

	booked, err := s.bookings.HasActiveBySlot(ctx, slotID)
	if err != nil {
		return err
	}
	if booked {
		return ErrSlotBooked
	}

	return s.slots.Delete(ctx, slotID)
}
