package booking

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"driveconnect/internal/authz"
	"driveconnect/internal/domain"
	"driveconnect/internal/repository"
)

const (
	ActionCancel  = "cancel"
	ActionConfirm = "confirm"
	ActionReject  = "reject"
)

// Params are the business constants of the booking lifecycle. They are
// injected rather than inlined so the state machine can be tested with varied
// values.
type Params struct {
	CommissionRate    float64
	FullRefundHours   float64
	HalfRefundHours   float64
	SlotReleaseMinPct int
	PenaltyDuration   time.Duration
	PenaltyPoints     int
}

func DefaultParams() Params {
	return Params{
		CommissionRate:    0.02,
		FullRefundHours:   48,
		HalfRefundHours:   24,
		SlotReleaseMinPct: 50,
		PenaltyDuration:   7 * 24 * time.Hour,
		PenaltyPoints:     10,
	}
}

type Service struct {
	slots       SlotStore
	bookings    BookingStore
	instructors InstructorStore
	authz       *authz.Resolver
	params      Params
	log         *zap.Logger
	now         func() time.Time
}

func NewService(slots SlotStore, bookings BookingStore, instructors InstructorStore, resolver *authz.Resolver, params Params, log *zap.Logger) *Service {
	return &Service{
		slots:       slots,
		bookings:    bookings,
		instructors: instructors,
		authz:       resolver,
		params:      params,
		log:         log,
		now:         time.Now,
	}
}

// Reserve claims a slot for a student and creates the confirmed booking.
//
// Ordering matters: the availability flip is a conditional single-row update
// (available must still be true), and only after it succeeds is the booking
// row inserted. If the insert fails the slot is released again, best-effort.
// This keeps at most one live booking per slot without a multi-row
// transaction.
func (s *Service) Reserve(ctx context.Context, studentID int64, req CreateBookingRequest) (*domain.Booking, error) {
	slot, err := s.slots.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if !slot.Available {
		return nil, ErrSlotUnavailable
	}

	lessonAt, err := slot.LessonTime()
	if err != nil {
		return nil, err
	}
	if !lessonAt.After(s.now()) {
		return nil, ErrSlotInPast
	}

	reserved, err := s.slots.Reserve(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// Someone else won the conditional update between our read and now.
		return nil, ErrSlotUnavailable
	}

	commission := int64(math.Round(float64(slot.Price) * s.params.CommissionRate))

	b := &domain.Booking{
		SlotID:        slot.ID,
		StudentID:     studentID,
		InstructorID:  slot.InstructorID,
		Date:          slot.Date,
		Time:          slot.Time,
		Duration:      slot.Duration,
		Amount:        slot.Price,
		Commission:    commission,
		Net:           slot.Price - commission,
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentPaid,
		PaypalOrderID: req.PaypalOrderID,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		s.log.Warn("booking insert failed, releasing slot",
			zap.Int64("slot_id", slot.ID), zap.Error(err))
		if relErr := s.slots.Release(ctx, slot.ID); relErr != nil {
			s.log.Error("compensating slot release failed",
				zap.Int64("slot_id", slot.ID), zap.Error(relErr))
		}
		return nil, err
	}

	return b, nil
}

// ListForCaller returns the caller's bookings, newest first, shaped for
// whichever side of the marketplace is asking.
func (s *Service) ListForCaller(ctx context.Context, ident domain.Identity) ([]BookingView, error) {
	switch ident.Role {
	case domain.RoleStudent:
		rows, err := s.bookings.ListByStudent(ctx, ident.UID)
		if err != nil {
			return nil, err
		}
		return toViews(rows, domain.RoleStudent), nil

	case domain.RoleInstructor:
		profile, err := s.instructors.GetByUserID(ctx, ident.UID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		rows, err := s.bookings.ListByInstructor(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		return toViews(rows, domain.RoleInstructor), nil

	default:
		return nil, ErrForbidden
	}
}

func toViews(rows []repository.BookingWithParty, viewer domain.UserRole) []BookingView {
	out := make([]BookingView, 0, len(rows))
	for _, r := range rows {
		v := BookingView{
			ID:            r.Booking.ID,
			SlotID:        r.Booking.SlotID,
			Date:          r.Booking.Date,
			Time:          r.Booking.Time,
			Duration:      r.Booking.Duration,
			Amount:        r.Booking.Amount,
			Commission:    r.Booking.Commission,
			Net:           r.Booking.Net,
			Status:        string(r.Booking.Status),
			PaymentStatus: string(r.Booking.PaymentStatus),
			CancelledBy:   string(r.Booking.CancelledBy),
			RefundAmount:  r.Booking.RefundAmount,
			CancelledAt:   r.Booking.CancelledAt,
			CreatedAt:     r.Booking.CreatedAt,
		}
		if viewer == domain.RoleStudent {
			v.InstructorName = r.PartyName
		} else {
			v.StudentName = r.PartyName
		}
		out = append(out, v)
	}
	return out
}

// Act runs one lifecycle transition (cancel, confirm or reject) on a booking
// on behalf of the caller. Ownership is resolved before anything is mutated.
func (s *Service) Act(ctx context.Context, ident domain.Identity, bookingID int64, action string) (*ActionResult, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	own, err := s.authz.ForBooking(ctx, ident, b)
	if err != nil {
		return nil, err
	}
	if own.None() {
		return nil, ErrForbidden
	}

	if b.Status == domain.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}

	switch action {
	case ActionCancel:
		return s.cancel(ctx, b, own)

	case ActionConfirm:
		if !own.IsInstructor() {
			return nil, ErrForbidden
		}
		// Idempotent: re-confirming a confirmed booking is a no-op set.
		if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingConfirmed); err != nil {
			return nil, err
		}
		return &ActionResult{Status: domain.BookingConfirmed}, nil

	case ActionReject:
		if !own.IsInstructor() {
			return nil, ErrForbidden
		}
		if err := s.bookings.UpdateStatus(ctx, b.ID, domain.BookingRejected); err != nil {
			return nil, err
		}
		// Rejection means no service was rendered: the slot always reopens.
		if err := s.slots.Release(ctx, b.SlotID); err != nil {
			s.log.Error("slot release after reject failed",
				zap.Int64("slot_id", b.SlotID), zap.Error(err))
		}
		return &ActionResult{Status: domain.BookingRejected}, nil

	default:
		return nil, ErrInvalidAction
	}
}

func (s *Service) cancel(ctx context.Context, b *domain.Booking, own authz.Ownership) (*ActionResult, error) {
	now := s.now()

	lessonAt, err := b.LessonTime()
	if err != nil {
		return nil, err
	}
	hoursUntil := lessonAt.Sub(now).Hours()

	var refundPct int
	var refundLabel string
	switch {
	case hoursUntil >= s.params.FullRefundHours:
		refundPct, refundLabel = 100, "100% refund"
	case hoursUntil >= s.params.HalfRefundHours:
		refundPct, refundLabel = 50, "50% refund"
	default:
		refundPct, refundLabel = 0, "no refund"
	}

	// An instructor cancelling always refunds the student in full, however
	// late it happens.
	if own.IsInstructor() {
		refundPct, refundLabel = 100, "100% refund (instructor cancellation)"
	}

	refundAmount := int64(math.Round(float64(b.Amount) * float64(refundPct) / 100))

	cancelledBy := domain.CancelledByStudent
	if own.IsInstructor() {
		cancelledBy = domain.CancelledByInstructor
	}

	if err := s.bookings.MarkCancelled(ctx, b.ID, cancelledBy, refundAmount, now); err != nil {
		return nil, err
	}

	// A sub-50% refund keeps the slot blocked: the instructor's time was
	// consumed too close to the lesson to resell it.
	if refundPct >= s.params.SlotReleaseMinPct {
		if err := s.slots.Release(ctx, b.SlotID); err != nil {
			s.log.Error("slot release after cancel failed",
				zap.Int64("slot_id", b.SlotID), zap.Error(err))
		}
	}

	penaltyApplied := false
	if own.IsInstructor() && hoursUntil < s.params.HalfRefundHours {
		until := now.Add(s.params.PenaltyDuration)
		if err := s.instructors.ApplyPenalty(ctx, own.Instructor.ID, until, s.params.PenaltyPoints); err != nil {
			s.log.Error("visibility penalty write failed",
				zap.Int64("instructor_id", own.Instructor.ID), zap.Error(err))
		} else {
			penaltyApplied = true
		}
	}

	return &ActionResult{
		Status:         domain.BookingCancelled,
		RefundAmount:   refundAmount,
		RefundLabel:    refundLabel,
		PenaltyApplied: penaltyApplied,
	}, nil
}
