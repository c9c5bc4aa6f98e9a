package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"driveconnect/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	SlotID        int64      `gorm:"column:slot_id;index"`
	StudentID     int64      `gorm:"column:student_id;index"`
	InstructorID  int64      `gorm:"column:instructor_id;index"`
	Date          string     `gorm:"column:date"`
	Time          string     `gorm:"column:time"`
	Duration      float64    `gorm:"column:duration"`
	Amount        int64      `gorm:"column:amount"`
	Commission    int64      `gorm:"column:commission"`
	Net           int64      `gorm:"column:net"`
	Status        string     `gorm:"column:status"`
	PaymentStatus string     `gorm:"column:payment_status"`
	PaypalOrderID *string    `gorm:"column:paypal_order_id"`
	CancelledBy   *string    `gorm:"column:cancelled_by"`
	RefundAmount  *int64     `gorm:"column:refund_amount"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var paypalRef string
	if m.PaypalOrderID != nil {
		paypalRef = *m.PaypalOrderID
	}
	var cancelledBy domain.CancelledBy
	if m.CancelledBy != nil {
		cancelledBy = domain.CancelledBy(*m.CancelledBy)
	}

	return &domain.Booking{
		ID:            m.ID,
		SlotID:        m.SlotID,
		StudentID:     m.StudentID,
		InstructorID:  m.InstructorID,
		Date:          m.Date,
		Time:          m.Time,
		Duration:      m.Duration,
		Amount:        m.Amount,
		Commission:    m.Commission,
		Net:           m.Net,
		Status:        domain.BookingStatus(m.Status),
		PaymentStatus: domain.PaymentStatus(m.PaymentStatus),
		PaypalOrderID: paypalRef,
		CancelledBy:   cancelledBy,
		RefundAmount:  m.RefundAmount,
		CancelledAt:   m.CancelledAt,
		CreatedAt:     m.CreatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var paypalRef *string
	if b.PaypalOrderID != "" {
		v := b.PaypalOrderID
		paypalRef = &v
	}
	var cancelledBy *string
	if b.CancelledBy != "" {
		v := string(b.CancelledBy)
		cancelledBy = &v
	}

	return bookingModel{
		ID:            b.ID,
		SlotID:        b.SlotID,
		StudentID:     b.StudentID,
		InstructorID:  b.InstructorID,
		Date:          b.Date,
		Time:          b.Time,
		Duration:      b.Duration,
		Amount:        b.Amount,
		Commission:    b.Commission,
		Net:           b.Net,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		PaypalOrderID: paypalRef,
		CancelledBy:   cancelledBy,
		RefundAmount:  b.RefundAmount,
		CancelledAt:   b.CancelledAt,
		CreatedAt:     b.CreatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// BookingWithParty is a booking plus the counterparty's display name: the
// instructor's name for a student view, the student's name for an instructor
// view.
type BookingWithParty struct {
	Booking   domain.Booking
	PartyName string
}

func (r *BookingRepository) ListByStudent(ctx context.Context, studentID int64) ([]BookingWithParty, error) {
	var models []bookingModel
	tx := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return r.withPartyNames(ctx, models, `
SELECT b.id AS booking_id, u.name AS party_name
FROM bookings b
JOIN instructors i ON i.id = b.instructor_id
JOIN users u ON u.id = i.user_id
WHERE b.student_id = ?
`, studentID)
}

func (r *BookingRepository) ListByInstructor(ctx context.Context, instructorID int64) ([]BookingWithParty, error) {
	var models []bookingModel
	tx := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return r.withPartyNames(ctx, models, `
SELECT b.id AS booking_id, u.name AS party_name
FROM bookings b
JOIN users u ON u.id = b.student_id
WHERE b.instructor_id = ?
`, instructorID)
}

func (r *BookingRepository) withPartyNames(ctx context.Context, models []bookingModel, nameQuery string, arg any) ([]BookingWithParty, error) {
	type nameRow struct {
		BookingID int64  `gorm:"column:booking_id"`
		PartyName string `gorm:"column:party_name"`
	}
	var names []nameRow
	if len(models) > 0 {
		if err := r.db.WithContext(ctx).Raw(nameQuery, arg).Scan(&names).Error; err != nil {
			return nil, err
		}
	}

	byID := make(map[int64]string, len(names))
	for _, n := range names {
		byID[n.BookingID] = n.PartyName
	}

	out := make([]BookingWithParty, 0, len(models))
	for _, m := range models {
		out = append(out, BookingWithParty{
			Booking:   *toDomainBooking(m),
			PartyName: byID[m.ID],
		})
	}
	return out, nil
}

// HasActiveBySlot reports whether any booking with a status other than
// cancelled still references the slot.
func (r *BookingRepository) HasActiveBySlot(ctx context.Context, slotID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("slot_id = ? AND status <> ?", slotID, string(domain.BookingCancelled)).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

// MarkCancelled writes the full cancellation record in one update. Any
// refunded amount flips payment_status to refunded; a zero-refund cancel
// keeps the payment as captured.
func (r *BookingRepository) MarkCancelled(ctx context.Context, id int64, by domain.CancelledBy, refundAmount int64, at time.Time) error {
	updates := map[string]any{
		"status":        string(domain.BookingCancelled),
		"cancelled_by":  string(by),
		"refund_amount": refundAmount,
		"cancelled_at":  at,
	}
	if refundAmount > 0 {
		updates["payment_status"] = string(domain.PaymentRefunded)
	}
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}
