package domain

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRejected  BookingStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type CancelledBy string

const (
	CancelledByStudent    CancelledBy = "student"
	CancelledByInstructor CancelledBy = "instructor"
)

// Booking freezes the slot's date, time, duration and price at reservation
// time; later slot edits cannot change what the student paid for.
type Booking struct {
	ID            int64         `json:"id"`
	SlotID        int64         `json:"slot_id"`
	StudentID     int64         `json:"student_id"`
	InstructorID  int64         `json:"instructor_id"`
	Date          string        `json:"date"`
	Time          string        `json:"time"`
	Duration      float64       `json:"duration"`
	Amount        int64         `json:"amount"`
	Commission    int64         `json:"commission"`
	Net           int64         `json:"net"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaypalOrderID string        `json:"paypal_order_id,omitempty"`
	CancelledBy   CancelledBy   `json:"cancelled_by,omitempty"`
	RefundAmount  *int64        `json:"refund_amount,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (b *Booking) LessonTime() (time.Time, error) {
	return LessonTime(b.Date, b.Time)
}
