package booking

import (
	"time"

	"driveconnect/internal/domain"
)

type CreateBookingRequest struct {
	SlotID        int64  `json:"slot_id" binding:"required"`
	PaypalOrderID string `json:"paypal_order_id"`
}

type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// ActionResult is the body returned by PUT /bookings/:id. Refund fields are
// only populated for cancellations.
type ActionResult struct {
	Status         domain.BookingStatus `json:"status"`
	RefundAmount   int64                `json:"refund_amount,omitempty"`
	RefundLabel    string               `json:"refund_label,omitempty"`
	PenaltyApplied bool                 `json:"penalty_applied"`
}

// BookingView is one row of the caller's booking list. Exactly one of
// instructor_name / student_name is set, depending on which side is asking.
type BookingView struct {
	ID             int64      `json:"id"`
	SlotID         int64      `json:"slot_id"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Duration       float64    `json:"duration"`
	Amount         int64      `json:"amount"`
	Commission     int64      `json:"commission"`
	Net            int64      `json:"net"`
	Status         string     `json:"status"`
	PaymentStatus  string     `json:"payment_status"`
	CancelledBy    string     `json:"cancelled_by,omitempty"`
	RefundAmount   *int64     `json:"refund_amount,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	InstructorName string     `json:"instructor_name,omitempty"`
	StudentName    string     `json:"student_name,omitempty"`
}
