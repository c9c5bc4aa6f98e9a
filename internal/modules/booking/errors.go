package booking

import "errors"

var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrSlotUnavailable  = errors.New("slot unavailable")
	ErrSlotInPast       = errors.New("slot is in the past")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrInvalidAction    = errors.New("invalid action")
	ErrProfileNotFound  = errors.New("instructor profile not found")
)
