package slot

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrRateTooLow      = errors.New("hourly rate below minimum")
	ErrDateInPast      = errors.New("date is in the past")
	ErrDuplicateSlot   = errors.New("slot already exists at this start time")
	ErrSlotNotFound    = errors.New("slot not found")
	ErrNotOwner        = errors.New("slot belongs to another instructor")
	ErrSlotBooked      = errors.New("slot has an active booking")
	ErrProfileNotFound = errors.New("instructor profile not found")
)
