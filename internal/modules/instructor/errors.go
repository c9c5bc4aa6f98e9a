package instructor

import "errors"

var (
	ErrProfileNotFound = errors.New("instructor profile not found")
	ErrRateTooLow      = errors.New("hourly rate below minimum")
)
