package domain

import "time"

type Instructor struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Rating            float64    `json:"rating"`
	TotalReviews      int        `json:"total_reviews"`
	Experience        int        `json:"experience"`
	Location          string     `json:"location"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	HourlyRate        int64      `json:"hourly_rate"`
	IsOnline          bool       `json:"is_online"`
	Lat               float64    `json:"lat"`
	Lng               float64    `json:"lng"`
	Verified          bool       `json:"verified"`
	PenaltyUntil      *time.Time `json:"penalty_until,omitempty"`
	VisibilityPenalty int        `json:"visibility_penalty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PenaltyActive reports whether the visibility penalty still applies at the
// given instant. Penalties expire by wall-clock comparison, there is no
// cleanup job.
func (i *Instructor) PenaltyActive(now time.Time) bool {
	return i.PenaltyUntil != nil && i.PenaltyUntil.After(now)
}
