package instructor

import "time"

// InstructorView is one entry of the public discovery listing, already in
// display order.
type InstructorView struct {
	ID                int64      `json:"id"`
	UID               int64      `json:"uid"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Rating            float64    `json:"rating"`
	TotalReviews      int        `json:"total_reviews"`
	Experience        int        `json:"experience"`
	Location          string     `json:"location"`
	HourlyRate        int64      `json:"hourly_rate"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	Verified          bool       `json:"verified"`
	IsOnline          bool       `json:"is_online"`
	Lat               float64    `json:"lat"`
	Lng               float64    `json:"lng"`
	PenaltyUntil      *time.Time `json:"penalty_until,omitempty"`
	VisibilityPenalty int        `json:"visibility_penalty"`
	Score             float64    `json:"score"`
}

// UpdateProfileRequest carries partial updates of the instructor-editable
// fields; nil means unchanged.
type UpdateProfileRequest struct {
	Location    *string  `json:"location"`
	PhoneNumber *string  `json:"phone_number"`
	HourlyRate  *int64   `json:"hourly_rate"`
	Experience  *int     `json:"experience"`
	IsOnline    *bool    `json:"is_online"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}
