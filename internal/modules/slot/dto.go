package slot

// CreateSlotRequest publishes a bookable window. Price is the instructor's
// hourly rate in XPF; the stored slot price is rate times duration, rounded.
type CreateSlotRequest struct {
	Date     string  `json:"date" binding:"required"`
	Time     string  `json:"time" binding:"required"`
	Duration float64 `json:"duration" binding:"required,gt=0"`
	Price    int64   `json:"price" binding:"required"`
}
