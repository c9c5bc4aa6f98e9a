package domain

import (
	"fmt"
	"time"
)

const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

// Slot is an instructor-published bookable time window. Price is the full
// lesson price in XPF (hourly rate times duration, rounded), fixed at
// publication time.
type Slot struct {
	ID           int64     `json:"id"`
	InstructorID int64     `json:"instructor_id"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Duration     float64   `json:"duration"`
	Price        int64     `json:"price"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

// LessonTime combines a date ("2006-01-02") and a time of day ("15:04") into
// a single instant in the server's local zone.
func LessonTime(date, timeOfDay string) (time.Time, error) {
	t, err := time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, date+" "+timeOfDay, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid lesson datetime %q %q: %w", date, timeOfDay, err)
	}
	return t, nil
}

func (s *Slot) LessonTime() (time.Time, error) {
	return LessonTime(s.Date, s.Time)
}
