package domain

import (
	"fmt"
	"time"
)

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

const minutesPerDay = 24 * 60

// ParseClockTime reads an "HH:MM" time of day.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHours, s)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// ClockOf returns the time of day of t in its own location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) Valid() bool {
	return c >= 0 && c < minutesPerDay
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Restaurant is the public profile of a restaurant user. Its id is the user id.
type Restaurant struct {
	ID          int
	Name        string
	Description string
	OpenTime    ClockTime
	CloseTime   ClockTime
}

// OpenAt reports whether t falls within the opening hours. Hours may wrap past midnight,
// and equal open and close times mean the restaurant never closes.
func (r *Restaurant) OpenAt(t time.Time) bool {
	now := ClockOf(t)
	switch {
	case r.OpenTime == r.CloseTime:
		return true
	case r.OpenTime < r.CloseTime:
		return now >= r.OpenTime && now < r.CloseTime
	default:
		return now >= r.OpenTime || now < r.CloseTime
	}
}
