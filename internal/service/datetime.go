package service

import (
	"fmt"
	"strings"
	"time"
)

// Wire formats for user-entered session fields.
const (
	DateLayout         = "2006-01-02"
	ClockLayout        = "15:04"
	ClockLayoutSeconds = "15:04:05"
)

var clockLayouts = []string{ClockLayout, ClockLayoutSeconds}

// ParseDate parses a YYYY-MM-DD calendar day as local midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, value)
	}
	return day, nil
}

// CombineDateAndTime places a HH:MM time of day on the calendar day of day,
// in day's location. The clock is never parsed on its own as an instant.
func CombineDateAndTime(day time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, clock)
		if err == nil {
			y, m, d := day.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, clock)
}

// SessionWindow is a normalised session day with its start and end instants.
type SessionWindow struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// NormalizeSessionWindow turns the user-entered date and times into instants in loc.
// Create and update both go through here.
func NormalizeSessionWindow(date, startTime, endTime string, loc *time.Location) (SessionWindow, error) {
	day, err := ParseDate(date, loc)
	if err != nil {
		return SessionWindow{}, err
	}
	start, err := CombineDateAndTime(day, startTime)
	if err != nil {
		return SessionWindow{}, err
	}
	end, err := CombineDateAndTime(day, endTime)
	if err != nil {
		return SessionWindow{}, err
	}
	if !start.Before(end) {
		return SessionWindow{}, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}
	return SessionWindow{Date: day, Start: start, End: end}, nil
}
