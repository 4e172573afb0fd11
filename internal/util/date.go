package util

import (
	"strings"
	"time"
)

// DateLayout is the wire and form format for calendar dates
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t as midnight UTC, dropping the clock and zone
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(d), nil
}

// FormatDate renders a calendar date as YYYY-MM-DD, or "" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// WithinDays reports whether date falls on or after from and on or before from+days,
// comparing calendar dates only
func WithinDays(date, from time.Time, days int) bool {
	d := DateOf(date)
	start := DateOf(from)
	end := start.AddDate(0, 0, days)
	return !d.Before(start) && !d.After(end)
}
