package util

import (
	"testing"
	"time"
)

func TestDateOf_DropsClockAndZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2026, 3, 14, 23, 45, 10, 0, loc)

	got := DateOf(in)
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf(%v) = %v, want %v", in, got, want)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2026-02-28 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.February || got.Day() != 28 {
		t.Errorf("unexpected date %v", got)
	}

	for _, bad := range []string{"", "28/02/2026", "2026-02-30", "tomorrow"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q, want empty", got)
	}
	if got := FormatDate(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)); got != "2026-01-05" {
		t.Errorf("FormatDate = %q, want 2026-01-05", got)
	}
}

func TestWithinDays(t *testing.T) {
	today := time.Date(2026, 12, 28, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"same day", time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC), true},
		{"last day of window across year end", time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC), true},
		{"day before", time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC), false},
		{"day after window", time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinDays(tt.date, today, 7); got != tt.expected {
				t.Errorf("WithinDays(%v) = %v, want %v", tt.date, got, tt.expected)
			}
		})
	}
}
