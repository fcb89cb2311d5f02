// Package dateutils provides the calendar-date operations shared by import,
// filtering, aggregation and export. Expense dates carry no time of day; every
// value produced here is normalised to 00:00 UTC on its calendar day.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayoutISO   = "2006-01-02"
	MonthLayout     = "2006-01"
	DateLayoutHuman = "Jan 2, 2006"
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseISO parses a strict YYYY-MM-DD calendar date. Surrounding whitespace is
// ignored; anything else, including impossible dates such as 2024-02-30, fails.
func ParseISO(dateStr string) (time.Time, error) {
	clean := strings.TrimSpace(dateStr)
	if !isoDatePattern.MatchString(clean) {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", dateStr)
	}
	t, err := time.Parse(DateLayoutISO, clean)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM month key and returns the first day of that month.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM, got %q", month)
	}
	return t, nil
}

// CalendarDate drops the time of day and zone of t, keeping the calendar day
// as seen in t's own location.
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutISO)
}

// MonthKey formats the YYYY-MM key used for month queries and export filenames.
func MonthKey(date time.Time) string {
	return date.Format(MonthLayout)
}

// FormatDate renders date with layout, DateLayoutISO when layout is empty.
// The zero date renders as "".
func FormatDate(date time.Time, layout string) string {
	if date.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DateLayoutISO
	}
	return date.Format(layout)
}

// CompareDates compares two dates by calendar day and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = CalendarDate(date1)
	date2 = CalendarDate(date2)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	}
	return 0
}

// WithinDays reports whether date lies in [from, to] by calendar day.
// A nil bound is open.
func WithinDays(date time.Time, from, to *time.Time) bool {
	if from != nil && CompareDates(date, *from) < 0 {
		return false
	}
	if to != nil && CompareDates(date, *to) > 0 {
		return false
	}
	return true
}

// StartOfWeek returns the Monday of date's week.
func StartOfWeek(date time.Time) time.Time {
	d := CalendarDate(date)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of date's month.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of date's month.
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// StartOfQuarter returns the first day of date's calendar quarter.
func StartOfQuarter(date time.Time) time.Time {
	first := time.Month((int(date.Month())-1)/3*3 + 1)
	return time.Date(date.Year(), first, 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1st of date's year.
func StartOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}
