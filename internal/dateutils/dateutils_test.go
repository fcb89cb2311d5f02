package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: "2024-05-01", want: day(2024, time.May, 1)},
		{name: "surrounding whitespace", input: "  2024-05-01 ", want: day(2024, time.May, 1)},
		{name: "leap day", input: "2024-02-29", want: day(2024, time.February, 29)},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
		{name: "european format", input: "01.05.2024", wantErr: true},
		{name: "us format", input: "05/01/2024", wantErr: true},
		{name: "timestamp", input: "2024-05-01T10:00:00Z", wantErr: true},
		{name: "unpadded", input: "2024-5-1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISO(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-05")
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.May, 1), got)

	_, err = ParseMonth("May 2024")
	assert.Error(t, err)
}

func TestCalendarDate(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*3600)
	late := time.Date(2024, time.May, 10, 23, 30, 0, 0, zone)

	got := CalendarDate(late)
	assert.Equal(t, day(2024, time.May, 10), got)
	assert.True(t, CalendarDate(time.Time{}).IsZero())
}

func TestCompareDates(t *testing.T) {
	morning := time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.May, 10, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, CompareDates(morning, evening))
	assert.Equal(t, -1, CompareDates(day(2024, time.May, 9), evening))
	assert.Equal(t, 1, CompareDates(day(2024, time.May, 11), morning))
}

func TestWithinDays(t *testing.T) {
	from := day(2024, time.May, 1)
	to := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		from *time.Time
		to   *time.Time
		want bool
	}{
		{name: "open bounds", date: day(1999, time.January, 1), want: true},
		{name: "on lower bound", date: from, from: &from, to: &to, want: true},
		{name: "late on upper bound day", date: time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC), from: &from, to: &to, want: true},
		{name: "day after upper bound", date: day(2024, time.May, 11), from: &from, to: &to, want: false},
		{name: "before lower bound", date: day(2024, time.April, 30), from: &from, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinDays(tt.date, tt.from, tt.to))
		})
	}
}

func TestPeriodStarts(t *testing.T) {
	// Thursday
	d := day(2024, time.August, 15)

	assert.Equal(t, day(2024, time.August, 12), StartOfWeek(d))
	assert.Equal(t, day(2024, time.August, 12), StartOfWeek(day(2024, time.August, 12)))
	assert.Equal(t, day(2024, time.August, 12), StartOfWeek(day(2024, time.August, 18)))
	assert.Equal(t, day(2024, time.August, 1), StartOfMonth(d))
	assert.Equal(t, day(2024, time.August, 31), EndOfMonth(d))
	assert.Equal(t, day(2024, time.February, 29), EndOfMonth(day(2024, time.February, 3)))
	assert.Equal(t, day(2024, time.July, 1), StartOfQuarter(d))
	assert.Equal(t, day(2024, time.January, 1), StartOfQuarter(day(2024, time.March, 31)))
	assert.Equal(t, day(2024, time.October, 1), StartOfQuarter(day(2024, time.December, 1)))
	assert.Equal(t, day(2024, time.January, 1), StartOfYear(d))
}

func TestFormatting(t *testing.T) {
	d := day(2024, time.May, 3)
	assert.Equal(t, "2024-05-03", ToISODate(d))
	assert.Equal(t, "", ToISODate(time.Time{}))
	assert.Equal(t, "2024-05", MonthKey(d))
	assert.Equal(t, "May 3, 2024", FormatDate(d, DateLayoutHuman))
	assert.Equal(t, "2024-05-03", FormatDate(d, ""))
	assert.Equal(t, "", FormatDate(time.Time{}, DateLayoutHuman))
}
