package models

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/dateutils"

	"github.com/shopspring/decimal"
)

// Period is the time window a budget amount applies to.
type Period string

const (
	PeriodWeekly    Period = "Weekly"
	PeriodMonthly   Period = "Monthly"
	PeriodQuarterly Period = "Quarterly"
	PeriodYearly    Period = "Yearly"
)

// Periods lists the valid periods in display order.
var Periods = []Period{PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly}

// ParsePeriod accepts a period name in any case.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q (must be one of Weekly, Monthly, Quarterly, Yearly)", s)
}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	_, err := ParsePeriod(string(p))
	return err == nil
}

// Window returns the half-open [start, end) calendar window of period p that
// contains asOf. Weeks start on Monday. Unknown periods fall back to monthly.
func (p Period) Window(asOf time.Time) (time.Time, time.Time) {
	switch p {
	case PeriodWeekly:
		start := dateutils.StartOfWeek(asOf)
		return start, start.AddDate(0, 0, 7)
	case PeriodQuarterly:
		start := dateutils.StartOfQuarter(asOf)
		return start, start.AddDate(0, 3, 0)
	case PeriodYearly:
		start := dateutils.StartOfYear(asOf)
		return start, start.AddDate(1, 0, 0)
	default:
		start := dateutils.StartOfMonth(asOf)
		return start, start.AddDate(0, 1, 0)
	}
}

// Contains reports whether date falls in the window of p containing asOf.
func (p Period) Contains(asOf, date time.Time) bool {
	start, end := p.Window(asOf)
	d := dateutils.CalendarDate(date)
	return !d.Before(start) && d.Before(end)
}

// BudgetRecord is a spending limit for one category over one period. Spent is
// a cached aggregate. Malformed is set by decoders when the stored budget
// amount could not be read as a number.
type BudgetRecord struct {
	ID        string          `json:"id" yaml:"id"`
	Category  string          `json:"category" yaml:"category"`
	Period    Period          `json:"period" yaml:"period"`
	Budget    decimal.Decimal `json:"budget" yaml:"budget"`
	Spent     decimal.Decimal `json:"spent" yaml:"spent"`
	Color     string          `json:"color,omitempty" yaml:"color,omitempty"`
	Malformed bool            `json:"-" yaml:"-"`
}
