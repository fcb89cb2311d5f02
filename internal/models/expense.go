package models

import (
	"time"

	"fjacquet/budget-tracker/internal/dateutils"

	"github.com/shopspring/decimal"
)

// ExpenseRecord is a single spending event. Date is a calendar date at
// 00:00 UTC; Amount is strictly positive for records accepted by validation.
type ExpenseRecord struct {
	ID          string          `json:"id" yaml:"id"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
	Date        time.Time       `json:"date" yaml:"date"`
	Description string          `json:"description" yaml:"description"`
	Category    string          `json:"category" yaml:"category"`
	ReceiptURL  string          `json:"receiptUrl,omitempty" yaml:"receipt_url,omitempty"`
}

// ISODate returns the record date as YYYY-MM-DD.
func (e ExpenseRecord) ISODate() string {
	return dateutils.ToISODate(e.Date)
}

// SameEntry reports whether two records describe the same spending event,
// ignoring identity and receipt.
func (e ExpenseRecord) SameEntry(other ExpenseRecord) bool {
	return e.Amount.Equal(other.Amount) &&
		dateutils.CompareDates(e.Date, other.Date) == 0 &&
		e.Description == other.Description &&
		e.Category == other.Category
}
