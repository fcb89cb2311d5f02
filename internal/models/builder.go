package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/dateutils"

	"github.com/shopspring/decimal"
)

// ExpenseBuilder provides a fluent API for constructing expense records.
// The first error encountered is kept and returned by Build.
type ExpenseBuilder struct {
	exp ExpenseRecord
	err error
}

// NewExpenseBuilder creates an ExpenseBuilder dated today.
func NewExpenseBuilder() *ExpenseBuilder {
	return &ExpenseBuilder{
		exp: ExpenseRecord{
			Amount: decimal.Zero,
			Date:   dateutils.CalendarDate(time.Now()),
		},
	}
}

// WithID sets the record identity.
func (b *ExpenseBuilder) WithID(id string) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	b.exp.ID = id
	return b
}

// WithDate sets the date from a YYYY-MM-DD string.
func (b *ExpenseBuilder) WithDate(dateStr string) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	d, err := dateutils.ParseISO(dateStr)
	if err != nil {
		b.err = err
		return b
	}
	b.exp.Date = d
	return b
}

// WithDateFromTime sets the date, dropping time of day.
func (b *ExpenseBuilder) WithDateFromTime(date time.Time) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.exp.Date = dateutils.CalendarDate(date)
	return b
}

// WithAmount sets the amount.
func (b *ExpenseBuilder) WithAmount(amount decimal.Decimal) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	b.exp.Amount = amount
	return b
}

// WithAmountFromString parses and sets the amount.
func (b *ExpenseBuilder) WithAmountFromString(amountStr string) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	amount, err := ParseAmount(amountStr)
	if err != nil {
		b.err = err
		return b
	}
	b.exp.Amount = amount
	return b
}

// WithDescription sets the description.
func (b *ExpenseBuilder) WithDescription(description string) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	b.exp.Description = strings.TrimSpace(description)
	return b
}

// WithCategory sets the category label as given.
func (b *ExpenseBuilder) WithCategory(category string) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	b.exp.Category = strings.TrimSpace(category)
	return b
}

// WithReceiptURL attaches an opaque receipt reference.
func (b *ExpenseBuilder) WithReceiptURL(url string) *ExpenseBuilder {
	if b.err != nil {
		return b
	}
	b.exp.ReceiptURL = url
	return b
}

// Build returns the record or the first error recorded.
func (b *ExpenseBuilder) Build() (ExpenseRecord, error) {
	if b.err != nil {
		return ExpenseRecord{}, b.err
	}
	if !b.exp.Amount.IsPositive() {
		return ExpenseRecord{}, fmt.Errorf("amount must be greater than 0, got %s", b.exp.Amount)
	}
	if b.exp.Description == "" {
		return ExpenseRecord{}, errors.New("description is required")
	}
	if b.exp.Category == "" {
		return ExpenseRecord{}, errors.New("category is required")
	}
	return b.exp, nil
}

// MustBuild is Build for fixtures; it panics on error.
func (b *ExpenseBuilder) MustBuild() ExpenseRecord {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}
