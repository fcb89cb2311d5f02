// Package store defines the persistence collaborators the budget tracker
// talks to. Implementations live in the rest and sqlite subpackages; MockStore
// is an in-memory implementation for tests.
package store

import (
	"context"
	"errors"

	"fjacquet/budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ExpenseSubmitter accepts one new expense. The import pipeline needs nothing else.
type ExpenseSubmitter interface {
	CreateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error)
}

// ExpenseStore persists expense records.
type ExpenseStore interface {
	ExpenseSubmitter
	// ListExpenses returns expenses, optionally restricted to a YYYY-MM month.
	ListExpenses(ctx context.Context, month string) ([]models.ExpenseRecord, error)
	UpdateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, id string) error
}

// BudgetStore persists budget records.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]models.BudgetRecord, error)
	CreateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error)
	UpdateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error)
	DeleteBudget(ctx context.Context, id string) error
}

// Summary is the server-side spending summary.
type Summary struct {
	TotalSpent decimal.Decimal
	Count      int
	ByCategory map[string]decimal.Decimal
}

// SummaryStore reports aggregate spending.
type SummaryStore interface {
	ExpenseSummary(ctx context.Context, month string) (Summary, error)
}

// Store is the full persistence surface.
type Store interface {
	ExpenseStore
	BudgetStore
	SummaryStore
	Close() error
}
