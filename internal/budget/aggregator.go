// Package budget computes budget utilisation: per-budget spent, remaining and
// percentage, the overall rollup, the severity tier of each, and per-category
// spending breakdowns.
package budget

import (
	"time"

	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SpentSource selects where a budget's spent amount comes from.
type SpentSource int

const (
	// SpentFromRecord trusts the cached BudgetRecord.Spent.
	SpentFromRecord SpentSource = iota
	// SpentFromExpenses sums the matching expenses passed to Aggregate.
	SpentFromExpenses
)

// Options configure an Aggregator.
type Options struct {
	Source SpentSource
	// AsOf restricts SpentFromExpenses sums to the budget period window
	// containing this date. The zero value sums every expense.
	AsOf time.Time
}

// BudgetStatus is the derived view of one budget.
type BudgetStatus struct {
	ID         string
	Category   string
	Period     models.Period
	Color      string
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage int64
	Tier       Tier
	// Malformed marks a budget whose stored amount was unusable and was
	// treated as zero.
	Malformed bool
}

// OverBudget reports whether spending exceeds the budget.
func (s BudgetStatus) OverBudget() bool {
	return s.Remaining.IsNegative()
}

// Summary is the result of one aggregation.
type Summary struct {
	Budgets           []BudgetStatus
	TotalBudget       decimal.Decimal
	TotalSpent        decimal.Decimal
	TotalRemaining    decimal.Decimal
	OverallPercentage int64
	OverallTier       Tier
}

// Alerts returns the budgets whose tier raises an alert, in input order.
func (s Summary) Alerts() []BudgetStatus {
	var out []BudgetStatus
	for _, b := range s.Budgets {
		if b.Tier.Alert() {
			out = append(out, b)
		}
	}
	return out
}

// Aggregator derives budget statuses. It holds no mutable state and is safe
// for concurrent use.
type Aggregator struct {
	logger logging.Logger
	opts   Options
}

// NewAggregator creates an Aggregator.
func NewAggregator(logger logging.Logger, opts Options) *Aggregator {
	return &Aggregator{logger: logger, opts: opts}
}

// Aggregate computes the status of every budget and the overall rollup.
// Neither input is modified.
func (a *Aggregator) Aggregate(budgets []models.BudgetRecord, expenses []models.ExpenseRecord) Summary {
	summary := Summary{
		Budgets:     make([]BudgetStatus, 0, len(budgets)),
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
	}

	for _, b := range budgets {
		status := a.status(b, expenses)
		summary.Budgets = append(summary.Budgets, status)
		summary.TotalBudget = summary.TotalBudget.Add(status.Budget)
		summary.TotalSpent = summary.TotalSpent.Add(status.Spent)
	}

	summary.TotalRemaining = summary.TotalBudget.Sub(summary.TotalSpent)
	summary.OverallPercentage = Percentage(summary.TotalSpent, summary.TotalBudget)
	summary.OverallTier = Classify(summary.OverallPercentage)
	return summary
}

func (a *Aggregator) status(b models.BudgetRecord, expenses []models.ExpenseRecord) BudgetStatus {
	amount := b.Budget
	malformed := b.Malformed || amount.IsNegative()
	if malformed {
		if a.logger != nil {
			a.logger.Warn("Budget amount is not usable, treating as zero",
				logging.Field{Key: logging.FieldBudgetID, Value: b.ID},
				logging.Field{Key: logging.FieldCategory, Value: b.Category},
				logging.Field{Key: logging.FieldReason, Value: malformedReason(b)})
		}
		amount = decimal.Zero
	}

	spent := b.Spent
	if a.opts.Source == SpentFromExpenses {
		spent = SpentFor(b, expenses, a.opts.AsOf)
	}
	spent = models.ClampNonNegative(spent)

	pct := Percentage(spent, amount)
	return BudgetStatus{
		ID:         b.ID,
		Category:   b.Category,
		Period:     b.Period,
		Color:      b.Color,
		Budget:     amount,
		Spent:      spent,
		Remaining:  amount.Sub(spent),
		Percentage: pct,
		Tier:       Classify(pct),
		Malformed:  malformed,
	}
}

func malformedReason(b models.BudgetRecord) string {
	if b.Malformed {
		return "non-numeric amount"
	}
	return "negative amount"
}

// SpentFor sums the expenses whose category matches the budget's. With a
// non-zero asOf only expenses inside the budget period window containing asOf
// are counted.
func SpentFor(b models.BudgetRecord, expenses []models.ExpenseRecord, asOf time.Time) decimal.Decimal {
	key := catalog.Canonical(b.Category)
	total := decimal.Zero
	for _, e := range expenses {
		if catalog.Canonical(e.Category) != key {
			continue
		}
		if !asOf.IsZero() && !b.Period.Contains(asOf, e.Date) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

// Percentage returns round(100*spent/budget) rounding halves up, and 0 when
// budget is not positive.
func Percentage(spent, budget decimal.Decimal) int64 {
	if !budget.IsPositive() {
		return 0
	}
	return spent.Mul(hundred).Div(budget).Round(0).IntPart()
}
