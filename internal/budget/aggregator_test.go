package budget

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"testing"
	"time"

	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func expense(date time.Time, amount, category string) models.ExpenseRecord {
	return models.ExpenseRecord{Date: date, Amount: dec(amount), Description: "x", Category: category}
}

func TestAggregate_GroceriesAndRent(t *testing.T) {
	agg := NewAggregator(logging.NewMockLogger(), Options{})
	summary := agg.Aggregate([]models.BudgetRecord{
		{ID: "b1", Category: "Groceries", Budget: dec("500"), Spent: dec("320")},
		{ID: "b2", Category: "Rent", Budget: dec("1200"), Spent: dec("1200")},
	}, nil)

	require.Len(t, summary.Budgets, 2)

	groceries := summary.Budgets[0]
	assert.Equal(t, int64(64), groceries.Percentage)
	assert.Equal(t, TierNormal, groceries.Tier)
	assert.True(t, groceries.Remaining.Equal(dec("180")))

	rent := summary.Budgets[1]
	assert.Equal(t, int64(100), rent.Percentage)
	assert.Equal(t, TierDanger, rent.Tier)
	assert.True(t, rent.Remaining.IsZero())
	assert.False(t, rent.OverBudget())

	assert.True(t, summary.TotalBudget.Equal(dec("1700")))
	assert.True(t, summary.TotalSpent.Equal(dec("1520")))
	assert.True(t, summary.TotalRemaining.Equal(dec("180")))
	assert.Equal(t, int64(89), summary.OverallPercentage)
	assert.Equal(t, TierWarning, summary.OverallTier)

	alerts := summary.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "Rent", alerts[0].Category)
}

func TestAggregate_ZeroBudget(t *testing.T) {
	agg := NewAggregator(nil, Options{})
	summary := agg.Aggregate([]models.BudgetRecord{
		{Category: "Gifts", Budget: decimal.Zero, Spent: dec("40")},
	}, nil)

	s := summary.Budgets[0]
	assert.Equal(t, int64(0), s.Percentage)
	assert.Equal(t, TierNormal, s.Tier)
	assert.True(t, s.OverBudget())
	assert.Equal(t, int64(0), summary.OverallPercentage)
	assert.Equal(t, TierNormal, summary.OverallTier)
}

func TestAggregate_Empty(t *testing.T) {
	summary := NewAggregator(nil, Options{}).Aggregate(nil, nil)
	assert.Empty(t, summary.Budgets)
	assert.True(t, summary.TotalBudget.IsZero())
	assert.Equal(t, int64(0), summary.OverallPercentage)
	assert.Equal(t, TierNormal, summary.OverallTier)
}

func TestAggregate_MalformedBudget(t *testing.T) {
	logger := logging.NewMockLogger()
	agg := NewAggregator(logger, Options{})

	summary := agg.Aggregate([]models.BudgetRecord{
		{ID: "bad", Category: "Food", Budget: decimal.Zero, Spent: dec("50"), Malformed: true},
		{ID: "neg", Category: "Fun", Budget: dec("-100"), Spent: dec("10")},
		{ID: "ok", Category: "Rent", Budget: dec("100"), Spent: dec("-5")},
	}, nil)

	require.Len(t, summary.Budgets, 3)
	for _, s := range summary.Budgets[:2] {
		assert.True(t, s.Malformed, s.ID)
		assert.True(t, s.Budget.IsZero(), s.ID)
		assert.Equal(t, int64(0), s.Percentage, s.ID)
		assert.Equal(t, TierNormal, s.Tier, s.ID)
	}

	ok := summary.Budgets[2]
	assert.False(t, ok.Malformed)
	assert.True(t, ok.Spent.IsZero(), "negative spent is clamped")

	assert.True(t, summary.TotalBudget.Equal(dec("100")))
	assert.True(t, summary.TotalSpent.Equal(dec("60")))
	assert.Equal(t, int64(60), summary.OverallPercentage)

	warnings := logger.GetEntriesByLevel("WARN")
	require.Len(t, warnings, 2)
	reason, _ := warnings[0].FieldValue(logging.FieldReason)
	assert.Equal(t, "non-numeric amount", reason)
	reason, _ = warnings[1].FieldValue(logging.FieldReason)
	assert.Equal(t, "negative amount", reason)
}

func TestAggregate_RecomputeFromExpenses(t *testing.T) {
	expenses := []models.ExpenseRecord{
		expense(day(2024, time.May, 2), "20", "groceries"),
		expense(day(2024, time.May, 20), "30.50", " Groceries "),
		expense(day(2024, time.April, 30), "99", "Groceries"),
		expense(day(2024, time.May, 3), "15", "Rent"),
	}
	budgets := []models.BudgetRecord{
		{Category: "Groceries", Period: models.PeriodMonthly, Budget: dec("100"), Spent: dec("999")},
		{Category: "Groceries", Period: models.PeriodWeekly, Budget: dec("100")},
	}

	t.Run("all expenses", func(t *testing.T) {
		summary := NewAggregator(nil, Options{Source: SpentFromExpenses}).Aggregate(budgets, expenses)
		assert.True(t, summary.Budgets[0].Spent.Equal(dec("149.5")))
		assert.Equal(t, int64(150), summary.Budgets[0].Percentage)
	})

	t.Run("windowed by period", func(t *testing.T) {
		summary := NewAggregator(nil, Options{Source: SpentFromExpenses, AsOf: day(2024, time.May, 21)}).
			Aggregate(budgets, expenses)
		// Monthly: May 2 and May 20.
		assert.True(t, summary.Budgets[0].Spent.Equal(dec("50.5")))
		assert.Equal(t, int64(51), summary.Budgets[0].Percentage)
		// Weekly, week of Monday May 20: only May 20.
		assert.True(t, summary.Budgets[1].Spent.Equal(dec("30.5")))
	})

	t.Run("record source ignores expenses", func(t *testing.T) {
		summary := NewAggregator(nil, Options{}).Aggregate(budgets, expenses)
		assert.True(t, summary.Budgets[0].Spent.Equal(dec("999")))
	})
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	budgets := []models.BudgetRecord{{Category: "A", Budget: dec("-1"), Spent: dec("-2")}}
	_ = NewAggregator(nil, Options{}).Aggregate(budgets, nil)
	assert.True(t, budgets[0].Budget.Equal(dec("-1")))
	assert.True(t, budgets[0].Spent.Equal(dec("-2")))
	assert.False(t, budgets[0].Malformed)
}

func TestPercentage_RoundHalfUp(t *testing.T) {
	tests := []struct {
		spent, budget string
		want          int64
	}{
		{"745", "1000", 75}, // 74.5
		{"744.9", "1000", 74},
		{"895", "1000", 90}, // 89.5
		{"1", "3", 33},
		{"2", "3", 67},
		{"0", "10", 0},
		{"10", "0", 0},
		{"10", "-5", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.spent, tt.budget), func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(dec(tt.spent), dec(tt.budget)))
		})
	}
}

func randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Property: the rollup percentage equals round(100*totalSpent/totalBudget) for
// any set of well-formed budgets, and 0 when the total budget is 0.
func TestProperty_OverallPercentage(t *testing.T) {
	agg := NewAggregator(nil, Options{})
	for i := 0; i < 100; i++ {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			n := randIntn(6)
			budgets := make([]models.BudgetRecord, n)
			totalBudget, totalSpent := decimal.Zero, decimal.Zero
			for j := range budgets {
				b := decimal.New(int64(randIntn(200000)), -2)
				s := decimal.New(int64(randIntn(300000)), -2)
				budgets[j] = models.BudgetRecord{Category: fmt.Sprintf("c%d", j), Budget: b, Spent: s}
				totalBudget = totalBudget.Add(b)
				totalSpent = totalSpent.Add(s)
			}

			summary := agg.Aggregate(budgets, nil)

			want := int64(0)
			if totalBudget.IsPositive() {
				want = totalSpent.Mul(decimal.NewFromInt(100)).Div(totalBudget).Round(0).IntPart()
			}
			assert.Equal(t, want, summary.OverallPercentage)
			assert.Equal(t, Classify(want), summary.OverallTier)
			for _, s := range summary.Budgets {
				if s.Budget.IsZero() {
					assert.Equal(t, int64(0), s.Percentage)
					assert.Equal(t, TierNormal, s.Tier)
				}
			}
		})
	}
}
