package budget

import (
	"sort"

	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// NoCategory is reported by MostSpent when there is nothing to rank.
const NoCategory = "N/A"

// CategoryTotal is the spending of one category.
type CategoryTotal struct {
	Category string
	Group    string
	Total    decimal.Decimal
	Count    int
	// Share is the percentage of all spending, one decimal place.
	Share decimal.Decimal
}

// Breakdown totals expenses per category, largest first; ties are ordered by
// category name. Categories are matched canonically and reported with the
// spelling of their first expense.
func Breakdown(cat *catalog.Catalog, expenses []models.ExpenseRecord) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	grand := decimal.Zero

	for _, e := range expenses {
		key := catalog.Canonical(e.Category)
		i, ok := index[key]
		if !ok {
			i = len(totals)
			index[key] = i
			totals = append(totals, CategoryTotal{
				Category: e.Category,
				Group:    cat.GroupOf(e.Category),
				Total:    decimal.Zero,
			})
		}
		totals[i].Total = totals[i].Total.Add(e.Amount)
		totals[i].Count++
		grand = grand.Add(e.Amount)
	}

	for i := range totals {
		if grand.IsPositive() {
			totals[i].Share = totals[i].Total.Mul(hundred).Div(grand).Round(1)
		} else {
			totals[i].Share = decimal.Zero
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return catalog.Canonical(totals[i].Category) < catalog.Canonical(totals[j].Category)
	})
	return totals
}

// MostSpent returns the category with the largest total, or NoCategory.
func MostSpent(totals []CategoryTotal) string {
	if len(totals) == 0 {
		return NoCategory
	}
	return totals[0].Category
}

// TotalSpent sums every expense amount.
func TotalSpent(expenses []models.ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
