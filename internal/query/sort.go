package query

import (
	"fmt"
	"sort"
	"strings"

	"fjacquet/budget-tracker/internal/models"
)

// SortKey names the field expenses are ordered by.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByDescription SortKey = "description"
	SortByCategory    SortKey = "category"
	SortByAmount      SortKey = "amount"
)

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortKey accepts a sort key name in any case.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByDate, SortByDescription, SortByCategory, SortByAmount:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key %q (must be date, description, category or amount)", s)
}

// ParseDirection accepts asc/ascending or desc/descending in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("invalid sort direction %q (must be asc or desc)", s)
}

// Sort returns a copy of expenses ordered by key. The sort is stable: equal
// elements keep their input order in both directions. String fields compare
// case-insensitively. Unknown keys leave the order unchanged.
func Sort(expenses []models.ExpenseRecord, key SortKey, dir Direction) []models.ExpenseRecord {
	out := make([]models.ExpenseRecord, len(expenses))
	copy(out, expenses)

	cmp := comparator(key)
	if cmp == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator(key SortKey) func(a, b models.ExpenseRecord) int {
	switch key {
	case SortByDate:
		return func(a, b models.ExpenseRecord) int { return a.Date.Compare(b.Date) }
	case SortByDescription:
		return func(a, b models.ExpenseRecord) int {
			return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}
	case SortByCategory:
		return func(a, b models.ExpenseRecord) int {
			return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		}
	case SortByAmount:
		return func(a, b models.ExpenseRecord) int { return a.Amount.Cmp(b.Amount) }
	}
	return nil
}
