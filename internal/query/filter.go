// Package query filters and sorts expense collections for display and export.
// Every function is pure: inputs are never modified and results are fresh slices.
package query

import (
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"
)

// AllCategories is the category sentinel that imposes no restriction.
const AllCategories = "all"

// Predicate selects expenses. Zero fields impose no restriction.
type Predicate struct {
	// Search matches case-insensitively against description or category.
	Search string
	// Category restricts to one category, compared canonically.
	Category string
	// From and To are inclusive calendar-day bounds.
	From *time.Time
	To   *time.Time
}

// Filter returns the expenses matching p, in input order.
func Filter(expenses []models.ExpenseRecord, p Predicate) []models.ExpenseRecord {
	m := newMatcher(p)
	out := make([]models.ExpenseRecord, 0, len(expenses))
	for _, e := range expenses {
		if m.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether a single expense satisfies p.
func Matches(e models.ExpenseRecord, p Predicate) bool {
	return newMatcher(p).match(e)
}

type matcher struct {
	search   string
	category string
	from, to *time.Time
}

func newMatcher(p Predicate) matcher {
	m := matcher{
		search: strings.ToLower(strings.TrimSpace(p.Search)),
		from:   p.From,
		to:     p.To,
	}
	if c := catalog.Canonical(p.Category); c != "" && c != AllCategories {
		m.category = c
	}
	return m
}

func (m matcher) match(e models.ExpenseRecord) bool {
	if m.search != "" &&
		!strings.Contains(strings.ToLower(e.Description), m.search) &&
		!strings.Contains(strings.ToLower(e.Category), m.search) {
		return false
	}
	if m.category != "" && catalog.Canonical(e.Category) != m.category {
		return false
	}
	return dateutils.WithinDays(e.Date, m.from, m.to)
}

// Categories returns the distinct categories present in expenses, in first-seen
// order, compared canonically. It feeds category filter choices.
func Categories(expenses []models.ExpenseRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range expenses {
		key := catalog.Canonical(e.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e.Category)
	}
	return out
}
