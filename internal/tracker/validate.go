package tracker

import (
	"fmt"
	"strings"

	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"
)

// ValidateExpense checks an expense form before it reaches the store.
func ValidateExpense(e models.ExpenseRecord) error {
	var errs parsererror.ValidationErrors
	if !e.Amount.IsPositive() {
		errs.Add("amount", "Enter an amount > 0")
	}
	if e.Date.IsZero() {
		errs.Add("date", "Required")
	}
	if strings.TrimSpace(e.Description) == "" {
		errs.Add("description", "Required")
	}
	if strings.TrimSpace(e.Category) == "" {
		errs.Add("category", "Required")
	}
	return errs.ErrOrNil()
}

// ValidateBudget checks a budget form before it reaches the store.
func ValidateBudget(b models.BudgetRecord) error {
	var errs parsererror.ValidationErrors
	if strings.TrimSpace(b.Category) == "" {
		errs.Add("category", "Category is required")
	}
	if !b.Budget.IsPositive() {
		errs.Add("amount", "Amount must be greater than 0")
	}
	switch {
	case b.Period == "":
		errs.Add("period", "Period is required")
	case !b.Period.Valid():
		errs.Add("period", fmt.Sprintf("Period must be one of %s", periodList()))
	}
	return errs.ErrOrNil()
}

func periodList() string {
	names := make([]string, 0, len(models.Periods))
	for _, p := range models.Periods {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
