package models

import "github.com/shopspring/decimal"

// CategorySuggestion is a proposed budget produced by onboarding.
type CategorySuggestion struct {
	Name             string          `json:"name" yaml:"name"`
	Icon             string          `json:"icon" yaml:"icon"`
	Color            string          `json:"color" yaml:"color"`
	BudgetSuggestion decimal.Decimal `json:"budgetSuggestion" yaml:"budget_suggestion"`
}
