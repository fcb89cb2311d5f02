// Package profile implements onboarding: the financial questionnaire, the
// rules that turn answers into suggested budgets, and the profile
// repository that keeps a local copy in step with the remote one.
package profile

import (
	"errors"
	"fmt"

	"fjacquet/budget-tracker/internal/parsererror"

	"github.com/shopspring/decimal"
)

// TotalSteps is the number of questionnaire steps.
const TotalSteps = 5

// Frequency answers for shopping and dining out.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyRarely  = "rarely"
)

// Frequencies lists the accepted frequency answers.
var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyRarely}

// Spending priorities.
const (
	PriorityTravel        = "travel"
	PriorityDining        = "dining"
	PriorityShopping      = "shopping"
	PriorityHealth        = "health"
	PriorityEntertainment = "entertainment"
)

// Priorities lists the accepted spending priorities.
var Priorities = []string{PriorityTravel, PriorityDining, PriorityShopping, PriorityHealth, PriorityEntertainment}

// Financial goals.
const (
	GoalEmergency  = "emergency"
	GoalDebt       = "debt"
	GoalRetirement = "retirement"
	GoalHome       = "home"
	GoalVacation   = "vacation"
)

// Goals lists the accepted financial goals.
var Goals = []string{GoalEmergency, GoalDebt, GoalRetirement, GoalHome, GoalVacation}

// Questionnaire holds the onboarding answers. Amounts are monthly.
type Questionnaire struct {
	Income                decimal.Decimal `json:"income" yaml:"income"`
	HousingExpense        decimal.Decimal `json:"housingExpense" yaml:"housing_expense"`
	TransportationExpense decimal.Decimal `json:"transportationExpense" yaml:"transportation_expense"`
	FoodExpense           decimal.Decimal `json:"foodExpense" yaml:"food_expense"`
	SpendingPriorities    []string        `json:"spendingPriorities" yaml:"spending_priorities"`
	FinancialGoals        []string        `json:"financialGoals" yaml:"financial_goals"`
	SavingGoal            decimal.Decimal `json:"savingGoal" yaml:"saving_goal"`
	ShoppingFrequency     string          `json:"shoppingFrequency" yaml:"shopping_frequency"`
	DiningOutFrequency    string          `json:"diningOutFrequency" yaml:"dining_out_frequency"`
}

// NewQuestionnaire returns a questionnaire with the default frequencies.
func NewQuestionnaire() Questionnaire {
	return Questionnaire{
		ShoppingFrequency:  FrequencyWeekly,
		DiningOutFrequency: FrequencyWeekly,
	}
}

// HasPriority reports whether p was selected as a spending priority.
func (q Questionnaire) HasPriority(p string) bool {
	return contains(q.SpendingPriorities, p)
}

// HasGoal reports whether g was selected as a financial goal.
func (q Questionnaire) HasGoal(g string) bool {
	return contains(q.FinancialGoals, g)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidateStep checks the answers collected on one step. Steps are 1-based.
func ValidateStep(step int, q Questionnaire) error {
	var errs parsererror.ValidationErrors

	switch step {
	case 1:
		if !q.Income.IsPositive() {
			errs.Add("income", "Please enter a valid monthly income")
		}
	case 2:
		if q.HousingExpense.IsNegative() {
			errs.Add("housingExpense", "Please enter your housing expense (0 if none)")
		}
		if q.TransportationExpense.IsNegative() {
			errs.Add("transportationExpense", "Please enter your transportation expense (0 if none)")
		}
		if q.FoodExpense.IsNegative() {
			errs.Add("foodExpense", "Please enter your food expense (0 if none)")
		}
	case 3:
		if len(q.SpendingPriorities) == 0 {
			errs.Add("spendingPriorities", "Please select at least one spending priority")
		}
	case 4:
		if len(q.FinancialGoals) == 0 {
			errs.Add("financialGoals", "Please select at least one financial goal")
		}
		if q.SavingGoal.IsNegative() {
			errs.Add("savingGoals", "Please enter your monthly saving target (0 if none)")
		}
	case 5:
		if !contains(Frequencies, q.ShoppingFrequency) {
			errs.Add("shoppingFrequency", "Please select your shopping frequency")
		}
		if !contains(Frequencies, q.DiningOutFrequency) {
			errs.Add("diningOutFrequency", "Please select your dining out frequency")
		}
	default:
		return fmt.Errorf("unknown questionnaire step %d", step)
	}

	return errs.ErrOrNil()
}

// Validate checks every step and returns all failures together.
func Validate(q Questionnaire) error {
	var all parsererror.ValidationErrors
	for step := 1; step <= TotalSteps; step++ {
		err := ValidateStep(step, q)
		if err == nil {
			continue
		}
		var ve *parsererror.ValidationErrors
		if errors.As(err, &ve) {
			all.Errors = append(all.Errors, ve.Errors...)
		}
	}
	return all.ErrOrNil()
}
