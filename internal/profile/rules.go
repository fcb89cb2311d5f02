package profile

import (
	"fjacquet/budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// rule proposes one budget category. when decides whether the category
// applies; amount computes the suggestion before rounding.
type rule struct {
	name   string
	icon   string
	color  string
	when   func(q Questionnaire) bool
	amount func(q Questionnaire) decimal.Decimal
}

func share(ratio string) func(q Questionnaire) decimal.Decimal {
	r := decimal.RequireFromString(ratio)
	return func(q Questionnaire) decimal.Decimal { return q.Income.Mul(r) }
}

func hasIncome(q Questionnaire) bool { return q.Income.IsPositive() }

func priority(p string) func(q Questionnaire) bool {
	return func(q Questionnaire) bool { return q.HasPriority(p) }
}

func goal(g string) func(q Questionnaire) bool {
	return func(q Questionnaire) bool { return q.HasGoal(g) }
}

func always(Questionnaire) bool { return true }

// rules is evaluated top to bottom; output keeps this order.
var rules = []rule{
	{
		name: "Rent/Mortgage", icon: "🏠", color: "#4CAF50",
		when:   func(q Questionnaire) bool { return q.HousingExpense.IsPositive() },
		amount: func(q Questionnaire) decimal.Decimal { return q.HousingExpense },
	},
	{
		name: "Transportation", icon: "🚗", color: "#2196F3",
		when:   func(q Questionnaire) bool { return q.TransportationExpense.IsPositive() },
		amount: func(q Questionnaire) decimal.Decimal { return q.TransportationExpense },
	},
	{
		name: "Gas/Fuel", icon: "⛽", color: "#FF9800",
		when: func(q Questionnaire) bool {
			return q.TransportationExpense.IsPositive() &&
				q.TransportationExpense.GreaterThan(q.Income.Mul(decimal.RequireFromString("0.1")))
		},
		amount: func(q Questionnaire) decimal.Decimal {
			return q.TransportationExpense.Mul(decimal.RequireFromString("0.4"))
		},
	},
	{
		name: "Groceries", icon: "🛒", color: "#8BC34A",
		when:   func(q Questionnaire) bool { return q.FoodExpense.IsPositive() },
		amount: func(q Questionnaire) decimal.Decimal { return q.FoodExpense },
	},
	{
		name: "Restaurants & Dining Out", icon: "🍽️", color: "#FF5722",
		when: func(q Questionnaire) bool {
			return q.DiningOutFrequency == FrequencyDaily || q.DiningOutFrequency == FrequencyWeekly
		},
		amount: func(q Questionnaire) decimal.Decimal {
			if q.DiningOutFrequency == FrequencyDaily {
				return share("0.15")(q)
			}
			return share("0.08")(q)
		},
	},
	{name: "Utilities", icon: "⚡", color: "#FFC107", when: hasIncome, amount: share("0.08")},
	{name: "Mobile Phone", icon: "📱", color: "#00BCD4", when: hasIncome, amount: share("0.03")},
	{
		name: "Savings", icon: "💰", color: "#607D8B",
		when: func(q Questionnaire) bool { return q.SavingGoal.IsPositive() || hasIncome(q) },
		amount: func(q Questionnaire) decimal.Decimal {
			if q.SavingGoal.IsPositive() {
				return q.SavingGoal
			}
			return share("0.15")(q)
		},
	},
	{name: "Travel & Vacation", icon: "✈️", color: "#00BCD4", when: priority(PriorityTravel), amount: share("0.08")},
	{name: "Health & Fitness", icon: "💪", color: "#8BC34A", when: priority(PriorityHealth), amount: share("0.05")},
	{name: "Medical Expenses", icon: "🏥", color: "#E91E63", when: priority(PriorityHealth), amount: share("0.04")},
	{
		name: "Shopping & Retail", icon: "🛍️", color: "#E91E63",
		when: priority(PriorityShopping),
		amount: func(q Questionnaire) decimal.Decimal {
			switch q.ShoppingFrequency {
			case FrequencyDaily:
				return share("0.12")(q)
			case FrequencyWeekly:
				return share("0.08")(q)
			default:
				return share("0.05")(q)
			}
		},
	},
	{name: "Entertainment", icon: "🎬", color: "#9C27B0", when: priority(PriorityEntertainment), amount: share("0.06")},
	{name: "Streaming Services", icon: "📺", color: "#673AB7", when: priority(PriorityEntertainment), amount: share("0.02")},
	{name: "Emergency Fund", icon: "🚨", color: "#FF6B6B", when: goal(GoalEmergency), amount: share("0.10")},
	{name: "Debt Payments", icon: "💳", color: "#FF4444", when: goal(GoalDebt), amount: share("0.15")},
	{name: "Retirement Savings", icon: "🏖️", color: "#4ECDC4", when: goal(GoalRetirement), amount: share("0.10")},
	{name: "Miscellaneous", icon: "📦", color: "#95A5A6", when: always, amount: share("0.05")},
}

// Suggest derives budget suggestions from questionnaire answers. Each rule
// is evaluated independently and amounts are rounded to cents.
func Suggest(q Questionnaire) []models.CategorySuggestion {
	out := make([]models.CategorySuggestion, 0, len(rules))
	for _, r := range rules {
		if !r.when(q) {
			continue
		}
		out = append(out, models.CategorySuggestion{
			Name:             r.name,
			Icon:             r.icon,
			Color:            r.color,
			BudgetSuggestion: models.RoundCents(r.amount(q)),
		})
	}
	return out
}

// SuggestedTotal sums the suggested budgets.
func SuggestedTotal(suggestions []models.CategorySuggestion) decimal.Decimal {
	total := decimal.Zero
	for _, s := range suggestions {
		total = total.Add(s.BudgetSuggestion)
	}
	return total
}

// ToBudgets turns suggestions into monthly budget records ready to create.
func ToBudgets(suggestions []models.CategorySuggestion) []models.BudgetRecord {
	budgets := make([]models.BudgetRecord, 0, len(suggestions))
	for _, s := range suggestions {
		if !s.BudgetSuggestion.IsPositive() {
			continue
		}
		budgets = append(budgets, models.BudgetRecord{
			Category: s.Name,
			Period:   models.PeriodMonthly,
			Budget:   s.BudgetSuggestion,
			Color:    s.Color,
		})
	}
	return budgets
}
