package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/profile"

	"github.com/shopspring/decimal"
)

// amount is a JSON money value sent as a number or a numeric string.
// Valid is false when the field was missing, null or unreadable.
type amount struct {
	Value decimal.Decimal
	Valid bool
}

func newAmount(d decimal.Decimal) amount {
	return amount{Value: d, Valid: true}
}

func (a *amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		a.Valid = false
		return nil
	}
	a.Value, a.Valid = d, true
	return nil
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.String()), nil
}

// envelope unwraps {"data": ...} responses; bare payloads pass through.
func decodePayload(body []byte, out interface{}) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}

// errorMessage extracts a server message from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

type expenseDTO struct {
	MongoID     string `json:"_id,omitempty"`
	ID          string `json:"id,omitempty"`
	Amount      amount `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ReceiptURL  string `json:"receiptUrl,omitempty"`
}

func toExpenseDTO(e models.ExpenseRecord) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Amount:      newAmount(e.Amount),
		Date:        e.ISODate(),
		Description: e.Description,
		Category:    e.Category,
		ReceiptURL:  e.ReceiptURL,
	}
}

func (d expenseDTO) record() (models.ExpenseRecord, error) {
	date, err := parseWireDate(d.Date)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	if !d.Amount.Valid {
		return models.ExpenseRecord{}, fmt.Errorf("expense %s: amount is not a number", d.id())
	}
	return models.ExpenseRecord{
		ID:          d.id(),
		Amount:      d.Amount.Value,
		Date:        date,
		Description: d.Description,
		Category:    d.Category,
		ReceiptURL:  d.ReceiptURL,
	}, nil
}

func (d expenseDTO) id() string {
	if d.MongoID != "" {
		return d.MongoID
	}
	return d.ID
}

// parseWireDate accepts YYYY-MM-DD or an RFC 3339 timestamp and keeps the
// calendar day as written.
func parseWireDate(s string) (time.Time, error) {
	if t, err := dateutils.ParseISO(s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return dateutils.CalendarDate(t), nil
}

type budgetDTO struct {
	MongoID  string `json:"_id,omitempty"`
	ID       string `json:"id,omitempty"`
	Category string `json:"category"`
	Period   string `json:"period"`
	Budget   amount `json:"budget"`
	Spent    amount `json:"spent"`
	Color    string `json:"color,omitempty"`
}

func toBudgetDTO(b models.BudgetRecord) budgetDTO {
	return budgetDTO{
		ID:       b.ID,
		Category: b.Category,
		Period:   string(b.Period),
		Budget:   newAmount(b.Budget),
		Spent:    newAmount(b.Spent),
		Color:    b.Color,
	}
}

// record never fails: unreadable budget amounts are flagged Malformed and
// unreadable spent values read as zero.
func (d budgetDTO) record() models.BudgetRecord {
	id := d.MongoID
	if id == "" {
		id = d.ID
	}
	b := models.BudgetRecord{
		ID:       id,
		Category: d.Category,
		Period:   models.Period(d.Period),
		Color:    d.Color,
	}
	if p, err := models.ParsePeriod(d.Period); err == nil {
		b.Period = p
	}
	if d.Budget.Valid {
		b.Budget = d.Budget.Value
	} else {
		b.Malformed = true
	}
	if d.Spent.Valid {
		b.Spent = d.Spent.Value
	}
	return b
}

type summaryDTO struct {
	TotalSpent amount            `json:"totalSpent"`
	Count      int               `json:"count"`
	ByCategory map[string]amount `json:"byCategory"`
}

type suggestionDTO struct {
	Name             string `json:"name"`
	Icon             string `json:"icon"`
	Color            string `json:"color"`
	BudgetSuggestion amount `json:"budgetSuggestion"`
}

type profileDTO struct {
	Income                amount          `json:"monthlyIncomeAfterTaxes"`
	HousingExpense        amount          `json:"housingExpense"`
	TransportationExpense amount          `json:"transportationExpense"`
	FoodExpense           amount          `json:"foodGroceriesExpense"`
	SpendingPriorities    []string        `json:"spendingPriorities"`
	FinancialGoals        []string        `json:"financialGoals"`
	SavingGoal            amount          `json:"savingGoals"`
	ShoppingFrequency     string          `json:"shoppingFrequency"`
	DiningOutFrequency    string          `json:"diningOutFrequency"`
	Categories            []suggestionDTO `json:"categories"`
	Completed             bool            `json:"isCompleted"`
	UpdatedAt             *time.Time      `json:"updatedAt,omitempty"`
}

func toProfileDTO(p *profile.Profile) profileDTO {
	q := p.Answers
	dto := profileDTO{
		Income:                newAmount(q.Income),
		HousingExpense:        newAmount(q.HousingExpense),
		TransportationExpense: newAmount(q.TransportationExpense),
		FoodExpense:           newAmount(q.FoodExpense),
		SpendingPriorities:    q.SpendingPriorities,
		FinancialGoals:        q.FinancialGoals,
		SavingGoal:            newAmount(q.SavingGoal),
		ShoppingFrequency:     q.ShoppingFrequency,
		DiningOutFrequency:    q.DiningOutFrequency,
		Categories:            make([]suggestionDTO, 0, len(p.Categories)),
		Completed:             p.Completed,
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		dto.UpdatedAt = &t
	}
	for _, c := range p.Categories {
		dto.Categories = append(dto.Categories, suggestionDTO{
			Name:             c.Name,
			Icon:             c.Icon,
			Color:            c.Color,
			BudgetSuggestion: newAmount(c.BudgetSuggestion),
		})
	}
	return dto
}

func (d profileDTO) profile() *profile.Profile {
	p := &profile.Profile{
		Answers: profile.Questionnaire{
			Income:                d.Income.Value,
			HousingExpense:        d.HousingExpense.Value,
			TransportationExpense: d.TransportationExpense.Value,
			FoodExpense:           d.FoodExpense.Value,
			SpendingPriorities:    d.SpendingPriorities,
			FinancialGoals:        d.FinancialGoals,
			SavingGoal:            d.SavingGoal.Value,
			ShoppingFrequency:     d.ShoppingFrequency,
			DiningOutFrequency:    d.DiningOutFrequency,
		},
		Completed: d.Completed,
	}
	if d.UpdatedAt != nil {
		p.UpdatedAt = d.UpdatedAt.UTC()
	}
	for _, c := range d.Categories {
		p.Categories = append(p.Categories, models.CategorySuggestion{
			Name:             c.Name,
			Icon:             c.Icon,
			Color:            c.Color,
			BudgetSuggestion: c.BudgetSuggestion.Value,
		})
	}
	return p
}
