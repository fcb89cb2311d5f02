package store

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockStore is an in-memory Store for tests. It is safe for concurrent use.
type MockStore struct {
	mu       sync.Mutex
	expenses []models.ExpenseRecord
	budgets  []models.BudgetRecord

	// Error hooks for testing error conditions. A nil hook never fails.
	CreateExpenseErr func(e models.ExpenseRecord) error
	UpdateExpenseErr error
	DeleteExpenseErr error
	ListExpensesErr  error
	ListBudgetsErr   error
	CreateBudgetErr  error
	UpdateBudgetErr  error
	DeleteBudgetErr  error

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewMockStore returns a MockStore seeded with the given records.
func NewMockStore(expenses []models.ExpenseRecord, budgets []models.BudgetRecord) *MockStore {
	return &MockStore{
		expenses: append([]models.ExpenseRecord(nil), expenses...),
		budgets:  append([]models.BudgetRecord(nil), budgets...),
		Calls:    make(map[string]int),
	}
}

func (m *MockStore) called(name string) {
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount returns how many times method name was invoked.
func (m *MockStore) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

// Expenses returns a copy of the stored expenses.
func (m *MockStore) Expenses() []models.ExpenseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ExpenseRecord(nil), m.expenses...)
}

// Budgets returns a copy of the stored budgets.
func (m *MockStore) Budgets() []models.BudgetRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.BudgetRecord(nil), m.budgets...)
}

func (m *MockStore) ListExpenses(_ context.Context, month string) ([]models.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ListExpenses")
	if m.ListExpensesErr != nil {
		return nil, m.ListExpensesErr
	}
	var out []models.ExpenseRecord
	for _, e := range m.expenses {
		if month == "" || dateutils.MonthKey(e.Date) == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockStore) CreateExpense(_ context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("CreateExpense")
	if m.CreateExpenseErr != nil {
		if err := m.CreateExpenseErr(e); err != nil {
			return models.ExpenseRecord{}, err
		}
	}
	e.ID = uuid.NewString()
	m.expenses = append(m.expenses, e)
	return e, nil
}

func (m *MockStore) UpdateExpense(_ context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("UpdateExpense")
	if m.UpdateExpenseErr != nil {
		return models.ExpenseRecord{}, m.UpdateExpenseErr
	}
	for i := range m.expenses {
		if m.expenses[i].ID == e.ID {
			m.expenses[i] = e
			return e, nil
		}
	}
	return models.ExpenseRecord{}, fmt.Errorf("expense %s: %w", e.ID, ErrNotFound)
}

func (m *MockStore) DeleteExpense(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("DeleteExpense")
	if m.DeleteExpenseErr != nil {
		return m.DeleteExpenseErr
	}
	for i := range m.expenses {
		if m.expenses[i].ID == id {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %s: %w", id, ErrNotFound)
}

func (m *MockStore) ListBudgets(_ context.Context) ([]models.BudgetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("ListBudgets")
	if m.ListBudgetsErr != nil {
		return nil, m.ListBudgetsErr
	}
	return append([]models.BudgetRecord(nil), m.budgets...), nil
}

func (m *MockStore) CreateBudget(_ context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("CreateBudget")
	if m.CreateBudgetErr != nil {
		return models.BudgetRecord{}, m.CreateBudgetErr
	}
	b.ID = uuid.NewString()
	m.budgets = append([]models.BudgetRecord{b}, m.budgets...)
	return b, nil
}

func (m *MockStore) UpdateBudget(_ context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("UpdateBudget")
	if m.UpdateBudgetErr != nil {
		return models.BudgetRecord{}, m.UpdateBudgetErr
	}
	for i := range m.budgets {
		if m.budgets[i].ID == b.ID {
			m.budgets[i] = b
			return b, nil
		}
	}
	return models.BudgetRecord{}, fmt.Errorf("budget %s: %w", b.ID, ErrNotFound)
}

func (m *MockStore) DeleteBudget(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called("DeleteBudget")
	if m.DeleteBudgetErr != nil {
		return m.DeleteBudgetErr
	}
	for i := range m.budgets {
		if m.budgets[i].ID == id {
			m.budgets = append(m.budgets[:i], m.budgets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("budget %s: %w", id, ErrNotFound)
}

func (m *MockStore) ExpenseSummary(ctx context.Context, month string) (Summary, error) {
	expenses, err := m.ListExpenses(ctx, month)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{TotalSpent: decimal.Zero, ByCategory: make(map[string]decimal.Decimal)}
	for _, e := range expenses {
		s.TotalSpent = s.TotalSpent.Add(e.Amount)
		s.Count++
		s.ByCategory[e.Category] = s.ByCategory[e.Category].Add(e.Amount)
	}
	return s, nil
}

// Close is a no-op.
func (m *MockStore) Close() error { return nil }

var _ Store = (*MockStore)(nil)
