// Package tracker holds the in-memory expense and budget view and keeps it
// consistent with the store.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fjacquet/budget-tracker/internal/budget"
	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/query"
	"fjacquet/budget-tracker/internal/store"
)

// Backend is the persistence the tracker needs.
type Backend interface {
	store.ExpenseStore
	store.BudgetStore
}

// Tracker is the expense and budget view model. Mutations go to the store
// first; the view changes only when the store accepts them. It is safe for
// concurrent use.
//
// Besides the expenses of the loaded month the tracker keeps the history
// covering the active period window of every budget, so that cached spent
// values are sums over the whole window and not only the month on screen.
type Tracker struct {
	backend Backend
	catalog *catalog.Catalog
	logger  logging.Logger
	now     func() time.Time

	mu       sync.RWMutex
	month    string
	asOf     time.Time
	expenses []models.ExpenseRecord
	budgets  []models.BudgetRecord

	// history holds the expenses dated in [histFrom, histTo). Both bounds are
	// zero when every expense is loaded.
	history  []models.ExpenseRecord
	histFrom time.Time
	histTo   time.Time
}

// New creates an empty tracker. A nil catalog selects the built-in one.
func New(backend Backend, cat *catalog.Catalog, logger logging.Logger) *Tracker {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Tracker{backend: backend, catalog: cat, logger: logger, now: time.Now}
}

// SetClock replaces the source of today's date.
func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// ReferenceDate returns the day budget windows are evaluated at for month:
// today when month is "" or the current month, otherwise the last day of
// month.
func ReferenceDate(month string, today time.Time) (time.Time, error) {
	today = dateutils.CalendarDate(today)
	if month == "" || dateutils.MonthKey(today) == month {
		return today, nil
	}
	m, err := dateutils.ParseMonth(month)
	if err != nil {
		return time.Time{}, err
	}
	return dateutils.EndOfMonth(m), nil
}

// Load replaces the view with the store's expenses for month (YYYY-MM, or
// "" for all) and every budget. Expenses of other months that fall in a
// budget's active window are loaded too, for spent computation only.
func (t *Tracker) Load(ctx context.Context, month string) error {
	t.mu.RLock()
	now := t.now
	t.mu.RUnlock()
	asOf, err := ReferenceDate(month, now())
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	expenses, err := t.backend.ListExpenses(ctx, month)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}
	budgets, err := t.backend.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load budgets: %w", err)
	}

	history := append([]models.ExpenseRecord(nil), expenses...)
	var from, to time.Time
	if month != "" {
		from, to = historyWindow(month, asOf, budgets)
		history, err = t.loadHistory(ctx, month, expenses, from, to)
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	t.month = month
	t.asOf = asOf
	t.expenses = expenses
	t.budgets = budgets
	t.history = history
	t.histFrom, t.histTo = from, to
	t.mu.Unlock()

	t.logger.WithFields(
		logging.F(logging.FieldPeriod, month),
		logging.F(logging.FieldCount, len(expenses)),
		logging.F(logging.FieldTotal, len(budgets)),
		logging.F(logging.FieldHistory, len(history)),
	).Debug("Tracker loaded")
	return nil
}

// historyWindow returns the smallest [from, to) range holding month and the
// period window at asOf of every budget.
func historyWindow(month string, asOf time.Time, budgets []models.BudgetRecord) (time.Time, time.Time) {
	from, _ := dateutils.ParseMonth(month)
	to := from.AddDate(0, 1, 0)
	for _, b := range budgets {
		start, end := b.Period.Window(asOf)
		if start.Before(from) {
			from = start
		}
		if end.After(to) {
			to = end
		}
	}
	return from, to
}

// loadHistory fetches every month overlapping [from, to), reusing the
// already loaded month, and keeps the expenses dated inside the range.
func (t *Tracker) loadHistory(ctx context.Context, month string, loaded []models.ExpenseRecord, from, to time.Time) ([]models.ExpenseRecord, error) {
	var history []models.ExpenseRecord
	for m := dateutils.StartOfMonth(from); m.Before(to); m = m.AddDate(0, 1, 0) {
		key := dateutils.MonthKey(m)
		batch := loaded
		if key != month {
			var err error
			batch, err = t.backend.ListExpenses(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("failed to load expenses of %s: %w", key, err)
			}
		}
		for _, e := range batch {
			if inRange(e.Date, from, to) {
				history = append(history, e)
			}
		}
	}
	return history, nil
}

func inRange(date, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	d := dateutils.CalendarDate(date)
	return !d.Before(from) && d.Before(to)
}

// AsOf returns the reference date of the last Load.
func (t *Tracker) AsOf() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.asOf
}

// Month returns the month filter of the last Load.
func (t *Tracker) Month() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.month
}

// Expenses returns a copy of the loaded expenses.
func (t *Tracker) Expenses() []models.ExpenseRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.ExpenseRecord(nil), t.expenses...)
}

// Budgets returns a copy of the loaded budgets.
func (t *Tracker) Budgets() []models.BudgetRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.BudgetRecord(nil), t.budgets...)
}

// Query filters and sorts the loaded expenses.
func (t *Tracker) Query(p query.Predicate, key query.SortKey, dir query.Direction) []models.ExpenseRecord {
	return query.Sort(query.Filter(t.Expenses(), p), key, dir)
}

// Breakdown returns per-category totals of the loaded expenses.
func (t *Tracker) Breakdown() []budget.CategoryTotal {
	return budget.Breakdown(t.catalog, t.Expenses())
}

// Status derives budget health from the loaded history, each budget counting
// only its period window containing asOf. A zero asOf selects AsOf().
func (t *Tracker) Status(asOf time.Time) budget.Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if asOf.IsZero() {
		asOf = t.asOf
	}
	agg := budget.NewAggregator(t.logger, budget.Options{Source: budget.SpentFromExpenses, AsOf: asOf})
	return agg.Aggregate(t.budgets, t.history)
}

func (t *Tracker) inView(e models.ExpenseRecord) bool {
	return t.month == "" || dateutils.MonthKey(e.Date) == t.month
}

func (t *Tracker) inHistory(e models.ExpenseRecord) bool {
	return inRange(e.Date, t.histFrom, t.histTo)
}

// place puts e into list when keep is set, replacing the entry with the same
// ID, and removes that entry otherwise.
func place(list []models.ExpenseRecord, e models.ExpenseRecord, keep bool) []models.ExpenseRecord {
	for i := range list {
		if list[i].ID != e.ID {
			continue
		}
		if keep {
			list[i] = e
			return list
		}
		return append(list[:i:i], list[i+1:]...)
	}
	if keep {
		list = append(list, e)
	}
	return list
}

func (t *Tracker) normalize(e models.ExpenseRecord) models.ExpenseRecord {
	e.Category = t.catalog.Parse(e.Category).Name
	e.Amount = models.RoundCents(e.Amount)
	return e
}

// AddExpense validates e, creates it in the store and adds the stored copy
// to the view.
func (t *Tracker) AddExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	if err := ValidateExpense(e); err != nil {
		return models.ExpenseRecord{}, err
	}
	created, err := t.backend.CreateExpense(ctx, t.normalize(e))
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("failed to add expense: %w", err)
	}

	t.mu.Lock()
	if t.inView(created) {
		t.expenses = append(t.expenses, created)
	}
	if t.inHistory(created) {
		t.history = append(t.history, created)
	}
	t.mu.Unlock()

	t.logger.WithFields(
		logging.F(logging.FieldExpenseID, created.ID),
		logging.F(logging.FieldCategory, created.Category),
	).Info("Expense added")
	t.syncSpent(ctx, created.Category)
	return created, nil
}

// UpdateExpense replaces the expense with the same ID.
func (t *Tracker) UpdateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	if err := ValidateExpense(e); err != nil {
		return models.ExpenseRecord{}, err
	}
	previous, ok := t.findExpense(e.ID)
	if !ok {
		return models.ExpenseRecord{}, fmt.Errorf("expense %s: %w", e.ID, store.ErrNotFound)
	}
	updated, err := t.backend.UpdateExpense(ctx, t.normalize(e))
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("failed to update expense: %w", err)
	}

	t.mu.Lock()
	t.expenses = place(t.expenses, updated, t.inView(updated))
	t.history = place(t.history, updated, t.inHistory(updated))
	t.mu.Unlock()

	t.logger.WithField(logging.FieldExpenseID, updated.ID).Info("Expense updated")
	t.syncSpent(ctx, previous.Category, updated.Category)
	return updated, nil
}

// DeleteExpense removes the expense with id.
func (t *Tracker) DeleteExpense(ctx context.Context, id string) error {
	previous, ok := t.findExpense(id)
	if !ok {
		return fmt.Errorf("expense %s: %w", id, store.ErrNotFound)
	}
	if err := t.backend.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	t.mu.Lock()
	t.expenses = place(t.expenses, previous, false)
	t.history = place(t.history, previous, false)
	t.mu.Unlock()

	t.logger.WithField(logging.FieldExpenseID, id).Info("Expense deleted")
	t.syncSpent(ctx, previous.Category)
	return nil
}

func (t *Tracker) findExpense(id string) (models.ExpenseRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, list := range [][]models.ExpenseRecord{t.expenses, t.history} {
		for _, e := range list {
			if e.ID == id {
				return e, true
			}
		}
	}
	return models.ExpenseRecord{}, false
}

// Resync loads month and pushes the recomputed spent of every budget whose
// stored value is stale. It is used after expenses reached the store without
// going through the tracker, such as a file import.
func (t *Tracker) Resync(ctx context.Context, month string) error {
	if err := t.Load(ctx, month); err != nil {
		return err
	}
	t.syncSpent(ctx)
	return nil
}

// syncSpent recomputes the cached spent of budgets in the given categories,
// or of all budgets when none are given, and pushes changed values to the
// store. Push failures are logged; the view keeps the recomputed value.
func (t *Tracker) syncSpent(ctx context.Context, categories ...string) {
	keys := make(map[string]bool, len(categories))
	for _, c := range categories {
		keys[catalog.Canonical(c)] = true
	}

	var changed []models.BudgetRecord
	t.mu.Lock()
	for i, b := range t.budgets {
		if len(keys) > 0 && !keys[catalog.Canonical(b.Category)] {
			continue
		}
		spent := budget.SpentFor(b, t.history, t.asOf)
		if spent.Equal(b.Spent) {
			continue
		}
		t.budgets[i].Spent = spent
		changed = append(changed, t.budgets[i])
	}
	t.mu.Unlock()

	for _, b := range changed {
		if _, err := t.backend.UpdateBudget(ctx, b); err != nil {
			t.logger.WithFields(
				logging.F(logging.FieldBudgetID, b.ID),
				logging.F(logging.FieldCategory, b.Category),
				logging.F(logging.FieldError, err.Error()),
			).Warn("Failed to sync budget spent")
		}
	}
}

// coverWindow extends the history so it holds period's window at the
// reference date.
func (t *Tracker) coverWindow(ctx context.Context, period models.Period) error {
	t.mu.RLock()
	month, asOf, loaded := t.month, t.asOf, t.expenses
	from, to := t.histFrom, t.histTo
	t.mu.RUnlock()
	if month == "" || asOf.IsZero() {
		return nil
	}
	start, end := period.Window(asOf)
	if !start.Before(from) && !end.After(to) {
		return nil
	}
	if start.Before(from) {
		from = start
	}
	if end.After(to) {
		to = end
	}
	history, err := t.loadHistory(ctx, month, loaded, from, to)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.history = history
	t.histFrom, t.histTo = from, to
	t.mu.Unlock()
	return nil
}

// AddBudget validates b, seeds its spent from the expenses in its current
// period window and creates it. New budgets are shown first.
func (t *Tracker) AddBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	if err := ValidateBudget(b); err != nil {
		return models.BudgetRecord{}, err
	}
	b.Category = t.catalog.Parse(b.Category).Name
	b.Budget = models.RoundCents(b.Budget)

	if err := t.coverWindow(ctx, b.Period); err != nil {
		return models.BudgetRecord{}, err
	}
	t.mu.RLock()
	b.Spent = budget.SpentFor(b, t.history, t.asOf)
	t.mu.RUnlock()

	created, err := t.backend.CreateBudget(ctx, b)
	if err != nil {
		return models.BudgetRecord{}, fmt.Errorf("failed to add budget: %w", err)
	}

	t.mu.Lock()
	t.budgets = append([]models.BudgetRecord{created}, t.budgets...)
	t.mu.Unlock()

	t.logger.WithFields(
		logging.F(logging.FieldBudgetID, created.ID),
		logging.F(logging.FieldCategory, created.Category),
	).Info("Budget added")
	return created, nil
}

// UpdateBudget replaces the budget with the same ID. Spent is recomputed
// over its current period window.
func (t *Tracker) UpdateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	if err := ValidateBudget(b); err != nil {
		return models.BudgetRecord{}, err
	}
	if _, ok := t.findBudget(b.ID); !ok {
		return models.BudgetRecord{}, fmt.Errorf("budget %s: %w", b.ID, store.ErrNotFound)
	}
	b.Category = t.catalog.Parse(b.Category).Name
	b.Budget = models.RoundCents(b.Budget)

	if err := t.coverWindow(ctx, b.Period); err != nil {
		return models.BudgetRecord{}, err
	}
	t.mu.RLock()
	b.Spent = budget.SpentFor(b, t.history, t.asOf)
	t.mu.RUnlock()

	updated, err := t.backend.UpdateBudget(ctx, b)
	if err != nil {
		return models.BudgetRecord{}, fmt.Errorf("failed to update budget: %w", err)
	}

	t.mu.Lock()
	for i := range t.budgets {
		if t.budgets[i].ID == updated.ID {
			t.budgets[i] = updated
			break
		}
	}
	t.mu.Unlock()

	t.logger.WithField(logging.FieldBudgetID, updated.ID).Info("Budget updated")
	return updated, nil
}

// DeleteBudget removes the budget with id.
func (t *Tracker) DeleteBudget(ctx context.Context, id string) error {
	if _, ok := t.findBudget(id); !ok {
		return fmt.Errorf("budget %s: %w", id, store.ErrNotFound)
	}
	if err := t.backend.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	t.mu.Lock()
	for i := range t.budgets {
		if t.budgets[i].ID == id {
			t.budgets = append(t.budgets[:i:i], t.budgets[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	t.logger.WithField(logging.FieldBudgetID, id).Info("Budget deleted")
	return nil
}

func (t *Tracker) findBudget(id string) (models.BudgetRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, b := range t.budgets {
		if b.ID == id {
			return b, true
		}
	}
	return models.BudgetRecord{}, false
}
