// Package sqlite is a local store.Store backed by an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"
	"fjacquet/budget-tracker/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store persists expenses and budgets in SQLite. Amounts are stored as
// decimal text so no precision is lost.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database at dbPath and migrates it.
func Open(dbPath string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.WithFields(
		logging.F(logging.FieldBackend, "sqlite"),
		logging.F(logging.FieldFile, dbPath),
	).Debug("SQLite store ready")
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		err = store.ErrNotFound
	}
	return &parsererror.StoreError{Op: op, Err: err}
}

func (s *Store) ListExpenses(ctx context.Context, month string) ([]models.ExpenseRecord, error) {
	query := `SELECT id, date, amount, description, category, receipt_url FROM expenses`
	var args []interface{}
	if month != "" {
		query += ` WHERE substr(date, 1, 7) = ?`
		args = append(args, month)
	}
	query += ` ORDER BY date, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list expenses", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ExpenseRecord
	for rows.Next() {
		var id, date, amount, description, category, receipt string
		if err := rows.Scan(&id, &date, &amount, &description, &category, &receipt); err != nil {
			return nil, wrap("list expenses", err)
		}
		e, err := expenseFromRow(id, date, amount, description, category, receipt)
		if err != nil {
			s.logger.WithFields(
				logging.F(logging.FieldExpenseID, id),
				logging.F(logging.FieldReason, err.Error()),
			).Warn("Skipping unreadable expense")
			continue
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list expenses", err)
	}
	return out, nil
}

func expenseFromRow(id, date, amount, description, category, receipt string) (models.ExpenseRecord, error) {
	d, err := dateutils.ParseISO(date)
	if err != nil {
		return models.ExpenseRecord{}, err
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return models.ExpenseRecord{}, fmt.Errorf("invalid amount %q", amount)
	}
	return models.ExpenseRecord{
		ID:          id,
		Amount:      a,
		Date:        d,
		Description: description,
		Category:    category,
		ReceiptURL:  receipt,
	}, nil
}

func (s *Store) CreateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	e.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, date, amount, description, category, receipt_url) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.ISODate(), e.Amount.String(), e.Description, e.Category, e.ReceiptURL)
	if err != nil {
		return models.ExpenseRecord{}, wrap("create expense", err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, amount = ?, description = ?, category = ?, receipt_url = ? WHERE id = ?`,
		e.ISODate(), e.Amount.String(), e.Description, e.Category, e.ReceiptURL, e.ID)
	if err := affected("update expense", res, err); err != nil {
		return models.ExpenseRecord{}, err
	}
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	return affected("delete expense", res, err)
}

// affected maps a write that touched no row to store.ErrNotFound.
func affected(op string, res sql.Result, err error) error {
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return wrap(op, store.ErrNotFound)
	}
	return nil
}

// ListBudgets returns budgets newest first. A stored budget amount that is
// not a number is returned as zero with Malformed set.
func (s *Store) ListBudgets(ctx context.Context) ([]models.BudgetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, period, budget, spent, color FROM budgets ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, wrap("list budgets", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.BudgetRecord
	for rows.Next() {
		var id, category, period, budget, spent, color string
		if err := rows.Scan(&id, &category, &period, &budget, &spent, &color); err != nil {
			return nil, wrap("list budgets", err)
		}
		b := models.BudgetRecord{ID: id, Category: category, Period: models.Period(period), Color: color}
		if v, err := decimal.NewFromString(budget); err == nil {
			b.Budget = v
		} else {
			b.Malformed = true
		}
		if v, err := decimal.NewFromString(spent); err == nil {
			b.Spent = v
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list budgets", err)
	}
	return out, nil
}

func (s *Store) CreateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	b.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category, period, budget, spent, color) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Category, string(b.Period), b.Budget.String(), b.Spent.String(), b.Color)
	if err != nil {
		return models.BudgetRecord{}, wrap("create budget", err)
	}
	return b, nil
}

func (s *Store) UpdateBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE budgets SET category = ?, period = ?, budget = ?, spent = ?, color = ? WHERE id = ?`,
		b.Category, string(b.Period), b.Budget.String(), b.Spent.String(), b.Color, b.ID)
	if err := affected("update budget", res, err); err != nil {
		return models.BudgetRecord{}, err
	}
	return b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	return affected("delete budget", res, err)
}

// ExpenseSummary totals expenses in Go so amounts stay exact decimals.
func (s *Store) ExpenseSummary(ctx context.Context, month string) (store.Summary, error) {
	expenses, err := s.ListExpenses(ctx, month)
	if err != nil {
		return store.Summary{}, err
	}
	summary := store.Summary{TotalSpent: decimal.Zero, ByCategory: make(map[string]decimal.Decimal)}
	for _, e := range expenses {
		summary.TotalSpent = summary.TotalSpent.Add(e.Amount)
		summary.ByCategory[e.Category] = summary.ByCategory[e.Category].Add(e.Amount)
		summary.Count++
	}
	return summary, nil
}
