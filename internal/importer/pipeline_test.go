package importer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"
	"fjacquet/budget-tracker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitterFunc func(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error)

func (f submitterFunc) CreateExpense(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	return f(ctx, e)
}

func newTestPipeline(sub store.ExpenseSubmitter, opts Options) (*Pipeline, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	opts.RetryDelay = time.Millisecond
	return NewPipeline(sub, nil, logger, opts), logger
}

func randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func TestImport_MixedRows(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{})

	raw := "Date,Description,Amount,Category\n" +
		"2024-05-01,Coffee,3.50,Food\n" +
		"bad,BadRow,-1,\n"

	result, err := p.Import(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 2, result.Failures[0].Row)
	assert.Equal(t, ReasonInvalidDate, result.Failures[0].Reason)
	assert.Equal(t, "bad,BadRow,-1,", result.Failures[0].Raw)

	created := mock.Expenses()
	require.Len(t, created, 1)
	assert.Equal(t, "Coffee", created[0].Description)
	assert.Equal(t, "3.5", created[0].Amount.String())
	assert.NotEmpty(t, created[0].ID)
	assert.Equal(t, 1, mock.CallCount("CreateExpense"))
}

func TestImport_MissingColumns(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{})

	_, err := p.Import(context.Background(), "Date,Description,Amount\n2024-05-01,Coffee,3.50\n")
	require.Error(t, err)

	var formatErr *parsererror.InvalidFormatError
	require.True(t, errors.As(err, &formatErr))
	assert.Equal(t, []string{"Category"}, formatErr.Missing)
	assert.Equal(t, 0, mock.CallCount("CreateExpense"))
}

func TestImport_HeaderIsCaseSensitive(t *testing.T) {
	p, _ := newTestPipeline(store.NewMockStore(nil, nil), Options{})

	_, err := p.Import(context.Background(), "date,description,amount,category\n")
	var formatErr *parsererror.InvalidFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Len(t, formatErr.Missing, 4)
}

func TestImport_EmptyDocument(t *testing.T) {
	p, _ := newTestPipeline(store.NewMockStore(nil, nil), Options{})

	_, err := p.Import(context.Background(), "")
	var formatErr *parsererror.InvalidFormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestImport_HeaderOnly(t *testing.T) {
	p, _ := newTestPipeline(store.NewMockStore(nil, nil), Options{})

	result, err := p.Import(context.Background(), "Date,Description,Amount,Category\n")
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
}

func TestImport_BlankRowsAreNotCounted(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{})

	raw := "Date,Description,Amount,Category\n" +
		",,,\n" +
		"2024-05-02,Bus,2.80,Transportation\n" +
		" , , , \n" +
		"2024-05-03,Bus,0,Transportation\n"

	result, err := p.Import(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 4, result.Failures[0].Row)
	assert.Equal(t, ReasonNonPositive, result.Failures[0].Reason)
}

func TestImport_ExtraAndReorderedColumns(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{})

	raw := "Category,Notes,Amount,Date,Description\n" +
		"  coffee   shops ,latte,4.20,2024-05-04,Latte\n"

	result, err := p.Import(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	created := mock.Expenses()
	require.Len(t, created, 1)
	assert.Equal(t, "Coffee Shops", created[0].Category)
}

func TestImport_RowValidationReasons(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		reason string
	}{
		{"bad date format", "05/01/2024,Coffee,3.50,Food", ReasonInvalidDate},
		{"impossible date", "2024-02-30,Coffee,3.50,Food", ReasonInvalidDate},
		{"non numeric amount", "2024-05-01,Coffee,abc,Food", ReasonInvalidAmount},
		{"exponent amount", "2024-05-01,Coffee,1e3,Food", ReasonInvalidAmount},
		{"zero amount", "2024-05-01,Coffee,0,Food", ReasonNonPositive},
		{"negative amount", "2024-05-01,Coffee,-4,Food", ReasonNonPositive},
		{"missing description", "2024-05-01,  ,3.50,Food", ReasonNoDescription},
		{"missing category", "2024-05-01,Coffee,3.50,", ReasonNoCategory},
		{"ragged row", "2024-05-01,Coffee", ReasonInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := store.NewMockStore(nil, nil)
			p, _ := newTestPipeline(mock, Options{})

			result, err := p.Import(context.Background(), "Date,Description,Amount,Category\n"+tt.row+"\n")
			require.NoError(t, err)
			require.Len(t, result.Failures, 1)
			assert.Equal(t, tt.reason, result.Failures[0].Reason)
			assert.Equal(t, 1, result.Failures[0].Row)
			assert.Equal(t, 0, mock.CallCount("CreateExpense"))
		})
	}
}

func TestImport_StoreRejectionBecomesRowFailure(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	mock.CreateExpenseErr = func(e models.ExpenseRecord) error {
		if e.Description == "Rejected" {
			return &parsererror.StoreError{Op: "create expense", Status: 400, Msg: "bad request"}
		}
		return nil
	}
	p, _ := newTestPipeline(mock, Options{MaxAttempts: 3})

	raw := "Date,Description,Amount,Category\n" +
		"2024-05-01,Rejected,3.50,Food\n" +
		"2024-05-01,Accepted,3.50,Food\n"

	result, err := p.Import(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Row)
	assert.Contains(t, result.Failures[0].Reason, "bad request")

	var storeErr *parsererror.StoreError
	assert.ErrorAs(t, result.Failures[0], &storeErr)
	// Non-retryable: one attempt per row.
	assert.Equal(t, 2, mock.CallCount("CreateExpense"))
}

func TestImport_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	sub := submitterFunc(func(_ context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
		calls++
		if calls < 3 {
			return models.ExpenseRecord{}, &parsererror.StoreError{Op: "create expense", Status: 503, Msg: "unavailable"}
		}
		e.ID = "srv-1"
		return e, nil
	})
	p, logger := newTestPipeline(sub, Options{MaxAttempts: 3})

	result, err := p.Import(context.Background(), "Date,Description,Amount,Category\n2024-05-01,Coffee,3.50,Food\n")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 3, calls)
	assert.True(t, logger.HasEntry("WARN", "Retrying expense submission"))
}

func TestImport_RetryGivesUp(t *testing.T) {
	calls := 0
	sub := submitterFunc(func(_ context.Context, _ models.ExpenseRecord) (models.ExpenseRecord, error) {
		calls++
		return models.ExpenseRecord{}, &parsererror.StoreError{Op: "create expense", Status: 500, Msg: "boom"}
	})
	p, _ := newTestPipeline(sub, Options{MaxAttempts: 2})

	result, err := p.Import(context.Background(), "Date,Description,Amount,Category\n2024-05-01,Coffee,3.50,Food\n")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, result.Failures, 1)
}

func TestImport_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	sub := submitterFunc(func(_ context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return e, nil
	})
	p, logger := newTestPipeline(sub, Options{})

	var b strings.Builder
	b.WriteString("Date,Description,Amount,Category\n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "2024-05-0%d,Item %d,1.00,Food\n", i, i)
	}

	result, err := p.Import(ctx, b.String())
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 3, result.Skipped)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 2, calls)
	assert.True(t, logger.HasEntry("WARN", "Import cancelled, remaining rows skipped"))
}

func TestImport_DuplicatesAreCountedAndSubmitted(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, logger := newTestPipeline(mock, Options{})

	raw := "Date,Description,Amount,Category\n" +
		"2024-05-01,Market,3.50,Groceries\n" +
		"2024-05-01,Market,3.5, groceries\n" +
		"2024-05-02,Market,3.50,Groceries\n"

	result, err := p.Import(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Len(t, mock.Expenses(), 3)
	assert.True(t, logger.HasEntry("WARN", "Duplicate expense in import batch"))
}

func TestImport_ProgressIsMonotonic(t *testing.T) {
	var seen []Progress
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{OnProgress: func(pr Progress) { seen = append(seen, pr) }})

	raw := "Date,Description,Amount,Category\n" +
		"2024-05-01,Coffee,3.50,Food\n" +
		"2024-05-01,Tea,x,Food\n" +
		"2024-05-01,Cake,4.00,Food\n"

	_, err := p.Import(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, seen, 3)
	for i, pr := range seen {
		assert.Equal(t, i+1, pr.Completed)
		assert.Equal(t, 3, pr.Total)
	}
	assert.InDelta(t, 1.0, seen[2].Fraction(), 1e-9)
	assert.InDelta(t, 1.0, Progress{}.Fraction(), 1e-9)
}

func TestImport_SemicolonDelimiter(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{Delimiter: ';'})

	result, err := p.Import(context.Background(), "Date;Description;Amount;Category\n2024-05-01;Coffee;3.50;Food\n")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
}

func TestImport_TemplateImportsCleanly(t *testing.T) {
	mock := store.NewMockStore(nil, nil)
	p, _ := newTestPipeline(mock, Options{})

	result, err := p.Import(context.Background(), Template())
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, "expense_template.csv", TemplateFilename)
}

func TestImport_CountsProperty(t *testing.T) {
	for i := 0; i < 100; i++ {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			n := randIntn(20)
			var b strings.Builder
			b.WriteString("Date,Description,Amount,Category\n")
			bad := 0
			for j := 0; j < n; j++ {
				if randIntn(3) == 0 {
					bad++
					fmt.Fprintf(&b, "2024-05-01,Row %d,-%d,Food\n", j, j+1)
					continue
				}
				fmt.Fprintf(&b, "2024-05-01,Row %d,%d.25,Food\n", j, j+1)
			}

			mock := store.NewMockStore(nil, nil)
			p, _ := newTestPipeline(mock, Options{})
			result, err := p.Import(context.Background(), b.String())
			require.NoError(t, err)

			assert.Equal(t, n, result.TotalCount)
			assert.Equal(t, n-bad, result.SuccessCount)
			assert.Len(t, result.Failures, bad)
			assert.Equal(t, result.TotalCount, result.SuccessCount+result.FailureCount()+result.Skipped)
			assert.Len(t, mock.Expenses(), n-bad)
		})
	}
}

func TestResult_String(t *testing.T) {
	r := Result{SuccessCount: 3, TotalCount: 5, Failures: []*parsererror.RowError{{Row: 2}}, Duplicates: 1, Skipped: 1, Cancelled: true}
	assert.Equal(t, "Imported 3 of 5 expenses, 1 failed, 1 duplicates, 1 skipped (cancelled)", r.String())
	assert.Equal(t, "Imported 0 of 0 expenses", Result{}.String())
}
