// Package importer ingests untrusted tabular expense data, validates every
// row and submits the valid ones to the store one at a time.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"
	"fjacquet/budget-tracker/internal/store"
)

// DefaultRetryDelay is the base wait between submission attempts.
const DefaultRetryDelay = 500 * time.Millisecond

// Options tunes a Pipeline. The zero value submits each row once with a
// comma delimiter.
type Options struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Delimiter   rune
	OnProgress  func(Progress)
}

// Progress reports how many counted rows have resolved.
type Progress struct {
	Completed int
	Total     int
}

// Fraction returns Completed/Total in [0,1]; an empty import is complete.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Result is the outcome of one import. SuccessCount + len(Failures) + Skipped
// always equals TotalCount.
type Result struct {
	SuccessCount int
	TotalCount   int
	Failures     []*parsererror.RowError
	Duplicates   int
	Skipped      int
	Cancelled    bool
}

// FailureCount returns the number of rejected rows.
func (r Result) FailureCount() int {
	return len(r.Failures)
}

// String renders the one-line import summary.
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d of %d expenses", r.SuccessCount, r.TotalCount)
	if n := len(r.Failures); n > 0 {
		fmt.Fprintf(&b, ", %d failed", n)
	}
	if r.Duplicates > 0 {
		fmt.Fprintf(&b, ", %d duplicates", r.Duplicates)
	}
	if r.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", r.Skipped)
	}
	if r.Cancelled {
		b.WriteString(" (cancelled)")
	}
	return b.String()
}

// Pipeline imports expense documents through an ExpenseSubmitter.
type Pipeline struct {
	submitter store.ExpenseSubmitter
	catalog   *catalog.Catalog
	logger    logging.Logger
	opts      Options
}

// NewPipeline creates a pipeline. A nil catalog selects the built-in one.
func NewPipeline(submitter store.ExpenseSubmitter, cat *catalog.Catalog, logger logging.Logger, opts Options) *Pipeline {
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Pipeline{submitter: submitter, catalog: cat, logger: logger, opts: opts}
}

// Import parses raw CSV text and imports its rows. A malformed document
// fails as a whole with *parsererror.InvalidFormatError before any row is
// submitted.
func (p *Pipeline) Import(ctx context.Context, raw string) (Result, error) {
	rows, err := ParseCSV(strings.NewReader(raw), p.opts.Delimiter, "import")
	if err != nil {
		return Result{}, err
	}
	return p.ImportRows(ctx, rows)
}

// ImportRows validates and submits already decoded rows. Row numbers in
// failures are 1-based positions in rows; blank rows keep their position
// but are not counted. Cancellation is not an error: rows that were not
// processed are reported in Skipped.
func (p *Pipeline) ImportRows(ctx context.Context, rows []models.ImportRow) (Result, error) {
	start := time.Now()
	var result Result
	var queue taskQueue
	var seen []models.ExpenseRecord

	for i, row := range rows {
		if row.IsBlank() {
			continue
		}
		result.TotalCount++
		rowNum := i + 1
		row := row
		queue.push(rowNum, func(ctx context.Context) {
			p.process(ctx, rowNum, row, &seen, &result)
		})
	}

	p.logger.WithFields(
		logging.F(logging.FieldTotal, result.TotalCount),
		logging.F(logging.FieldDelimiter, string(p.opts.Delimiter)),
	).Info("Starting expense import")

	pending := queue.drain(ctx)
	if len(pending) > 0 {
		result.Skipped += len(pending)
	}
	if ctx.Err() != nil && result.Skipped > 0 {
		result.Cancelled = true
		p.logger.WithFields(
			logging.F(logging.FieldCount, result.Skipped),
			logging.F(logging.FieldReason, ctx.Err().Error()),
		).Warn("Import cancelled, remaining rows skipped")
	}

	p.logger.WithFields(
		logging.F(logging.FieldCount, result.SuccessCount),
		logging.F(logging.FieldTotal, result.TotalCount),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
	).Info("Expense import finished")
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, rowNum int, row models.ImportRow, seen *[]models.ExpenseRecord, result *Result) {
	defer p.progress(result)

	candidate, reason := ValidateRow(row, p.catalog)
	if reason != "" {
		p.fail(result, &parsererror.RowError{Row: rowNum, Reason: reason, Raw: row.Raw()})
		return
	}

	for _, prior := range *seen {
		if prior.SameEntry(candidate) {
			result.Duplicates++
			p.logger.WithFields(
				logging.F(logging.FieldRow, rowNum),
				logging.F(logging.FieldCategory, candidate.Category),
			).Warn("Duplicate expense in import batch")
			break
		}
	}
	*seen = append(*seen, candidate)

	created, err := p.submit(ctx, candidate)
	switch {
	case err == nil:
		result.SuccessCount++
		p.logger.WithFields(
			logging.F(logging.FieldRow, rowNum),
			logging.F(logging.FieldExpenseID, created.ID),
		).Debug("Expense imported")
	case ctx.Err() != nil:
		result.Skipped++
	default:
		p.fail(result, &parsererror.RowError{Row: rowNum, Reason: err.Error(), Raw: row.Raw(), Err: err})
	}
}

// submit creates the expense, retrying retryable store errors up to
// MaxAttempts with a linearly growing delay.
func (p *Pipeline) submit(ctx context.Context, e models.ExpenseRecord) (models.ExpenseRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		created, err := p.submitter.CreateExpense(ctx, e)
		if err == nil {
			return created, nil
		}
		lastErr = err
		if attempt == p.opts.MaxAttempts || !parsererror.IsRetryable(err) {
			break
		}
		p.logger.WithFields(
			logging.F(logging.FieldAttempt, attempt),
			logging.F(logging.FieldError, err.Error()),
		).Warn("Retrying expense submission")

		timer := time.NewTimer(time.Duration(attempt) * p.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.ExpenseRecord{}, ctx.Err()
		case <-timer.C:
		}
	}
	if lastErr == nil {
		lastErr = errors.New(ReasonStoreRejected)
	}
	return models.ExpenseRecord{}, lastErr
}

func (p *Pipeline) fail(result *Result, rowErr *parsererror.RowError) {
	result.Failures = append(result.Failures, rowErr)
	p.logger.WithFields(
		logging.F(logging.FieldRow, rowErr.Row),
		logging.F(logging.FieldReason, rowErr.Reason),
	).Warn("Import row rejected")
}

func (p *Pipeline) progress(result *Result) {
	if p.opts.OnProgress == nil {
		return
	}
	p.opts.OnProgress(Progress{
		Completed: result.SuccessCount + len(result.Failures) + result.Skipped,
		Total:     result.TotalCount,
	})
}
