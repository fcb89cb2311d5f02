// Package batch imports every expense file of a directory and aggregates the
// per-file results.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/budget-tracker/internal/importer"
	"fjacquet/budget-tracker/internal/logging"
)

// ImportFunc imports one file.
type ImportFunc func(ctx context.Context, path string) (importer.Result, error)

// FileReport is the outcome of one file. Err is set when the file could not
// be imported at all.
type FileReport struct {
	Path   string
	Result importer.Result
	Err    error
}

// Report aggregates the outcome of a directory import.
type Report struct {
	Files []FileReport
	// NotStarted lists files left untouched after cancellation.
	NotStarted []string
}

// Totals sums the row counts of every imported file.
func (r Report) Totals() importer.Result {
	var total importer.Result
	for _, f := range r.Files {
		total.SuccessCount += f.Result.SuccessCount
		total.TotalCount += f.Result.TotalCount
		total.Failures = append(total.Failures, f.Result.Failures...)
		total.Duplicates += f.Result.Duplicates
		total.Skipped += f.Result.Skipped
		total.Cancelled = total.Cancelled || f.Result.Cancelled
	}
	total.Cancelled = total.Cancelled || len(r.NotStarted) > 0
	return total
}

// FailedFiles returns the files that could not be imported.
func (r Report) FailedFiles() []FileReport {
	var out []FileReport
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// String summarises the report, e.g. "3 files: Imported 10 of 12 expenses, 2 failed".
func (r Report) String() string {
	s := fmt.Sprintf("%d files: %s", len(r.Files)+len(r.NotStarted), r.Totals().String())
	if n := len(r.FailedFiles()); n > 0 {
		s += fmt.Sprintf(", %d files unreadable", n)
	}
	return s
}

// BatchImporter runs an ImportFunc over the importable files of a directory.
type BatchImporter struct {
	logger     logging.Logger
	importFile ImportFunc
}

// NewBatchImporter creates a new BatchImporter instance
func NewBatchImporter(logger logging.Logger, importFile ImportFunc) *BatchImporter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &BatchImporter{logger: logger, importFile: importFile}
}

// CollectFiles lists the CSV and Excel files directly inside dir, sorted by
// name. Hidden files and subdirectories are ignored.
func (b *BatchImporter) CollectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if importer.DetectType(name) == "" {
			b.logger.Debug("Skipping file with unsupported type", logging.F(logging.FieldFile, name))
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// Run imports every file of dir in name order. A file that fails as a whole
// is recorded and the next file is processed. Cancellation stops before the
// next file; the files not started are listed in the report.
func (b *BatchImporter) Run(ctx context.Context, dir string) (Report, error) {
	files, err := b.CollectFiles(dir)
	if err != nil {
		return Report{}, err
	}

	b.logger.Info("Starting batch import",
		logging.F(logging.FieldInputFile, dir),
		logging.F(logging.FieldCount, len(files)))

	var report Report
	for i, file := range files {
		if ctx.Err() != nil {
			report.NotStarted = files[i:]
			b.logger.Warn("Batch import cancelled", logging.F(logging.FieldCount, len(report.NotStarted)))
			break
		}

		result, err := b.importFile(ctx, file)
		if err != nil {
			b.logger.WithError(err).Error("Failed to import file", logging.F(logging.FieldFile, file))
		}
		report.Files = append(report.Files, FileReport{Path: file, Result: result, Err: err})
	}

	totals := report.Totals()
	b.logger.Info("Batch import finished",
		logging.F(logging.FieldCount, totals.SuccessCount),
		logging.F(logging.FieldTotal, totals.TotalCount))
	return report, nil
}
