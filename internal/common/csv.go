// Package common provides the expense export writers shared by the CLI
// commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"

	"github.com/gocarina/gocsv"
)

// ExportFilename returns the conventional export file name for a month,
// for example expenses_2024-05.csv.
func ExportFilename(month time.Time) string {
	return fmt.Sprintf("expenses_%s.csv", dateutils.MonthKey(month))
}

// WriteExpensesCSV writes expenses in the four-column import format, so the
// output can be imported again unchanged. Amounts carry two decimals.
func WriteExpensesCSV(w io.Writer, expenses []models.ExpenseRecord, delimiter rune) error {
	rows := make([]models.ExportRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, models.NewExportRow(e))
	}

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportExpensesToCSV writes expenses to csvFile, creating its directory if
// needed.
func ExportExpensesToCSV(expenses []models.ExpenseRecord, csvFile string, delimiter rune, logger logging.Logger) error {
	if expenses == nil {
		return fmt.Errorf("cannot write nil expenses to CSV")
	}

	logger.WithFields(
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(expenses)),
		logging.F(logging.FieldDelimiter, string(delimiter)),
	).Info("Writing expenses to CSV file")

	file, err := createOutput(csvFile)
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteExpensesCSV(file, expenses, delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal expenses to CSV")
		return err
	}

	logger.WithFields(
		logging.F(logging.FieldOutputFile, csvFile),
		logging.F(logging.FieldCount, len(expenses)),
	).Info("Successfully wrote expenses to CSV file")
	return nil
}

func createOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("error creating directory: %w", err)
		}
	}
	file, err := os.Create(path) // #nosec G304 -- path chosen by the CLI user
	if err != nil {
		return nil, fmt.Errorf("error creating output file: %w", err)
	}
	return file, nil
}
