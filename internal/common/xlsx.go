package common

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"

	"github.com/xuri/excelize/v2"
)

// ExpenseSheetName is the worksheet written by WriteExpensesXLSX.
const ExpenseSheetName = "Expenses"

// ExportFilenameXLSX is ExportFilename with the workbook extension.
func ExportFilenameXLSX(month time.Time) string {
	return strings.TrimSuffix(ExportFilename(month), ".csv") + ".xlsx"
}

// WriteExpensesXLSX writes expenses as a single-sheet workbook with the same
// columns as the CSV export. Dates and amounts are stored as text so the
// workbook imports back through the Excel reader unchanged.
func WriteExpensesXLSX(w io.Writer, expenses []models.ExpenseRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ExpenseSheetName); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}

	for i, h := range models.ImportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExpenseSheetName, cell, h); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}

	for idx, e := range expenses {
		row := idx + 2
		values := []string{
			dateutils.ToISODate(e.Date),
			e.Description,
			models.FormatAmount(e.Amount),
			e.Category,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellStr(ExpenseSheetName, cell, v); err != nil {
				return fmt.Errorf("error writing row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(ExpenseSheetName, "A", "A", 12)
	_ = f.SetColWidth(ExpenseSheetName, "B", "B", 40)
	_ = f.SetColWidth(ExpenseSheetName, "C", "C", 12)
	_ = f.SetColWidth(ExpenseSheetName, "D", "D", 28)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
