package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"

	"github.com/xuri/excelize/v2"
)

// ReadExcel decodes the first worksheet of an .xlsx workbook into import rows.
// The first row is the header and follows the same rule as CSV. Date cells
// stored as spreadsheet serial numbers are converted to YYYY-MM-DD.
func ReadExcel(r io.Reader) ([]models.ImportRow, error) {
	const source = "workbook"
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			Source:         source,
			ExpectedFormat: "Excel workbook (.xlsx)",
			Msg:            fmt.Sprintf("cannot open workbook: %v", err),
		}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &parsererror.InvalidFormatError{Source: source, Msg: "workbook has no sheets"}
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}

	rows, err := rowsFromRecords(records, source)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Date = excelDate(rows[i].Date)
	}
	return rows, nil
}

// excelDate converts a spreadsheet serial date to ISO form. Anything that is
// not a plain serial number is returned unchanged for validation to judge.
func excelDate(v string) string {
	v = strings.TrimSpace(v)
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return dateutils.ToISODate(dateutils.CalendarDate(t))
}
