package models

import (
	"strings"
)

// ImportHeader is the column set every import document must carry.
var ImportHeader = []string{"Date", "Description", "Amount", "Category"}

// ImportRow is one untrusted data row of an import document.
type ImportRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
}

// IsBlank reports whether every field is empty after trimming.
func (r ImportRow) IsBlank() bool {
	return strings.TrimSpace(r.Date) == "" &&
		strings.TrimSpace(r.Description) == "" &&
		strings.TrimSpace(r.Amount) == "" &&
		strings.TrimSpace(r.Category) == ""
}

// Raw reassembles the row in header order for error reporting.
func (r ImportRow) Raw() string {
	return strings.Join([]string{r.Date, r.Description, r.Amount, r.Category}, ",")
}

// ExportRow is the CSV shape written by expense export. It is the import
// shape with the amount already formatted, so exports re-import unchanged.
type ExportRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
}

// NewExportRow formats a record for export.
func NewExportRow(e ExpenseRecord) ExportRow {
	return ExportRow{
		Date:        e.ISODate(),
		Description: e.Description,
		Amount:      FormatAmount(e.Amount),
		Category:    e.Category,
	}
}
