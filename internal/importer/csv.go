package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/parsererror"

	"github.com/gocarina/gocsv"
)

const headerHint = "CSV must contain Date, Description, Amount, and Category columns"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV decodes an import document. The header must name every column of
// models.ImportHeader (exact, case-sensitive); extra columns are ignored and
// rows may be ragged. A bad header yields *parsererror.InvalidFormatError.
func ParseCSV(r io.Reader, delimiter rune, source string) ([]models.ImportRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV data: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	header, err := newCSVReader(bytes.NewReader(data), delimiter).Read()
	if errors.Is(err, io.EOF) {
		return nil, &parsererror.InvalidFormatError{
			Source:         source,
			ExpectedFormat: strings.Join(models.ImportHeader, ","),
			Msg:            "document is empty",
		}
	}
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			Source:         source,
			ExpectedFormat: strings.Join(models.ImportHeader, ","),
			Msg:            fmt.Sprintf("unreadable header: %v", err),
		}
	}
	if err := checkHeader(header, source); err != nil {
		return nil, err
	}

	var rows []models.ImportRow
	reader := &headerTrimmer{Reader: newCSVReader(bytes.NewReader(data), delimiter)}
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

// headerTrimmer strips surrounding spaces from the header record so gocsv
// binds columns by the same names checkHeader accepted.
type headerTrimmer struct {
	*csv.Reader
	seen bool
}

func (r *headerTrimmer) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err == nil && !r.seen {
		r.seen = true
		trimFields(record)
	}
	return record, err
}

func (r *headerTrimmer) ReadAll() ([][]string, error) {
	records, err := r.Reader.ReadAll()
	if len(records) > 0 && !r.seen {
		r.seen = true
		trimFields(records[0])
	}
	return records, err
}

func trimFields(record []string) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
}

// checkHeader reports the required columns missing from header.
func checkHeader(header []string, source string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}

	var missing []string
	for _, required := range models.ImportHeader {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &parsererror.InvalidFormatError{
		Source:         source,
		ExpectedFormat: strings.Join(models.ImportHeader, ","),
		Missing:        missing,
		Msg:            headerHint,
	}
}

// rowsFromRecords maps raw records to import rows by header position. It backs
// the Excel reader, which yields cell matrices rather than CSV text.
func rowsFromRecords(records [][]string, source string) ([]models.ImportRow, error) {
	if len(records) == 0 {
		return nil, &parsererror.InvalidFormatError{
			Source:         source,
			ExpectedFormat: strings.Join(models.ImportHeader, ","),
			Msg:            "document is empty",
		}
	}
	header := records[0]
	if err := checkHeader(header, source); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if _, seen := index[col]; !seen {
			index[col] = i
		}
	}
	cell := func(record []string, col string) string {
		i := index[col]
		if i < len(record) {
			return record[i]
		}
		return ""
	}

	rows := make([]models.ImportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, models.ImportRow{
			Date:        cell(record, "Date"),
			Description: cell(record, "Description"),
			Amount:      cell(record, "Amount"),
			Category:    cell(record, "Category"),
		})
	}
	return rows, nil
}
