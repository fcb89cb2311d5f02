package importer

import (
	"strings"

	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"
)

// Row rejection reasons.
const (
	ReasonInvalidDate   = "Invalid date: must be YYYY-MM-DD"
	ReasonInvalidAmount = "Invalid amount: must be a number"
	ReasonNonPositive   = "Amount must be greater than 0"
	ReasonNoDescription = "Description is required"
	ReasonNoCategory    = "Category is required"
	ReasonStoreRejected = "Rejected by store"
)

// ValidateRow turns an untrusted row into a candidate record. The second
// return value is the rejection reason when the row is invalid.
func ValidateRow(row models.ImportRow, cat *catalog.Catalog) (models.ExpenseRecord, string) {
	date, err := dateutils.ParseISO(row.Date)
	if err != nil {
		return models.ExpenseRecord{}, ReasonInvalidDate
	}

	amount, err := models.ParseAmount(row.Amount)
	if err != nil {
		return models.ExpenseRecord{}, ReasonInvalidAmount
	}
	if !amount.IsPositive() {
		return models.ExpenseRecord{}, ReasonNonPositive
	}

	description := strings.TrimSpace(row.Description)
	if description == "" {
		return models.ExpenseRecord{}, ReasonNoDescription
	}

	if strings.TrimSpace(row.Category) == "" {
		return models.ExpenseRecord{}, ReasonNoCategory
	}
	if cat == nil {
		cat = catalog.Default()
	}

	return models.ExpenseRecord{
		Date:        date,
		Amount:      amount,
		Description: description,
		Category:    cat.Parse(row.Category).Name,
	}, ""
}
