package logging

// Standardized field names for structured logging.
// Keep these stable: log pipelines filter on them.
const (
	FieldFile       = "file_path"
	FieldRow        = "row"
	FieldExpenseID  = "expense_id"
	FieldBudgetID   = "budget_id"
	FieldCategory   = "category"
	FieldPeriod     = "period"
	FieldReason     = "reason"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldCount      = "count"
	FieldHistory    = "history"
	FieldTotal      = "total"
	FieldPercentage = "percentage"
	FieldTier       = "tier"
	FieldBackend    = "backend"
	FieldAttempt    = "attempt"
	FieldDelimiter  = "delimiter"
	FieldInputFile  = "input_file"
	FieldOutputFile = "output_file"
)
