package parsererror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	original := errors.New("invalid decimal")
	err := &ParseError{Source: "csv", Field: "Amount", Value: "abc", Err: original}

	assert.Equal(t, "csv: failed to parse Amount='abc': invalid decimal", err.Error())
	assert.True(t, errors.Is(err, original))
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	assert.NoError(t, ve.ErrOrNil())

	ve.Add("amount", "must be greater than 0")
	ve.Add("description", "is required")

	err := ve.ErrOrNil()
	require.Error(t, err)
	assert.Equal(t,
		"validation failed for amount: must be greater than 0; validation failed for description: is required",
		err.Error())
	assert.True(t, ve.Has("amount"))
	assert.False(t, ve.Has("category"))

	wrapped := fmt.Errorf("add expense: %w", err)
	assert.True(t, IsValidationError(wrapped))
	assert.True(t, IsValidationError(&ValidationError{Reason: "x"}))
	assert.False(t, IsValidationError(errors.New("x")))

	var nilErrs *ValidationErrors
	assert.NoError(t, nilErrs.ErrOrNil())
}

func TestRowError(t *testing.T) {
	cause := errors.New("store down")
	err := &RowError{Row: 2, Reason: "Invalid amount", Raw: "2024-05-01,Bad,abc,Food", Err: cause}

	assert.Equal(t, "row 2: Invalid amount", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestInvalidFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      *InvalidFormatError
		expected string
	}{
		{
			name: "with missing columns",
			err: &InvalidFormatError{
				Source:         "upload.csv",
				ExpectedFormat: "Date,Description,Amount,Category",
				Missing:        []string{"Amount", "Category"},
				Msg:            "CSV must contain Date, Description, Amount, and Category columns",
			},
			expected: "invalid format in 'upload.csv': CSV must contain Date, Description, Amount, and Category columns. Missing: Amount, Category. Expected: Date,Description,Amount,Category",
		},
		{
			name:     "message only",
			err:      &InvalidFormatError{Source: "x", Msg: "empty document"},
			expected: "invalid format in 'x': empty document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUploadError(t *testing.T) {
	err := &UploadError{Name: "photo.png", Reason: "unsupported file type"}
	assert.Equal(t, "upload 'photo.png' rejected: unsupported file type", err.Error())
}

type tempErr struct{}

func (tempErr) Error() string   { return "connection reset" }
func (tempErr) Temporary() bool { return true }

func TestStoreError_Retryable(t *testing.T) {
	tests := []struct {
		name      string
		err       *StoreError
		retryable bool
	}{
		{name: "server error", err: &StoreError{Op: "create expense", Status: 503}, retryable: true},
		{name: "rate limited", err: &StoreError{Op: "create expense", Status: 429}, retryable: true},
		{name: "request timeout", err: &StoreError{Op: "create expense", Status: 408}, retryable: true},
		{name: "bad request", err: &StoreError{Op: "create expense", Status: 400}, retryable: false},
		{name: "not found", err: &StoreError{Op: "delete expense", Status: 404}, retryable: false},
		{name: "deadline", err: &StoreError{Op: "list", Err: context.DeadlineExceeded}, retryable: true},
		{name: "cancelled", err: &StoreError{Op: "list", Err: context.Canceled}, retryable: false},
		{name: "temporary transport", err: &StoreError{Op: "list", Err: tempErr{}}, retryable: true},
		{name: "plain local error", err: &StoreError{Op: "list", Err: errors.New("disk full")}, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.Retryable())
			assert.Equal(t, tt.retryable, IsRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestStoreError_Message(t *testing.T) {
	err := &StoreError{Op: "create budget", Status: 400, Msg: "category exists"}
	assert.Equal(t, "create budget: status 400: category exists", err.Error())

	cause := errors.New("dial tcp")
	err = &StoreError{Op: "list budgets", Err: cause}
	assert.Equal(t, "list budgets: dial tcp", err.Error())
	assert.ErrorIs(t, err, cause)
}
