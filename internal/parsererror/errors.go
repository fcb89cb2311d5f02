// Package parsererror defines the typed errors shared by the import pipeline,
// form validation and the persistence clients.
package parsererror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ParseError represents an error during parsing of a single field.
type ParseError struct {
	Source string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Source, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is a local validation failure on one field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// ValidationErrors aggregates every field failure of one form submission.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (ve *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Add records a failure on field.
func (ve *ValidationErrors) Add(field, reason string) {
	ve.Errors = append(ve.Errors, &ValidationError{Field: field, Reason: reason})
}

// Has reports whether field has at least one failure.
func (ve *ValidationErrors) Has(field string) bool {
	for _, err := range ve.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ErrOrNil returns ve when it holds failures and nil otherwise.
func (ve *ValidationErrors) ErrOrNil() error {
	if ve == nil || len(ve.Errors) == 0 {
		return nil
	}
	return ve
}

// IsValidationError reports whether err carries a ValidationError or ValidationErrors.
func IsValidationError(err error) bool {
	var single *ValidationError
	var many *ValidationErrors
	return errors.As(err, &single) || errors.As(err, &many)
}

// RowError is a rejection of one import data row. Row is 1-based, header excluded.
type RowError struct {
	Row    int
	Reason string
	Raw    string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input document that does not have the
// expected shape, for example a CSV header missing required columns.
type InvalidFormatError struct {
	Source         string
	ExpectedFormat string
	Missing        []string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid format in '%s': %s", e.Source, e.Msg)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ". Missing: %s", strings.Join(e.Missing, ", "))
	}
	if e.ExpectedFormat != "" {
		fmt.Fprintf(&b, ". Expected: %s", e.ExpectedFormat)
	}
	return b.String()
}

// UploadError is a rejected file upload.
type UploadError struct {
	Name   string
	Reason string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload '%s' rejected: %s", e.Name, e.Reason)
}

// StoreError is a failure reported by a persistence collaborator.
// Status is the HTTP status for remote stores and 0 otherwise.
type StoreError struct {
	Op     string
	Status int
	Msg    string
	Err    error
}

func (e *StoreError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the operation may succeed.
// Transport failures, 408, 429 and 5xx responses are retryable; caller
// cancellation is not.
func (e *StoreError) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	switch {
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	case e.Status == 0 && e.Err != nil:
		return errors.Is(e.Err, context.DeadlineExceeded) || isTransport(e.Err)
	}
	return false
}

// IsRetryable reports whether err wraps a retryable StoreError.
func IsRetryable(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Retryable()
	}
	return false
}

type temporary interface{ Temporary() bool }
type timeout interface{ Timeout() bool }

func isTransport(err error) bool {
	var t temporary
	if errors.As(err, &t) && t.Temporary() {
		return true
	}
	var to timeout
	return errors.As(err, &to) && to.Timeout()
}
