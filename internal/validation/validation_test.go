package validation_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-tracker/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPath(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "expenses.csv")
	require.NoError(t, os.WriteFile(testFile, []byte("Date"), 0o600))

	tests := []struct {
		name        string
		path        string
		expectError bool
		errContains string
	}{
		{name: "file", path: testFile},
		{name: "directory", path: tmpDir},
		{
			name:        "non-existent path",
			path:        filepath.Join(tmpDir, "missing.csv"),
			expectError: true,
			errContains: "path does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsValidPath(tt.path)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		supported   []string
		expectError bool
	}{
		{name: "exact", format: "json", supported: []string{"text", "json", "yaml"}},
		{name: "case-insensitive", format: "XLSX", supported: []string{"csv", "xlsx"}},
		{name: "unsupported", format: "xml", supported: []string{"text", "json", "yaml"}, expectError: true},
		{name: "nothing supported", format: "csv", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.IsValidOutputFormat(tt.format, tt.supported...)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported output format: "+tt.format)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := validation.IsValidOutputFormat("pdf", "csv", "xlsx")
	assert.EqualError(t, err, "unsupported output format: pdf. Supported formats are 'csv', 'xlsx'")
}

func TestIsValidFilePermissions(t *testing.T) {
	tests := []struct {
		mode        os.FileMode
		expectError bool
	}{
		{0o600, false},
		{0o640, false},
		{0o644, true},
		{0o777, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			err := validation.IsValidFilePermissions(tt.mode)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
