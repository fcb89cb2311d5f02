package config

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/budget-tracker/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, "budget-tracker.db", config.Store.SQLite.Path)
	assert.Equal(t, 30, config.Store.REST.TimeoutSeconds)
	assert.Equal(t, DefaultMaxFileBytes, config.Import.MaxFileBytes)
	assert.Equal(t, 1, config.Import.MaxAttempts)
	assert.Equal(t, "financial-profile.yaml", config.Profile.File)
	assert.Equal(t, ',', config.Delimiter())
}

func TestDefault_MatchesInitializeConfig(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	loaded, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdirTemp(t)

	testEnvVars := map[string]string{
		"BUDGET_LOG_LEVEL":                  "debug",
		"BUDGET_LOG_FORMAT":                 "json",
		"BUDGET_CSV_DELIMITER":              ";",
		"BUDGET_STORE_BACKEND":              "rest",
		"BUDGET_STORE_REST_BASE_URL":        "https://budget.example.com/api",
		"BUDGET_STORE_REST_TIMEOUT_SECONDS": "5",
		"BUDGET_IMPORT_MAX_ATTEMPTS":        "3",
		"BUDGET_API_TOKEN":                  "secret",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ';', config.Delimiter())
	assert.Equal(t, BackendREST, config.Store.Backend)
	assert.Equal(t, "https://budget.example.com/api", config.Store.REST.BaseURL)
	assert.Equal(t, 5, config.Store.REST.TimeoutSeconds)
	assert.Equal(t, 3, config.Import.MaxAttempts)
	assert.Equal(t, "secret", config.Store.REST.Token)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	dir := chdirTemp(t)

	configContent := `
log:
  level: "warn"
  format: "json"
csv:
  delimiter: "|"
store:
  sqlite:
    path: "/tmp/ledger.db"
import:
  max_file_bytes: 1024
profile:
  file: "me.yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0644))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, "/tmp/ledger.db", config.Store.SQLite.Path)
	assert.Equal(t, int64(1024), config.Import.MaxFileBytes)
	assert.Equal(t, "me.yaml", config.Profile.File)
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	dir := chdirTemp(t)

	configContent := `
log:
  level: "warn"
csv:
  delimiter: "|"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0644))
	t.Setenv("BUDGET_LOG_LEVEL", "error")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level) // env var wins
	assert.Equal(t, "|", config.CSV.Delimiter) // config file value
}

func TestInitializeConfigWithFile(t *testing.T) {
	clearTestEnvVars(t)
	dir := t.TempDir()

	t.Run("explicit file is read", func(t *testing.T) {
		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("import:\n  max_attempts: 4\n"), 0644))

		config, err := InitializeConfigWithFile(path)
		require.NoError(t, err)
		assert.Equal(t, 4, config.Import.MaxAttempts)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := InitializeConfigWithFile(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: postgres\n"), 0644))

		_, err := InitializeConfigWithFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid store backend")
	})
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "invalid" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "xml" },
			expectError:  "invalid log format",
		},
		{
			name:         "invalid CSV delimiter",
			modifyConfig: func(c *Config) { c.CSV.Delimiter = "abc" },
			expectError:  "CSV delimiter must be a single character",
		},
		{
			name:         "empty sqlite path",
			modifyConfig: func(c *Config) { c.Store.SQLite.Path = " " },
			expectError:  "store.sqlite.path is required",
		},
		{
			name: "relative rest base url",
			modifyConfig: func(c *Config) {
				c.Store.Backend = BackendREST
				c.Store.REST.BaseURL = "/api"
			},
			expectError: "store.rest.base_url must be an absolute URL",
		},
		{
			name: "rest timeout out of range",
			modifyConfig: func(c *Config) {
				c.Store.Backend = BackendREST
				c.Store.REST.TimeoutSeconds = 0
			},
			expectError: "store.rest.timeout_seconds must be between 1 and 300",
		},
		{
			name:         "non-positive max file bytes",
			modifyConfig: func(c *Config) { c.Import.MaxFileBytes = 0 },
			expectError:  "import.max_file_bytes must be positive",
		},
		{
			name:         "max attempts out of range",
			modifyConfig: func(c *Config) { c.Import.MaxAttempts = 11 },
			expectError:  "import.max_attempts must be between 1 and 10",
		},
		{
			name:         "empty profile file",
			modifyConfig: func(c *Config) { c.Profile.File = "" },
			expectError:  "profile.file is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			require.NoError(t, validateConfig(config))

			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	config := Default()
	config.Log.Level = "DEBUG"
	config.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(config)
	adapter, ok := logger.(*logging.LogrusAdapter)
	require.True(t, ok)
	assert.Equal(t, "debug", adapter.Level())
}

func TestLoadEnvFrom(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BUDGET_TEST_ONLY_VAR=from-file\n"), 0644))
	t.Setenv("BUDGET_TEST_ONLY_VAR", "")
	require.NoError(t, os.Unsetenv("BUDGET_TEST_ONLY_VAR"))

	loaded := loadEnvFrom(filepath.Join(dir, "missing.env"), envFile)
	assert.Equal(t, envFile, loaded)
	assert.Equal(t, "from-file", GetEnv("BUDGET_TEST_ONLY_VAR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("BUDGET_TEST_UNSET_VAR", "fallback"))

	assert.Equal(t, "", loadEnvFrom(filepath.Join(dir, "none")))
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BUDGET_LOG_LEVEL",
		"BUDGET_LOG_FORMAT",
		"BUDGET_CSV_DELIMITER",
		"BUDGET_STORE_BACKEND",
		"BUDGET_STORE_SQLITE_PATH",
		"BUDGET_STORE_REST_BASE_URL",
		"BUDGET_STORE_REST_TIMEOUT_SECONDS",
		"BUDGET_IMPORT_MAX_FILE_BYTES",
		"BUDGET_IMPORT_MAX_ATTEMPTS",
		"BUDGET_PROFILE_FILE",
		"BUDGET_API_TOKEN",
	} {
		// t.Setenv registers restoration; Unsetenv then removes it for this test.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
