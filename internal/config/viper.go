// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"fjacquet/budget-tracker/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment override, e.g. BUDGET_LOG_LEVEL.
	EnvPrefix = "BUDGET"

	BackendSQLite = "sqlite"
	BackendREST   = "rest"

	// DefaultMaxFileBytes is the upload ceiling applied to imported files.
	DefaultMaxFileBytes int64 = 5 * 1024 * 1024
)

// LogConfig controls the logrus adapter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig controls CSV export.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// SQLiteConfig locates the local database file.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// RESTConfig points at the remote budget API.
type RESTConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Token          string `mapstructure:"token" yaml:"-"` // never serialized
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend string       `mapstructure:"backend" yaml:"backend"`
	SQLite  SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	REST    RESTConfig   `mapstructure:"rest" yaml:"rest"`
}

// ImportConfig tunes the import pipeline.
type ImportConfig struct {
	MaxFileBytes int64 `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
	MaxAttempts  int   `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// ProfileConfig locates the locally persisted onboarding profile.
type ProfileConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Config represents the complete application configuration
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	CSV     CSVConfig     `mapstructure:"csv" yaml:"csv"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Import  ImportConfig  `mapstructure:"import" yaml:"import"`
	Profile ProfileConfig `mapstructure:"profile" yaml:"profile"`
}

// InitializeConfig loads configuration from defaults, the first config.yaml found
// in $HOME/.budget-tracker, .budget-tracker or the working directory, and
// BUDGET_* environment variables, in increasing order of precedence.
func InitializeConfig() (*Config, error) {
	return InitializeConfigWithFile("")
}

// InitializeConfigWithFile is InitializeConfig with an explicit config file.
// An empty path falls back to the search locations.
func InitializeConfigWithFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budget-tracker")
		v.AddConfigPath(".budget-tracker")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The API token is read unprefixed so it can be shared with other tools.
	if err := v.BindEnv("store.rest.token", "BUDGET_API_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind BUDGET_API_TOKEN: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite.path", "budget-tracker.db")
	v.SetDefault("store.rest.base_url", "http://localhost:8080/api")
	v.SetDefault("store.rest.timeout_seconds", 30)

	v.SetDefault("import.max_file_bytes", DefaultMaxFileBytes)
	v.SetDefault("import.max_attempts", 1)

	v.SetDefault("profile.file", "financial-profile.yaml")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	switch config.Store.Backend {
	case BackendSQLite:
		if strings.TrimSpace(config.Store.SQLite.Path) == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case BackendREST:
		u, err := url.Parse(config.Store.REST.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("store.rest.base_url must be an absolute URL, got: %s", config.Store.REST.BaseURL)
		}
		if config.Store.REST.TimeoutSeconds < 1 || config.Store.REST.TimeoutSeconds > 300 {
			return fmt.Errorf("store.rest.timeout_seconds must be between 1 and 300, got: %d", config.Store.REST.TimeoutSeconds)
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be '%s' or '%s')", config.Store.Backend, BackendSQLite, BackendREST)
	}

	if config.Import.MaxFileBytes < 1 {
		return fmt.Errorf("import.max_file_bytes must be positive, got: %d", config.Import.MaxFileBytes)
	}

	if config.Import.MaxAttempts < 1 || config.Import.MaxAttempts > 10 {
		return fmt.Errorf("import.max_attempts must be between 1 and 10, got: %d", config.Import.MaxAttempts)
	}

	if strings.TrimSpace(config.Profile.File) == "" {
		return fmt.Errorf("profile.file is required")
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the log section.
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSV.Delimiter {
		return r
	}
	return ','
}
