// Package root contains the root command for the application
package root

import (
	"fmt"
	"os"
	"time"

	"fjacquet/budget-tracker/internal/config"
	"fjacquet/budget-tracker/internal/container"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/validation"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to every command
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	Backend    string
	Month      string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.NewLogrusAdapter("info", "text")

	// AppContainer is built before any subcommand runs and closed afterwards.
	AppContainer *container.Container

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget-tracker",
		Short: "A CLI tool to track expenses against budgets.",
		Long: `budget-tracker records expenses, imports them from CSV or Excel files and
reports how much of each budget has been spent.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to budget-tracker!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Teardown()
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: config.yaml in $HOME/.budget-tracker, .budget-tracker or .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.Backend, "backend", "", "Store backend (sqlite, rest)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Month, "month", "m", "", "Month to work on as YYYY-MM (default: current month)")
}

// Setup loads configuration, applies flag overrides and builds AppContainer.
func Setup() error {
	config.LoadEnv()

	cfg, err := config.InitializeConfigWithFile(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	applyOverrides(cfg, SharedFlags)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	AppContainer = c
	Log = c.GetLogger()

	checkConfigPermissions(SharedFlags.ConfigFile)
	return nil
}

// checkConfigPermissions warns when an explicit config file, which may hold
// the API token, is readable by others.
func checkConfigPermissions(path string) {
	if path == "" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if err := validation.IsValidFilePermissions(info.Mode().Perm()); err != nil {
		Log.WithError(err).WithField(logging.FieldFile, path).Warn("Config file is readable by other users")
	}
}

// Teardown closes AppContainer if it was built.
func Teardown() {
	if AppContainer == nil {
		return
	}
	if err := AppContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close application resources")
	}
	AppContainer = nil
}

func applyOverrides(cfg *config.Config, flags CommonFlags) {
	if flags.LogLevel != "" {
		cfg.Log.Level = flags.LogLevel
	}
	if flags.Backend != "" {
		cfg.Store.Backend = flags.Backend
	}
}

// Month returns the --month flag, or the current month when unset.
func Month() (string, error) {
	if SharedFlags.Month == "" {
		return dateutils.MonthKey(time.Now()), nil
	}
	if _, err := dateutils.ParseMonth(SharedFlags.Month); err != nil {
		return "", err
	}
	return SharedFlags.Month, nil
}
