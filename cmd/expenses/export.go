package expenses

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/common"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/validation"

	"github.com/spf13/cobra"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the expenses of a month",
	Long: `Export the expenses of a month to CSV or Excel.

The default file name is expenses_<YYYY-MM>.csv (or .xlsx).

Example:
  budget-tracker expenses export --month 2024-05 --format xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		cfg := root.AppContainer.GetConfig()
		path, err := Export(t.Expenses(), t.Month(), exportFormat, exportOutput, cfg.Delimiter(), root.Log)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expenses to %s\n", len(t.Expenses()), path)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", FormatCSV, "Export format (csv or xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: expenses_<YYYY-MM>.<format>)")
}

// Export writes expenses of month to output in format and returns the path
// written. An empty output selects the default file name for month.
func Export(expenses []models.ExpenseRecord, month, format, output string, delimiter rune, logger logging.Logger) (string, error) {
	if err := validation.IsValidOutputFormat(format, FormatCSV, FormatXLSX); err != nil {
		return "", err
	}
	m, err := dateutils.ParseMonth(month)
	if err != nil {
		return "", err
	}
	if expenses == nil {
		expenses = []models.ExpenseRecord{}
	}

	switch strings.ToLower(format) {
	case FormatCSV:
		if output == "" {
			output = common.ExportFilename(m)
		}
		if err := common.ExportExpensesToCSV(expenses, output, delimiter, logger); err != nil {
			return "", err
		}
	default:
		if output == "" {
			output = common.ExportFilenameXLSX(m)
		}
		if err := exportXLSX(expenses, output, logger); err != nil {
			return "", err
		}
	}
	return output, nil
}

func exportXLSX(expenses []models.ExpenseRecord, path string, logger logging.Logger) error {
	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := common.WriteExpensesXLSX(f, expenses); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	logger.WithFields(
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(expenses)),
	).Info("Expenses exported")
	return nil
}
