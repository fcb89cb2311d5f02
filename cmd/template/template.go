// Package template handles the import template command
package template

import (
	"fmt"
	"io"
	"os"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/importer"
	"fjacquet/budget-tracker/internal/logging"

	"github.com/spf13/cobra"
)

var outputFile string

// Cmd represents the template command
var Cmd = &cobra.Command{
	Use:   "template",
	Short: "Write an example import file",
	Long: `Write an example CSV file with the columns expected by the import command.

Example:
  budget-tracker template -o expense_template.csv
  budget-tracker template -o -`,
	RunE: templateFunc,
}

func init() {
	Cmd.Flags().StringVarP(&outputFile, "output", "o", importer.TemplateFilename, `Output file ("-" for standard output)`)
}

func templateFunc(cmd *cobra.Command, args []string) error {
	if outputFile == "-" {
		return WriteTemplate(cmd.OutOrStdout())
	}

	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create template file: %w", err)
	}
	if err := WriteTemplate(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close template file: %w", err)
	}
	root.Log.WithField(logging.FieldOutputFile, outputFile).Info("Template written")
	return nil
}

// WriteTemplate writes the example import document to w.
func WriteTemplate(w io.Writer) error {
	if _, err := io.WriteString(w, importer.Template()); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
