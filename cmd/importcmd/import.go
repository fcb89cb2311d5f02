// Package importcmd handles expense import commands
package importcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/batch"
	"fjacquet/budget-tracker/internal/container"
	"fjacquet/budget-tracker/internal/importer"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/validation"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	inputFile string
	quiet     bool
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import expenses from a CSV or Excel file",
	Long: `Import expenses from a CSV or Excel (.xlsx) file.

The first row must hold the columns Date, Description, Amount and Category.
Each row is validated and submitted in order; rejected rows are listed with
their row number and reason. Run "budget-tracker template" for an example.
Legacy .xls workbooks are rejected; save them as .xlsx first.
When the input is a directory every CSV and Excel file in it is imported.

Example:
  budget-tracker import -i expenses.csv
  budget-tracker import -i ./statements`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "CSV or Excel file, or a directory of them, to import")
	Cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show the progress bar")
	_ = Cmd.MarkFlagRequired("input")
}

func importFunc(cmd *cobra.Command, args []string) error {
	root.Log.WithField(logging.FieldInputFile, inputFile).Info("Import command called")

	if err := validation.IsValidPath(inputFile); err != nil {
		return err
	}
	if info, err := os.Stat(inputFile); err == nil && info.IsDir() {
		report, err := ImportDir(cmd.Context(), root.AppContainer, inputFile)
		if err != nil {
			return err
		}
		WriteReport(cmd.OutOrStdout(), report)
		return syncAfterImport(cmd.Context(), report.Totals().SuccessCount)
	}

	var progress io.Writer
	if !quiet {
		progress = cmd.ErrOrStderr()
	}
	result, err := ImportFile(cmd.Context(), root.AppContainer, inputFile, progress)
	if err != nil {
		return err
	}
	WriteResult(cmd.OutOrStdout(), result)
	return syncAfterImport(cmd.Context(), result.SuccessCount)
}

func syncAfterImport(ctx context.Context, imported int) error {
	if imported == 0 {
		return nil
	}
	month, err := root.Month()
	if err != nil {
		return err
	}
	return SyncBudgets(ctx, root.AppContainer, month)
}

// SyncBudgets recomputes the spent of every budget from the store's expenses
// and pushes stale values back. Imported rows reach the store directly, so
// this runs once after an import. month selects the reference date as in
// the other commands.
func SyncBudgets(ctx context.Context, c *container.Container, month string) error {
	if err := c.GetTracker().Resync(ctx, month); err != nil {
		return fmt.Errorf("failed to update budgets after import: %w", err)
	}
	c.GetLogger().WithField(logging.FieldPeriod, month).Debug("Budgets synced after import")
	return nil
}

// ImportFile checks path against the upload rules and runs it through the
// import pipeline. Progress is drawn on progress when it is not nil.
func ImportFile(ctx context.Context, c *container.Container, path string, progress io.Writer) (importer.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("failed to read input file: %w", err)
	}
	mimeType := importer.DetectType(path)
	if err := importer.CheckUpload(filepath.Base(path), mimeType, info.Size(), c.GetConfig().Import.MaxFileBytes); err != nil {
		return importer.Result{}, err
	}

	var bar *progressbar.ProgressBar
	var onProgress func(importer.Progress)
	if progress != nil {
		bar = newProgressBar(progress)
		onProgress = func(p importer.Progress) {
			bar.ChangeMax(p.Total)
			_ = bar.Set(p.Completed)
		}
	}
	pipeline := c.NewImportPipeline(onProgress)

	// #nosec G304 -- path is supplied by the user on the command line
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			c.GetLogger().WithError(closeErr).Warn("Failed to close input file")
		}
	}()

	var result importer.Result
	if importer.IsExcel(mimeType) {
		rows, err := importer.ReadExcel(f)
		if err != nil {
			return importer.Result{}, err
		}
		result, err = pipeline.ImportRows(ctx, rows)
		if err != nil {
			return importer.Result{}, err
		}
	} else {
		data, err := io.ReadAll(f)
		if err != nil {
			return importer.Result{}, fmt.Errorf("failed to read input file: %w", err)
		}
		result, err = pipeline.Import(ctx, string(data))
		if err != nil {
			return importer.Result{}, err
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return result, nil
}

// ImportDir imports every CSV and Excel file of dir without progress bars.
func ImportDir(ctx context.Context, c *container.Container, dir string) (batch.Report, error) {
	b := batch.NewBatchImporter(c.GetLogger(), func(ctx context.Context, path string) (importer.Result, error) {
		return ImportFile(ctx, c, path, nil)
	})
	return b.Run(ctx, dir)
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing expenses..."),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}

// WriteResult prints the import summary followed by one line per failed row.
func WriteResult(w io.Writer, result importer.Result) {
	_, _ = fmt.Fprintln(w, result.String())
	for _, f := range result.Failures {
		_, _ = fmt.Fprintf(w, "  row %d: %s\n", f.Row, f.Reason)
	}
}

// WriteReport prints one line per file of a directory import, the rejected
// rows of each, and the overall summary.
func WriteReport(w io.Writer, report batch.Report) {
	for _, f := range report.Files {
		if f.Err != nil {
			_, _ = fmt.Fprintf(w, "%s: %v\n", filepath.Base(f.Path), f.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: ", filepath.Base(f.Path))
		WriteResult(w, f.Result)
	}
	for _, path := range report.NotStarted {
		_, _ = fmt.Fprintf(w, "%s: not imported\n", filepath.Base(path))
	}
	_, _ = fmt.Fprintln(w, report.String())
}
