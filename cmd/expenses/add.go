package expenses

import (
	"context"
	"fmt"
	"time"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/tracker"

	"github.com/spf13/cobra"
)

// AddOptions are the fields of a new expense as typed on the command line.
type AddOptions struct {
	Date        string
	Description string
	Amount      string
	Category    string
	ReceiptURL  string
}

var addOpts AddOptions

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	Long: `Record an expense. The date defaults to today.

Example:
  budget-tracker expenses add -d "Weekly shop" -a 85.47 -c Groceries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		created, err := Add(cmd.Context(), t, addOpts, time.Now())
		if err != nil {
			return err
		}
		root.Log.WithFields(
			logging.F(logging.FieldExpenseID, created.ID),
			logging.F(logging.FieldCategory, created.Category),
		).Info("Expense recorded")
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s (%s)\n", created.ISODate(), created.Description, models.FormatCurrency(created.Amount), created.Category)
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		if err := t.DeleteExpense(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %s\n", args[0])
		return err
	},
}

func init() {
	addCmd.Flags().StringVarP(&addOpts.Date, "date", "t", "", "Expense date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVarP(&addOpts.Description, "description", "d", "", "What the money was spent on")
	addCmd.Flags().StringVarP(&addOpts.Amount, "amount", "a", "", "Amount spent")
	addCmd.Flags().StringVarP(&addOpts.Category, "category", "c", "", "Expense category")
	addCmd.Flags().StringVar(&addOpts.ReceiptURL, "receipt", "", "Link to a receipt image")
}

// Add parses opts into an expense and records it through t. An empty date
// means today.
func Add(ctx context.Context, t *tracker.Tracker, opts AddOptions, today time.Time) (models.ExpenseRecord, error) {
	e := models.ExpenseRecord{
		Description: opts.Description,
		Category:    opts.Category,
		ReceiptURL:  opts.ReceiptURL,
		Date:        dateutils.CalendarDate(today),
	}
	if opts.Date != "" {
		d, err := dateutils.ParseISO(opts.Date)
		if err != nil {
			return models.ExpenseRecord{}, err
		}
		e.Date = d
	}
	if opts.Amount != "" {
		amount, err := models.ParseAmount(opts.Amount)
		if err != nil {
			return models.ExpenseRecord{}, err
		}
		e.Amount = amount
	}
	return t.AddExpense(ctx, e)
}
