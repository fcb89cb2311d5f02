// Package expenses handles expense listing, entry and export commands
package expenses

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/budget"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/query"
	"fjacquet/budget-tracker/internal/tracker"

	"github.com/spf13/cobra"
)

// Cmd represents the expenses command
var Cmd = &cobra.Command{
	Use:   "expenses",
	Short: "List, add, delete and export expenses",
	Long:  `List, add, delete and export the expenses of one month (see --month).`,
}

// ListOptions are the filters and ordering of the list command.
type ListOptions struct {
	Search   string
	Category string
	From     string
	To       string
	Sort     string
	Order    string
}

var listOpts ListOptions

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the expenses of a month",
	Long: `List the expenses of a month, optionally filtered and sorted.

Example:
  budget-tracker expenses list --month 2024-05 --category Groceries --sort amount --order desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		expenses, err := List(t, listOpts)
		if err != nil {
			return err
		}
		return WriteExpenses(cmd.OutOrStdout(), expenses)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listOpts.Search, "search", "s", "", "Text to look for in description or category")
	listCmd.Flags().StringVar(&listOpts.Category, "category", query.AllCategories, "Only show this category")
	listCmd.Flags().StringVar(&listOpts.From, "from", "", "First day to include (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listOpts.To, "to", "", "Last day to include (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listOpts.Sort, "sort", string(query.SortByDate), "Sort by date, description, category or amount")
	listCmd.Flags().StringVar(&listOpts.Order, "order", string(query.Descending), "Sort order (asc or desc)")

	Cmd.AddCommand(listCmd, addCmd, deleteCmd, exportCmd)
}

// List filters and sorts the expenses loaded in t.
func List(t *tracker.Tracker, opts ListOptions) ([]models.ExpenseRecord, error) {
	pred := query.Predicate{Search: opts.Search, Category: opts.Category}
	var err error
	if pred.From, err = optionalDate(opts.From); err != nil {
		return nil, fmt.Errorf("invalid --from: %w", err)
	}
	if pred.To, err = optionalDate(opts.To); err != nil {
		return nil, fmt.Errorf("invalid --to: %w", err)
	}

	key, err := query.ParseSortKey(opts.Sort)
	if err != nil {
		return nil, err
	}
	dir, err := query.ParseDirection(opts.Order)
	if err != nil {
		return nil, err
	}
	return t.Query(pred, key, dir), nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := dateutils.ParseISO(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// WriteExpenses prints expenses as a table followed by their total.
func WriteExpenses(w io.Writer, expenses []models.ExpenseRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
	for _, e := range expenses {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.ISODate(), e.Description, e.Category, models.FormatCurrency(e.Amount))
	}
	_, _ = fmt.Fprintf(tw, "\t\t\tTOTAL (%d)\t%s\n", len(expenses), models.FormatCurrency(budget.TotalSpent(expenses)))
	return tw.Flush()
}

func loadMonth(ctx context.Context) (*tracker.Tracker, error) {
	month, err := root.Month()
	if err != nil {
		return nil, err
	}
	t := root.AppContainer.GetTracker()
	if err := t.Load(ctx, month); err != nil {
		return nil, err
	}
	return t, nil
}
