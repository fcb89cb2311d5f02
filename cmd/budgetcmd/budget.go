// Package budgetcmd handles budget status and management commands
package budgetcmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/budget"
	"fjacquet/budget-tracker/internal/dateutils"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/report"
	"fjacquet/budget-tracker/internal/tracker"
	"fjacquet/budget-tracker/internal/validation"

	"github.com/spf13/cobra"
)

// Cmd represents the budget command
var Cmd = &cobra.Command{
	Use:   "budget",
	Short: "Show and manage budgets",
	Long:  `Show how much of each budget has been spent in a month, and add or delete budgets.`,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show budget utilisation for a month",
	Long: `Show spent, remaining and percentage used for every budget, the overall
totals and the spending breakdown per category. Budgets at 90% or more are
listed as alerts. Spent counts each budget's own period (week, month,
quarter or year) at today's date, or at the last day of a past --month.

Example:
  budget-tracker budget status --month 2024-05`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validation.IsValidOutputFormat(statusFormat, FormatText, report.FormatJSON, report.FormatYAML); err != nil {
			return err
		}
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		if strings.EqualFold(statusFormat, FormatText) {
			return WriteStatus(cmd.OutOrStdout(), t)
		}
		return WriteReport(cmd.OutOrStdout(), t, statusFormat)
	},
}

// FormatText is the human-readable table output of the status command.
const FormatText = "text"

var statusFormat string

// AddOptions are the fields of a new budget as typed on the command line.
type AddOptions struct {
	Category string
	Amount   string
	Period   string
	Color    string
}

var addOpts AddOptions

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a budget",
	Long: `Create a budget for a category.

Example:
  budget-tracker budget add -c Groceries -a 400 -p Monthly`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		created, err := Add(cmd.Context(), t, addOpts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s budget for %s: %s (spent %s)\n",
			created.Period, created.Category, models.FormatCurrency(created.Budget), models.FormatCurrency(created.Spent))
		return err
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadMonth(cmd.Context())
		if err != nil {
			return err
		}
		if err := t.DeleteBudget(cmd.Context(), args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted budget %s\n", args[0])
		return err
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", FormatText, "Output format (text, json, yaml)")

	addCmd.Flags().StringVarP(&addOpts.Category, "category", "c", "", "Budget category")
	addCmd.Flags().StringVarP(&addOpts.Amount, "amount", "a", "", "Budget amount")
	addCmd.Flags().StringVarP(&addOpts.Period, "period", "p", string(models.PeriodMonthly), "Budget period (Weekly, Monthly, Quarterly, Yearly)")
	addCmd.Flags().StringVar(&addOpts.Color, "color", "", "Display color, e.g. #4CAF50")

	Cmd.AddCommand(statusCmd, addCmd, deleteCmd)
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

// Add parses opts into a budget and creates it through t.
func Add(ctx context.Context, t *tracker.Tracker, opts AddOptions) (models.BudgetRecord, error) {
	b := models.BudgetRecord{
		Category: opts.Category,
		Period:   models.Period(opts.Period),
		Color:    opts.Color,
	}
	if p, err := models.ParsePeriod(opts.Period); err == nil {
		b.Period = p
	}
	if opts.Amount != "" {
		amount, err := models.ParseAmount(opts.Amount)
		if err != nil {
			return models.BudgetRecord{}, err
		}
		b.Budget = amount
	}
	created, err := t.AddBudget(ctx, b)
	if err != nil {
		return models.BudgetRecord{}, err
	}
	root.Log.WithFields(
		logging.F(logging.FieldBudgetID, created.ID),
		logging.F(logging.FieldPeriod, created.Period),
	).Debug("Budget created from command line")
	return created, nil
}

// WriteReport renders the status of the month loaded in t as json or yaml.
func WriteReport(w io.Writer, t *tracker.Tracker, format string) error {
	r := report.NewBudgetReport(t.Month(), t.Status(t.AsOf()), t.Breakdown())
	r.AsOf = dateutils.ToISODate(t.AsOf())
	out, err := report.NewReportGenerator(root.Log).GenerateReport(r, format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// WriteStatus prints the budget table, alerts, totals and category
// breakdown of the month loaded in t. Spent covers each budget's period
// window at the tracker's reference date.
func WriteStatus(w io.Writer, t *tracker.Tracker) error {
	summary := t.Status(t.AsOf())
	_, _ = fmt.Fprintf(w, "Budgets as of %s\n\n", dateutils.FormatDate(t.AsOf(), dateutils.DateLayoutHuman))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCATEGORY\tPERIOD\tBUDGET\tSPENT\tREMAINING\tUSED\tSTATUS")
	for _, s := range summary.Budgets {
		status := s.Tier.String()
		if s.Malformed {
			status += " (invalid amount)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			s.ID, s.Category, s.Period,
			models.FormatCurrency(s.Budget), models.FormatCurrency(s.Spent), models.FormatCurrency(s.Remaining),
			s.Percentage, status)
	}
	_, _ = fmt.Fprintf(tw, "\tTOTAL\t\t%s\t%s\t%s\t%d%%\t%s\n",
		models.FormatCurrency(summary.TotalBudget), models.FormatCurrency(summary.TotalSpent),
		models.FormatCurrency(summary.TotalRemaining), summary.OverallPercentage, summary.OverallTier)
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, a := range summary.Alerts() {
		_, _ = fmt.Fprintf(w, "ALERT: %s has used %d%% of its %s budget\n", a.Category, a.Percentage, a.Period)
	}

	totals := t.Breakdown()
	if len(totals) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CATEGORY\tGROUP\tEXPENSES\tTOTAL\tSHARE")
	for _, c := range totals {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s%%\n", c.Category, c.Group, c.Count, models.FormatCurrency(c.Total), c.Share.StringFixed(1))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Most spent: %s\n", budget.MostSpent(totals))
	return err
}
