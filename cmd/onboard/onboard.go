// Package onboard handles the financial profile questionnaire commands
package onboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/profile"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Answers are the questionnaire answers as typed on the command line.
// Amounts stay strings until parsed so that unset flags can be told apart.
type Answers struct {
	File          string
	Income        string
	Housing       string
	Transport     string
	Food          string
	Saving        string
	Priorities    []string
	Goals         []string
	Shopping      string
	DiningOut     string
	CreateBudgets bool
	DryRun        bool
}

var answers Answers

// Cmd represents the onboard command
var Cmd = &cobra.Command{
	Use:   "onboard",
	Short: "Answer the financial questionnaire and get budget suggestions",
	Long: `Answer the financial questionnaire and get suggested monthly budgets.

Answers come from a YAML file (--answers) and/or flags; flags win. The
completed profile is saved locally and, with the rest backend, pushed to the
server. With --create-budgets every suggestion becomes a monthly budget.

Example:
  budget-tracker onboard --income 5000 --housing 1500 --transport 300 --food 600 \
    --priorities dining,travel --goals emergency --shopping weekly --dining-out daily`,
	RunE: onboardFunc,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved financial profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := root.AppContainer.GetProfiles().Load(cmd.Context())
		if errors.Is(err, profile.ErrNoProfile) {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "No financial profile yet. Run \"budget-tracker onboard\".")
			return err
		}
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile updated %s (%s)\n", p.UpdatedAt.Format(time.RFC3339), p.Status)
		return WriteSuggestions(cmd.OutOrStdout(), p.Categories)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved financial profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := root.AppContainer.GetProfiles().Reset(cmd.Context()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Financial profile reset")
		return err
	},
}

func init() {
	f := Cmd.Flags()
	f.StringVar(&answers.File, "answers", "", "YAML file with questionnaire answers")
	f.StringVar(&answers.Income, "income", "", "Monthly income after taxes")
	f.StringVar(&answers.Housing, "housing", "", "Monthly housing expense")
	f.StringVar(&answers.Transport, "transport", "", "Monthly transportation expense")
	f.StringVar(&answers.Food, "food", "", "Monthly food and groceries expense")
	f.StringVar(&answers.Saving, "saving", "", "Monthly saving target")
	f.StringSliceVar(&answers.Priorities, "priorities", nil, "Spending priorities (travel, dining, shopping, health, entertainment)")
	f.StringSliceVar(&answers.Goals, "goals", nil, "Financial goals (emergency, debt, retirement, home, vacation)")
	f.StringVar(&answers.Shopping, "shopping", "", "Shopping frequency (daily, weekly, monthly, rarely)")
	f.StringVar(&answers.DiningOut, "dining-out", "", "Dining out frequency (daily, weekly, monthly, rarely)")
	f.BoolVar(&answers.CreateBudgets, "create-budgets", false, "Create a monthly budget for every suggestion")
	f.BoolVar(&answers.DryRun, "dry-run", false, "Only print the suggestions")

	Cmd.AddCommand(showCmd, resetCmd)
}

func onboardFunc(cmd *cobra.Command, args []string) error {
	q, err := BuildQuestionnaire(answers)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if answers.DryRun {
		if err := profile.Validate(q); err != nil {
			return err
		}
		return WriteSuggestions(out, profile.Suggest(q))
	}

	var creator BudgetCreator
	if answers.CreateBudgets {
		month, err := root.Month()
		if err != nil {
			return err
		}
		t := root.AppContainer.GetTracker()
		if err := t.Load(cmd.Context(), month); err != nil {
			return err
		}
		creator = t
	}
	p, created, err := Complete(cmd.Context(), root.AppContainer.GetProfiles(), creator, q, time.Now())
	if p == nil {
		return err
	}
	if writeErr := WriteSuggestions(out, p.Categories); writeErr != nil {
		return writeErr
	}
	if len(created) > 0 {
		_, _ = fmt.Fprintf(out, "Created %d budgets\n", len(created))
	}
	return err
}

// BudgetCreator creates budgets from accepted suggestions.
type BudgetCreator interface {
	AddBudget(ctx context.Context, b models.BudgetRecord) (models.BudgetRecord, error)
}

// BuildQuestionnaire merges the answers file, if any, with the flag values.
func BuildQuestionnaire(a Answers) (profile.Questionnaire, error) {
	q := profile.NewQuestionnaire()
	if a.File != "" {
		loaded, err := LoadAnswers(a.File)
		if err != nil {
			return profile.Questionnaire{}, err
		}
		q = loaded
	}

	for _, f := range []struct {
		name  string
		value string
		set   func(v string) error
	}{
		{"income", a.Income, amountSetter(&q.Income)},
		{"housing", a.Housing, amountSetter(&q.HousingExpense)},
		{"transport", a.Transport, amountSetter(&q.TransportationExpense)},
		{"food", a.Food, amountSetter(&q.FoodExpense)},
		{"saving", a.Saving, amountSetter(&q.SavingGoal)},
	} {
		if f.value == "" {
			continue
		}
		if err := f.set(f.value); err != nil {
			return profile.Questionnaire{}, fmt.Errorf("invalid --%s: %w", f.name, err)
		}
	}

	if len(a.Priorities) > 0 {
		q.SpendingPriorities = a.Priorities
	}
	if len(a.Goals) > 0 {
		q.FinancialGoals = a.Goals
	}
	if a.Shopping != "" {
		q.ShoppingFrequency = a.Shopping
	}
	if a.DiningOut != "" {
		q.DiningOutFrequency = a.DiningOut
	}
	return q, nil
}

// LoadAnswers reads questionnaire answers from a YAML file. Missing
// frequencies keep their defaults.
func LoadAnswers(path string) (profile.Questionnaire, error) {
	// #nosec G304 -- path is supplied by the user on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Questionnaire{}, fmt.Errorf("failed to read answers file: %w", err)
	}
	q := profile.NewQuestionnaire()
	if err := yaml.Unmarshal(data, &q); err != nil {
		return profile.Questionnaire{}, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}
	return q, nil
}

// Complete validates q, saves the resulting profile through repo and, when
// creator is not nil, creates a budget for every positive suggestion.
//
// A profile that was saved locally but could not be pushed is returned
// together with the sync error.
func Complete(ctx context.Context, repo *profile.Repository, creator BudgetCreator, q profile.Questionnaire, now time.Time) (*profile.Profile, []models.BudgetRecord, error) {
	p, err := profile.Complete(q, now)
	if err != nil {
		return nil, nil, err
	}

	syncErr := repo.Save(ctx, p)
	if syncErr != nil && !errors.Is(syncErr, profile.ErrNotSynced) {
		return nil, nil, syncErr
	}

	if creator == nil {
		return p, nil, syncErr
	}
	created := make([]models.BudgetRecord, 0, len(p.Categories))
	for _, b := range profile.ToBudgets(p.Categories) {
		c, err := creator.AddBudget(ctx, b)
		if err != nil {
			return p, created, fmt.Errorf("failed to create budget for %s: %w", b.Category, err)
		}
		created = append(created, c)
	}
	root.Log.WithField(logging.FieldCount, len(created)).Info("Budgets created from suggestions")
	return p, created, syncErr
}

// WriteSuggestions prints suggestions as a table followed by their total.
func WriteSuggestions(w io.Writer, suggestions []models.CategorySuggestion) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tCATEGORY\tCOLOR\tMONTHLY BUDGET")
	for _, s := range suggestions {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Icon, s.Name, s.Color, models.FormatCurrency(s.BudgetSuggestion))
	}
	_, _ = fmt.Fprintf(tw, "\tTOTAL\t\t%s\n", models.FormatCurrency(profile.SuggestedTotal(suggestions)))
	return tw.Flush()
}

func amountSetter(dst *decimal.Decimal) func(string) error {
	return func(v string) error {
		d, err := models.ParseAmount(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
