// Package report renders budget status reports in machine-readable formats.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/budget-tracker/internal/budget"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/models"
	"fjacquet/budget-tracker/internal/validation"

	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// BudgetLine is one budget in a report. Amounts are fixed two-decimal strings.
type BudgetLine struct {
	ID         string `json:"id" yaml:"id"`
	Category   string `json:"category" yaml:"category"`
	Period     string `json:"period" yaml:"period"`
	Budget     string `json:"budget" yaml:"budget"`
	Spent      string `json:"spent" yaml:"spent"`
	Remaining  string `json:"remaining" yaml:"remaining"`
	Percentage int64  `json:"percentage" yaml:"percentage"`
	Tier       string `json:"tier" yaml:"tier"`
	Malformed  bool   `json:"malformed,omitempty" yaml:"malformed,omitempty"`
}

// CategoryLine is one category of the spending breakdown.
type CategoryLine struct {
	Category string `json:"category" yaml:"category"`
	Group    string `json:"group" yaml:"group"`
	Count    int    `json:"count" yaml:"count"`
	Total    string `json:"total" yaml:"total"`
	Share    string `json:"share" yaml:"share"`
}

// BudgetReport is the status of every budget for one month.
type BudgetReport struct {
	Month             string         `json:"month" yaml:"month"`
	AsOf              string         `json:"asOf,omitempty" yaml:"as_of,omitempty"`
	Budgets           []BudgetLine   `json:"budgets" yaml:"budgets"`
	TotalBudget       string         `json:"totalBudget" yaml:"total_budget"`
	TotalSpent        string         `json:"totalSpent" yaml:"total_spent"`
	TotalRemaining    string         `json:"totalRemaining" yaml:"total_remaining"`
	OverallPercentage int64          `json:"overallPercentage" yaml:"overall_percentage"`
	OverallTier       string         `json:"overallTier" yaml:"overall_tier"`
	Alerts            []string       `json:"alerts" yaml:"alerts"`
	Breakdown         []CategoryLine `json:"breakdown" yaml:"breakdown"`
	MostSpent         string         `json:"mostSpent" yaml:"most_spent"`
}

// NewBudgetReport builds a report from an aggregation summary and the
// category breakdown of the same expenses.
func NewBudgetReport(month string, summary budget.Summary, totals []budget.CategoryTotal) *BudgetReport {
	r := &BudgetReport{
		Month:             month,
		Budgets:           make([]BudgetLine, 0, len(summary.Budgets)),
		TotalBudget:       models.FormatAmount(summary.TotalBudget),
		TotalSpent:        models.FormatAmount(summary.TotalSpent),
		TotalRemaining:    models.FormatAmount(summary.TotalRemaining),
		OverallPercentage: summary.OverallPercentage,
		OverallTier:       summary.OverallTier.String(),
		Alerts:            []string{},
		Breakdown:         make([]CategoryLine, 0, len(totals)),
		MostSpent:         budget.MostSpent(totals),
	}
	for _, s := range summary.Budgets {
		r.Budgets = append(r.Budgets, BudgetLine{
			ID:         s.ID,
			Category:   s.Category,
			Period:     string(s.Period),
			Budget:     models.FormatAmount(s.Budget),
			Spent:      models.FormatAmount(s.Spent),
			Remaining:  models.FormatAmount(s.Remaining),
			Percentage: s.Percentage,
			Tier:       s.Tier.String(),
			Malformed:  s.Malformed,
		})
	}
	for _, a := range summary.Alerts() {
		r.Alerts = append(r.Alerts, a.Category)
	}
	for _, c := range totals {
		r.Breakdown = append(r.Breakdown, CategoryLine{
			Category: c.Category,
			Group:    c.Group,
			Count:    c.Count,
			Total:    models.FormatAmount(c.Total),
			Share:    c.Share.StringFixed(1),
		})
	}
	return r
}

// ReportGenerator renders budget reports in the supported formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{logger: logger}
}

// GenerateReport renders report as json or yaml.
func (g *ReportGenerator) GenerateReport(report *BudgetReport, format string) ([]byte, error) {
	if err := validation.IsValidOutputFormat(format, FormatJSON, FormatYAML); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return g.generateJSONReport(report)
	default:
		return g.generateYAMLReport(report)
	}
}

func (g *ReportGenerator) generateJSONReport(report *BudgetReport) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

func (g *ReportGenerator) generateYAMLReport(report *BudgetReport) ([]byte, error) {
	out, err := yaml.Marshal(report)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return out, nil
}
