package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"fjacquet/budget-tracker/cmd/budgetcmd"
	"fjacquet/budget-tracker/cmd/categories"
	"fjacquet/budget-tracker/cmd/expenses"
	"fjacquet/budget-tracker/cmd/importcmd"
	"fjacquet/budget-tracker/cmd/onboard"
	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/cmd/template"
	"fjacquet/budget-tracker/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// .env first so that BUDGET_* variables are visible to everything below
	config.LoadEnv()

	// Set the global logrus level before any logger is created
	configureLogLevelDirectly()

	root.Init()

	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(template.Cmd)
	root.Cmd.AddCommand(expenses.Cmd)
	root.Cmd.AddCommand(budgetcmd.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(onboard.Cmd)
}

// configureLogLevelDirectly sets the global log level for all logrus instances
func configureLogLevelDirectly() {
	level, err := logrus.ParseLevel(strings.ToLower(config.GetEnv(config.EnvPrefix+"_LOG_LEVEL", "info")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
