// Package categories handles the category catalog command
package categories

import (
	"fmt"
	"io"

	"fjacquet/budget-tracker/cmd/root"
	"fjacquet/budget-tracker/internal/catalog"

	"github.com/spf13/cobra"
)

var groupOf string

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "List the built-in expense categories",
	Long: `List the built-in expense categories by group, or print the group of one
category with --group-of. Categories outside the catalog are reported as
Miscellaneous.

Example:
  budget-tracker categories
  budget-tracker categories --group-of "coffee shops"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := root.AppContainer.GetCatalog()
		if cmd.Flags().Changed("group-of") {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cat.GroupOf(groupOf))
			return err
		}
		return WriteCatalog(cmd.OutOrStdout(), cat)
	},
}

func init() {
	Cmd.Flags().StringVarP(&groupOf, "group-of", "g", "", "Print the group of this category")
}

// WriteCatalog prints every group followed by its indented categories.
func WriteCatalog(w io.Writer, cat *catalog.Catalog) error {
	for _, g := range cat.Groups() {
		if _, err := fmt.Fprintln(w, g.Name); err != nil {
			return err
		}
		for _, c := range g.Categories {
			if _, err := fmt.Fprintf(w, "  %s\n", c); err != nil {
				return err
			}
		}
	}
	return nil
}
