package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Shape(t *testing.T) {
	c := Default()
	groups := c.Groups()

	require.Len(t, groups, 13)
	assert.Equal(t, "Housing", groups[0].Name)
	assert.Equal(t, "Miscellaneous", groups[12].Name)
	assert.Equal(t, 54, c.Len())
	assert.Equal(t, "Rent/Mortgage", c.Names()[0])
	assert.Same(t, c, Default())
}

func TestGroupOf(t *testing.T) {
	c := Default()

	tests := []struct {
		category string
		group    string
	}{
		{"Groceries", "Food"},
		{"groceries", "Food"},
		{"  Coffee   Shops ", "Food"},
		{"Gas/Fuel", "Transportation"},
		{"Gas/Oil", "Utilities"},
		{"Kids' Activities & Sports", "Family & Dependents"},
		{"Taxes", "Miscellaneous"},
		{"Unicorn Food", DefaultGroup},
		{"", DefaultGroup},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.group, c.GroupOf(tt.category))
		})
	}
}

func TestParse(t *testing.T) {
	c := Default()

	known := c.Parse("  restaurants &  dining out")
	assert.Equal(t, Category{Name: "Restaurants & Dining Out", Group: "Food"}, known)
	assert.True(t, c.IsKnown("RESTAURANTS & DINING OUT"))

	custom := c.Parse("  Board   Games ")
	assert.True(t, custom.Custom)
	assert.Equal(t, "Board Games", custom.String())
	assert.Equal(t, DefaultGroup, custom.Group)
	assert.False(t, c.IsKnown("Board Games"))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "groceries", Canonical(" Groceries "))
	assert.Equal(t, "coffee shops", Canonical("Coffee\t\tShops"))
	assert.True(t, Equal("STRASSE", "strasse"))
	assert.False(t, Equal("Food", "Foods"))
}

func TestGroupsReturnsCopies(t *testing.T) {
	c := Default()
	groups := c.Groups()
	groups[0].Categories[0] = "mutated"
	names := c.Names()
	names[0] = "mutated"

	assert.Equal(t, "Rent/Mortgage", c.Groups()[0].Categories[0])
	assert.Equal(t, "Rent/Mortgage", c.Names()[0])
}

func TestNew(t *testing.T) {
	c, err := New([]Group{
		{Name: "Food", Categories: []string{"Groceries", "groceries"}},
		{Name: "Other", Categories: []string{"Groceries", "Stuff"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Stuff"}, c.Names())
	assert.Equal(t, "Food", c.GroupOf("GROCERIES"))

	_, err = New([]Group{{Name: " ", Categories: []string{"x"}}})
	assert.Error(t, err)

	_, err = New([]Group{{Name: "x", Categories: []string{"  "}}})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "categories.yaml")
	content := "groups:\n  - name: Pets\n    categories: [Vet, Food]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Pets", c.GroupOf("vet"))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("groups: []\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("groups: [::"))
	assert.Error(t, err)
}
