// Package catalog holds the expense category taxonomy: category names grouped
// for classification, lookup by canonical name, and parsing of free-form
// category labels into known or custom categories.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// DefaultGroup is reported for any category the catalog does not know.
const DefaultGroup = "Miscellaneous"

//go:embed categories.yaml
var builtinYAML []byte

// Group is a named set of categories.
type Group struct {
	Name       string   `yaml:"name"`
	Categories []string `yaml:"categories"`
}

type document struct {
	Groups []Group `yaml:"groups"`
}

// Category is either a catalog entry, carrying its display name and group, or
// a custom label the user typed that the catalog does not know.
type Category struct {
	Name   string
	Group  string
	Custom bool
}

func (c Category) String() string { return c.Name }

// Catalog is an immutable, read-only category taxonomy. It is safe for
// concurrent use.
type Catalog struct {
	groups  []Group
	byCanon map[string]Category
	names   []string
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := parse(builtinYAML)
		if err != nil {
			panic(fmt.Sprintf("catalog: built-in categories are invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// New builds a catalog from groups. A category listed in more than one group
// keeps its first group.
func New(groups []Group) (*Catalog, error) {
	c := &Catalog{byCanon: make(map[string]Category)}
	for _, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog group without a name")
		}
		kept := Group{Name: name}
		for _, raw := range g.Categories {
			display := collapse(raw)
			if display == "" {
				return nil, fmt.Errorf("empty category in group %q", name)
			}
			key := Canonical(display)
			if _, dup := c.byCanon[key]; dup {
				continue
			}
			c.byCanon[key] = Category{Name: display, Group: name}
			c.names = append(c.names, display)
			kept.Categories = append(kept.Categories, display)
		}
		c.groups = append(c.groups, kept)
	}
	return c, nil
}

// Load reads a catalog document from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading categories: %w", err)
	}
	return parse(data)
}

// LoadFile reads a catalog document from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening categories file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing categories: %w", err)
	}
	if len(doc.Groups) == 0 {
		return nil, fmt.Errorf("categories document has no groups")
	}
	return New(doc.Groups)
}

// Canonical returns the comparison key for a category label: surrounding
// whitespace trimmed, inner whitespace runs collapsed, case folded.
func Canonical(s string) string {
	return cases.Fold().String(collapse(s))
}

// Equal reports whether two labels name the same category.
func Equal(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GroupOf returns the group of category, or DefaultGroup when unknown.
func (c *Catalog) GroupOf(category string) string {
	if cat, ok := c.byCanon[Canonical(category)]; ok {
		return cat.Group
	}
	return DefaultGroup
}

// Parse resolves a free-form label. Known labels come back with the catalog's
// display spelling; anything else is a custom category holding the trimmed
// input.
func (c *Catalog) Parse(label string) Category {
	if cat, ok := c.byCanon[Canonical(label)]; ok {
		return cat
	}
	return Category{Name: collapse(label), Group: DefaultGroup, Custom: true}
}

// IsKnown reports whether label names a catalog entry.
func (c *Catalog) IsKnown(label string) bool {
	_, ok := c.byCanon[Canonical(label)]
	return ok
}

// Groups returns the groups in display order.
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Name: g.Name, Categories: append([]string(nil), g.Categories...)}
	}
	return out
}

// Names returns every category name in display order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of known categories.
func (c *Catalog) Len() int {
	return len(c.names)
}
