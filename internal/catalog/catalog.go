package catalog

import (
	"slices"

	"itemdb/internal"
	"itemdb/internal/util"
)

// Catalog is the loaded dataset. It is built once and never mutated, so it
// can be shared between goroutines without locking.
type Catalog struct {
	items   []internal.Item
	recipes *RecipeIndex
	tags    []string
}

func New(items []internal.Item, recipes *RecipeIndex) *Catalog {
	if recipes == nil {
		recipes = BuildRecipeIndex(nil)
	}

	seen := map[string]struct{}{}
	tags := []string{}
	for _, it := range items {
		if it.Tag == "" {
			continue
		}
		if _, ok := seen[it.Tag]; ok {
			continue
		}
		seen[it.Tag] = struct{}{}
		tags = append(tags, it.Tag)
	}
	util.SortNames(tags)

	return &Catalog{items: slices.Clone(items), recipes: recipes, tags: tags}
}

// Items returns a copy of the item list in source order.
func (c *Catalog) Items() []internal.Item {
	return slices.Clone(c.items)
}

func (c *Catalog) Recipes() *RecipeIndex {
	return c.recipes
}

func (c *Catalog) Tags() []string {
	return slices.Clone(c.tags)
}

func (c *Catalog) HasTag(tag string) bool {
	return slices.Contains(c.tags, tag)
}

func (c *Catalog) Len() int {
	return len(c.items)
}
