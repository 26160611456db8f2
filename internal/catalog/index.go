package catalog

import (
	"strconv"

	"itemdb/internal"
	"itemdb/internal/util"
)

const (
	ColRecipeName   = "Name"
	maxRecipeInputs = 6
)

// RecipeIndex maps a lower-cased item name to its recipe. A nil or empty
// index answers every lookup with "not found".
type RecipeIndex struct {
	byName map[string]internal.RecipeEntry
}

func BuildRecipeIndex(records []internal.RawRecord) *RecipeIndex {
	idx := &RecipeIndex{byName: map[string]internal.RecipeEntry{}}

	for _, rec := range records {
		name := util.Text(rec[ColRecipeName])
		key := util.Key(name)
		if key == "" {
			continue
		}
		if _, exists := idx.byName[key]; exists {
			continue
		}

		entry := internal.RecipeEntry{Name: name}
		for i := 1; i <= maxRecipeInputs; i++ {
			material := util.Text(rec["Material "+strconv.Itoa(i)])
			if material == "" {
				continue
			}
			entry.Materials = append(entry.Materials, internal.RecipeMaterial{
				Quantity: util.ParseNumber(rec["#"+strconv.Itoa(i)]),
				Name:     material,
			})
		}
		idx.byName[key] = entry
	}

	return idx
}

func (idx *RecipeIndex) Lookup(name string) (internal.RecipeEntry, bool) {
	if idx == nil {
		return internal.RecipeEntry{}, false
	}
	entry, ok := idx.byName[util.Key(name)]
	return entry, ok
}

func (idx *RecipeIndex) Materials(name string) []internal.RecipeMaterial {
	entry, _ := idx.Lookup(name)
	return entry.Materials
}

func (idx *RecipeIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byName)
}
