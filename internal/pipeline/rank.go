package pipeline

import (
	"strings"

	"itemdb/internal"
	"itemdb/internal/util"
)

// Relevance tiers. Only their order matters: a name hit always beats a hit
// anywhere else, and an item's score is the best tier it reaches.
const (
	TierExactName  = 1000
	TierNamePrefix = 800
	TierNameSubstr = 600
	TierMaterial   = 450
	TierNotes      = 300
	TierRecipeText = 250
	TierTag        = 200

	// FlatScore is assigned to every item when there is no query.
	FlatScore = 0
)

// MaterialLookup resolves the crafting materials of an item by name.
type MaterialLookup interface {
	Materials(name string) []internal.RecipeMaterial
}

// Score returns the relevance tier of item for a trimmed, non-empty query,
// or 0 when nothing matches.
func Score(item internal.Item, materials MaterialLookup, query string) int {
	q := strings.ToLower(query)
	name := strings.ToLower(item.Name)

	switch {
	case name == q:
		return TierExactName
	case strings.HasPrefix(name, q):
		return TierNamePrefix
	case strings.Contains(name, q):
		return TierNameSubstr
	}

	if materials != nil {
		for _, m := range materials.Materials(item.Name) {
			if util.ContainsFold(m.Name, q) {
				return TierMaterial
			}
		}
	}

	switch {
	case util.ContainsFold(item.Notes, q):
		return TierNotes
	case util.ContainsFold(item.Recipes, q):
		return TierRecipeText
	case util.ContainsFold(item.Tag, q):
		return TierTag
	}
	return 0
}
