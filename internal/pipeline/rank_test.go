package pipeline

import (
	"testing"

	"itemdb/internal"
	"itemdb/internal/catalog"
)

func TestScoreTiers(t *testing.T) {
	idx := catalog.BuildRecipeIndex([]internal.RawRecord{
		{"Name": "Log Bench", "#1": 3.0, "Material 1": "Hardwood"},
	})

	cases := []struct {
		name  string
		item  internal.Item
		query string
		want  int
	}{
		{"exact", internal.Item{Name: "Carp"}, "carp", TierExactName},
		{"prefix", internal.Item{Name: "Carp Streamer"}, "carp", TierNamePrefix},
		{"substring", internal.Item{Name: "Crucian Carp"}, "carp", TierNameSubstr},
		{"material", internal.Item{Name: "Log Bench"}, "hardwood", TierMaterial},
		{"notes", internal.Item{Name: "Koi", Notes: "Rarer than a carp"}, "carp", TierNotes},
		{"recipe text", internal.Item{Name: "Fish Bait", Recipes: "Manila Clam"}, "clam", TierRecipeText},
		{"tag", internal.Item{Name: "Ant", Tag: "Bug"}, "bug", TierTag},
		{"best tier wins", internal.Item{Name: "Carp", Notes: "carp", Tag: "carp"}, "carp", TierExactName},
		{"none", internal.Item{Name: "Ant", Tag: "Bug"}, "carp", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.item, idx, tc.query); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestScoreWithoutRecipes(t *testing.T) {
	item := internal.Item{Name: "Log Bench"}
	if got := Score(item, nil, "hardwood"); got != 0 {
		t.Fatalf("got %d", got)
	}
	var empty *catalog.RecipeIndex
	if got := Score(item, empty, "hardwood"); got != 0 {
		t.Fatalf("got %d", got)
	}
}

func TestTierOrdering(t *testing.T) {
	tiers := []int{TierExactName, TierNamePrefix, TierNameSubstr, TierMaterial, TierNotes, TierRecipeText, TierTag}
	for i := 1; i < len(tiers); i++ {
		if tiers[i-1] <= tiers[i] {
			t.Fatalf("tier %d (%d) must exceed tier %d (%d)", i-1, tiers[i-1], i, tiers[i])
		}
	}
	if tiers[len(tiers)-1] <= FlatScore {
		t.Fatal("lowest tier must exceed the no-match score")
	}
}
