package pipeline

import (
	"cmp"
	"slices"
	"strings"

	"itemdb/internal"
	"itemdb/internal/catalog"
)

// Run filters, scores and orders items for one view. With a query, results are
// ordered by relevance and ties fall back to the sort mode; without one, the
// sort mode alone decides. Sorting is stable, so equal items keep source order.
func Run(items []internal.Item, materials MaterialLookup, view internal.ViewState) []internal.Result {
	query := strings.TrimSpace(view.Query)
	tag := strings.TrimSpace(view.Tag)

	results := make([]internal.Result, 0, len(items))
	for _, item := range items {
		if !Keep(item, tag, view.DIYOnly) {
			continue
		}
		score := FlatScore
		if query != "" {
			score = Score(item, materials, query)
			if score == 0 {
				continue
			}
		}
		results = append(results, internal.Result{Score: score, Item: item})
	}

	byMode := comparatorFor(view.Sort)
	slices.SortStableFunc(results, func(a, b internal.Result) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return byMode(a.Item, b.Item)
	})
	return results
}

func RunCatalog(cat *catalog.Catalog, view internal.ViewState) []internal.Result {
	return Run(cat.Items(), cat.Recipes(), view)
}
