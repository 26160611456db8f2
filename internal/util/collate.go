package util

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NewCollator returns an English collator. Collators are not safe for
// concurrent use, so callers create one per sort.
func NewCollator() *collate.Collator {
	return collate.New(language.English)
}

func SortNames(names []string) {
	c := NewCollator()
	sort.SliceStable(names, func(i, j int) bool {
		return c.CompareString(names[i], names[j]) < 0
	})
}
