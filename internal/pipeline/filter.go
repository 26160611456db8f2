package pipeline

import "itemdb/internal"

// Keep applies the tag and DIY filters. An empty tag matches every item.
func Keep(item internal.Item, tag string, diyOnly bool) bool {
	if tag != "" && item.Tag != tag {
		return false
	}
	if diyOnly && !item.DIY {
		return false
	}
	return true
}
