package pipeline

import (
	"itemdb/internal"
	"itemdb/internal/util"
)

type comparator func(a, b internal.Item) int

func comparatorFor(mode internal.SortMode) comparator {
	switch mode {
	case internal.SortNameZA:
		c := util.NewCollator()
		return func(a, b internal.Item) int { return c.CompareString(b.Name, a.Name) }
	case internal.SortPriceAsc:
		return byNumber(func(it internal.Item) internal.Number { return it.Price }, false)
	case internal.SortPriceDesc:
		return byNumber(func(it internal.Item) internal.Number { return it.Price }, true)
	case internal.SortProfitAsc:
		return byNumber(func(it internal.Item) internal.Number { return it.Profit }, false)
	case internal.SortProfitDesc:
		return byNumber(func(it internal.Item) internal.Number { return it.Profit }, true)
	case internal.SortMarginAsc:
		return byNumber(func(it internal.Item) internal.Number { return it.Margin }, false)
	case internal.SortMarginDesc:
		return byNumber(func(it internal.Item) internal.Number { return it.Margin }, true)
	default:
		c := util.NewCollator()
		return func(a, b internal.Item) int { return c.CompareString(a.Name, b.Name) }
	}
}

func byNumber(field func(internal.Item) internal.Number, desc bool) comparator {
	return func(a, b internal.Item) int {
		return util.CompareNumbers(field(a), field(b), desc)
	}
}
