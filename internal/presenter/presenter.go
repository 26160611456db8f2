package presenter

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"itemdb/internal"
	"itemdb/internal/catalog"
	"itemdb/internal/pipeline"
	"itemdb/internal/util"
)

const (
	LoadFailedMessage = "Failed to load data.json"
	unnamed           = "(unnamed)"
)

var sortLabels = map[internal.SortMode]string{
	internal.SortNameAZ:     "Name A-Z",
	internal.SortNameZA:     "Name Z-A",
	internal.SortPriceDesc:  "Price high to low",
	internal.SortPriceAsc:   "Price low to high",
	internal.SortProfitDesc: "Profit high to low",
	internal.SortProfitAsc:  "Profit low to high",
	internal.SortMarginDesc: "Margin high to low",
	internal.SortMarginAsc:  "Margin low to high",
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type Link struct {
	Label string
	Href  string
}

type Material struct {
	Quantity string
	Link     Link
}

type Card struct {
	Name        string
	DataName    string
	Tag         string
	DIY         string
	Price       string
	Profit      string
	Margin      string
	Notes       string
	RecipeLinks []Link
	Materials   []Material
	Score       int
	Highlight   bool
}

type Page struct {
	View       internal.ViewState
	Target     string
	CountLabel string
	Tags       []Option
	Sorts      []Option
	Cards      []Card
	Error      string
}

// Build runs the pipeline for view and shapes the result for rendering. At
// most one card, the first whose name equals target, is highlighted.
func Build(cat *catalog.Catalog, view internal.ViewState, target string) Page {
	view.Query = strings.TrimSpace(view.Query)
	view.Tag = strings.TrimSpace(view.Tag)
	view.Sort = internal.ParseSortMode(string(view.Sort))
	if view.Tag != "" && !cat.HasTag(view.Tag) {
		view.Tag = ""
	}

	results := pipeline.RunCatalog(cat, view)

	page := Page{
		View:       view,
		Target:     strings.TrimSpace(target),
		CountLabel: countLabel(len(results)),
		Tags:       tagOptions(cat.Tags(), view.Tag),
		Sorts:      sortOptions(view.Sort),
		Cards:      make([]Card, 0, len(results)),
	}

	targetKey := util.Key(page.Target)
	highlighted := false
	for _, res := range results {
		card := toCard(res, cat.Recipes(), view)
		if !highlighted && targetKey != "" && util.Key(res.Item.Name) == targetKey {
			card.Highlight = true
			highlighted = true
		}
		page.Cards = append(page.Cards, card)
	}
	return page
}

// Failed is the page shown when the item dataset could not be loaded.
func Failed(view internal.ViewState) Page {
	view.Sort = internal.ParseSortMode(string(view.Sort))
	return Page{
		View:       view,
		CountLabel: countLabel(0),
		Tags:       tagOptions(nil, ""),
		Sorts:      sortOptions(view.Sort),
		Error:      LoadFailedMessage,
	}
}

// Navigate is the effect of clicking a recipe or material reference: search
// for that exact name with the tag filter cleared. It returns the new view and
// the name to highlight.
func Navigate(view internal.ViewState, name string) (internal.ViewState, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return view, ""
	}
	view.Query = name
	view.Tag = ""
	return view, name
}

// NavigateHref is the link target for a recipe or material reference. The
// sort mode is always written so a server default cannot replace it.
func NavigateHref(view internal.ViewState, name string) string {
	q := url.Values{}
	q.Set("item", name)
	if view.DIYOnly {
		q.Set("diy", "1")
	}
	q.Set("sort", string(internal.ParseSortMode(string(view.Sort))))
	return "/navigate?" + q.Encode()
}

func toCard(res internal.Result, recipes *catalog.RecipeIndex, view internal.ViewState) Card {
	item := res.Item
	card := Card{
		Name:     orDash(item.Name, unnamed),
		DataName: strings.ToLower(item.Name),
		Tag:      orDash(item.Tag, "-"),
		DIY:      orDash(item.DIYText, "-"),
		Price:    item.Price.Display(),
		Profit:   item.Profit.Display(),
		Margin:   item.Margin.Display(),
		Notes:    item.Notes,
		Score:    res.Score,
	}
	for _, ref := range item.RecipeRefs {
		card.RecipeLinks = append(card.RecipeLinks, Link{Label: ref, Href: NavigateHref(view, ref)})
	}
	for _, m := range recipes.Materials(item.Name) {
		card.Materials = append(card.Materials, Material{
			Quantity: quantityLabel(m.Quantity),
			Link:     Link{Label: m.Name, Href: NavigateHref(view, m.Name)},
		})
	}
	return card
}

func quantityLabel(n internal.Number) string {
	if n.Valid {
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	}
	return n.Display()
}

func orDash(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func countLabel(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d items shown", n)
}

func tagOptions(tags []string, selected string) []Option {
	out := make([]Option, 0, len(tags)+1)
	out = append(out, Option{Value: "", Label: "All tags", Selected: selected == ""})
	for _, t := range tags {
		out = append(out, Option{Value: t, Label: t, Selected: t == selected})
	}
	return out
}

func sortOptions(selected internal.SortMode) []Option {
	out := make([]Option, 0, len(internal.SortModes))
	for _, m := range internal.SortModes {
		out = append(out, Option{Value: string(m), Label: sortLabels[m], Selected: m == selected})
	}
	return out
}
