package internal

// RawRecord is one untyped row of a source dataset, keyed by column name.
type RawRecord map[string]any

// Number is a parsed numeric cell. Valid is false for the unparsable sentinel.
type Number struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
	Raw   string  `json:"raw"`
}

// Display returns the source text, or "-" when there is none.
func (n Number) Display() string {
	if n.Raw == "" {
		return "-"
	}
	return n.Raw
}

type Item struct {
	Name       string   `json:"name"`
	Tag        string   `json:"tag"`
	DIY        bool     `json:"diy"`
	DIYText    string   `json:"diyText"`
	RawValue   Number   `json:"rawValue"`
	Price      Number   `json:"price"`
	Profit     Number   `json:"profit"`
	Margin     Number   `json:"margin"`
	Notes      string   `json:"notes"`
	Recipes    string   `json:"recipes"`
	RecipeRefs []string `json:"recipeRefs"`
}

type RecipeMaterial struct {
	Quantity Number `json:"quantity"`
	Name     string `json:"name"`
}

type RecipeEntry struct {
	Name      string           `json:"name"`
	Materials []RecipeMaterial `json:"materials"`
}

type SortMode string

const (
	SortNameAZ     SortMode = "name-az"
	SortNameZA     SortMode = "name-za"
	SortPriceAsc   SortMode = "price-asc"
	SortPriceDesc  SortMode = "price-desc"
	SortProfitAsc  SortMode = "profit-asc"
	SortProfitDesc SortMode = "profit-desc"
	SortMarginAsc  SortMode = "margin-asc"
	SortMarginDesc SortMode = "margin-desc"
)

var SortModes = []SortMode{
	SortNameAZ, SortNameZA,
	SortPriceDesc, SortPriceAsc,
	SortProfitDesc, SortProfitAsc,
	SortMarginDesc, SortMarginAsc,
}

// ParseSortMode falls back to name-az for anything it does not recognise.
func ParseSortMode(s string) SortMode {
	for _, m := range SortModes {
		if string(m) == s {
			return m
		}
	}
	return SortNameAZ
}

type ViewState struct {
	Query   string   `json:"query"`
	Tag     string   `json:"tag"`
	DIYOnly bool     `json:"diyOnly"`
	Sort    SortMode `json:"sort"`
}

type Result struct {
	Score int  `json:"score"`
	Item  Item `json:"item"`
}
