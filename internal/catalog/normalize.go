package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"itemdb/internal"
	"itemdb/internal/util"
)

// Column names of the item dataset. "Recipies" is spelled as in the source sheet.
const (
	ColItem     = "ITEM"
	ColRawValue = "RAW VALUE"
	ColPrice    = "PRICE"
	ColProfit   = "PROFIT"
	ColMargin   = "Margin"
	ColTag      = "TAG"
	ColDIY      = "DIY"
	ColNotes    = "NOTES"
	ColRecipes  = "Recipies"
)

var ErrNotArray = errors.New("payload is not an array")

// DecodeRecords decodes a JSON array of objects. Elements that are not
// objects decode to empty records; only a non-array payload is an error.
func DecodeRecords(payload []byte) ([]internal.RawRecord, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(payload, &rows); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotArray
		}
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if rows == nil {
		return nil, ErrNotArray
	}

	out := make([]internal.RawRecord, 0, len(rows))
	for _, raw := range rows {
		var rec internal.RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			rec = nil
		}
		out = append(out, rec)
	}
	return out, nil
}

func NormalizeItems(records []internal.RawRecord) []internal.Item {
	out := make([]internal.Item, 0, len(records))
	for _, rec := range records {
		out = append(out, NormalizeItem(rec))
	}
	return out
}

// NormalizeItem only reads from rec.
func NormalizeItem(rec internal.RawRecord) internal.Item {
	recipes := util.Text(rec[ColRecipes])
	return internal.Item{
		Name:       util.Text(rec[ColItem]),
		Tag:        util.Text(rec[ColTag]),
		DIY:        util.IsTruthy(rec[ColDIY]),
		DIYText:    util.Text(rec[ColDIY]),
		RawValue:   util.ParseNumber(rec[ColRawValue]),
		Price:      util.ParseNumber(rec[ColPrice]),
		Profit:     util.ParseNumber(rec[ColProfit]),
		Margin:     util.ParseNumber(rec[ColMargin]),
		Notes:      util.Text(rec[ColNotes]),
		Recipes:    recipes,
		RecipeRefs: util.SplitList(recipes),
	}
}
