package util

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"itemdb/internal"
)

var numberCleaner = strings.NewReplacer(",", "", "%", "", " ", "", "\u00A0", "")

// ParseNumber reads a spreadsheet-style numeric cell. Thousands separators and
// percent signs are ignored and "(130)" reads as -130. Anything else that does
// not parse yields an invalid Number carrying the source text.
func ParseNumber(v any) internal.Number {
	switch t := v.(type) {
	case nil:
		return internal.Number{}
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return fromFloat(float64(t))
	case int64:
		return fromFloat(float64(t))
	case json.Number:
		return ParseNumber(t.String())
	case string:
		return parseNumberText(t)
	default:
		return internal.Number{Raw: Text(v)}
	}
}

func fromFloat(f float64) internal.Number {
	raw := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return internal.Number{Raw: raw}
	}
	return internal.Number{Value: f, Valid: true, Raw: raw}
}

func parseNumberText(s string) internal.Number {
	raw := strings.TrimSpace(s)
	out := internal.Number{Raw: raw}

	compact := numberCleaner.Replace(raw)
	if strings.HasPrefix(compact, "(") && strings.HasSuffix(compact, ")") && len(compact) > 2 {
		compact = "-" + compact[1:len(compact)-1]
	}
	if compact == "" || compact == "-" {
		return out
	}

	f, err := strconv.ParseFloat(compact, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return out
	}
	out.Value = f
	out.Valid = true
	return out
}

// CompareNumbers orders valid numbers before invalid ones regardless of desc.
func CompareNumbers(a, b internal.Number, desc bool) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	c := 0
	if a.Value < b.Value {
		c = -1
	} else if a.Value > b.Value {
		c = 1
	}
	if desc {
		return -c
	}
	return c
}
