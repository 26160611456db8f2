package util

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text renders a raw JSON cell as trimmed text. Missing cells are "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// Key is the case-insensitive identity used for name lookups.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ContainsFold(hay, needle string) bool {
	return strings.Contains(strings.ToLower(hay), strings.ToLower(needle))
}

// SplitList splits a comma separated cell, dropping blanks.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func IsTruthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	switch strings.ToLower(Text(v)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}
