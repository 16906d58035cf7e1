package actions

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Args is the loosely-typed argument map of one function-call directive.
type Args map[string]interface{}

var numberNoise = regexp.MustCompile(`[\s$€£]`)

// ParseNumber accepts "5", " 5.50 ", "5,50" and "$5". A comma is read as a
// decimal separator only when no dot is present.
func ParseNumber(raw string) (float64, bool) {
	s := numberNoise.ReplaceAllString(raw, "")
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Has reports whether key is present and non-null.
func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

// String returns a trimmed string value. Numbers are formatted.
func (a Args) String(key string) (string, bool) {
	switch v := a[key].(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// Number returns a numeric value, parsing string-wrapped numbers.
func (a Args) Number(key string) (float64, bool) {
	switch v := a[key].(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		return ParseNumber(v)
	default:
		return 0, false
	}
}

func (a Args) Bool(key string) (bool, bool) {
	switch v := a[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}

// Objects returns the object elements of an array value, skipping others.
func (a Args) Objects(key string) []Args {
	raw, ok := a[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]Args, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, Args(m))
		}
	}
	return out
}

// StringPtr is String for sparse updates: nil when absent.
func (a Args) StringPtr(key string) *string {
	if s, ok := a.String(key); ok {
		return &s
	}
	return nil
}

func nonNegativeInt(f float64, ok bool) int {
	if !ok || f < 0 {
		return 0
	}
	return int(math.Round(f))
}
