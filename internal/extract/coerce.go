package extract

import (
	"math"
	"strconv"
	"strings"
)

// Row is one raw tabular record keyed by source column name. Values are
// whatever the source driver produced: strings, float64, int64, []byte or nil.
type Row map[string]any

// ParseFloat coerces a raw value to a float. Anything that does not parse
// as a finite number is nil ("no data"), never zero.
func ParseFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case []byte:
		return ParseFloat(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Text renders a raw categorical value as trimmed text.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// IsPercentileColumn reports whether a column holds a fractional rank that
// is rescaled to percentile points.
func IsPercentileColumn(column string) bool {
	return strings.HasSuffix(column, "_natl_pctile") || strings.HasSuffix(column, "_percentile")
}

// Rescale applies the per-column numeric normalization: percentile columns
// are multiplied by 100 and rounded to 2 decimals, "_sum" columns are only
// rounded. Percentile values outside [0,100] after rescaling become nil.
func Rescale(column string, v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	switch {
	case IsPercentileColumn(column):
		out = Round(out*100, 2)
		if out < 0 || out > 100 {
			return nil
		}
	case strings.HasSuffix(column, "_sum"):
		out = Round(out, 2)
	}
	return &out
}

// NormalizeTractGEOID trims a tract identifier and restores the leading zero
// lost when an 11-digit GEOID was stored as a number.
func NormalizeTractGEOID(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	if len(s) == 10 && digits(s) {
		return "0" + s
	}
	return s
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
