// Package numeric provides tolerant numeric parsing and currency rounding.
//
// Figures reach this application from hand-filled forms and from persisted
// JSON payloads, so every numeric field may arrive as a number, a string,
// empty, or garbage. Parsing never fails: anything that cannot be read as a
// finite number becomes 0.0.
package numeric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Parse coerces an arbitrary value to a float64.
// nil, empty/whitespace strings, unparseable strings and non-numeric types
// all yield 0.0. Numeric strings and JSON numbers yield their value.
func Parse(v interface{}) float64 {
	switch val := v.(type) {
	case nil:
		return 0.0
	case float64:
		return sanitize(val)
	case float32:
		return sanitize(float64(val))
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0.0
		}
		return sanitize(f)
	case string:
		return ParseString(val)
	default:
		return 0.0
	}
}

// ParseString coerces a string to a float64, trimming whitespace first.
// Empty and unparseable strings yield 0.0.
func ParseString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return sanitize(f)
}

// sanitize maps NaN and infinities to 0.0 so sums stay finite.
func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	return f
}

// Round2 rounds to 2 decimal places (currency precision).
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Amount is a currency value with tolerant JSON decoding.
// Decoding never fails: null, absent, "", "  ", "abc" and any other
// malformed input all decode to 0. It marshals as a plain number.
type Amount float64

// UnmarshalJSON implements the tolerant decode.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}

	// JSON number
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*a = Amount(sanitize(f))
		return nil
	}

	// Quoted string ("3.5", "", "abc", ...)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(ParseString(s))
		return nil
	}

	// Anything else (bool, object, array) coerces to zero
	*a = 0
	return nil
}

// Float64 returns the underlying value.
func (a Amount) Float64() float64 {
	return float64(a)
}
