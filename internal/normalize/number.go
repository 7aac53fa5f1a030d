package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Round4 rounds to four decimal places. Applied after every ledger addition
// so float drift never accumulates.
func Round4(v float64) float64 {
	return RoundTo(v, 4)
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// ParseQuantity converts a spreadsheet or extractor value into a quantity.
// Strings get their first comma turned into a decimal point and everything
// outside [-0-9.] stripped. Anything unparseable yields 0.
func ParseQuantity(val interface{}) float64 {
	switch v := val.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		return 0
	case string:
		return parseNumericString(v)
	default:
		return 0
	}
}

// ParseAmount reads a monetary value. Strings may carry thousands
// separators in either convention ("1.234,56", "1,234.56", "1.234.567");
// the last separator of mixed input is the decimal one. Unlike ParseQuantity
// the result is not rounded.
func ParseAmount(val interface{}) float64 {
	if s, ok := val.(string); ok {
		f, ok := parseFloatLoose(dropThousands(s))
		if !ok {
			return 0
		}
		return f
	}
	return ParseQuantity(val)
}

// dropThousands removes grouping separators so at most one decimal
// separator is left.
func dropThousands(s string) string {
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		return strings.ReplaceAll(s, ".", "")
	case comma >= 0 && dot >= 0:
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	case strings.Count(s, ",") > 1:
		return strings.ReplaceAll(s, ",", "")
	}
	return s
}

func parseNumericString(s string) float64 {
	f, ok := parseFloatLoose(s)
	if !ok {
		return 0
	}
	return Round4(f)
}

func parseFloatLoose(s string) (float64, bool) {
	s = strings.Replace(s, ",", ".", 1)

	var b strings.Builder
	for _, r := range s {
		if r == '-' || r == '.' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	cleaned := leadingFloat(b.String())
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// leadingFloat returns the longest prefix of s that reads as a decimal
// number, the way a lenient float parser would (e.g. "12.5.3" -> "12.5").
func leadingFloat(s string) string {
	end := 0
	seenDigit, seenDot := false, false
	for i, r := range s {
		switch {
		case r == '-' && i == 0:
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && !seenDot:
			seenDot = true
		default:
			if seenDigit {
				return strings.TrimSuffix(s[:end], ".")
			}
			return ""
		}
		end = i + 1
	}
	if !seenDigit {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
