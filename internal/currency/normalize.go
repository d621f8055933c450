// Package currency is the single point of truth for price-text parsing and
// currency conversion. Every upstream price, however formatted, is reduced
// here to an integer count of minor units.
package currency

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrParse is returned when a price text cannot be reduced to a non-negative
// amount.
var ErrParse = errors.New("currency: price parse failure")

// Normalize converts heterogeneous price text ("$12.34", "12,34 ₴",
// "1 234.56", "12.34 USD") into minor units. The decimal separator is
// inferred by locale convention: a trailing comma or period group of exactly
// two digits is the fractional part; any other comma/period is a thousands
// separator and is dropped.
func Normalize(text string) (int64, error) {
	cleaned := stripNonNumeric(text)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	whole, frac := splitDecimal(cleaned)
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	var major int64
	for _, r := range whole {
		d := int64(r - '0')
		if major > (math.MaxInt64-d)/10 {
			return 0, fmt.Errorf("%w: overflow in %q", ErrParse, text)
		}
		major = major*10 + d
	}

	minor := major * 100
	switch len(frac) {
	case 0:
	case 1:
		minor += int64(frac[0]-'0') * 10
	case 2:
		minor += int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	default:
		// Sub-cent precision: round to the nearest minor unit.
		cents := int64(frac[0]-'0')*10 + int64(frac[1]-'0')
		if frac[2] >= '5' {
			cents++
		}
		minor += cents
	}

	return minor, nil
}

// FromMajor validates and converts an already-structured major-unit amount
// (e.g. a numeric JSON field) into minor units.
func FromMajor(major float64) (int64, error) {
	if major < 0 || math.IsNaN(major) || math.IsInf(major, 0) {
		return 0, fmt.Errorf("%w: major amount %v", ErrParse, major)
	}
	return int64(math.Round(major * 100)), nil
}

// FromMinor validates a minor-unit integer field taken directly from an
// upstream response.
func FromMinor(minor int64) (int64, error) {
	if minor < 0 {
		return 0, fmt.Errorf("%w: minor amount %d", ErrParse, minor)
	}
	return minor, nil
}

// Major renders a minor-unit amount in major units for JSON responses.
func Major(minor int64) float64 {
	return float64(minor) / 100
}

// stripNonNumeric drops every rune except digits, comma, and period.
// Currency symbols, spaces (thousands or suffix), and letter codes all
// disappear here.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitDecimal separates the cleaned numeric text into whole and fractional
// digit strings. The group after the last separator is fractional only when
// it is one or two digits long, or longer than three (sub-cent precision);
// an exactly-three-digit group is a thousands group ("1.234" is 1234).
func splitDecimal(cleaned string) (whole, frac string) {
	last := strings.LastIndexAny(cleaned, ",.")
	if last < 0 {
		return digitsOnly(cleaned), ""
	}

	tail := digitsOnly(cleaned[last+1:])
	head := digitsOnly(cleaned[:last])

	if len(tail) == 3 {
		// Thousands group, not cents.
		return head + tail, ""
	}
	return head, tail
}

// digitsOnly removes remaining separators from a digit group.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
