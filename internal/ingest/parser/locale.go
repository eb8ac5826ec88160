package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// CleanText canonicalizes a raw cell or line: embedded newlines become single
// spaces and surrounding whitespace is stripped. Empty input stays empty.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// IsDateLike reports whether the cleaned string has the exact dd/mm/yyyy shape.
func IsDateLike(s string) bool {
	return dateRe.MatchString(CleanText(s))
}

// ParseDate parses a strict dd/mm/yyyy date. Anything else, including
// calendar-invalid values, returns ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = CleanText(s)
	if !dateRe.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseAmount parses a Brazilian-formatted amount such as "1.234,56" into an
// exact decimal. Empty or unparseable input returns ok=false.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = CleanText(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// datePtr converts a parsed date into the optional form used on records.
func datePtr(s string) *time.Time {
	if t, ok := ParseDate(s); ok {
		return &t
	}
	return nil
}

// amountPtr converts a parsed amount into the optional form used on records.
func amountPtr(s string) *decimal.Decimal {
	if d, ok := ParseAmount(s); ok {
		return &d
	}
	return nil
}
