package clean

// convert.go provides the value parsers the stages share.
//
// These functions handle the messy reality of analyst-provided extracts:
//   - Multiple date formats (US, ISO, dotted, month names, compact)
//   - Currency symbols and thousand separators in numbers
//   - Accounting negatives written as (123.45)
//
// Parsers report failure with ok=false; deciding whether a failure is an
// error or an absent cell is each stage's policy, not the parser's.

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// numericRegex validates that a string is a plain decimal number after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// currencySymbols are stripped before parsing a currency amount.
var currencySymbols = []string{"$", "€", "£", "¥", ","}

// Date layouts split by year format for proper 2-digit year handling.
// Month-first is tried before day-first for ambiguous numeric dates.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02", "2006-1-2", "2006/1/2",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "02-Jan-2006", "Mon, Jan 2, 2006",
		"20060102",
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		"2006/01/02 15:04:05", "1/2/2006 15:04:05", "1/2/2006 15:04",
	}
)

// ParseNumber parses a plain number such as "25", "-3.5" or "1e3".
// Surrounding whitespace is ignored. Currency symbols and thousands
// separators are NOT accepted here; see ParseCurrency.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseCurrency parses an amount that may carry currency symbols,
// thousands separators, and accounting parentheses for negatives.
//
//	"$5,000"    -> 5000
//	"8,000$"    -> 8000
//	"($1,234.5)" -> -1234.5
func ParseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, " ", "")

	if isNegative {
		s = "-" + strings.TrimPrefix(s, "-")
	}

	return ParseNumber(s)
}

// ParseDate parses s against the known layouts, 4-digit years first.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// dateTokens maps user-facing pattern tokens to Go layout fragments.
// Longer tokens come first so "YYYY" wins over "YY".
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"%Y", "2006"},
	{"%y", "06"},
	{"%m", "01"},
	{"%d", "02"},
	{"%H", "15"},
	{"%M", "04"},
	{"%S", "05"},
	{"%b", "Jan"},
	{"%B", "January"},
}

// DateLayout translates a pattern such as "YYYY-MM-DD" or "%d/%m/%Y" into a
// Go time layout. It returns a PolicyError if the pattern has no date token
// or contains literal digits, which Go layouts would misread.
func DateLayout(pattern string) (string, error) {
	var b strings.Builder
	found := false

	for i := 0; i < len(pattern); {
		matched := false
		for _, dt := range dateTokens {
			if strings.HasPrefix(pattern[i:], dt.token) {
				b.WriteString(dt.layout)
				i += len(dt.token)
				found = true
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		c := pattern[i]
		if c >= '0' && c <= '9' {
			return "", policyError("standardize_date", pattern, "literal digits are not allowed in a date pattern")
		}
		b.WriteByte(c)
		i++
	}

	if !found {
		return "", policyError("standardize_date", pattern, "pattern has no date tokens")
	}
	return b.String(), nil
}
