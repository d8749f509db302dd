package clean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// CaseOp names a case transformation.
type CaseOp string

const (
	CaseLower      CaseOp = "lower"
	CaseUpper      CaseOp = "upper"
	CaseTitle      CaseOp = "title"
	CaseCapitalize CaseOp = "capitalize"
)

// ParseCaseOp validates a case operation name.
func ParseCaseOp(s string) (CaseOp, error) {
	switch op := CaseOp(strings.ToLower(strings.TrimSpace(s))); op {
	case CaseLower, CaseUpper, CaseTitle, CaseCapitalize:
		return op, nil
	default:
		return "", policyError("change_case", s, "must be one of lower, upper, title, capitalize")
	}
}

func (op CaseOp) apply() (func(string) string, error) {
	switch op {
	case CaseLower:
		return strings.ToLower, nil
	case CaseUpper:
		return strings.ToUpper, nil
	case CaseTitle:
		// cases.Caser is stateful, so each call gets a fresh one.
		return func(s string) string { return cases.Title(language.Und).String(s) }, nil
	case CaseCapitalize:
		return capitalize, nil
	default:
		return nil, policyError("change_case", string(op), "must be one of lower, upper, title, capitalize")
	}
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Trim removes leading and trailing whitespace from String cells in the
// given columns, or in every column when none are named. Numbers, dates and
// absent cells pass through unchanged.
func Trim(t *table.Table, columns ...string) (*table.Table, error) {
	targets, err := resolveColumns(t, columns, nil)
	if err != nil {
		return nil, err
	}

	out := t
	for _, c := range targets {
		changed := false
		values := make([]table.Value, len(c.Values))
		for i, v := range c.Values {
			if s, ok := v.Str(); ok {
				trimmed := strings.TrimSpace(s)
				if trimmed != s {
					changed = true
				}
				values[i] = table.String(trimmed)
				continue
			}
			values[i] = v
		}
		if !changed {
			continue
		}
		if out, err = out.WithColumn(table.NewColumn(c.Name, c.Type, values)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ChangeCase applies op to the given columns, or to every Text column when
// none are named. Each non-absent cell is rendered as text before the
// transform, so a named numeric or date column comes back as Text.
func ChangeCase(t *table.Table, op CaseOp, columns ...string) (*table.Table, error) {
	fn, err := op.apply()
	if err != nil {
		return nil, err
	}

	targets, err := resolveColumns(t, columns, func(c *table.Column) bool {
		return c.Type == table.TypeText
	})
	if err != nil {
		return nil, err
	}

	out := t
	for _, c := range targets {
		col := mapText(c, fn)
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RegexReplace replaces every non-overlapping match of pattern in the named
// column with replacement. The replacement may reference groups as $1 or
// ${name}. Non-text columns are rendered as text first and become Text.
func RegexReplace(t *table.Table, column, pattern, replacement string) (*table.Table, error) {
	c, err := t.Lookup(column)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, policyError("regex_replace", pattern, err.Error())
	}

	col := mapText(c, func(s string) string {
		return re.ReplaceAllString(s, replacement)
	})
	return t.WithColumn(col)
}

// mapText returns a Text copy of c with fn applied to every non-absent cell.
func mapText(c *table.Column, fn func(string) string) *table.Column {
	values := make([]table.Value, len(c.Values))
	for i, v := range c.Values {
		if v.IsNull() {
			continue
		}
		values[i] = table.String(fn(v.Text()))
	}
	return table.NewColumn(c.Name, table.TypeText, values)
}
