package clean

import (
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// Missing-value methods.
const (
	MissingDrop = "drop"
	MissingFill = "fill"
)

// MissingPolicy selects how HandleMissing treats absent cells.
type MissingPolicy struct {
	// Method is MissingDrop or MissingFill. Empty means MissingDrop.
	Method string

	// Fill is required by MissingFill. It is converted to each column's type
	// where possible.
	Fill *table.Value
}

// HandleMissing drops every row with an absent cell, or fills absent cells
// with the policy's value. A fill that converts to the column's type keeps
// the type: numbers in Numeric and Currency columns, dates rendered in a Date
// column's layout. Otherwise the column is rendered as text and becomes Text,
// so a fill never fails and leaves no absent cells.
func HandleMissing(t *table.Table, p MissingPolicy) (*table.Table, error) {
	method := strings.ToLower(strings.TrimSpace(p.Method))
	switch method {
	case "", MissingDrop:
		return t.Filter(completeRows(t)), nil
	case MissingFill:
	default:
		return nil, policyError("handle_missing", p.Method, "method must be drop or fill")
	}

	if p.Fill == nil || p.Fill.IsNull() {
		return nil, policyError("handle_missing", p.Method, "fill requires a value")
	}

	out := t
	for _, c := range t.Columns() {
		if c.NullCount() == 0 {
			continue
		}
		var filled *table.Column
		if v, ok := coerceFill(c, *p.Fill); ok {
			filled = c.Clone()
			for i, cell := range filled.Values {
				if cell.IsNull() {
					filled.Values[i] = v
				}
			}
		} else {
			fill := p.Fill.Text()
			filled = mapText(c, func(s string) string { return s })
			for i, cell := range filled.Values {
				if cell.IsNull() {
					filled.Values[i] = table.String(fill)
				}
			}
		}
		var err error
		if out, err = out.WithColumn(filled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// coerceFill converts v to a value that fits column c's type.
func coerceFill(c *table.Column, v table.Value) (table.Value, bool) {
	switch c.Type {
	case table.TypeNumeric:
		if f, ok := v.Num(); ok {
			return table.Number(f), true
		}
		if f, ok := ParseNumber(v.Text()); ok {
			return table.Number(f), true
		}

	case table.TypeCurrency:
		if f, ok := v.Num(); ok {
			return table.Number(f), true
		}
		if f, ok := ParseCurrency(v.Text()); ok {
			return table.Number(f), true
		}

	case table.TypeDate:
		tm, ok := v.TimeValue()
		if !ok {
			tm, ok = ParseDate(v.Text())
		}
		if ok {
			return table.String(tm.Format(c.DateLayout())), true
		}

	default:
		return table.String(v.Text()), true
	}
	return table.Value{}, false
}
