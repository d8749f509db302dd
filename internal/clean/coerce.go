package clean

import (
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DefaultNumericColumns are the columns NewValidator designates as numeric.
var DefaultNumericColumns = []string{"age"}

// Validator infers numeric columns, coerces designated numeric columns and
// optionally drops incomplete rows.
type Validator struct {
	// Columns limits inference to these columns. Empty means all.
	Columns []string

	// NumericColumns are coerced cell by cell; cells that do not parse
	// become absent. A designated column missing from the table is skipped.
	NumericColumns []string

	// KeepIncomplete disables the final drop of rows with any absent cell.
	KeepIncomplete bool
}

// NewValidator returns a Validator with the default designations.
func NewValidator() Validator {
	return Validator{NumericColumns: append([]string(nil), DefaultNumericColumns...)}
}

// Validate runs inference, coercion and the incomplete-row drop, in that order.
func (v Validator) Validate(t *table.Table) (*table.Table, error) {
	examined, err := resolveColumns(t, v.Columns, nil)
	if err != nil {
		return nil, err
	}

	out := t
	for _, c := range examined {
		if c.Type != table.TypeText {
			continue
		}
		col, ok := inferNumeric(c)
		if !ok {
			continue
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}

	for _, name := range v.NumericColumns {
		c, ok := out.Column(name)
		if !ok || c.Type.IsNumeric() {
			continue
		}
		if out, err = out.WithColumn(coerceNumeric(c)); err != nil {
			return nil, err
		}
	}

	if v.KeepIncomplete {
		return out, nil
	}
	return out.Filter(completeRows(out)), nil
}

// inferNumeric converts c to Numeric when every non-absent cell parses.
// A column with no values at all stays Text.
func inferNumeric(c *table.Column) (*table.Column, bool) {
	values := make([]table.Value, len(c.Values))
	seen := false
	for i, v := range c.Values {
		if v.IsNull() {
			continue
		}
		f, ok := ParseNumber(v.Text())
		if !ok {
			return nil, false
		}
		values[i] = table.Number(f)
		seen = true
	}
	if !seen {
		return nil, false
	}
	return table.NewColumn(c.Name, table.TypeNumeric, values), true
}

// coerceNumeric converts every cell of c to a number, blanking failures.
func coerceNumeric(c *table.Column) *table.Column {
	values := make([]table.Value, len(c.Values))
	for i, v := range c.Values {
		if v.IsNull() {
			continue
		}
		if f, ok := ParseNumber(v.Text()); ok {
			values[i] = table.Number(f)
		}
	}
	return table.NewColumn(c.Name, table.TypeNumeric, values)
}
