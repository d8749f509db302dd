package clean

import (
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DefaultDatePattern is the output pattern used when none is given.
const DefaultDatePattern = "YYYY-MM-DD"

// StandardizeDate re-renders every parseable date in column using pattern
// (DefaultDatePattern when empty). Cells that do not parse become absent.
// The column type becomes Date; its values are the formatted strings and its
// Layout records the pattern.
func StandardizeDate(t *table.Table, column, pattern string) (*table.Table, error) {
	if pattern == "" {
		pattern = DefaultDatePattern
	}
	layout, err := DateLayout(pattern)
	if err != nil {
		return nil, err
	}

	c, err := t.Lookup(column)
	if err != nil {
		return nil, err
	}

	values := make([]table.Value, len(c.Values))
	for i, v := range c.Values {
		if v.IsNull() {
			continue
		}
		if tm, ok := v.TimeValue(); ok {
			values[i] = table.String(tm.Format(layout))
			continue
		}
		if tm, ok := ParseDate(v.Text()); ok {
			values[i] = table.String(tm.Format(layout))
		}
	}
	col := table.NewColumn(c.Name, table.TypeDate, values)
	col.Layout = layout
	return t.WithColumn(col)
}

// StandardizeCurrency parses every cell of column as a currency amount.
// Unlike the date stage, an amount that does not parse is an error: a
// *table.CoercionError naming the column, row and raw value.
func StandardizeCurrency(t *table.Table, column string) (*table.Table, error) {
	c, err := t.Lookup(column)
	if err != nil {
		return nil, err
	}

	values := make([]table.Value, len(c.Values))
	for i, v := range c.Values {
		if v.IsNull() {
			continue
		}
		if f, ok := v.Num(); ok {
			values[i] = table.Number(f)
			continue
		}
		f, ok := ParseCurrency(v.Text())
		if !ok {
			return nil, &table.CoercionError{
				Column: c.Name,
				Row:    i,
				Value:  v.Text(),
				Target: table.TypeCurrency.String(),
			}
		}
		values[i] = table.Number(f)
	}
	return t.WithColumn(table.NewColumn(c.Name, table.TypeCurrency, values))
}
