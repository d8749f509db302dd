// Package table provides the in-memory tabular model passed between cleaning
// stages: ordered, uniquely named columns of tagged cell values aligned by row.
//
// Tables are treated as values. Operations that change shape or contents
// return a new *Table and leave the receiver untouched, so a stage can never
// observe another stage's intermediate state.
package table

import (
	"fmt"
	"strings"
)

// ColumnType is the semantic type a column currently carries.
type ColumnType uint8

const (
	TypeText ColumnType = iota
	TypeNumeric
	TypeDate
	TypeCurrency
)

func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumeric:
		return "numeric"
	case TypeDate:
		return "date"
	case TypeCurrency:
		return "currency"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this type are numbers.
func (t ColumnType) IsNumeric() bool {
	return t == TypeNumeric || t == TypeCurrency
}

// Column is a named, typed sequence of values.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value

	// Layout is the time layout a Date column's values are rendered in.
	// Empty means ISO 8601 (2006-01-02).
	Layout string
}

// NewColumn creates a column. The values slice is used as-is.
func NewColumn(name string, typ ColumnType, values []Value) *Column {
	return &Column{Name: name, Type: typ, Values: values}
}

// TextColumn builds a Text column from raw strings. Empty strings become absent.
func TextColumn(name string, raw ...string) *Column {
	values := make([]Value, len(raw))
	for i, s := range raw {
		if s != "" {
			values[i] = String(s)
		}
	}
	return &Column{Name: name, Type: TypeText, Values: values}
}

// NumericColumn builds a Numeric column.
func NumericColumn(name string, nums ...float64) *Column {
	values := make([]Value, len(nums))
	for i, f := range nums {
		values[i] = Number(f)
	}
	return &Column{Name: name, Type: TypeNumeric, Values: values}
}

// Clone returns a deep copy of c.
func (c *Column) Clone() *Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return &Column{Name: c.Name, Type: c.Type, Values: values, Layout: c.Layout}
}

// DateLayout returns the layout of a Date column, defaulting to ISO 8601.
func (c *Column) DateLayout() string {
	if c.Layout == "" {
		return ISODate
	}
	return c.Layout
}

// NullCount returns the number of absent cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. Names must be unique and all columns must
// have the same length. Columns are owned by the table after the call.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if i == 0 {
			t.rows = len(c.Values)
		} else if len(c.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), t.rows)
		}
		t.index[c.Name] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustNew is New that panics on error. Intended for tests and literals.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromRecords builds an all-Text table from a header and string rows.
// Empty fields become absent. Short rows are padded with absent cells;
// long rows are an error.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	cols := make([]*Column, len(header))
	for j, name := range header {
		cols[j] = &Column{Name: name, Type: TypeText, Values: make([]Value, len(rows))}
	}
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), len(header))
		}
		for j, s := range row {
			if s != "" {
				cols[j].Values[i] = String(s)
			}
		}
	}
	return New(cols...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. Callers must not modify them;
// use Clone or the With* methods to derive a changed table.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Lookup is Column returning a ColumnNotFoundError when the name is unknown.
func (t *Table) Lookup(name string) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, NotFound(name)
	}
	return c, nil
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Position returns the index of the named column, or -1.
func (t *Table) Position(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Row returns a copy of row i's cells in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Clone()
	}
	return &Table{columns: cols, index: cloneIndex(t.index), rows: t.rows}
}

// WithColumn returns a copy of t where the column with c.Name is replaced by c.
// Other columns are shared with t, which is safe because stages never mutate
// columns they did not create.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	i, ok := t.index[c.Name]
	if !ok {
		return nil, NotFound(c.Name)
	}
	if len(c.Values) != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), t.rows)
	}
	cols := make([]*Column, len(t.columns))
	copy(cols, t.columns)
	cols[i] = c
	return &Table{columns: cols, index: t.index, rows: t.rows}, nil
}

// Filter returns a new table containing only rows where keep[i] is true.
// Rows are removed from every column at once.
func (t *Table) Filter(keep []bool) *Table {
	n := 0
	for i := 0; i < t.rows && i < len(keep); i++ {
		if keep[i] {
			n++
		}
	}
	cols := make([]*Column, len(t.columns))
	for j, c := range t.columns {
		values := make([]Value, 0, n)
		for i, v := range c.Values {
			if i < len(keep) && keep[i] {
				values = append(values, v)
			}
		}
		cols[j] = &Column{Name: c.Name, Type: c.Type, Values: values, Layout: c.Layout}
	}
	return &Table{columns: cols, index: t.index, rows: n}
}

// Take returns a new table with the rows at the given indices, in that order.
func (t *Table) Take(indices []int) *Table {
	cols := make([]*Column, len(t.columns))
	for j, c := range t.columns {
		values := make([]Value, len(indices))
		for k, i := range indices {
			values[k] = c.Values[i]
		}
		cols[j] = &Column{Name: c.Name, Type: c.Type, Values: values, Layout: c.Layout}
	}
	return &Table{columns: cols, index: t.index, rows: len(indices)}
}

// Rename returns a copy of t with the given column names, in order.
func (t *Table) Rename(names []string) (*Table, error) {
	if len(names) != len(t.columns) {
		return nil, fmt.Errorf("rename: got %d names for %d columns", len(names), len(t.columns))
	}
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = &Column{Name: names[i], Type: c.Type, Values: c.Values, Layout: c.Layout}
	}
	return New(cols...)
}

// Equal reports whether two tables have the same names, types and cells.
// Absent cells compare equal to absent cells here.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for j, c := range t.columns {
		oc := o.columns[j]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for i, v := range c.Values {
			if !v.EqualNullable(oc.Values[i]) {
				return false
			}
		}
	}
	return true
}

// Records renders the table as a header plus string rows. Absent cells are "".
func (t *Table) Records() (header []string, rows [][]string) {
	header = t.Names()
	rows = make([][]string, t.rows)
	for i := 0; i < t.rows; i++ {
		row := make([]string, len(t.columns))
		for j, c := range t.columns {
			row[j] = c.Values[i].Text()
		}
		rows[i] = row
	}
	return header, rows
}

// String renders a compact debug view of the table.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table{%d rows x %d cols: %s}", t.rows, len(t.columns), strings.Join(t.Names(), ", "))
	return b.String()
}

func cloneIndex(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
