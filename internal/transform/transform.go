// Package transform provides table reshaping operations that sit outside the
// cleaning pipeline: sorting, row filtering, column selection and renaming,
// and head/tail slicing. Like the cleaning stages, every operation returns a
// new table and leaves its input untouched.
package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/clean"
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// FilterOperator represents a comparison operator for row filters.
type FilterOperator string

const (
	OpContains   FilterOperator = "contains"
	OpEquals     FilterOperator = "eq"
	OpNotEquals  FilterOperator = "ne"
	OpStartsWith FilterOperator = "starts"
	OpEndsWith   FilterOperator = "ends"
	OpGreaterEq  FilterOperator = "gte"
	OpLessEq     FilterOperator = "lte"
	OpGreater    FilterOperator = "gt"
	OpLess       FilterOperator = "lt"
	OpIn         FilterOperator = "in"
)

var validOperators = map[FilterOperator]bool{
	OpContains: true, OpEquals: true, OpNotEquals: true, OpStartsWith: true, OpEndsWith: true,
	OpGreaterEq: true, OpLessEq: true, OpGreater: true, OpLess: true, OpIn: true,
}

// Filter is a single condition on a column. Filters passed together are
// combined with AND.
type Filter struct {
	Column   string
	Operator FilterOperator
	Value    string // comma-separated for OpIn
}

// ParseFilter parses "column=op:value", e.g. "age=gte:30" or "city=in:Oslo,Rome".
func ParseFilter(s string) (Filter, error) {
	col, rest, ok := strings.Cut(s, "=")
	if !ok {
		return Filter{}, &table.PolicyError{Stage: "filter", Value: s, Reason: "expected column=op:value"}
	}
	op, val, ok := strings.Cut(rest, ":")
	if !ok {
		return Filter{}, &table.PolicyError{Stage: "filter", Value: s, Reason: "expected column=op:value"}
	}
	f := Filter{Column: strings.TrimSpace(col), Operator: FilterOperator(strings.ToLower(op)), Value: val}
	if !validOperators[f.Operator] {
		return Filter{}, &table.PolicyError{Stage: "filter", Value: op, Reason: "unknown operator"}
	}
	return f, nil
}

// match reports whether v satisfies f. Absent cells never match.
// Ordering operators compare numerically when both sides are numbers and
// fall back to string comparison otherwise. Text matching operators are
// case-insensitive.
func (f Filter) match(v table.Value) bool {
	if v.IsNull() {
		return false
	}
	text := v.Text()

	switch f.Operator {
	case OpContains:
		return strings.Contains(strings.ToLower(text), strings.ToLower(f.Value))
	case OpStartsWith:
		return strings.HasPrefix(strings.ToLower(text), strings.ToLower(f.Value))
	case OpEndsWith:
		return strings.HasSuffix(strings.ToLower(text), strings.ToLower(f.Value))
	case OpEquals:
		return compare(v, f.Value) == 0
	case OpNotEquals:
		return compare(v, f.Value) != 0
	case OpGreaterEq:
		return compare(v, f.Value) >= 0
	case OpLessEq:
		return compare(v, f.Value) <= 0
	case OpGreater:
		return compare(v, f.Value) > 0
	case OpLess:
		return compare(v, f.Value) < 0
	case OpIn:
		for _, want := range strings.Split(f.Value, ",") {
			if compare(v, strings.TrimSpace(want)) == 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func compare(v table.Value, operand string) int {
	if n, ok := v.Num(); ok {
		if o, ok := clean.ParseNumber(operand); ok {
			switch {
			case n < o:
				return -1
			case n > o:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(v.Text(), operand)
}

// Where keeps the rows that satisfy every filter.
func Where(t *table.Table, filters ...Filter) (*table.Table, error) {
	cols := make([]*table.Column, len(filters))
	for i, f := range filters {
		if !validOperators[f.Operator] {
			return nil, &table.PolicyError{Stage: "filter", Value: string(f.Operator), Reason: "unknown operator"}
		}
		c, err := t.Lookup(f.Column)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	keep := make([]bool, t.Len())
	for i := range keep {
		keep[i] = true
		for k, f := range filters {
			if !f.match(cols[k].Values[i]) {
				keep[i] = false
				break
			}
		}
	}
	return t.Filter(keep), nil
}

// SortSpec represents a single sort column and direction.
type SortSpec struct {
	Column string
	Dir    string // "asc" or "desc"
}

// ParseSort parses "column" or "column:desc".
func ParseSort(s string) SortSpec {
	col, dir, _ := strings.Cut(s, ":")
	dir = strings.ToLower(strings.TrimSpace(dir))
	if dir != "desc" {
		dir = "asc"
	}
	return SortSpec{Column: strings.TrimSpace(col), Dir: dir}
}

// Sort orders rows by the given keys. The sort is stable, absent cells sort
// last regardless of direction, and numbers sort before text.
func Sort(t *table.Table, specs ...SortSpec) (*table.Table, error) {
	if len(specs) == 0 {
		return t, nil
	}
	keys := make([]*table.Column, len(specs))
	for i, s := range specs {
		c, err := t.Lookup(s.Column)
		if err != nil {
			return nil, err
		}
		keys[i] = c
	}

	idx := make([]int, t.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for k, c := range keys {
			va, vb := c.Values[idx[a]], c.Values[idx[b]]
			if va.IsNull() || vb.IsNull() {
				if va.IsNull() == vb.IsNull() {
					continue
				}
				return vb.IsNull()
			}
			cmp := compareValues(va, vb)
			if cmp == 0 {
				continue
			}
			if strings.EqualFold(specs[k].Dir, "desc") {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return t.Take(idx), nil
}

func compareValues(a, b table.Value) int {
	an, aok := a.Num()
	bn, bok := b.Num()
	switch {
	case aok && bok:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	if at, ok := a.TimeValue(); ok {
		if bt, ok := b.TimeValue(); ok {
			return at.Compare(bt)
		}
	}
	return strings.Compare(a.Text(), b.Text())
}

// Select keeps only the named columns, in the order given.
func Select(t *table.Table, names ...string) (*table.Table, error) {
	cols := make([]*table.Column, len(names))
	for i, n := range names {
		c, err := t.Lookup(n)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return table.New(cols...)
}

// Drop removes the named columns.
func Drop(t *table.Table, names ...string) (*table.Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.Has(n) {
			return nil, table.NotFound(n)
		}
		drop[n] = true
	}
	var keep []*table.Column
	for _, c := range t.Columns() {
		if !drop[c.Name] {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		return nil, fmt.Errorf("drop: cannot remove every column")
	}
	return table.New(keep...)
}

// Rename renames columns by old -> new mapping. Unmapped columns keep their names.
func Rename(t *table.Table, mapping map[string]string) (*table.Table, error) {
	names := t.Names()
	for old := range mapping {
		if !t.Has(old) {
			return nil, table.NotFound(old)
		}
	}
	for i, n := range names {
		if nn, ok := mapping[n]; ok {
			names[i] = nn
		}
	}
	return t.Rename(names)
}

// AddColumn appends c to the table. Its length must match the table's.
func AddColumn(t *table.Table, c *table.Column) (*table.Table, error) {
	if t.Has(c.Name) {
		return nil, fmt.Errorf("add column: %q already exists", c.Name)
	}
	return table.New(append(t.Columns(), c)...)
}

// Head returns the first n rows.
func Head(t *table.Table, n int) *table.Table {
	return t.Take(rowRange(0, min(max(n, 0), t.Len())))
}

// Tail returns the last n rows.
func Tail(t *table.Table, n int) *table.Table {
	n = min(max(n, 0), t.Len())
	return t.Take(rowRange(t.Len()-n, t.Len()))
}

func rowRange(from, to int) []int {
	idx := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return idx
}
