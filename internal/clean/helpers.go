package clean

import (
	"github.com/JonMunkholm/datacleaner/internal/table"
)

func policyError(stage, value, reason string) error {
	return &table.PolicyError{Stage: stage, Value: value, Reason: reason}
}

// resolveColumns returns the named columns in order, or every column accepted
// by def when names is empty. A nil def accepts all columns. An unknown name
// is a ColumnNotFoundError.
func resolveColumns(t *table.Table, names []string, def func(*table.Column) bool) ([]*table.Column, error) {
	if len(names) == 0 {
		var out []*table.Column
		for _, c := range t.Columns() {
			if def == nil || def(c) {
				out = append(out, c)
			}
		}
		return out, nil
	}

	out := make([]*table.Column, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		c, err := t.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// completeRows marks rows with no absent cell in any column.
func completeRows(t *table.Table) []bool {
	keep := make([]bool, t.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, c := range t.Columns() {
		for i, v := range c.Values {
			if v.IsNull() {
				keep[i] = false
			}
		}
	}
	return keep
}
