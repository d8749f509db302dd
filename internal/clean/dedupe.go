package clean

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DedupeOptions controls RemoveDuplicates.
type DedupeOptions struct {
	// Subset names the key columns. Empty compares whole rows.
	Subset []string

	// NullsEqual makes absent cells match each other. By default a row
	// with an absent key cell is never a duplicate.
	NullsEqual bool
}

// RemoveDuplicates keeps the first occurrence of each distinct key and
// preserves row order.
func RemoveDuplicates(t *table.Table, opts DedupeOptions) (*table.Table, error) {
	keys, err := resolveColumns(t, opts.Subset, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, t.Len())
	keep := make([]bool, t.Len())
	dropped := false

	var b strings.Builder
	for i := range keep {
		key, ok := rowKey(&b, keys, i, opts.NullsEqual)
		if !ok {
			keep[i] = true
			continue
		}
		if _, dup := seen[key]; dup {
			dropped = true
			continue
		}
		seen[key] = struct{}{}
		keep[i] = true
	}

	if !dropped {
		return t, nil
	}
	return t.Filter(keep), nil
}

// rowKey builds a comparison key for row i. ok is false when the row holds
// an absent key cell and absent cells are not comparable.
func rowKey(b *strings.Builder, keys []*table.Column, i int, nullsEqual bool) (string, bool) {
	b.Reset()
	for _, c := range keys {
		v := c.Values[i]
		if v.IsNull() && !nullsEqual {
			return "", false
		}
		k := v.Key()
		// length prefix keeps ("ab","c") and ("a","bc") apart
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String(), true
}
