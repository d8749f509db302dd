package clean

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// NormalizeName trims s, lowercases it, and replaces each run of interior
// whitespace with a single underscore: " Full  Name " -> "full_name".
func NormalizeName(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(s)), unicode.IsSpace)
	return strings.Join(fields, "_")
}

// NormalizeColumnNames renames every column with NormalizeName.
//
// When two columns normalize to the same name, the later one gets the first
// free numeric suffix ("name", "name_2", "name_3", ...). No column is ever
// dropped. Applying the stage twice yields the same names as applying it once.
func NormalizeColumnNames(t *table.Table) (*table.Table, error) {
	names := t.Names()
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))

	for i, name := range names {
		base := NormalizeName(name)
		candidate := base
		for n := 2; used[candidate]; n++ {
			candidate = base + "_" + strconv.Itoa(n)
		}
		used[candidate] = true
		out[i] = candidate
	}

	return t.Rename(out)
}
