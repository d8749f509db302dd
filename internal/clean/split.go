package clean

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DefaultSplitDelimiter is used when SplitColumn gets an empty pattern.
const DefaultSplitDelimiter = ","

// SplitColumn splits every value of column on the delimiter regex and
// replaces the column with one Text column per part, in place.
//
// The new columns take newNames when it has exactly as many entries as the
// widest row has parts; otherwise they are named "<column>_part_1", ...
// Parts are trimmed. Rows with fewer parts, empty parts and absent source
// cells yield absent cells. A column with no values is left as it is.
func SplitColumn(t *table.Table, column, delimiter string, newNames []string) (*table.Table, error) {
	if delimiter == "" {
		delimiter = DefaultSplitDelimiter
	}
	re, err := regexp.Compile(delimiter)
	if err != nil {
		return nil, policyError("split", delimiter, err.Error())
	}

	src, err := t.Lookup(column)
	if err != nil {
		return nil, err
	}

	parts := make([][]string, len(src.Values))
	width := 0
	for i, v := range src.Values {
		if v.IsNull() {
			continue
		}
		parts[i] = re.Split(v.Text(), -1)
		if len(parts[i]) > width {
			width = len(parts[i])
		}
	}

	if width == 0 {
		return t, nil
	}

	names := newNames
	if len(names) != width {
		names = make([]string, width)
		for n := range names {
			names[n] = column + "_part_" + strconv.Itoa(n+1)
		}
	}

	split := make([]*table.Column, width)
	for n := range split {
		values := make([]table.Value, len(src.Values))
		for i, row := range parts {
			if n >= len(row) {
				continue
			}
			if s := strings.TrimSpace(row[n]); s != "" {
				values[i] = table.String(s)
			}
		}
		split[n] = table.NewColumn(names[n], table.TypeText, values)
	}

	cols := make([]*table.Column, 0, t.Width()-1+width)
	for _, c := range t.Columns() {
		if c.Name == src.Name {
			cols = append(cols, split...)
			continue
		}
		cols = append(cols, c)
	}
	return table.New(cols...)
}
