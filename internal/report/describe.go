// Package report computes read-only summaries of a table and renders them as
// plain text or HTML.
package report

import (
	"sort"

	"github.com/JonMunkholm/datacleaner/internal/clean"
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// NumericStats holds descriptive statistics for a numeric column.
type NumericStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Count   int           `json:"count"` // non-absent cells
	Nulls   int           `json:"nulls"`
	Unique  int           `json:"unique"`
	Top     string        `json:"top,omitempty"` // most frequent value, text columns only
	TopFreq int           `json:"top_freq,omitempty"`
	Numeric *NumericStats `json:"numeric,omitempty"`
}

// Summary describes a whole table.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

// Describe summarizes t without modifying it.
func Describe(t *table.Table) Summary {
	s := Summary{Rows: t.Len(), Columns: make([]ColumnSummary, 0, t.Width())}
	for _, c := range t.Columns() {
		s.Columns = append(s.Columns, describeColumn(c))
	}
	return s
}

func describeColumn(c *table.Column) ColumnSummary {
	cs := ColumnSummary{Name: c.Name, Type: c.Type.String()}

	freq := make(map[string]int)
	var nums []float64
	for _, v := range c.Values {
		if v.IsNull() {
			cs.Nulls++
			continue
		}
		cs.Count++
		freq[v.Key()]++
		if n, ok := v.Num(); ok {
			nums = append(nums, n)
		}
	}
	cs.Unique = len(freq)

	if c.Type.IsNumeric() && len(nums) > 0 {
		sort.Float64s(nums)
		mean := clean.Mean(nums)
		cs.Numeric = &NumericStats{
			Mean:   mean,
			Std:    clean.SampleStdDev(nums, mean),
			Min:    nums[0],
			Q1:     clean.Quantile(nums, 0.25),
			Median: clean.Quantile(nums, 0.5),
			Q3:     clean.Quantile(nums, 0.75),
			Max:    nums[len(nums)-1],
		}
		return cs
	}

	// first value in row order wins ties
	for _, v := range c.Values {
		if v.IsNull() {
			continue
		}
		if n := freq[v.Key()]; n > cs.TopFreq {
			cs.Top, cs.TopFreq = v.Text(), n
		}
	}
	return cs
}
