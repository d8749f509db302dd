package clean

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// spikeColumn returns 19 tens followed by a single 1000.
func spikeColumn(name string) *table.Column {
	nums := make([]float64, 20)
	for i := range nums {
		nums[i] = 10
	}
	nums[19] = 1000
	return table.NumericColumn(name, nums...)
}

func TestHandleOutliers_ConstantColumn(t *testing.T) {
	tbl := table.MustNew(table.NumericColumn("v", 5, 5, 5, 5))

	for _, method := range []string{DetectZScore, DetectIQR} {
		found, err := DetectOutliers(tbl, OutlierOptions{Method: method})
		require.NoError(t, err)
		assert.Empty(t, found, "constant column has no outliers (%s)", method)

		out, err := HandleOutliers(tbl, OutlierOptions{Method: method})
		require.NoError(t, err)
		assert.Equal(t, 4, out.Len())
	}
}

func TestHandleOutliers_ZScoreRemove(t *testing.T) {
	tbl := table.MustNew(spikeColumn("v"), table.TextColumn("label", make([]string, 20)...))

	found, err := DetectOutliers(tbl, OutlierOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string][]int{"v": {19}}, found)

	out, err := HandleOutliers(tbl, OutlierOptions{})
	require.NoError(t, err)
	assert.Equal(t, 19, out.Len())
	assert.Equal(t, 20, tbl.Len(), "input must not be mutated")
}

func TestDetectOutliers_ZeroThresholdUsesDefault(t *testing.T) {
	tbl := table.MustNew(spikeColumn("v"))

	zero, err := DetectOutliers(tbl, OutlierOptions{Threshold: 0})
	require.NoError(t, err)
	explicit, err := DetectOutliers(tbl, OutlierOptions{Threshold: DefaultZScoreThreshold})
	require.NoError(t, err)

	assert.Equal(t, explicit, zero)
	assert.Equal(t, map[string][]int{"v": {19}}, zero, "a literal zero cutoff would flag every row")
}

func TestHandleOutliers_ZScoreCap(t *testing.T) {
	tbl := table.MustNew(spikeColumn("v"))

	out, err := HandleOutliers(tbl, OutlierOptions{Policy: OutlierCap})
	require.NoError(t, err)
	require.Equal(t, 20, out.Len())

	c, _ := out.Column("v")
	got, _ := c.Values[19].Num()
	assert.InDelta(t, 59.5, got, 1e-9, "capped value is the column mean")
}

func TestHandleOutliers_IQR(t *testing.T) {
	tbl := table.MustNew(table.NumericColumn("v", 1, 2, 3, 4, 5, 6, 7, 8, 100))

	found, err := DetectOutliers(tbl, OutlierOptions{Method: DetectIQR})
	require.NoError(t, err)
	assert.Equal(t, []int{8}, found["v"])

	out, err := HandleOutliers(tbl, OutlierOptions{Method: DetectIQR, Policy: OutlierCap})
	require.NoError(t, err)
	c, _ := out.Column("v")
	got, _ := c.Values[8].Num()
	// Q1=3, Q3=7, IQR=4: upper fence 7 + 1.5*4
	assert.InDelta(t, 13.0, got, 1e-9)
}

func TestHandleOutliers_Flag(t *testing.T) {
	tbl := table.MustNew(spikeColumn("v"))
	out, err := HandleOutliers(tbl, OutlierOptions{Policy: OutlierFlag})
	require.NoError(t, err)
	assert.True(t, out.Equal(tbl))
}

func TestHandleOutliers_AbsentCellsIgnored(t *testing.T) {
	col := spikeColumn("v")
	col.Values = append(col.Values, table.Null())
	tbl := table.MustNew(col)

	found, err := DetectOutliers(tbl, OutlierOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{19}, found["v"])
}

func TestHandleOutliers_NoNumericColumns(t *testing.T) {
	tbl := table.MustNew(table.TextColumn("name", "a", "b"))
	out, err := HandleOutliers(tbl, OutlierOptions{})
	require.NoError(t, err)
	assert.Same(t, tbl, out)
}

func TestHandleOutliers_Errors(t *testing.T) {
	tbl := table.MustNew(table.TextColumn("name", "a"), table.NumericColumn("v", 1))

	tests := []struct {
		name string
		opts OutlierOptions
		want error
	}{
		{"unknown method", OutlierOptions{Method: "magic"}, table.ErrInvalidPolicy},
		{"unknown policy", OutlierOptions{Policy: "ignore"}, table.ErrInvalidPolicy},
		{"negative threshold", OutlierOptions{Threshold: -1}, table.ErrInvalidPolicy},
		{"missing column", OutlierOptions{Columns: []string{"nope"}}, table.ErrColumnNotFound},
		{"text column", OutlierOptions{Columns: []string{"name"}}, table.ErrTypeCoercion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HandleOutliers(tbl, tt.opts)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 2.5, Quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 3.25, Quantile(sorted, 0.75), 1e-9)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestSampleStdDev(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.138089935, SampleStdDev(xs, Mean(xs)), 1e-9)
	assert.Zero(t, SampleStdDev([]float64{3}, 3))
}
