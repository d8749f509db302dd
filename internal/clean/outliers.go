package clean

import (
	"math"
	"sort"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// Outlier detectors.
const (
	DetectZScore = "zscore"
	DetectIQR    = "iqr"
)

// Outlier policies.
const (
	OutlierRemove = "remove"
	OutlierCap    = "cap"
	OutlierFlag   = "flag"
)

const (
	DefaultZScoreThreshold = 3.0
	DefaultIQRMultiplier   = 1.5
)

// OutlierOptions configures outlier detection and handling.
type OutlierOptions struct {
	Method    string   // DetectZScore (default) or DetectIQR
	Policy    string   // OutlierRemove (default), OutlierCap or OutlierFlag
	Columns   []string // default: every numeric or currency column

	// Threshold is the z-score cutoff or the IQR multiplier. Zero is not a
	// usable cutoff and selects the method default (DefaultZScoreThreshold or
	// DefaultIQRMultiplier). Negative values are rejected.
	Threshold float64
}

type outlierConfig struct {
	method    string
	policy    string
	threshold float64
}

func (o OutlierOptions) config() (outlierConfig, error) {
	cfg := outlierConfig{
		method: strings.ToLower(strings.TrimSpace(o.Method)),
		policy: strings.ToLower(strings.TrimSpace(o.Policy)),
	}
	if cfg.method == "" {
		cfg.method = DetectZScore
	}
	if cfg.policy == "" {
		cfg.policy = OutlierRemove
	}

	switch cfg.method {
	case DetectZScore:
		cfg.threshold = DefaultZScoreThreshold
	case DetectIQR:
		cfg.threshold = DefaultIQRMultiplier
	default:
		return cfg, policyError("handle_outliers", o.Method, "method must be zscore or iqr")
	}

	switch cfg.policy {
	case OutlierRemove, OutlierCap, OutlierFlag:
	default:
		return cfg, policyError("handle_outliers", o.Policy, "policy must be remove, cap or flag")
	}

	if o.Threshold < 0 || math.IsNaN(o.Threshold) || math.IsInf(o.Threshold, 0) {
		return cfg, policyError("handle_outliers", table.FormatNumber(o.Threshold), "threshold must be a non-negative number")
	}
	if o.Threshold > 0 {
		cfg.threshold = o.Threshold
	}
	return cfg, nil
}

// columnStats holds what both detectors need from one column.
type columnStats struct {
	mean, std    float64
	lower, upper float64 // IQR fences
	n            int
}

func (s columnStats) isOutlier(method string, threshold, x float64) bool {
	if method == DetectIQR {
		return x < s.lower || x > s.upper
	}
	if s.n < 2 || s.std == 0 {
		return false
	}
	return math.Abs(x-s.mean)/s.std > threshold
}

func (s columnStats) capped(method string, x float64) float64 {
	if method == DetectIQR {
		return math.Min(math.Max(x, s.lower), s.upper)
	}
	return s.mean
}

func computeStats(c *table.Column, method string, threshold float64) columnStats {
	nums := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Num(); ok {
			nums = append(nums, f)
		}
	}

	s := columnStats{n: len(nums)}
	if s.n == 0 {
		// no values means no outliers
		s.lower, s.upper = math.Inf(-1), math.Inf(1)
		return s
	}

	s.mean = Mean(nums)
	s.std = SampleStdDev(nums, s.mean)

	if method == DetectIQR {
		sorted := append([]float64(nil), nums...)
		sort.Float64s(sorted)
		q1 := Quantile(sorted, 0.25)
		q3 := Quantile(sorted, 0.75)
		iqr := q3 - q1
		s.lower = q1 - threshold*iqr
		s.upper = q3 + threshold*iqr
	}
	return s
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev returns the n-1 standard deviation of xs around mean.
// Fewer than two values yield 0.
func SampleStdDev(xs []float64, mean float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Quantile returns the q-th quantile of sorted using linear interpolation
// between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func outlierTargets(t *table.Table, names []string) ([]*table.Column, error) {
	cols, err := resolveColumns(t, names, func(c *table.Column) bool {
		return c.Type.IsNumeric()
	})
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if !c.Type.IsNumeric() {
			return nil, &table.CoercionError{Column: c.Name, Row: -1, Value: c.Type.String(), Target: "numeric"}
		}
	}
	return cols, nil
}

// DetectOutliers returns, per targeted column, the ascending row indices of
// outlier cells. Columns without outliers are omitted. The table is not
// changed and Policy is ignored beyond validation.
func DetectOutliers(t *table.Table, opts OutlierOptions) (map[string][]int, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	cols, err := outlierTargets(t, opts.Columns)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, c := range cols {
		stats := computeStats(c, cfg.method, cfg.threshold)
		for i, v := range c.Values {
			if f, ok := v.Num(); ok && stats.isOutlier(cfg.method, cfg.threshold, f) {
				found[c.Name] = append(found[c.Name], i)
			}
		}
	}
	return found, nil
}

// HandleOutliers applies the configured policy to outliers in the targeted
// columns. With OutlierRemove, a row is dropped if any targeted column flags
// it; statistics for every column come from the input table. With
// OutlierFlag, the input is returned unchanged; use DetectOutliers to read
// the flags.
func HandleOutliers(t *table.Table, opts OutlierOptions) (*table.Table, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	found, err := DetectOutliers(t, opts)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 || cfg.policy == OutlierFlag {
		return t, nil
	}

	switch cfg.policy {
	case OutlierRemove:
		keep := make([]bool, t.Len())
		for i := range keep {
			keep[i] = true
		}
		for _, rows := range found {
			for _, i := range rows {
				keep[i] = false
			}
		}
		return t.Filter(keep), nil

	default: // OutlierCap
		out := t
		for name, rows := range found {
			c, _ := t.Column(name)
			stats := computeStats(c, cfg.method, cfg.threshold)
			capped := c.Clone()
			for _, i := range rows {
				f, _ := c.Values[i].Num()
				capped.Values[i] = table.Number(stats.capped(cfg.method, f))
			}
			if out, err = out.WithColumn(capped); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}
