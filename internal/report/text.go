package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// WriteText renders s as an aligned plain-text table.
func WriteText(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "%d rows, %d columns\n\n", s.Rows, len(s.Columns)); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\ttype\tcount\tnulls\tunique\tmean\tstd\tmin\tmedian\tmax\ttop")
	for _, c := range s.Columns {
		mean, std, lo, med, hi := "", "", "", "", ""
		if n := c.Numeric; n != nil {
			mean, std = formatStat(n.Mean), formatStat(n.Std)
			lo, med, hi = formatStat(n.Min), formatStat(n.Median), formatStat(n.Max)
		}
		top := ""
		if c.TopFreq > 0 {
			top = fmt.Sprintf("%s (%d)", c.Top, c.TopFreq)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name, c.Type, c.Count, c.Nulls, c.Unique, mean, std, lo, med, hi, top)
	}
	return tw.Flush()
}

func formatStat(f float64) string {
	return table.FormatNumber(roundTo(f, 4))
}

func roundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
