package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// SummaryTable renders s as an HTML fragment suitable for embedding in a page.
func SummaryTable(s Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<p class="summary-shape">%d rows, %d columns</p>`, s.Rows, len(s.Columns))
		ew.print(`<table class="summary"><thead><tr>`)
		for _, h := range []string{"Column", "Type", "Count", "Nulls", "Unique", "Mean", "Std", "Min", "Median", "Max", "Top"} {
			ew.printf(`<th>%s</th>`, h)
		}
		ew.print(`</tr></thead><tbody>`)
		for _, c := range s.Columns {
			ew.print(`<tr>`)
			ew.cell(c.Name)
			ew.cell(c.Type)
			ew.cell(strconv.Itoa(c.Count))
			ew.cell(strconv.Itoa(c.Nulls))
			ew.cell(strconv.Itoa(c.Unique))
			if n := c.Numeric; n != nil {
				ew.cell(formatStat(n.Mean))
				ew.cell(formatStat(n.Std))
				ew.cell(formatStat(n.Min))
				ew.cell(formatStat(n.Median))
				ew.cell(formatStat(n.Max))
			} else {
				for i := 0; i < 5; i++ {
					ew.cell("")
				}
			}
			if c.TopFreq > 0 {
				ew.cell(fmt.Sprintf("%s (%d)", c.Top, c.TopFreq))
			} else {
				ew.cell("")
			}
			ew.print(`</tr>`)
		}
		ew.print(`</tbody></table>`)
		return ew.err
	})
}

// SummaryPage renders a complete HTML document for s.
func SummaryPage(title string, s Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.print(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		ew.printf(`<title>%s</title>`, templ.EscapeString(title))
		ew.print(`<style>` + summaryCSS + `</style></head><body>`)
		ew.printf(`<h1>%s</h1>`, templ.EscapeString(title))
		if ew.err != nil {
			return ew.err
		}
		if err := SummaryTable(s).Render(ctx, w); err != nil {
			return err
		}
		ew.print(`</body></html>`)
		return ew.err
	})
}

const summaryCSS = `body{font-family:system-ui,sans-serif;margin:2rem}` +
	`table.summary{border-collapse:collapse}` +
	`table.summary th,table.summary td{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}` +
	`table.summary th{background:#f3f3f3}`

// errWriter stops writing after the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) print(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) cell(s string) {
	e.print(`<td>` + templ.EscapeString(s) + `</td>`)
}
