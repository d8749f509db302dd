// Package templates holds the HTML components served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/datacleaner/internal/clean"
	"github.com/JonMunkholm/datacleaner/internal/report"
)

const pageCSS = `body{font-family:system-ui,sans-serif;margin:2rem;max-width:72rem}` +
	`fieldset{margin:1rem 0;border:1px solid #ddd}` +
	`label{display:block;margin:.25rem 0}` +
	`.alert{border:1px solid #e0a0a0;background:#fdf0f0;padding:.75rem;margin:1rem 0}` +
	`.alert code{color:#900}` +
	`table{border-collapse:collapse;margin:1rem 0}` +
	`th,td{border:1px solid #ccc;padding:.25rem .5rem;text-align:left}` +
	`th{background:#f3f3f3}`

// Layout wraps body in a complete HTML document.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.print(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.print(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.printf(`<title>%s</title>`, templ.EscapeString(title))
		hw.print(`<style>` + pageCSS + `</style></head><body>`)
		hw.printf(`<header><h1>%s</h1></header><main>`, templ.EscapeString(title))
		if hw.err != nil {
			return hw.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		hw.print(`</main></body></html>`)
		return hw.err
	})
}

// UploadForm is the landing page form. It posts to /report for an HTML
// summary; the same fields are accepted by /api/clean.
func UploadForm(maxFileSize int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.print(`<form method="post" action="/report" enctype="multipart/form-data">`)
		hw.printf(`<label>Table file (csv, tsv, xlsx or json, up to %d MB) `, maxFileSize/(1024*1024))
		hw.print(`<input type="file" name="file" required></label>`)
		hw.print(`<label>Sheet <input type="text" name="sheet" placeholder="first sheet"></label>`)

		hw.print(`<fieldset><legend>Stages</legend>`)
		for _, cb := range []struct{ name, label string }{
			{"clean_all", "Run the default pipeline"},
			{"clean_columns", "Normalize column names"},
			{"trim_spaces", "Trim whitespace"},
			{"remove_duplicates", "Remove duplicate rows"},
			{"validate_data", "Validate numeric columns"},
		} {
			hw.printf(`<label><input type="checkbox" name="%s" value="true"> %s</label>`, cb.name, cb.label)
		}
		hw.print(`<label>Change case <select name="change_case"><option value="">none</option>`)
		for _, op := range []string{"lower", "upper", "title", "capitalize"} {
			hw.printf(`<option>%s</option>`, op)
		}
		hw.print(`</select></label>`)
		hw.print(`<label>Missing values <select name="handle_missing"><option value="">none</option><option>drop</option><option>fill</option></select></label>`)
		hw.print(`<label>Outliers <select name="outlier_method"><option value="">none</option><option>remove</option><option>cap</option><option>flag</option></select></label>`)
		hw.print(`<label>Standardize date column <input type="text" name="standardize_date"></label>`)
		hw.print(`<label>Standardize currency column <input type="text" name="standardize_currency"></label>`)
		hw.print(`</fieldset>`)

		hw.print(`<button type="submit">Clean and summarize</button></form>`)
		return hw.err
	})
}

// ErrorAlert renders a user-facing error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.print(`<div class="alert" role="alert">`)
		hw.printf(`<p>%s</p>`, templ.EscapeString(message))
		if action != "" {
			hw.printf(`<p>%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			hw.printf(`<p>Code: <code>%s</code></p>`, templ.EscapeString(code))
		}
		hw.print(`</div>`)
		return hw.err
	})
}

// ReportPage shows the summary of a cleaned table and the stages that
// produced it. run may be nil when the table was only described.
func ReportPage(filename string, summary report.Summary, run *clean.RunReport) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.printf(`<h2>%s</h2>`, templ.EscapeString(filename))
		if run != nil {
			hw.printf(`<p>%d rows in, %d rows out in %s</p>`, run.RowsIn, run.RowsOut, run.Duration.Round(time.Millisecond))
			hw.print(`<table class="steps"><thead><tr><th>Stage</th><th>Rows in</th><th>Rows out</th><th>Columns</th></tr></thead><tbody>`)
			for _, st := range run.Steps {
				hw.print(`<tr>`)
				hw.cell(st.Stage)
				hw.cell(strconv.Itoa(st.RowsIn))
				hw.cell(strconv.Itoa(st.RowsOut))
				hw.cell(strconv.Itoa(st.Columns))
				hw.print(`</tr>`)
			}
			hw.print(`</tbody></table>`)
		}
		if hw.err != nil {
			return hw.err
		}
		if err := report.SummaryTable(summary).Render(ctx, w); err != nil {
			return err
		}
		hw.print(`<p><a href="/">Clean another file</a></p>`)
		return hw.err
	})
	return Layout("Cleaning report", body)
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) print(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *htmlWriter) cell(s string) {
	h.print(`<td>` + templ.EscapeString(s) + `</td>`)
}
