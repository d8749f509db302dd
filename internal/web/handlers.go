package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/logging"
	"github.com/JonMunkholm/datacleaner/internal/report"
	"github.com/JonMunkholm/datacleaner/internal/tableio"
	"github.com/JonMunkholm/datacleaner/internal/web/templates"
)

const maxRunsLimit = 100

// handleHealth reports liveness and whether persistence is available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": s.service.DatabaseEnabled(),
	})
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Layout("Data cleaner", templates.UploadForm(s.cfg.Upload.MaxFileSize))
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleReport cleans the uploaded table and renders an HTML summary of the
// result.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	plan, err := parsePlan(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.service.Clean(r.Context(), core.Job{Source: up.Name, Table: up.Table, Plan: plan})
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Run-ID", res.RunID.String())
	page := templates.ReportPage(up.Name, report.Describe(res.Table), res.Report)
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render report", "error", err)
	}
}

// handleClean cleans the uploaded table and returns it. The output format
// comes from the "format" field and defaults to the upload's format.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	plan, err := parsePlan(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sh, err := parseShape(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := tableio.Options{Format: up.Format}
	if f := r.FormValue("format"); f != "" {
		if out.Format, err = tableio.ParseFormat(f); err != nil {
			respondError(w, r, err)
			return
		}
	}

	res, err := s.service.Clean(r.Context(), core.Job{Source: up.Name, Table: up.Table, Plan: plan})
	if err != nil {
		respondError(w, r, err)
		return
	}
	cleaned, err := sh.apply(res.Table)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// encode fully before writing so a failure can still become an error response
	var buf bytes.Buffer
	if err := tableio.Write(&buf, cleaned, out); err != nil {
		respondError(w, r, fmt.Errorf("encode %s: %w", out.Format, err))
		return
	}

	h := w.Header()
	h.Set("Content-Type", out.Format.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, cleanedName(up.Name, out.Format)))
	h.Set("X-Run-ID", res.RunID.String())
	h.Set("X-Rows-In", strconv.Itoa(res.Report.RowsIn))
	h.Set("X-Rows-Out", strconv.Itoa(res.Report.RowsOut))
	if plan.Persist != "" {
		h.Set("X-Rows-Persisted", strconv.FormatInt(res.Persisted, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("write response", "error", err)
	}
}

// handleDescribe returns a JSON summary of the uploaded table as loaded.
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report.Describe(up.Table))
}

// handleRuns lists recent runs from the run log.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 20)
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	runs, err := s.service.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleStatus returns the current state of the run limiter.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// cleanedName derives the download name, e.g. "people.csv.gz" cleaned to
// JSON becomes "people_cleaned.json".
func cleanedName(name string, f tableio.Format) string {
	base := name
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "" {
		base = "table"
	}
	return base + "_cleaned." + string(f)
}
