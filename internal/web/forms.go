package web

// forms.go parses request parameters shared by the handlers: the cleaning
// plan, the post-cleaning reshape options and the uploaded table.

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/table"
	"github.com/JonMunkholm/datacleaner/internal/tableio"
	"github.com/JonMunkholm/datacleaner/internal/transform"
)

// multipartMemory is how much of an upload is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// upload is a table read from the "file" part of a multipart form.
type upload struct {
	Name   string
	Format tableio.Format
	Gzip   bool
	Table  *table.Table
}

// readUpload bounds the body, parses the multipart form and loads the table.
// After it returns, r.Form holds the remaining form fields.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, core.ErrFileTooLarge
		case errors.Is(err, http.ErrNotMultipart):
			return nil, core.ErrNoFile
		default:
			return nil, fmt.Errorf("parse form: %w", err)
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, core.ErrNoFile
		}
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	format, gz, err := tableio.DetectFormat(header.Filename)
	if err != nil {
		return nil, err
	}

	t, err := tableio.Read(file, tableio.Options{Format: format, Gzip: gz, Sheet: r.FormValue("sheet")})
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, core.ErrFileTooLarge
		}
		return nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return &upload{Name: header.Filename, Format: format, Gzip: gz, Table: t}, nil
}

// formReader reads typed values from a parsed form and collects problems.
type formReader struct {
	r    *http.Request
	errs []error
}

func (f *formReader) string(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

func (f *formReader) has(name string) bool {
	_, ok := f.r.Form[name]
	return ok
}

// bool accepts checkbox values ("on") as well as the usual true/false forms.
func (f *formReader) bool(name string) bool {
	v := strings.ToLower(f.string(name))
	switch v {
	case "":
		return false
	case "on", "yes":
		return true
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		f.fail(name, v, "must be true or false")
	}
	return b
}

func (f *formReader) float(name string) float64 {
	v := f.string(name)
	if v == "" {
		return 0
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		f.fail(name, v, "must be a number")
	}
	return n
}

// list splits a comma-separated value. Repeated fields are concatenated.
func (f *formReader) list(name string) []string {
	var out []string
	for _, raw := range f.r.Form[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (f *formReader) fail(name, value, reason string) {
	f.errs = append(f.errs, &table.PolicyError{Stage: "options", Value: value, Reason: name + " " + reason})
}

func (f *formReader) err() error {
	return errors.Join(f.errs...)
}

// parsePlan reads the cleaning options. Field names match the JSON names of
// core.Plan.
func parsePlan(r *http.Request) (core.Plan, error) {
	f := &formReader{r: r}
	p := core.Plan{
		CleanAll:            f.bool("clean_all"),
		CleanColumns:        f.bool("clean_columns"),
		TrimSpaces:          f.bool("trim_spaces"),
		RemoveDuplicates:    f.bool("remove_duplicates"),
		Subset:              f.list("subset"),
		ValidateData:        f.bool("validate_data"),
		NumericColumns:      f.list("numeric"),
		KeepIncomplete:      f.bool("keep_incomplete"),
		ChangeCase:          f.string("change_case"),
		CaseColumns:         f.list("case_columns"),
		StandardizeDate:     f.string("standardize_date"),
		DateFormat:          f.string("date_format"),
		RegexColumn:         f.string("regex_column"),
		RegexPattern:        f.r.FormValue("regex_pattern"),
		RegexReplacement:    f.r.FormValue("regex_replacement"),
		HandleMissing:       f.string("handle_missing"),
		OutlierMethod:       f.string("outlier_method"),
		OutlierDetector:     f.string("outlier_detector"),
		OutlierColumns:      f.list("outlier_columns"),
		Threshold:           f.float("threshold"),
		StandardizeCurrency: f.string("standardize_currency"),
		Split:               f.string("split"),
		SplitDelimiter:      f.r.FormValue("split_delimiter"),
		SplitNames:          f.list("split_names"),
		Persist:             f.string("persist"),
	}
	if f.has("fill_value") {
		v := f.r.FormValue("fill_value")
		p.FillValue = &v
	}
	if err := f.err(); err != nil {
		return core.Plan{}, err
	}
	return p, nil
}

// shape holds the optional reshaping applied to a cleaned table before it is
// returned: filter, sort, drop, rename, column selection, then head or tail.
type shape struct {
	filters []transform.Filter
	sorts   []transform.SortSpec
	drop    []string
	rename  map[string]string
	columns []string
	head    int
	tail    int
}

func parseShape(r *http.Request) (shape, error) {
	f := &formReader{r: r}
	sh := shape{
		sorts:   parseSorts(r),
		drop:    f.list("drop"),
		columns: f.list("columns"),
		head:    parseIntParam(r, "head", 0),
		tail:    parseIntParam(r, "tail", 0),
	}
	// rename=old:new,old2:new2
	for _, pair := range f.list("rename") {
		from, to, ok := strings.Cut(pair, ":")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			f.fail("rename", pair, "must be old:new")
			continue
		}
		if sh.rename == nil {
			sh.rename = make(map[string]string)
		}
		sh.rename[from] = to
	}
	if sh.head > 0 && sh.tail > 0 {
		f.fail("tail", r.FormValue("tail"), "cannot be combined with head")
	}
	if err := f.err(); err != nil {
		return shape{}, err
	}

	filters, err := parseFilters(r)
	if err != nil {
		return shape{}, err
	}
	sh.filters = filters
	return sh, nil
}

func (sh shape) apply(t *table.Table) (*table.Table, error) {
	var err error
	if len(sh.filters) > 0 {
		if t, err = transform.Where(t, sh.filters...); err != nil {
			return nil, err
		}
	}
	if len(sh.sorts) > 0 {
		if t, err = transform.Sort(t, sh.sorts...); err != nil {
			return nil, err
		}
	}
	if len(sh.drop) > 0 {
		if t, err = transform.Drop(t, sh.drop...); err != nil {
			return nil, err
		}
	}
	if len(sh.rename) > 0 {
		if t, err = transform.Rename(t, sh.rename); err != nil {
			return nil, err
		}
	}
	if len(sh.columns) > 0 {
		if t, err = transform.Select(t, sh.columns...); err != nil {
			return nil, err
		}
	}
	switch {
	case sh.head > 0:
		t = transform.Head(t, sh.head)
	case sh.tail > 0:
		t = transform.Tail(t, sh.tail)
	}
	return t, nil
}

// parseIntParam parses a positive integer parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.FormValue(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseSorts pairs the comma-separated "sort" columns with the "dir" list.
// Missing directions default to ascending.
func parseSorts(r *http.Request) []transform.SortSpec {
	sortStr := r.FormValue("sort")
	if sortStr == "" {
		return nil
	}
	dirs := strings.Split(r.FormValue("dir"), ",")

	var sorts []transform.SortSpec
	for i, col := range strings.Split(sortStr, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		s := col
		if i < len(dirs) {
			s += ":" + strings.TrimSpace(dirs[i])
		}
		sorts = append(sorts, transform.ParseSort(s))
	}
	return sorts
}

// parseFilters reads "filter[column]=op:value" parameters. Unknown operators
// are rejected rather than ignored.
func parseFilters(r *http.Request) ([]transform.Filter, error) {
	var filters []transform.Filter
	for key, values := range r.Form {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := key[len("filter[") : len(key)-1]
		if col == "" {
			continue
		}
		for _, val := range values {
			if val == "" {
				continue
			}
			flt, err := transform.ParseFilter(col + "=" + val)
			if err != nil {
				return nil, err
			}
			filters = append(filters, flt)
		}
	}
	return filters, nil
}
