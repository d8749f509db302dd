// Package tableio loads tables from and writes tables to CSV, TSV, Excel
// (.xlsx) and JSON, optionally gzip-compressed.
//
// All readers produce the same shape: the first row (or the first object's
// keys) names the columns, empty fields become absent cells, and every CSV,
// TSV and Excel column is loaded as Text. Type inference is left to the
// cleaning pipeline.
package tableio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a tabular file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatExcel Format = "xlsx"
	FormatJSON  Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatCSV, FormatTSV, FormatExcel, FormatJSON:
		return f, nil
	case "xls", "excel":
		return FormatExcel, nil
	default:
		return "", &UnsupportedFormatError{Name: s}
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// DetectFormat infers the format from a file name. A trailing ".gz" is
// stripped first and reported through gzipped.
func DetectFormat(path string) (f Format, gzipped bool, err error) {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".gz") {
		gzipped = true
		name = strings.TrimSuffix(name, ".gz")
	}
	ext := filepath.Ext(name)
	if ext == "" {
		return "", gzipped, &UnsupportedFormatError{Name: filepath.Base(path)}
	}
	f, err = ParseFormat(ext)
	if err != nil {
		return "", gzipped, &UnsupportedFormatError{Name: filepath.Base(path)}
	}
	return f, gzipped, nil
}

var (
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidCSV is returned for malformed delimited input.
	ErrInvalidCSV = errors.New("invalid csv")

	// ErrInvalidJSON is returned when JSON input is not an array of objects.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrUnsupportedFormat is the sentinel behind UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// UnsupportedFormatError names the file or format that could not be handled.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q (supported: csv, tsv, xlsx, json, optionally .gz)", e.Name)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
