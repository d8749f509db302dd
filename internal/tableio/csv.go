package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// ReadCSV loads a delimited table. The first non-empty record is the header.
// Fully blank records are skipped, short records are padded with absent
// cells, and a record wider than the header is an ErrInvalidCSV.
func ReadCSV(r io.Reader, comma rune) (*table.Table, error) {
	cr := csv.NewReader(wrapText(r))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header []string
	var rows [][]string
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}
		line++
		if isEmptyRow(rec) {
			continue
		}
		if header == nil {
			header = uniqueHeader(rec)
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("%w: record %d has %d fields, header has %d", ErrInvalidCSV, line, len(rec), len(header))
		}
		for i := range rec {
			rec[i] = unwrapFormula(rec[i])
		}
		rows = append(rows, rec)
	}

	if header == nil {
		return nil, ErrEmptyFile
	}
	return table.FromRecords(header, rows)
}

// WriteCSV writes t with a header row. Absent cells are empty fields.
func WriteCSV(w io.Writer, t *table.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header, rows := t.Records()
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// unwrapFormula removes the ="..." wrapper Excel exports use to keep
// leading zeros: ="00123" -> 00123.
func unwrapFormula(s string) string {
	if len(s) >= 3 && strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		return s[2 : len(s)-1]
	}
	return s
}

// uniqueHeader keeps header names as given, except that exact repeats get
// _2, _3, ... suffixes so every column can be addressed. Blank names become
// column_<n>.
func uniqueHeader(rec []string) []string {
	out := make([]string, len(rec))
	used := make(map[string]bool, len(rec))
	for i, h := range rec {
		h = unwrapFormula(h)
		if strings.TrimSpace(h) == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		candidate := h
		for n := 2; used[candidate]; n++ {
			candidate = h + "_" + strconv.Itoa(n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
