package tableio

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// DefaultSheet is the sheet name WriteExcel uses.
const DefaultSheet = "Sheet1"

// ReadExcel loads one sheet of an .xlsx workbook. An empty sheet name selects
// the first sheet. The first non-empty row is the header.
func ReadExcel(r io.Reader, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var header []string
	var body [][]string
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if header == nil {
			header = uniqueHeader(row)
			continue
		}
		if len(row) > len(header) {
			// cells right of the header have no column to land in
			row = row[:len(header)]
		}
		body = append(body, row)
	}
	if header == nil {
		return nil, ErrEmptyFile
	}
	return table.FromRecords(header, body)
}

// WriteExcel writes t to a single-sheet workbook. Numbers are written as
// numeric cells and absent cells are left blank.
func WriteExcel(w io.Writer, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, t.Width())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(DefaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		cells := t.Row(i)
		row := make([]any, len(cells))
		for j, v := range cells {
			if n, ok := v.Num(); ok {
				row[j] = n
			} else if !v.IsNull() {
				row[j] = v.Text()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
