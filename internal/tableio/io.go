package tableio

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// Options selects how a table is read or written.
type Options struct {
	Format Format
	Gzip   bool
	Sheet  string // Excel only; empty means the first sheet
}

// Read decodes a table from r.
func Read(r io.Reader, opts Options) (*table.Table, error) {
	if opts.Gzip {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	switch opts.Format {
	case FormatCSV:
		return ReadCSV(r, ',')
	case FormatTSV:
		return ReadCSV(r, '\t')
	case FormatExcel:
		return ReadExcel(r, opts.Sheet)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, &UnsupportedFormatError{Name: string(opts.Format)}
	}
}

// Write encodes t to w.
func Write(w io.Writer, t *table.Table, opts Options) (err error) {
	if opts.Gzip {
		zw := gzip.NewWriter(w)
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		w = zw
	}

	switch opts.Format {
	case FormatCSV:
		return WriteCSV(w, t, ',')
	case FormatTSV:
		return WriteCSV(w, t, '\t')
	case FormatExcel:
		return WriteExcel(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	default:
		return &UnsupportedFormatError{Name: string(opts.Format)}
	}
}

// ReadFile opens path and reads it, detecting the format from the file name
// unless opts.Format is set. Returns the table and the bytes read from disk.
func ReadFile(path string, opts Options) (*table.Table, int64, error) {
	if opts.Format == "" {
		f, gz, err := DetectFormat(path)
		if err != nil {
			return nil, 0, err
		}
		opts.Format, opts.Gzip = f, gz
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	cr := NewCountingReader(f)
	t, err := Read(cr, opts)
	if err != nil {
		return nil, cr.BytesRead, fmt.Errorf("read %s: %w", path, err)
	}
	return t, cr.BytesRead, nil
}

// WriteFile writes t to path, detecting the format from the file name unless
// opts.Format is set. The file is written to a temporary sibling and renamed
// into place, so a failed write leaves no partial output.
func WriteFile(path string, t *table.Table, opts Options) error {
	if opts.Format == "" {
		f, gz, err := DetectFormat(path)
		if err != nil {
			return err
		}
		opts.Format, opts.Gzip = f, gz
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".datacleaner-*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, t, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}
