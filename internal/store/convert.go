package store

// convert.go turns table cells into pgtype values for the COPY protocol.
//
// All ToPg* functions return values with Valid=false for absent cells so the
// database stores NULL. Cells that hold the wrong kind for their column are
// parsed with the same rules the cleaning stages use.

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/datacleaner/internal/clean"
	"github.com/JonMunkholm/datacleaner/internal/table"
)

// ToPgText converts a cell to pgtype.Text. Absent cells are NULL; an empty
// string is stored as an empty string.
func ToPgText(v table.Value) pgtype.Text {
	if v.IsNull() {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: v.Text(), Valid: true}
}

// ToPgNumeric converts a cell to pgtype.Numeric.
func ToPgNumeric(v table.Value) (pgtype.Numeric, error) {
	if v.IsNull() {
		return pgtype.Numeric{Valid: false}, nil
	}

	f, ok := v.Num()
	if !ok {
		if f, ok = clean.ParseCurrency(v.Text()); !ok {
			return pgtype.Numeric{}, fmt.Errorf("not a number: %q", v.Text())
		}
	}

	var n pgtype.Numeric
	if err := n.Scan(table.FormatNumber(f)); err != nil {
		return pgtype.Numeric{}, err
	}
	return n, nil
}

// ToPgDate converts a cell to pgtype.Date. Time cells are used as-is,
// string cells are parsed with clean.ParseDate.
func ToPgDate(v table.Value) (pgtype.Date, error) {
	if v.IsNull() {
		return pgtype.Date{Valid: false}, nil
	}
	if tm, ok := v.TimeValue(); ok {
		return pgtype.Date{Time: tm, Valid: true}, nil
	}
	tm, ok := clean.ParseDate(v.Text())
	if !ok {
		return pgtype.Date{}, fmt.Errorf("not a date: %q", v.Text())
	}
	return pgtype.Date{Time: tm, Valid: true}, nil
}

// ToPgUUID converts a uuid.UUID to pgtype.UUID. The zero UUID is NULL.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// ToPgTimestamptz converts t to pgtype.Timestamptz. The zero time is NULL.
func ToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
