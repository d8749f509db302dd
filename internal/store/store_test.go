package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"name", `"name"`},
		{"full name", `"full name"`},
		{`we"ird`, `"we""ird"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := quoteIdentifier(tt.in); got != tt.want {
			t.Errorf("quoteIdentifier(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	tbl := table.MustNew(
		table.TextColumn("name"),
		table.NumericColumn("age"),
		table.NewColumn("joined", table.TypeDate, nil),
		table.NewColumn("amount", table.TypeCurrency, nil),
	)
	got := CreateTableSQL("people", tbl)
	want := `CREATE TABLE IF NOT EXISTS "people" ("name" text, "age" numeric, "joined" date, "amount" numeric)`
	assert.Equal(t, want, got)
}

func TestToPgText(t *testing.T) {
	assert.False(t, ToPgText(table.Null()).Valid)

	got := ToPgText(table.String(""))
	assert.True(t, got.Valid, "empty string is not absent")
	assert.Equal(t, "", got.String)

	assert.Equal(t, "25", ToPgText(table.Number(25)).String)
}

func TestToPgNumeric(t *testing.T) {
	n, err := ToPgNumeric(table.Null())
	require.NoError(t, err)
	assert.False(t, n.Valid)

	n, err = ToPgNumeric(table.Number(12.5))
	require.NoError(t, err)
	f, err := n.Float64Value()
	require.NoError(t, err)
	assert.Equal(t, 12.5, f.Float64)

	n, err = ToPgNumeric(table.String("$5,000"))
	require.NoError(t, err)
	f, err = n.Float64Value()
	require.NoError(t, err)
	assert.Equal(t, 5000.0, f.Float64)

	_, err = ToPgNumeric(table.String("lots"))
	assert.Error(t, err)
}

func TestToPgDate(t *testing.T) {
	d, err := ToPgDate(table.String("2021-01-05"))
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.Equal(t, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), d.Time)

	when := time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)
	d, err = ToPgDate(table.Time(when))
	require.NoError(t, err)
	assert.Equal(t, when, d.Time)

	d, err = ToPgDate(table.Null())
	require.NoError(t, err)
	assert.False(t, d.Valid)

	_, err = ToPgDate(table.String("soon"))
	assert.Error(t, err)
}

func TestToPgUUID(t *testing.T) {
	assert.False(t, ToPgUUID(uuid.Nil).Valid)

	id := uuid.New()
	u := ToPgUUID(id)
	assert.True(t, u.Valid)
	assert.Equal(t, id.String(), PgUUIDToString(u))
	assert.Equal(t, "", PgUUIDToString(pgtype.UUID{}))
}

func TestCopyRows(t *testing.T) {
	tbl := table.MustNew(
		table.TextColumn("name", "Alice", ""),
		table.NewColumn("age", table.TypeNumeric, []table.Value{table.Number(25), table.Null()}),
	)
	rows, err := copyRows(tbl)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, pgtype.Text{String: "Alice", Valid: true}, rows[0][0])
	assert.Equal(t, pgtype.Text{}, rows[1][0])
	assert.False(t, rows[1][1].(pgtype.Numeric).Valid)
}

func TestCopyRows_DateLayout(t *testing.T) {
	joined := table.NewColumn("joined", table.TypeDate, []table.Value{table.String("05/01/2021")})
	joined.Layout = "02/01/2006"
	rows, err := copyRows(table.MustNew(joined))
	require.NoError(t, err)

	d := rows[0][0].(pgtype.Date)
	require.True(t, d.Valid)
	assert.Equal(t, time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC), d.Time)
}

func TestCopyRows_BadCell(t *testing.T) {
	tbl := table.MustNew(
		table.NewColumn("amount", table.TypeCurrency, []table.Value{table.Number(1), table.String("n/a")}),
	)
	_, err := copyRows(tbl)

	var ce *table.CoercionError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "amount", ce.Column)
	assert.Equal(t, 1, ce.Row)
	assert.True(t, errors.Is(err, table.ErrTypeCoercion))
}

func TestWriteTable_EmptyName(t *testing.T) {
	_, err := WriteTable(context.Background(), nil, "  ", table.MustNew(table.TextColumn("a")))
	assert.ErrorIs(t, err, ErrEmptyName)
}

// recordingDB captures Exec calls.
type recordingDB struct {
	sql  []string
	args [][]any
	err  error
}

func (r *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func (r *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestRunLog_Record(t *testing.T) {
	db := &recordingDB{}
	log := NewRunLog(db)

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := log.Record(context.Background(), Run{
		Source:    "people.csv",
		RowsIn:    10,
		RowsOut:   8,
		Status:    StatusSucceeded,
		StartedAt: started,
	})
	require.NoError(t, err)
	require.Len(t, db.args, 1)

	args := db.args[0]
	require.Len(t, args, 8)
	assert.True(t, args[0].(pgtype.UUID).Valid, "missing id is generated")
	assert.Equal(t, "people.csv", args[1])
	assert.Equal(t, int32(10), args[2])
	assert.Equal(t, int32(8), args[3])
	assert.Equal(t, "succeeded", args[4])
	assert.False(t, args[5].(pgtype.Text).Valid, "no error code stored as NULL")
	assert.Equal(t, started, args[6].(pgtype.Timestamptz).Time)
	assert.False(t, args[7].(pgtype.Timestamptz).Valid)
}

func TestRunLog_RecordError(t *testing.T) {
	boom := errors.New("connection reset")
	log := NewRunLog(&recordingDB{err: boom})

	err := log.Record(context.Background(), Run{Source: "x", Status: StatusFailed, ErrorCode: "TYP001"})
	assert.ErrorIs(t, err, boom)
}

func TestRunLog_EnsureSchema(t *testing.T) {
	db := &recordingDB{}
	require.NoError(t, NewRunLog(db).EnsureSchema(context.Background()))
	require.Len(t, db.sql, 1)
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS clean_runs")
}
