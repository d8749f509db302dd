package table

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cols    []*Column
		wantErr bool
	}{
		{
			name: "aligned columns",
			cols: []*Column{TextColumn("a", "x", "y"), NumericColumn("b", 1, 2)},
		},
		{
			name:    "duplicate names",
			cols:    []*Column{TextColumn("a", "x"), TextColumn("a", "y")},
			wantErr: true,
		},
		{
			name:    "ragged columns",
			cols:    []*Column{TextColumn("a", "x", "y"), NumericColumn("b", 1)},
			wantErr: true,
		},
		{
			name: "no columns",
			cols: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols...)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromRecords_EmptyFieldsAreAbsent(t *testing.T) {
	tbl, err := FromRecords([]string{"name", "age"}, [][]string{
		{"Alice", "25"},
		{"Bob", ""},
		{"Carol"},
	})
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tbl.Len())
	}
	age, _ := tbl.Column("age")
	if !age.Values[1].IsNull() || !age.Values[2].IsNull() {
		t.Errorf("expected absent cells for empty and missing fields, got %v", age.Values)
	}
	if age.NullCount() != 2 {
		t.Errorf("NullCount() = %d, want 2", age.NullCount())
	}
}

func TestFromRecords_LongRow(t *testing.T) {
	_, err := FromRecords([]string{"a"}, [][]string{{"1", "2"}})
	if err == nil {
		t.Fatal("expected error for row longer than header")
	}
}

func TestFilter_DropsRowsAtomically(t *testing.T) {
	tbl := MustNew(TextColumn("a", "x", "y", "z"), NumericColumn("b", 1, 2, 3))
	out := tbl.Filter([]bool{true, false, true})

	if out.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", out.Len())
	}
	a, _ := out.Column("a")
	b, _ := out.Column("b")
	if s, _ := a.Values[1].Str(); s != "z" {
		t.Errorf("a[1] = %q, want %q", s, "z")
	}
	if f, _ := b.Values[1].Num(); f != 3 {
		t.Errorf("b[1] = %v, want 3", f)
	}
	if tbl.Len() != 3 {
		t.Errorf("source table mutated: Len() = %d", tbl.Len())
	}
}

func TestWithColumn_DoesNotMutateSource(t *testing.T) {
	tbl := MustNew(TextColumn("a", "x"))
	replaced, err := tbl.WithColumn(NumericColumn("a", 5))
	if err != nil {
		t.Fatalf("WithColumn() error = %v", err)
	}
	orig, _ := tbl.Column("a")
	if orig.Type != TypeText {
		t.Errorf("source column type = %v, want text", orig.Type)
	}
	got, _ := replaced.Column("a")
	if got.Type != TypeNumeric {
		t.Errorf("replaced column type = %v, want numeric", got.Type)
	}

	if _, err := tbl.WithColumn(NumericColumn("missing", 1)); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("WithColumn(missing) error = %v, want ErrColumnNotFound", err)
	}
}

func TestLookup_ColumnNotFound(t *testing.T) {
	tbl := MustNew(TextColumn("a"))
	_, err := tbl.Lookup("b")
	var cnf *ColumnNotFoundError
	if !errors.As(err, &cnf) {
		t.Fatalf("Lookup() error = %v, want *ColumnNotFoundError", err)
	}
	if cnf.Column != "b" {
		t.Errorf("Column = %q, want %q", cnf.Column, "b")
	}
}

func TestValue_Equality(t *testing.T) {
	day := time.Date(2021, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		a, b         Value
		wantEqual    bool
		wantNullable bool
	}{
		{"same strings", String("x"), String("x"), true, true},
		{"different strings", String("x"), String("y"), false, false},
		{"number vs string", Number(1), String("1"), false, false},
		{"same numbers", Number(2.5), Number(2.5), true, true},
		{"same times", Time(day), Time(day), true, true},
		{"null vs null", Null(), Null(), false, true},
		{"null vs value", Null(), String(""), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.wantEqual {
				t.Errorf("Equal() = %v, want %v", got, tt.wantEqual)
			}
			if got := tt.a.EqualNullable(tt.b); got != tt.wantNullable {
				t.Errorf("EqualNullable() = %v, want %v", got, tt.wantNullable)
			}
		})
	}
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), ""},
		{"string", String(" a "), " a "},
		{"integral number", Number(5000), "5000"},
		{"fraction", Number(12.5), "12.5"},
		{"negative", Number(-3), "-3"},
		{"date", Time(time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC)), "2021-03-03"},
		{"nan is absent", Number(math.NaN()), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRename(t *testing.T) {
	tbl := MustNew(TextColumn("A", "x"), TextColumn("B", "y"))

	out, err := tbl.Rename([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if got := out.Names(); got[0] != "a" || got[1] != "b" {
		t.Errorf("Names() = %v", got)
	}
	if _, err := tbl.Rename([]string{"same", "same"}); err == nil {
		t.Error("Rename() with duplicate names should fail")
	}
}

func TestEqualAndRecords(t *testing.T) {
	a := MustNew(TextColumn("name", "Alice", ""), NumericColumn("age", 25, 30))
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone should be Equal to source")
	}

	header, rows := a.Records()
	if len(header) != 2 || header[1] != "age" {
		t.Errorf("header = %v", header)
	}
	if rows[1][0] != "" || rows[1][1] != "30" {
		t.Errorf("rows[1] = %v", rows[1])
	}
}
