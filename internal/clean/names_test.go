package clean

import (
	"reflect"
	"testing"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" Full Name ", "full_name"},
		{"Full   Name", "full_name"},
		{"AGE", "age"},
		{"first\tname", "first_name"},
		{"already_clean", "already_clean"},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeColumnNames(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "simple",
			input: []string{" Full Name ", "Age"},
			want:  []string{"full_name", "age"},
		},
		{
			name:  "collision gets suffix",
			input: []string{"Name", "name ", "NAME"},
			want:  []string{"name", "name_2", "name_3"},
		},
		{
			name:  "suffix skips names already taken",
			input: []string{"a_2", "A", "a"},
			want:  []string{"a_2", "a", "a_3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := make([]*table.Column, len(tt.input))
			for i, n := range tt.input {
				cols[i] = table.TextColumn(n, "x")
			}
			tbl := table.MustNew(cols...)

			once, err := NormalizeColumnNames(tbl)
			if err != nil {
				t.Fatalf("NormalizeColumnNames() error = %v", err)
			}
			if !reflect.DeepEqual(once.Names(), tt.want) {
				t.Errorf("Names() = %v, want %v", once.Names(), tt.want)
			}

			twice, err := NormalizeColumnNames(once)
			if err != nil {
				t.Fatalf("second NormalizeColumnNames() error = %v", err)
			}
			if !reflect.DeepEqual(twice.Names(), once.Names()) {
				t.Errorf("not idempotent: %v then %v", once.Names(), twice.Names())
			}

			if !reflect.DeepEqual(tbl.Names(), tt.input) {
				t.Errorf("input table renamed: %v", tbl.Names())
			}
		})
	}
}
