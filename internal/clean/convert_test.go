package clean

import (
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/datacleaner/internal/table"
)

// ----------------------------------------------------------------------------
// ParseNumber Tests
// ----------------------------------------------------------------------------

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "integer", input: "123", want: 123, wantOK: true},
		{name: "negative decimal with spaces", input: " -4.5 ", want: -4.5, wantOK: true},
		{name: "leading decimal point", input: ".99", want: 0.99, wantOK: true},
		{name: "trailing decimal point", input: "99.", want: 99, wantOK: true},
		{name: "exponent", input: "1e3", want: 1000, wantOK: true},
		{name: "explicit plus", input: "+7", want: 7, wantOK: true},

		// Invalid
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "word", input: "Thirty"},
		{name: "currency symbol", input: "$5"},
		{name: "thousands separator", input: "1,000"},
		{name: "two points", input: "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseCurrency Tests
// ----------------------------------------------------------------------------

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "dollar prefix", input: "$5,000", want: 5000, wantOK: true},
		{name: "dollar suffix", input: "8,000$", want: 8000, wantOK: true},
		{name: "euro with space", input: "€ 12.50", want: 12.5, wantOK: true},
		{name: "pound", input: "£99", want: 99, wantOK: true},
		{name: "yen", input: "¥1,000", want: 1000, wantOK: true},
		{name: "accounting negative", input: "($1,234.50)", want: -1234.5, wantOK: true},
		{name: "signed", input: "-$3", want: -3, wantOK: true},
		{name: "plain number", input: "42", want: 42, wantOK: true},

		{name: "empty", input: ""},
		{name: "word", input: "five dollars"},
		{name: "only symbol", input: "$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCurrency(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseCurrency(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseCurrency(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string // YYYY-MM-DD
		wantOK bool
	}{
		{name: "ISO", input: "2021-01-05", want: "2021-01-05", wantOK: true},
		{name: "slashes year first", input: "2021/01/05", want: "2021-01-05", wantOK: true},
		{name: "US month first", input: "01/05/2021", want: "2021-01-05", wantOK: true},
		{name: "US short", input: "1/5/2021", want: "2021-01-05", wantOK: true},
		{name: "dotted", input: "05.01.2021", want: "2021-05-01", wantOK: true},
		{name: "month name", input: "January 5, 2021", want: "2021-01-05", wantOK: true},
		{name: "day month name", input: "5 Jan 2021", want: "2021-01-05", wantOK: true},
		{name: "compact", input: "20210105", want: "2021-01-05", wantOK: true},
		{name: "RFC3339", input: "2021-01-05T10:30:00Z", want: "2021-01-05", wantOK: true},
		{name: "datetime", input: "2021-01-05 10:30:00", want: "2021-01-05", wantOK: true},
		{name: "surrounding spaces", input: "  2021-01-05 ", want: "2021-01-05", wantOK: true},

		{name: "empty", input: ""},
		{name: "word", input: "yesterday"},
		{name: "invalid month", input: "2021-13-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestParseDate_TwoDigitYear(t *testing.T) {
	pivot := time.Now().Year() + TwoDigitYearPivot

	tests := []struct {
		input string
		want  int
	}{
		{"1/5/21", 2021},
		{"1/5/99", 1999},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if !ok {
				t.Fatalf("ParseDate(%q) failed", tt.input)
			}
			if got.Year() != tt.want {
				t.Errorf("ParseDate(%q).Year() = %d, want %d", tt.input, got.Year(), tt.want)
			}
			if got.Year() > pivot {
				t.Errorf("year %d beyond pivot %d", got.Year(), pivot)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// DateLayout Tests
// ----------------------------------------------------------------------------

func TestDateLayout(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
		wantErr bool
	}{
		{pattern: "YYYY-MM-DD", want: "2006-01-02"},
		{pattern: "DD/MM/YYYY", want: "02/01/2006"},
		{pattern: "%d/%m/%Y", want: "02/01/2006"},
		{pattern: "%Y%m%d", want: "20060102"},
		{pattern: "YYYY-MM-DD HH:mm:ss", want: "2006-01-02 15:04:05"},
		{pattern: "%d %b %Y", want: "02 Jan 2006"},
		{pattern: "DD.MM.YY", want: "02.01.06"},
		{pattern: "plain", wantErr: true},
		{pattern: "", wantErr: true},
		{pattern: "YYYY-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := DateLayout(tt.pattern)
			if tt.wantErr {
				if !errors.Is(err, table.ErrInvalidPolicy) {
					t.Fatalf("DateLayout(%q) error = %v, want ErrInvalidPolicy", tt.pattern, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DateLayout(%q) error = %v", tt.pattern, err)
			}
			if got != tt.want {
				t.Errorf("DateLayout(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func BenchmarkParseNumber(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseNumber("12345.678")
	}
}

func BenchmarkParseCurrency(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseCurrency("($1,234,567.89)")
	}
}

func BenchmarkParseDate_US(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseDate("12/31/2024")
	}
}
