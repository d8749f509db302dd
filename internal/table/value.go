package table

// value.go defines the tagged cell type shared by every stage.
//
// A Value is one of:
//   - Null: the cell has no data (distinct from an empty string)
//   - String: raw or normalized text
//   - Number: a float64
//   - Time: a parsed date/time
//
// Values are small and immutable, so they are passed and stored by value.

import (
	"math"
	"strconv"
	"time"
)

// Kind identifies which field of a Value is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Value is a single table cell.
type Value struct {
	kind Kind
	str  string
	num  float64
	tm   time.Time
}

// Null returns the absent value.
func Null() Value { return Value{} }

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value. NaN is stored as absent.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Time returns a date/time value.
func Time(t time.Time) Value { return Value{kind: KindTime, tm: t} }

// Kind reports the kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the text payload and whether v is a String.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the numeric payload and whether v is a Number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// ISODate is the layout of date-only values.
const ISODate = "2006-01-02"

// TimeValue returns the time payload and whether v is a Time.
func (v Value) TimeValue() (time.Time, bool) { return v.tm, v.kind == KindTime }

// Text renders v as a string. Absent renders as "", numbers use the shortest
// representation that round-trips, times use RFC 3339 (date-only at midnight UTC).
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return FormatNumber(v.num)
	case KindTime:
		if v.tm.Hour() == 0 && v.tm.Minute() == 0 && v.tm.Second() == 0 && v.tm.Nanosecond() == 0 {
			return v.tm.Format(ISODate)
		}
		return v.tm.Format(time.RFC3339)
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Text()
}

// Equal reports value-for-value equality. Absent never equals anything,
// including another absent value; use EqualNullable when absents should match.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return false
	}
	return v.sameAs(o)
}

// EqualNullable is Equal except two absent values compare equal.
func (v Value) EqualNullable(o Value) bool {
	if v.kind == KindNull && o.kind == KindNull {
		return true
	}
	return v.Equal(o)
}

func (v Value) sameAs(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.tm.Equal(o.tm)
	}
	return true
}

// Key returns a string that is identical for equal values of the same kind.
// Used for hashing rows during duplicate detection.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return "s:" + v.str
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindTime:
		return "t:" + v.tm.UTC().Format(time.RFC3339Nano)
	default:
		return "\x00"
	}
}

// FormatNumber formats f with the shortest representation that round-trips.
// Integral values print without a decimal point.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
