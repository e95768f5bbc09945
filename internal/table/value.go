package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the kind of a cell value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// TimeLayout is the canonical text form of time values.
const TimeLayout = "2006-01-02 15:04:05"

// Value is a single cell. The zero Value is empty.
type Value struct {
	kind Kind
	s    string
	n    float64
	t    time.Time
}

// Text returns a text value. Empty text is the empty value.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, s: s}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// Int returns a numeric value holding an integer.
func Int(n int64) Value {
	return Value{kind: KindNumber, n: float64(n)}
}

// Time returns a date/time value.
func Time(t time.Time) Value {
	return Value{kind: KindTime, t: t}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsEmpty() bool  { return v.kind == KindEmpty }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric reading of v. Text is parsed after trimming
// surrounding space.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Time returns the time held by v.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.t, true
}

// IsIntegral reports whether v is a number without a fractional part.
func (v Value) IsIntegral() bool {
	return v.kind == KindNumber && isIntegral(v.n)
}

// String returns the canonical, locale-independent text form of v.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindTime:
		return v.t.Format(TimeLayout)
	}
	return ""
}

// Equal reports whether v and o hold the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.s == o.s
	case KindNumber:
		return v.n == o.n
	case KindTime:
		return v.t.Equal(o.t)
	}
	return true
}

// GoString renders v for test diffs.
func (v Value) GoString() string {
	if v.kind == KindEmpty {
		return "table.Value{}"
	}
	return fmt.Sprintf("table.Value{%s:%q}", v.kind, v.String())
}

// Any converts v to the plain Go value handed to operations: "" for empty,
// string for text, int64 for integral numbers, float64 otherwise and
// time.Time for dates.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindNumber:
		if isIntegral(v.n) && math.Abs(v.n) < 1<<53 {
			return int64(v.n)
		}
		return v.n
	case KindTime:
		return v.t
	}
	return ""
}

// FromAny converts a plain Go value into a Value.
func FromAny(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case string:
		return Text(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Number(float64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case float32:
		return Number(float64(x)), nil
	case float64:
		return Number(x), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case time.Time:
		return Time(x), nil
	case fmt.Stringer:
		return Text(x.String()), nil
	}
	return Value{}, fmt.Errorf("unsupported cell value of type %T", x)
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}
