package types

import (
	"fmt"
	"strconv"
	"time"
)

type Kind int

const (
	Missing Kind = iota
	String
	Number
	Bool
	Date
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Date:
		return "date"
	}
	return "unknown"
}

// Value is a single cell. Text holds the display form read from the file,
// Num the numeric payload for Number and Date cells (dates are spreadsheet
// serials). NumFmt and CustomNumFmt carry the number format so it survives
// a round trip through the writer.
type Value struct {
	Kind         Kind
	Text         string
	Num          float64
	Bool         bool
	Time         time.Time
	NumFmt       int
	CustomNumFmt string
}

func StringValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: String, Text: s}
}

func NumberValue(f float64) Value {
	return Value{Kind: Number, Num: f}
}

func BoolValue(b bool) Value {
	return Value{Kind: Bool, Bool: b}
}

// ValueOf converts a Go scalar into a Value. nil becomes Missing.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case int:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case float32:
		return NumberValue(float64(x))
	case float64:
		return NumberValue(x)
	case time.Time:
		return Value{Kind: Date, Time: x, Text: formatTime(x)}
	default:
		return StringValue(fmt.Sprint(x))
	}
}

func (v Value) IsMissing() bool {
	return v.Kind == Missing
}

// Equal compares kind and payload. A string "1" never equals the number 1.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Missing:
		return false
	case String:
		return v.Text == o.Text
	case Number:
		return v.Num == o.Num
	case Bool:
		return v.Bool == o.Bool
	case Date:
		if !v.Time.IsZero() || !o.Time.IsZero() {
			return v.Time.Equal(o.Time)
		}
		return v.Num == o.Num
	}
	return false
}

// String returns the value's text form: ISO dates, the formatted text of
// numbers when the file supplied one, TRUE/FALSE for booleans.
func (v Value) String() string {
	switch v.Kind {
	case String:
		return v.Text
	case Number:
		if v.Text != "" {
			return v.Text
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Bool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case Date:
		if !v.Time.IsZero() {
			return formatTime(v.Time)
		}
		return v.Text
	}
	return ""
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// key is used for hashing values into groups.
type key struct {
	kind Kind
	text string
	num  float64
	b    bool
}

func (v Value) key() key {
	switch v.Kind {
	case String:
		return key{kind: String, text: v.Text}
	case Number:
		return key{kind: Number, num: v.Num}
	case Bool:
		return key{kind: Bool, b: v.Bool}
	case Date:
		if !v.Time.IsZero() {
			return key{kind: Date, text: v.Time.UTC().Format(time.RFC3339Nano)}
		}
		return key{kind: Date, num: v.Num}
	}
	return key{}
}
