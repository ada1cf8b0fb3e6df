package grid

import (
	"strconv"
	"strings"
)

// ValueKind discriminates the Value union.
type ValueKind int

const (
	// Empty is the zero value: no content at the coordinate.
	Empty ValueKind = iota
	// Number is a float64 literal.
	Number
	// Bool is a TRUE/FALSE literal.
	Bool
	// Text is a plain string.
	Text
	// Formula is formula text stored without the leading "=".
	Formula
)

func (k ValueKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Text:
		return "text"
	case Formula:
		return "formula"
	default:
		return "unknown"
	}
}

// Value is a typed cell value. The zero Value is Empty.
type Value struct {
	Kind    ValueKind
	Num     float64
	Boolean bool
	Str     string
}

// NumberValue builds a numeric Value.
func NumberValue(n float64) Value { return Value{Kind: Number, Num: n} }

// BoolValue builds a boolean Value.
func BoolValue(b bool) Value { return Value{Kind: Bool, Boolean: b} }

// TextValue builds a string Value.
func TextValue(s string) Value { return Value{Kind: Text, Str: s} }

// FormulaValue builds a formula Value from text without the leading "=".
func FormulaValue(text string) Value { return Value{Kind: Formula, Str: text} }

// Coerce interprets an untyped raw cell string, trying in order: formula
// (leading "="), boolean literal, numeric literal, else string.
//
// This is a heuristic, not a type system: "007" coerces to the number 7
// even when the author meant a string. Loaders that know the intended type
// should construct the Value directly instead.
func Coerce(raw string) Value {
	if raw == "" {
		return Value{}
	}
	if strings.HasPrefix(raw, "=") {
		return FormulaValue(raw[1:])
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return BoolValue(true)
	case "FALSE":
		return BoolValue(false)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return NumberValue(n)
	}
	return TextValue(raw)
}

// IsEmpty reports whether the value carries no content.
func (v Value) IsEmpty() bool { return v.Kind == Empty }

// Equal is exact per-variant equality. There is no cross-kind coercion:
// the number 10 and the string "10" are unequal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Empty:
		return true
	case Number:
		return v.Num == o.Num
	case Bool:
		return v.Boolean == o.Boolean
	default:
		return v.Str == o.Str
	}
}

// Display renders the value the way a raw snapshot cell would hold it.
func (v Value) Display() string {
	switch v.Kind {
	case Empty:
		return ""
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Bool:
		if v.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case Formula:
		return "=" + v.Str
	default:
		return v.Str
	}
}
