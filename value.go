package xlcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the Value variant.
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindText
	KindBool
	KindError
)

// ErrorKind identifies a spreadsheet error value. Error values are
// ordinary cell data: they are stored, displayed, and propagated
// through dependent formulas; they never abort a recalculation pass.
type ErrorKind uint8

const (
	ErrDiv0  ErrorKind = iota // #DIV/0!
	ErrValue                  // #VALUE!
	ErrName                   // #NAME?
	ErrRef                    // #REF!
	ErrNA                     // #N/A
)

// String returns the Excel display form of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrDiv0:
		return "#DIV/0!"
	case ErrValue:
		return "#VALUE!"
	case ErrName:
		return "#NAME?"
	case ErrRef:
		return "#REF!"
	case ErrNA:
		return "#N/A"
	}
	return "#VALUE!"
}

// Value is the variant cell value: Empty, Number, Text, Boolean, or
// Error. The zero Value is Empty.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
	errk ErrorKind
}

// Empty is the value of a never-written cell.
var Empty = Value{}

// Number creates a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Text creates a text value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// ErrorValue creates an error value of the given kind.
func ErrorValue(k ErrorKind) Value { return Value{kind: KindError, errk: k} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether the value is Empty.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsError reports whether the value is an error value.
func (v Value) IsError() bool { return v.kind == KindError }

// Num returns the numeric payload; zero unless Kind is KindNumber.
func (v Value) Num() float64 { return v.num }

// Str returns the text payload; empty unless Kind is KindText.
func (v Value) Str() string { return v.str }

// BoolVal returns the boolean payload; false unless Kind is KindBool.
func (v Value) BoolVal() bool { return v.b }

// ErrKind returns the error kind; meaningful only when IsError.
func (v Value) ErrKind() ErrorKind { return v.errk }

// String renders the value the way a cell would display it.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.num, 'G', -1, 64)
	case KindText:
		return v.str
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindError:
		return v.errk.String()
	}
	return ""
}

// Equal reports exact equality of two values, including kind.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindError:
		return v.errk == o.errk
	}
	return true
}

// AsNumber coerces the value for numeric contexts using Excel rules:
// numbers pass through, Empty is 0, booleans are 0/1, and text that
// parses as a number is accepted. Anything else reports failure.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindEmpty:
		return 0, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// AsText coerces the value for text contexts.
func (v Value) AsText() string { return v.String() }

// AsBool coerces the value for boolean contexts: booleans pass
// through, numbers are false iff zero, Empty is false.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindNumber:
		return v.num != 0, true
	case KindEmpty:
		return false, true
	}
	return false, false
}

// compareValues orders two values for the comparison operators.
// Returns -1/0/1, or ok=false when the kinds are not comparable.
// Excel compares numbers with numbers and text with text
// (case-insensitively); Empty coerces to the other side's zero value.
func compareValues(a, b Value) (int, bool) {
	if a.kind == KindEmpty && b.kind != KindEmpty {
		a = zeroOf(b.kind)
	}
	if b.kind == KindEmpty && a.kind != KindEmpty {
		b = zeroOf(a.kind)
	}

	switch {
	case a.kind == KindNumber && b.kind == KindNumber:
		switch {
		case a.num < b.num:
			return -1, true
		case a.num > b.num:
			return 1, true
		}
		return 0, true
	case a.kind == KindText && b.kind == KindText:
		return strings.Compare(strings.ToLower(a.str), strings.ToLower(b.str)), true
	case a.kind == KindBool && b.kind == KindBool:
		switch {
		case !a.b && b.b:
			return -1, true
		case a.b && !b.b:
			return 1, true
		}
		return 0, true
	case a.kind == KindEmpty && b.kind == KindEmpty:
		return 0, true
	}
	return 0, false
}

func zeroOf(k ValueKind) Value {
	switch k {
	case KindNumber:
		return Number(0)
	case KindText:
		return Text("")
	case KindBool:
		return Bool(false)
	}
	return Empty
}

// GoString aids debugging in tests.
func (v Value) GoString() string {
	switch v.kind {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return fmt.Sprintf("Number(%v)", v.num)
	case KindText:
		return fmt.Sprintf("Text(%q)", v.str)
	case KindBool:
		return fmt.Sprintf("Bool(%v)", v.b)
	case KindError:
		return fmt.Sprintf("ErrorValue(%s)", v.errk)
	}
	return "Value(?)"
}
