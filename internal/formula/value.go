// Package formula resolves geocache coordinate formulas such as
// "N48° 39.(A+2)(Bx2)5 E006° 11.CDE" against known variable values.
package formula

import (
	"encoding/json"
	"strconv"
	"unicode"
)

// Status is the completion state of a part, a coordinate or a formula.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
	StatusError    Status = "error"
)

// Worst aggregates statuses: any error wins, then any partial.
func Worst(statuses ...Status) Status {
	out := StatusComplete
	for _, s := range statuses {
		switch s {
		case StatusError:
			return StatusError
		case StatusPartial:
			out = StatusPartial
		}
	}
	return out
}

// Value is a resolved integer or a symbolic string that still carries
// unknown variables or unevaluable arithmetic.
type Value struct {
	n        int
	s        string
	symbolic bool
}

// Resolved wraps an integer result.
func Resolved(n int) Value { return Value{n: n} }

// Symbolic wraps an unresolved expression.
func Symbolic(s string) Value { return Value{s: s, symbolic: true} }

// IsResolved reports whether v holds an integer.
func (v Value) IsResolved() bool { return !v.symbolic }

// Int returns the integer and true for a resolved value.
func (v Value) Int() (int, bool) { return v.n, !v.symbolic }

// String renders the integer or returns the symbolic text as-is.
func (v Value) String() string {
	if v.symbolic {
		return v.s
	}
	return strconv.Itoa(v.n)
}

// Status classifies a single value: negative numbers are errors, symbolic
// text containing any letter is partial, everything else is complete.
// Symbolic text without letters (an unevaluable group such as "(8/0)") is
// complete but never numeric, see Coordinate.Numeric.
func (v Value) Status() Status {
	if !v.symbolic {
		if v.n < 0 {
			return StatusError
		}
		return StatusComplete
	}
	if hasLetter(v.s) {
		return StatusPartial
	}
	return StatusComplete
}

// MarshalJSON emits a JSON number for resolved values and a string otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.symbolic {
		return json.Marshal(v.s)
	}
	return json.Marshal(v.n)
}

// UnmarshalJSON accepts either a number or a string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Resolved(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Symbolic(s)
	return nil
}

func isVariable(r rune) bool { return r >= 'A' && r <= 'Z' }

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
