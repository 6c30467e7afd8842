package dataset

import (
	"fmt"
	"strconv"
)

// Kind is the variant a column holds. The set is closed.
type Kind int

const (
	Numerical Kind = iota
	Categorical
	Binary
)

func (k Kind) String() string {
	switch k {
	case Numerical:
		return "numerical"
	case Categorical:
		return "categorical"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps the textual name of a kind back to its value.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "numerical":
		return Numerical, nil
	case "categorical":
		return Categorical, nil
	case "binary":
		return Binary, nil
	}
	return 0, fmt.Errorf("unknown column kind %q", s)
}

// MarshalText lets Kind appear by name in JSON payloads.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Value is a single cell. Exactly one of the payload fields is meaningful,
// selected by Kind.
type Value struct {
	kind Kind
	num  float64
	str  string
	flag bool
}

// Num builds a Numerical value.
func Num(v float64) Value { return Value{kind: Numerical, num: v} }

// Cat builds a Categorical value.
func Cat(label string) Value { return Value{kind: Categorical, str: label} }

// Bool builds a Binary value.
func Bool(b bool) Value { return Value{kind: Binary, flag: b} }

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// Float64 returns the numeric payload; ok is false for other kinds.
func (v Value) Float64() (float64, bool) { return v.num, v.kind == Numerical }

// Label returns the categorical payload; ok is false for other kinds.
func (v Value) Label() (string, bool) { return v.str, v.kind == Categorical }

// Flag returns the binary payload; ok is false for other kinds.
func (v Value) Flag() (bool, bool) { return v.flag, v.kind == Binary }

func (v Value) String() string {
	switch v.kind {
	case Numerical:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Categorical:
		return v.str
	case Binary:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Numerical:
		return v.num == o.num
	case Categorical:
		return v.str == o.str
	case Binary:
		return v.flag == o.flag
	default:
		return false
	}
}
