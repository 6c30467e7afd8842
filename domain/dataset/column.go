package dataset

import (
	"math"

	"goancova/domain/core"

	"github.com/montanaflynn/stats"
)

// Column is a named sequence of values sharing a single Kind. Only the
// backing slice matching the kind is populated.
type Column struct {
	name   string
	kind   Kind
	nums   []float64
	labels []string
	flags  []bool
}

// NewNumericalColumn creates a numerical column holding a copy of values.
func NewNumericalColumn(name string, values []float64) *Column {
	return &Column{name: name, kind: Numerical, nums: append([]float64(nil), values...)}
}

// NewCategoricalColumn creates a categorical column holding a copy of labels.
func NewCategoricalColumn(name string, labels []string) *Column {
	return &Column{name: name, kind: Categorical, labels: append([]string(nil), labels...)}
}

// NewBinaryColumn creates a binary column holding a copy of flags.
func NewBinaryColumn(name string, flags []bool) *Column {
	return &Column{name: name, kind: Binary, flags: append([]bool(nil), flags...)}
}

// NewColumn creates an empty column of the given kind and fills it from
// values. Every value must share kind.
func NewColumn(name string, kind Kind, values []Value) (*Column, error) {
	c := &Column{name: name, kind: kind}
	for _, v := range values {
		if err := c.append(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.kind {
	case Numerical:
		return len(c.nums)
	case Categorical:
		return len(c.labels)
	case Binary:
		return len(c.flags)
	default:
		return 0
	}
}

// Value returns the value at row i.
func (c *Column) Value(i int) (Value, error) {
	if i < 0 || i >= c.Len() {
		return Value{}, core.NewInvalidIndexError(i, c.Len())
	}
	switch c.kind {
	case Numerical:
		return Num(c.nums[i]), nil
	case Categorical:
		return Cat(c.labels[i]), nil
	case Binary:
		return Bool(c.flags[i]), nil
	default:
		return Value{}, core.NewTypeMismatchError(c.name, Numerical, c.kind)
	}
}

// Values returns every value in row order.
func (c *Column) Values() []Value {
	out := make([]Value, c.Len())
	for i := range out {
		out[i], _ = c.Value(i)
	}
	return out
}

// Float64s returns a copy of the numeric values. Binary columns are not
// implicitly numeric.
func (c *Column) Float64s() ([]float64, error) {
	if c.kind != Numerical {
		return nil, core.NewTypeMismatchError(c.name, Numerical, c.kind)
	}
	return append([]float64(nil), c.nums...), nil
}

// Labels returns a copy of the categorical labels.
func (c *Column) Labels() ([]string, error) {
	if c.kind != Categorical {
		return nil, core.NewTypeMismatchError(c.name, Categorical, c.kind)
	}
	return append([]string(nil), c.labels...), nil
}

// Bools returns a copy of the binary flags.
func (c *Column) Bools() ([]bool, error) {
	if c.kind != Binary {
		return nil, core.NewTypeMismatchError(c.name, Binary, c.kind)
	}
	return append([]bool(nil), c.flags...), nil
}

// Freq counts how many rows equal v. v must be of the column's kind.
func (c *Column) Freq(v Value) (int, error) {
	if v.Kind() != c.kind {
		return 0, core.NewTypeMismatchError(c.name, v.Kind(), c.kind)
	}
	n := 0
	switch c.kind {
	case Numerical:
		for _, x := range c.nums {
			if x == v.num {
				n++
			}
		}
	case Categorical:
		for _, s := range c.labels {
			if s == v.str {
				n++
			}
		}
	case Binary:
		for _, b := range c.flags {
			if b == v.flag {
				n++
			}
		}
	}
	return n, nil
}

// Descriptives. All of them require a non-empty numerical column.

func (c *Column) numeric() ([]float64, error) {
	if c.kind != Numerical {
		return nil, core.NewTypeMismatchError(c.name, Numerical, c.kind)
	}
	if len(c.nums) == 0 {
		return nil, core.NewInvalidDataError("column %q is empty", c.name)
	}
	return c.nums, nil
}

func (c *Column) Mean() (float64, error) {
	data, err := c.numeric()
	if err != nil {
		return 0, err
	}
	return stats.Mean(data)
}

// Variance is the population variance (divides by n).
func (c *Column) Variance() (float64, error) {
	data, err := c.numeric()
	if err != nil {
		return 0, err
	}
	return stats.PopulationVariance(data)
}

// StdDev is the square root of Variance.
func (c *Column) StdDev() (float64, error) {
	v, err := c.Variance()
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

func (c *Column) Median() (float64, error) {
	data, err := c.numeric()
	if err != nil {
		return 0, err
	}
	return stats.Median(data)
}

func (c *Column) Min() (float64, error) {
	data, err := c.numeric()
	if err != nil {
		return 0, err
	}
	return stats.Min(data)
}

func (c *Column) Max() (float64, error) {
	data, err := c.numeric()
	if err != nil {
		return 0, err
	}
	return stats.Max(data)
}

// Summary bundles the descriptives of a numerical column.
type Summary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Describe computes every descriptive in one call.
func (c *Column) Describe() (Summary, error) {
	s := Summary{N: c.Len()}
	var err error
	if s.Mean, err = c.Mean(); err != nil {
		return Summary{}, err
	}
	if s.Variance, err = c.Variance(); err != nil {
		return Summary{}, err
	}
	s.StdDev = math.Sqrt(s.Variance)
	if s.Median, err = c.Median(); err != nil {
		return Summary{}, err
	}
	if s.Min, err = c.Min(); err != nil {
		return Summary{}, err
	}
	if s.Max, err = c.Max(); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (c *Column) append(v Value) error {
	if v.Kind() != c.kind {
		return core.NewTypeMismatchError(c.name, v.Kind(), c.kind)
	}
	switch c.kind {
	case Numerical:
		c.nums = append(c.nums, v.num)
	case Categorical:
		c.labels = append(c.labels, v.str)
	case Binary:
		c.flags = append(c.flags, v.flag)
	}
	return nil
}
