package dataset

import (
	"fmt"

	"goancova/domain/core"
)

// Store is an ordered collection of uniquely named columns. It is built once
// by an ingestion step and treated as read-only by the analysis pipeline.
type Store struct {
	columns []*Column
	index   map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add appends an already built column.
func (s *Store) Add(c *Column) error {
	if _, exists := s.index[c.Name()]; exists {
		return fmt.Errorf("%w: %q", core.ErrDuplicateColumn, c.Name())
	}
	s.index[c.Name()] = len(s.columns)
	s.columns = append(s.columns, c)
	return nil
}

// AddColumn appends a new column of kind built from values.
func (s *Store) AddColumn(name string, kind Kind, values []Value) error {
	c, err := NewColumn(name, kind, values)
	if err != nil {
		return err
	}
	return s.Add(c)
}

func (s *Store) AddNumerical(name string, values []float64) error {
	return s.Add(NewNumericalColumn(name, values))
}

func (s *Store) AddCategorical(name string, labels []string) error {
	return s.Add(NewCategoricalColumn(name, labels))
}

func (s *Store) AddBinary(name string, flags []bool) error {
	return s.Add(NewBinaryColumn(name, flags))
}

// AppendValue appends one value to the end of the named column.
func (s *Store) AppendValue(name string, v Value) error {
	c, err := s.Column(name)
	if err != nil {
		return err
	}
	return c.append(v)
}

// Column looks a column up by name.
func (s *Store) Column(name string) (*Column, error) {
	i, ok := s.index[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return s.columns[i], nil
}

// ColumnType returns the kind of the named column.
func (s *Store) ColumnType(name string) (Kind, error) {
	c, err := s.Column(name)
	if err != nil {
		return 0, err
	}
	return c.Kind(), nil
}

// Float64s returns the values of a numerical column.
func (s *Store) Float64s(name string) ([]float64, error) {
	c, err := s.Column(name)
	if err != nil {
		return nil, err
	}
	return c.Float64s()
}

// Columns returns the columns in insertion order.
func (s *Store) Columns() []*Column {
	return append([]*Column(nil), s.columns...)
}

// Names returns the column names in insertion order.
func (s *Store) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name()
	}
	return names
}

// Len returns the number of columns.
func (s *Store) Len() int { return len(s.columns) }

// Rows returns the common row count of all columns.
func (s *Store) Rows() (int, error) {
	if len(s.columns) == 0 {
		return 0, nil
	}
	n := s.columns[0].Len()
	for _, c := range s.columns[1:] {
		if c.Len() != n {
			return 0, core.NewInvalidDataError("column %q has %d rows, %q has %d", c.Name(), c.Len(), s.columns[0].Name(), n)
		}
	}
	return n, nil
}
