package dataset

import (
	"goancova/domain/core"
)

// Group holds the dependent values observed for one level of one factor.
// Rows records the row index each value came from.
type Group struct {
	Key    string    `json:"key"`
	Factor string    `json:"factor"`
	Level  string    `json:"level"`
	Rows   []int     `json:"rows"`
	Values []float64 `json:"values"`
}

// LevelKey formats the key of a factor level as "{factor}-{label}".
func LevelKey(factor, label string) string {
	return factor + "-" + label
}

// GroupByCategoricalLevels zips every factor's labels against the dependent
// column's values. Factors are not crossed: each factor contributes its own
// groups. Groups are ordered by factor, then by first appearance of the level.
func (s *Store) GroupByCategoricalLevels(factors []string, dependent string) ([]Group, error) {
	if len(factors) == 0 {
		return nil, core.NewInvalidDataError("at least one factor is required")
	}
	dv, err := s.Float64s(dependent)
	if err != nil {
		return nil, err
	}

	var groups []Group
	for _, factor := range factors {
		col, err := s.Column(factor)
		if err != nil {
			return nil, err
		}
		labels, err := col.Labels()
		if err != nil {
			return nil, err
		}
		if len(labels) != len(dv) {
			return nil, core.NewInvalidDataError("factor %q has %d rows, dependent %q has %d", factor, len(labels), dependent, len(dv))
		}

		positions := make(map[string]int)
		for row, label := range labels {
			key := LevelKey(factor, label)
			pos, seen := positions[key]
			if !seen {
				pos = len(groups)
				positions[key] = pos
				groups = append(groups, Group{Key: key, Factor: factor, Level: label})
			}
			groups[pos].Rows = append(groups[pos].Rows, row)
			groups[pos].Values = append(groups[pos].Values, dv[row])
		}
	}
	return groups, nil
}

// Levels is the map view of GroupByCategoricalLevels: level key to values.
func (s *Store) Levels(factors []string, dependent string) (map[string][]float64, error) {
	groups, err := s.GroupByCategoricalLevels(factors, dependent)
	if err != nil {
		return nil, err
	}
	levels := make(map[string][]float64, len(groups))
	for _, g := range groups {
		levels[g.Key] = g.Values
	}
	return levels, nil
}

// GrandDescriptives returns the count-weighted mean over all values of the
// named numerical columns and their total count.
func (s *Store) GrandDescriptives(names []string) (float64, int, error) {
	if len(names) == 0 {
		return 0, 0, core.NewInvalidDataError("no columns given")
	}
	var sum float64
	var n int
	for _, name := range names {
		values, err := s.Float64s(name)
		if err != nil {
			return 0, 0, err
		}
		for _, v := range values {
			sum += v
		}
		n += len(values)
	}
	if n == 0 {
		return 0, 0, core.NewInvalidDataError("columns %v are empty", names)
	}
	return sum / float64(n), n, nil
}

// NumericItem is a named numeric sequence pulled out of the store, e.g. a
// covariate feeding a regression design matrix.
type NumericItem struct {
	Name   string
	Values []float64
}

// NumericItems extracts the named numerical columns, rejecting any whose
// length differs from n.
func (s *Store) NumericItems(names []string, n int) ([]NumericItem, error) {
	items := make([]NumericItem, 0, len(names))
	for _, name := range names {
		values, err := s.Float64s(name)
		if err != nil {
			return nil, err
		}
		if len(values) != n {
			return nil, core.NewInvalidDataError("column %q has %d values, expected %d", name, len(values), n)
		}
		items = append(items, NumericItem{Name: name, Values: values})
	}
	return items, nil
}
