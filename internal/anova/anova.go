// Package anova decomposes the variance of a numerical column into the part
// explained by categorical group membership and the residual within groups.
//
// Every function here is a pure computation over a read-only dataset.Store
// and is safe to call concurrently on the same store.
package anova

import (
	"math"
	"strings"

	"goancova/domain/core"
	"goancova/domain/dataset"
)

// Anova runs a one-way decomposition of dependent over the levels of each
// factor and returns the F statistic.
func Anova(store *dataset.Store, factors []string, dependent string) (float64, error) {
	r, err := Decompose(store, factors, dependent)
	if err != nil {
		return 0, err
	}
	return r.F, nil
}

// Decompose returns the full decomposition record. With several factors the
// levels of each factor become separate groups; factors are not crossed.
func Decompose(store *dataset.Store, factors []string, dependent string) (*Result, error) {
	scores, groups, err := prepare(store, factors, dependent)
	if err != nil {
		return nil, err
	}

	r, err := decompose(groups, scores, len(groups)-1)
	if err != nil {
		return nil, err
	}
	r.Name = strings.Join(factors, ",")
	r.Source = SourceFactor
	r.Dependent = dependent
	return r, nil
}

// AnovaWide treats every named numerical column as one group, the layout in
// which each treatment's observations are stored side by side.
func AnovaWide(store *dataset.Store, columns []string) (*Result, error) {
	if len(columns) == 0 {
		return nil, core.NewInvalidDataError("no columns given")
	}

	var scores []float64
	groups := make([]dataset.Group, 0, len(columns))
	for _, name := range columns {
		values, err := store.Float64s(name)
		if err != nil {
			return nil, err
		}
		if err := checkFinite(name, values); err != nil {
			return nil, err
		}
		g := dataset.Group{Key: name, Level: name, Values: values, Rows: make([]int, len(values))}
		for i := range values {
			g.Rows[i] = len(scores) + i
		}
		scores = append(scores, values...)
		groups = append(groups, g)
	}

	grandMean, n, err := store.GrandDescriptives(columns)
	if err != nil {
		return nil, err
	}

	r, err := decompose(groups, scores, len(groups)-1)
	if err != nil {
		return nil, err
	}
	r.GrandMean = grandMean
	r.N = n
	r.Name = strings.Join(columns, ",")
	r.Source = SourceColumns
	return r, nil
}

// prepare validates the dependent variable and builds the factor groups.
func prepare(store *dataset.Store, factors []string, dependent string) ([]float64, []dataset.Group, error) {
	scores, err := store.Float64s(dependent)
	if err != nil {
		return nil, nil, err
	}
	if len(scores) == 0 {
		return nil, nil, core.NewInvalidDataError("dependent variable %q is empty", dependent)
	}
	if err := checkFinite(dependent, scores); err != nil {
		return nil, nil, err
	}

	groups, err := store.GroupByCategoricalLevels(factors, dependent)
	if err != nil {
		return nil, nil, err
	}
	return scores, groups, nil
}

// decompose computes sums of squares of scores around their grand mean,
// grouping by the row indices in groups. dfBetween is passed in because a
// covariate record tests a single degree of freedom regardless of the
// number of groups.
func decompose(groups []dataset.Group, scores []float64, dfBetween int) (*Result, error) {
	n := len(scores)
	k := len(groups)
	dfWithin := n - k
	if k < 2 || dfBetween < 1 {
		return nil, core.NewDegenerateGroupError("need at least two groups, got %d", k)
	}
	if dfWithin < 1 {
		return nil, core.NewDegenerateGroupError("%d observations leave no within-group degrees of freedom for %d groups", n, k)
	}

	grandMean := mean(scores)
	r := &Result{
		GrandMean: grandMean,
		N:         n,
		DFBetween: dfBetween,
		DFWithin:  dfWithin,
		Groups:    make([]GroupSummary, 0, k),
	}

	for _, x := range scores {
		r.SSTotal += (x - grandMean) * (x - grandMean)
	}

	for _, g := range groups {
		size := len(g.Rows)
		if size == 0 {
			return nil, core.NewDegenerateGroupError("group %q has no members", g.Key)
		}
		var sum float64
		for _, row := range g.Rows {
			sum += scores[row]
		}
		groupMean := sum / float64(size)

		r.SSBetween += float64(size) * (groupMean - grandMean) * (groupMean - grandMean)
		for _, row := range g.Rows {
			d := scores[row] - groupMean
			r.SSWithin += d * d
		}
		r.Groups = append(r.Groups, GroupSummary{Key: g.Key, N: size, Mean: groupMean})
	}

	r.MSBetween = r.SSBetween / float64(dfBetween)
	r.MSWithin = r.SSWithin / float64(dfWithin)
	if r.MSWithin == 0 {
		return nil, core.NewDegenerateGroupError("within-group mean square is zero, F is undefined")
	}
	r.F = r.MSBetween / r.MSWithin
	if math.IsNaN(r.F) || math.IsInf(r.F, 0) {
		return nil, core.NewDegenerateGroupError("F statistic is not finite")
	}
	return r, nil
}

func checkFinite(name string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewInvalidDataError("%q contains %v at row %d", name, v, i)
		}
	}
	return nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
