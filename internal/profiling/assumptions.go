// Package profiling checks the distributional assumptions behind a variance
// decomposition: per-group normality and homogeneity of variances.
package profiling

import (
	"errors"
	"log"
	"math"

	"goancova/domain/core"
	"goancova/domain/dataset"
	"goancova/internal/anova"
	"goancova/internal/fdist"
)

// Assumptions is the assumption report of one ANOVA design
type Assumptions struct {
	Dependent string   `json:"dependent"`
	Factors   []string `json:"factors"`
	Alpha     float64  `json:"alpha"`
	Groups    []Shape  `json:"groups"`
	AllNormal bool     `json:"all_normal"`

	// Levene's test on absolute deviations from the group medians
	LeveneF        float64 `json:"levene_f"`
	LeveneDF1      int     `json:"levene_df1"`
	LeveneDF2      int     `json:"levene_df2"`
	LeveneP        float64 `json:"levene_p"`
	// LeveneConverged is false when LeveneP comes from a series cut off at
	// its iteration cap; EqualVariances then follows the exact p-value.
	LeveneConverged bool `json:"levene_converged"`
	EqualVariances  bool `json:"equal_variances"`
}

// CheckAssumptions profiles every factor-level group of the dependent
// variable and tests whether the groups share one variance
func CheckAssumptions(store *dataset.Store, factors []string, dependent string, alpha float64) (*Assumptions, error) {
	groups, err := store.GroupByCategoricalLevels(factors, dependent)
	if err != nil {
		return nil, err
	}

	out := &Assumptions{
		Dependent: dependent,
		Factors:   append([]string{}, factors...),
		Alpha:     alpha,
		AllNormal: true,
	}

	// Deviations are laid out group after group, so a row that belongs to
	// several factors contributes once per group, as in the decomposition.
	var labels []string
	var deviations []float64
	for _, g := range groups {
		shape, err := AnalyzeDistribution(g.Key, g.Values, alpha)
		if err != nil {
			return nil, err
		}
		out.Groups = append(out.Groups, shape)
		out.AllNormal = out.AllNormal && shape.IsNormal

		for _, v := range g.Values {
			labels = append(labels, g.Key)
			deviations = append(deviations, math.Abs(v-shape.Median))
		}
	}

	levene, err := leveneTest(labels, deviations)
	dfBetween, dfWithin := len(groups)-1, len(deviations)-len(groups)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrDegenerateGroup) && dfBetween >= 1 && dfWithin >= 1 && allZero(deviations):
		// Every group is constant, so no group spreads differently.
		log.Printf("[Profiling] %s is constant within every group; Levene F reported as 0", dependent)
		out.LeveneDF1, out.LeveneDF2 = dfBetween, dfWithin
		out.LeveneP = 1
		out.LeveneConverged = true
		out.EqualVariances = true
		return out, nil
	default:
		return nil, err
	}

	d1, d2 := float64(levene.DFBetween), float64(levene.DFWithin)
	out.LeveneF = levene.F
	out.LeveneDF1 = levene.DFBetween
	out.LeveneDF2 = levene.DFWithin
	out.LeveneP, out.LeveneConverged = fdist.PValueConverged(levene.F, d1, d2)
	out.EqualVariances = fdist.DecisionPValue(levene.F, d1, d2) >= alpha

	return out, nil
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

// leveneTest runs a one-way decomposition of the deviations over their group
// labels
func leveneTest(labels []string, deviations []float64) (*anova.Result, error) {
	const group, deviation = "group", "deviation"

	s := dataset.NewStore()
	if err := s.AddCategorical(group, labels); err != nil {
		return nil, err
	}
	if err := s.AddNumerical(deviation, deviations); err != nil {
		return nil, err
	}
	return anova.Decompose(s, []string{group}, deviation)
}
