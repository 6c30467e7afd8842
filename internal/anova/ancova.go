package anova

import (
	"goancova/domain/dataset"
	"goancova/internal/regression"
)

// Ancova decomposes dependent over the levels of factor, then once per
// covariate after removing the covariate's linear effect.
//
// The first record is the plain one-way decomposition for factor. Each
// covariate record regresses dependent on [1, covariate], subtracts
// slope·covariate from every score (the intercept stays in), and recomputes
// the sums of squares of the adjusted scores over the factor's original
// groups. Covariate records carry df_between = 1 and df_within = N - k.
func Ancova(store *dataset.Store, factor string, covariates []string, dependent string) ([]Result, error) {
	scores, groups, err := prepare(store, []string{factor}, dependent)
	if err != nil {
		return nil, err
	}

	first, err := decompose(groups, scores, len(groups)-1)
	if err != nil {
		return nil, err
	}
	first.Name = factor
	first.Source = SourceFactor
	first.Dependent = dependent

	items, err := store.NumericItems(covariates, len(scores))
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(items)+1)
	results = append(results, *first)
	for _, item := range items {
		if err := checkFinite(item.Name, item.Values); err != nil {
			return nil, err
		}

		x, err := regression.DesignMatrix(item.Values)
		if err != nil {
			return nil, err
		}
		coefficients, err := regression.Fit(x, scores)
		if err != nil {
			return nil, err
		}

		adjusted := AdjustScores(scores, item.Values, coefficients[1])
		r, err := decompose(groups, adjusted, 1)
		if err != nil {
			return nil, err
		}
		r.Name = item.Name
		r.Source = SourceCovariate
		r.Dependent = dependent
		r.Coefficients = coefficients
		results = append(results, *r)
	}
	return results, nil
}

// AdjustScores returns y - slope·covariate element-wise.
func AdjustScores(y, covariate []float64, slope float64) []float64 {
	adjusted := make([]float64, len(y))
	for i := range y {
		adjusted[i] = y[i] - slope*covariate[i]
	}
	return adjusted
}
