package anova

import (
	"math"
	"testing"

	"goancova/domain/core"
	"goancova/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ancovaStore builds score = 10 + 2·age + 5·treated + noise, with the same
// ages in both conditions.
func ancovaStore(t *testing.T) *dataset.Store {
	t.Helper()
	ages := []float64{20, 30, 40, 50, 20, 30, 40, 50}
	noise := []float64{0.3, -0.2, 0.1, -0.2, -0.1, 0.2, -0.3, 0.2}
	conditions := []string{"control", "control", "control", "control", "treatment", "treatment", "treatment", "treatment"}
	happiness := []float64{3, 7, 4, 6, 5, 5, 8, 2}

	scores := make([]float64, len(ages))
	for i := range ages {
		scores[i] = 10 + 2*ages[i] + noise[i]
		if conditions[i] == "treatment" {
			scores[i] += 5
		}
	}

	s := dataset.NewStore()
	require.NoError(t, s.AddNumerical("score", scores))
	require.NoError(t, s.AddCategorical("condition", conditions))
	require.NoError(t, s.AddNumerical("age", ages))
	require.NoError(t, s.AddNumerical("happiness", happiness))
	return s
}

func TestAncova_FirstRecordIsPlainAnova(t *testing.T) {
	s := ancovaStore(t)

	results, err := Ancova(s, "condition", []string{"age", "happiness"}, "score")
	require.NoError(t, err)
	require.Len(t, results, 3)

	plain, err := Decompose(s, []string{"condition"}, "score")
	require.NoError(t, err)
	assert.Equal(t, *plain, results[0])
	assert.Equal(t, "condition", results[0].Name)
	assert.Equal(t, "age", results[1].Name)
	assert.Equal(t, "happiness", results[2].Name)
}

func TestAncova_CovariateRecord(t *testing.T) {
	s := ancovaStore(t)

	results, err := Ancova(s, "condition", []string{"age"}, "score")
	require.NoError(t, err)
	require.Len(t, results, 2)

	first, cov := results[0], results[1]
	assert.Equal(t, SourceCovariate, cov.Source)
	assert.Equal(t, "score", cov.Dependent)
	assert.Equal(t, 1, cov.DFBetween)
	assert.Equal(t, first.DFWithin, cov.DFWithin)
	assert.Equal(t, 8-2, cov.DFWithin)
	require.Len(t, cov.Coefficients, 2)
	assert.InDelta(t, 2.0, cov.Coefficients[1], 0.05)

	// Removing the age trend leaves only noise inside each condition.
	assert.Less(t, cov.MSWithin, first.MSWithin)
	assert.Greater(t, cov.F, first.F)
	assert.InDelta(t, cov.SSTotal, cov.SSBetween+cov.SSWithin, 1e-9)
	assert.Len(t, cov.Groups, 2)
}

func TestAncova_InterceptIsNotSubtracted(t *testing.T) {
	s := ancovaStore(t)
	results, err := Ancova(s, "condition", []string{"age"}, "score")
	require.NoError(t, err)
	cov := results[1]

	scores, _ := s.Float64s("score")
	ages, _ := s.Float64s("age")
	adjusted := AdjustScores(scores, ages, cov.Coefficients[1])

	var sum float64
	for _, v := range adjusted {
		sum += v
	}
	assert.InDelta(t, sum/float64(len(adjusted)), cov.GrandMean, 1e-9)
	// the intercept (≈10 + 2.5) is still in the adjusted scores
	assert.Greater(t, cov.GrandMean, 5.0)
}

func TestAncova_NoCovariates(t *testing.T) {
	s := ancovaStore(t)
	results, err := Ancova(s, "condition", nil, "score")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestAncova_Errors(t *testing.T) {
	s := ancovaStore(t)
	require.NoError(t, s.AddCategorical("label", []string{"a", "b", "a", "b", "a", "b", "a", "b"}))
	require.NoError(t, s.AddNumerical("constant", []float64{1, 1, 1, 1, 1, 1, 1, 1}))
	require.NoError(t, s.AddNumerical("short", []float64{1, 2, 3}))
	require.NoError(t, s.AddNumerical("withnan", []float64{1, 2, 3, 4, math.NaN(), 6, 7, 8}))

	cases := []struct {
		name       string
		factor     string
		covariates []string
		dependent  string
		want       error
	}{
		{"categorical covariate", "condition", []string{"label"}, "score", core.ErrTypeMismatch},
		{"numeric factor", "age", []string{"happiness"}, "score", core.ErrTypeMismatch},
		{"missing covariate", "condition", []string{"nope"}, "score", core.ErrNotFound},
		{"short covariate", "condition", []string{"short"}, "score", core.ErrInvalidData},
		{"nan covariate", "condition", []string{"withnan"}, "score", core.ErrInvalidData},
		{"constant covariate", "condition", []string{"constant"}, "score", core.ErrSingularMatrix},
		{"categorical dependent", "condition", []string{"age"}, "label", core.ErrTypeMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := Ancova(s, tc.factor, tc.covariates, tc.dependent)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, results)
		})
	}
}

func TestAdjustScores(t *testing.T) {
	got := AdjustScores([]float64{10, 20, 30}, []float64{1, 2, 3}, 2)
	assert.Equal(t, []float64{8, 16, 24}, got)
}
