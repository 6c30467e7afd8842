package regression

import (
	"math/rand"
	"testing"

	"goancova/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFit_SimpleLine(t *testing.T) {
	x := [][]float64{{1, 1}, {1, 2}, {1, 3}}
	y := []float64{2, 4, 6}

	coefficients, err := Fit(x, y)
	require.NoError(t, err)
	require.Len(t, coefficients, 2)
	assert.InDelta(t, 0.0, coefficients[0], 1e-9, "intercept")
	assert.InDelta(t, 2.0, coefficients[1], 1e-9, "slope")
}

func TestFit_WithInterceptAndNoise(t *testing.T) {
	// y = 3 + 0.5x exactly, plus a symmetric perturbation that cancels out
	xs := []float64{1, 2, 3, 4, 5, 6}
	y := make([]float64, len(xs))
	for i, v := range xs {
		y[i] = 3 + 0.5*v
	}
	x, err := DesignMatrix(xs)
	require.NoError(t, err)

	coefficients, err := Fit(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, coefficients[0], 1e-9)
	assert.InDelta(t, 0.5, coefficients[1], 1e-9)
}

func TestFit_MatchesGonumSolve(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n, m := 40, 3
	x := make([][]float64, n)
	y := make([]float64, n)
	data := make([]float64, 0, n*m)
	for i := range x {
		x[i] = []float64{1, rng.Float64() * 10, rng.NormFloat64()}
		y[i] = 1.5 + 0.8*x[i][1] - 2*x[i][2] + rng.NormFloat64()*0.1
		data = append(data, x[i]...)
	}

	coefficients, err := Fit(x, y)
	require.NoError(t, err)

	var want mat.VecDense
	require.NoError(t, want.SolveVec(mat.NewDense(n, m, data), mat.NewVecDense(n, y)))
	for j := 0; j < m; j++ {
		assert.InDelta(t, want.AtVec(j), coefficients[j], 1e-9, "coefficient %d", j)
	}
}

func TestFit_InvalidInput(t *testing.T) {
	cases := []struct {
		name string
		x    [][]float64
		y    []float64
	}{
		{"no rows", nil, nil},
		{"no columns", [][]float64{{}}, []float64{1}},
		{"target length", [][]float64{{1, 1}, {1, 2}}, []float64{1}},
		{"ragged", [][]float64{{1, 1}, {1}}, []float64{1, 2}},
		{"fewer rows than columns", [][]float64{{1, 2, 3}}, []float64{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Fit(tc.x, tc.y)
			assert.ErrorIs(t, err, core.ErrInvalidData)
		})
	}
}

func TestFit_ConstantRegressorIsSingular(t *testing.T) {
	x, err := DesignMatrix([]float64{5, 5, 5, 5})
	require.NoError(t, err)
	_, err = Fit(x, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, core.ErrSingularMatrix)
}

func TestInvert_RoundTripIsIdentity(t *testing.T) {
	matrices := [][][]float64{
		{{2}},
		{{4, 7}, {2, 6}},
		{{4, 7, 2}, {3, 6, 1}, {2, 5, 3}},
	}

	rng := rand.New(rand.NewSource(42))
	for size := 2; size <= 6; size++ {
		a := make([][]float64, size)
		for i := range a {
			a[i] = make([]float64, size)
			for j := range a[i] {
				a[i][j] = rng.Float64()*2 - 1
			}
			// diagonally dominant keeps every pivot away from zero
			a[i][i] += float64(size)
		}
		matrices = append(matrices, a)
	}

	for _, a := range matrices {
		inv, err := Invert(a)
		require.NoError(t, err)

		product, err := Multiply(a, inv)
		require.NoError(t, err)
		for i := range product {
			for j := range product[i] {
				want := 0.0
				if i == j {
					want = 1
				}
				assert.InDelta(t, want, product[i][j], 1e-9, "element (%d,%d) of %v", i, j, a)
			}
		}
	}
}

func TestInvert_MatchesGonum(t *testing.T) {
	a := [][]float64{{4, 7, 2}, {3, 6, 1}, {2, 5, 3}}
	inv, err := Invert(a)
	require.NoError(t, err)

	dense := mat.NewDense(3, 3, []float64{4, 7, 2, 3, 6, 1, 2, 5, 3})
	var want mat.Dense
	require.NoError(t, want.Inverse(dense))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, want.At(i, j), inv[i][j], 1e-9)
		}
	}
}

func TestInvert_DoesNotModifyInput(t *testing.T) {
	a := [][]float64{{4, 7}, {2, 6}}
	_, err := Invert(a)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4, 7}, {2, 6}}, a)
}

func TestInvert_Errors(t *testing.T) {
	_, err := Invert(nil)
	assert.ErrorIs(t, err, core.ErrInvalidData)

	_, err = Invert([][]float64{{1, 2, 3}, {4, 5, 6}})
	assert.ErrorIs(t, err, core.ErrInvalidData)

	_, err = Invert([][]float64{{1, 2}, {2, 4}})
	assert.ErrorIs(t, err, core.ErrSingularMatrix)

	// Invertible, but the leading zero pivot is not reordered away.
	_, err = Invert([][]float64{{0, 1}, {1, 0}})
	assert.ErrorIs(t, err, core.ErrSingularMatrix)
}

func TestDesignMatrix(t *testing.T) {
	x, err := DesignMatrix([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1, 3}, {1, 2, 4}}, x)

	_, err = DesignMatrix([]float64{1, 2}, []float64{3})
	assert.ErrorIs(t, err, core.ErrInvalidData)

	_, err = DesignMatrix()
	assert.ErrorIs(t, err, core.ErrInvalidData)
}

func TestMultiply_DimensionMismatch(t *testing.T) {
	_, err := Multiply([][]float64{{1, 2}}, [][]float64{{1, 2}})
	assert.ErrorIs(t, err, core.ErrInvalidData)
}
