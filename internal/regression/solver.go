// Package regression fits ordinary least squares coefficients through the
// normal equations, inverting X'X with Gauss-Jordan elimination.
//
// No row reordering is done during elimination, so a matrix with a zero on
// the diagonal at some step is reported as singular even when a row swap
// would have rescued it.
package regression

import (
	"math"

	"goancova/domain/core"
)

// Epsilon is the smallest pivot magnitude accepted during inversion.
const Epsilon = 0x1p-52

// Fit returns the coefficients b minimising |Xb - y|², one per column of x.
func Fit(x [][]float64, y []float64) ([]float64, error) {
	xtx, xty, err := NormalEquations(x, y)
	if err != nil {
		return nil, err
	}

	inv, err := Invert(xtx)
	if err != nil {
		return nil, err
	}

	coefficients := make([]float64, len(inv))
	for i, row := range inv {
		for j, v := range row {
			coefficients[i] += v * xty[j]
		}
	}
	return coefficients, nil
}

// NormalEquations accumulates X'X (m×m) and X'y (m) over the rows of x.
func NormalEquations(x [][]float64, y []float64) ([][]float64, []float64, error) {
	n := len(x)
	if n == 0 {
		return nil, nil, core.NewInvalidDataError("design matrix has no rows")
	}
	m := len(x[0])
	if m == 0 {
		return nil, nil, core.NewInvalidDataError("design matrix has no columns")
	}
	if len(y) != n {
		return nil, nil, core.NewInvalidDataError("design matrix has %d rows but %d targets", n, len(y))
	}
	if n < m {
		return nil, nil, core.NewInvalidDataError("need at least %d rows for %d coefficients, got %d", m, m, n)
	}

	xtx := newMatrix(m, m)
	xty := make([]float64, m)
	for i, row := range x {
		if len(row) != m {
			return nil, nil, core.NewInvalidDataError("row %d has %d columns, expected %d", i, len(row), m)
		}
		for j := 0; j < m; j++ {
			for k := 0; k < m; k++ {
				xtx[j][k] += row[j] * row[k]
			}
			xty[j] += row[j] * y[i]
		}
	}
	return xtx, xty, nil
}

// Invert returns the inverse of a square matrix. a is left untouched.
func Invert(a [][]float64) ([][]float64, error) {
	n := len(a)
	if n == 0 {
		return nil, core.NewInvalidDataError("cannot invert an empty matrix")
	}

	// [A | I]
	aug := newMatrix(n, 2*n)
	for i, row := range a {
		if len(row) != n {
			return nil, core.NewInvalidDataError("matrix must be square to invert, row %d has %d columns", i, len(row))
		}
		copy(aug[i], row)
		aug[i][n+i] = 1
	}

	for i := 0; i < n; i++ {
		pivot := aug[i][i]
		if math.Abs(pivot) < Epsilon || math.IsNaN(pivot) {
			return nil, core.ErrSingularMatrix
		}
		for j := range aug[i] {
			aug[i][j] /= pivot
		}
		for k := 0; k < n; k++ {
			if k == i {
				continue
			}
			factor := aug[k][i]
			if factor == 0 {
				continue
			}
			for j := range aug[k] {
				aug[k][j] -= factor * aug[i][j]
			}
		}
	}

	inv := make([][]float64, n)
	for i := range aug {
		inv[i] = aug[i][n:]
	}
	return inv, nil
}

// Multiply returns the product a·b.
func Multiply(a, b [][]float64) ([][]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, core.NewInvalidDataError("cannot multiply empty matrices")
	}
	inner := len(b)
	cols := len(b[0])
	out := newMatrix(len(a), cols)
	for i, row := range a {
		if len(row) != inner {
			return nil, core.NewInvalidDataError("row %d of left operand has %d columns, expected %d", i, len(row), inner)
		}
		for k, v := range row {
			if len(b[k]) != cols {
				return nil, core.NewInvalidDataError("row %d of right operand has %d columns, expected %d", k, len(b[k]), cols)
			}
			for j := 0; j < cols; j++ {
				out[i][j] += v * b[k][j]
			}
		}
	}
	return out, nil
}

// DesignMatrix lays the given columns out row-wise behind an intercept column.
func DesignMatrix(columns ...[]float64) ([][]float64, error) {
	if len(columns) == 0 {
		return nil, core.NewInvalidDataError("no regressors given")
	}
	n := len(columns[0])
	x := newMatrix(n, len(columns)+1)
	for j, col := range columns {
		if len(col) != n {
			return nil, core.NewInvalidDataError("regressor %d has %d values, expected %d", j, len(col), n)
		}
		for i, v := range col {
			x[i][0] = 1
			x[i][j+1] = v
		}
	}
	return x, nil
}

func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}
