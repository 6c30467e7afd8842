// Package fdist turns F statistics into tail probabilities.
//
// PValue evaluates the incomplete beta function with a truncated power
// series (IncompleteBeta) and is the value reported for every decomposition.
// ExactPValue delegates to gonum and is reported next to it for comparison.
// Significance decisions use DecisionPValue, which falls back to the exact
// value once the series hits its iteration cap.
package fdist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxIterations caps the incomplete beta series. Hitting the cap is not
	// an error; the partial sum is returned.
	MaxIterations = 1000
	// Tolerance stops the series once a term falls below it.
	Tolerance = 1e-8
)

var lanczos = [6]float64{
	76.18009172947146,
	-86.50532032941677,
	24.01409824083091,
	-1.231739572450155,
	1.208650973866179e-3,
	-0.5395239384953e-5,
}

// PValue returns 1 - CDF(f; d1, d2), clamped to [0, 1].
func PValue(f, d1, d2 float64) float64 {
	p, _ := PValueConverged(f, d1, d2)
	return p
}

// PValueConverged is PValue that also reports whether the incomplete beta
// series reached Tolerance before MaxIterations. Past the cap the partial
// sum undershoots the CDF and the p-value drifts back towards 1, so it is
// no longer monotone in f.
func PValueConverged(f, d1, d2 float64) (float64, bool) {
	cdf, converged := cdf(f, d1, d2)
	return clamp(1 - cdf), converged
}

// DecisionPValue is the p-value to compare against alpha: the series value
// when it converged, gonum's exact value otherwise.
func DecisionPValue(f, d1, d2 float64) float64 {
	if p, converged := PValueConverged(f, d1, d2); converged {
		return p
	}
	return ExactPValue(f, d1, d2)
}

// CDF evaluates the F distribution's cumulative probability at f.
func CDF(f, d1, d2 float64) float64 {
	v, _ := cdf(f, d1, d2)
	return v
}

func cdf(f, d1, d2 float64) (float64, bool) {
	switch {
	case f <= 0:
		return 0, true
	case math.IsInf(f, 1):
		return 1, true
	}
	x := d1 * f / (d1*f + d2)
	return incompleteBeta(x, d1/2, d2/2)
}

// IncompleteBeta evaluates the series
//
//	B(a,b)⁻¹ · xᵃ(1-x)ᵇ / a · Σₙ tₙ,  tₙ = tₙ₋₁ · (n-1+a+b)·x / (n+a),  t₀ = 1
//
// summing from n = 1. x of exactly 0 or 1 is returned unchanged.
func IncompleteBeta(x, a, b float64) float64 {
	v, _ := incompleteBeta(x, a, b)
	return v
}

func incompleteBeta(x, a, b float64) (float64, bool) {
	if x == 0 || x == 1 {
		return x, true
	}

	factor := math.Exp(LogGamma(a+b)-LogGamma(a)-LogGamma(b)) * math.Pow(x, a) * math.Pow(1-x, b) / a

	var sum float64
	term := 1.0
	for n := 1; n < MaxIterations; n++ {
		term *= (float64(n) - 1 + a + b) * x / (float64(n) + a)
		sum += term
		if math.Abs(term) < Tolerance {
			return factor * sum, true
		}
	}
	return factor * sum, false
}

// LogGamma is the Lanczos approximation of ln Γ(x). x must be positive.
func LogGamma(x float64) float64 {
	tmp := x + 5.5
	tmp = (x+0.5)*math.Log(tmp) - tmp
	ser := 1.000000000190015
	for j, c := range lanczos {
		ser += c / (x + float64(j+1))
	}
	return tmp + math.Log(2.5066282746310005*ser/x)
}

// ExactPValue is the upper tail of gonum's F distribution. Non-positive
// degrees of freedom yield 1.
func ExactPValue(f, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 {
		return 1.0
	}
	dist := distuv.F{D1: d1, D2: d2}
	return clamp(dist.Survival(f))
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return p
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
