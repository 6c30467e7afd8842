package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Shape describes the distribution of one group of observations
type Shape struct {
	Key            string  `json:"key"`
	N              int     `json:"n"`
	Mean           float64 `json:"mean"`
	StdDev         float64 `json:"std_dev"`
	Median         float64 `json:"median"`
	Q25            float64 `json:"q25"`
	Q75            float64 `json:"q75"`
	Skewness       float64 `json:"skewness"`
	ExcessKurtosis float64 `json:"excess_kurtosis"`
	Outliers       int     `json:"outliers"`
	NormalityP     float64 `json:"normality_p"`
	IsNormal       bool    `json:"is_normal"`
}

// AnalyzeDistribution summarises the shape of data and runs a Jarque-Bera
// normality test against alpha
func AnalyzeDistribution(key string, data []float64, alpha float64) (Shape, error) {
	shape := Shape{Key: key, N: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return shape, err
	}

	stdDev, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return shape, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return shape, err
	}

	// Quartiles for IQR-based outlier detection
	q25, q75 := data[0], data[0]
	if len(data) > 1 {
		quartiles, err := stats.Quartile(data)
		if err != nil {
			return shape, err
		}
		q25, q75 = quartiles.Q1, quartiles.Q3
	}

	shape.Mean = mean
	shape.StdDev = stdDev
	shape.Median = median
	shape.Q25 = q25
	shape.Q75 = q75
	shape.Skewness = calculateSkewness(data, mean, stdDev)
	shape.ExcessKurtosis = calculateExcessKurtosis(data, mean, stdDev)
	shape.Outliers = detectOutliers(data, q25, q75)
	shape.NormalityP = jarqueBera(len(data), shape.Skewness, shape.ExcessKurtosis)
	shape.IsNormal = shape.NormalityP >= alpha

	return shape, nil
}

// calculateSkewness computes the moment coefficient of skewness
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}
	return sumCubedDeviations / float64(len(data))
}

// calculateExcessKurtosis computes the moment kurtosis minus 3
func calculateExcessKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}

	sumFourthDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumFourthDeviations += deviation * deviation * deviation * deviation
	}
	return sumFourthDeviations/float64(len(data)) - 3
}

// jarqueBera returns the upper-tail probability of the Jarque-Bera statistic
// under a chi-squared distribution with two degrees of freedom
func jarqueBera(n int, skewness, excessKurtosis float64) float64 {
	if n < 3 {
		return 1
	}
	jb := float64(n) / 6 * (skewness*skewness + excessKurtosis*excessKurtosis/4)
	p := distuv.ChiSquared{K: 2}.Survival(jb)
	return math.Max(0, math.Min(1, p))
}

// detectOutliers counts values outside 1.5 IQR of the quartiles
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}
