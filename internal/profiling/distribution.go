package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics for the present values of one variable
type Summary struct {
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Outliers int     `json:"outliers"`
	Distinct int     `json:"distinct"`
}

// summarize computes a Summary; empty input yields the zero Summary. Quartiles use the
// nearest-rank method so that samples of one to three values still get them.
func summarize(data []float64) (Summary, error) {
	var s Summary
	if len(data) == 0 {
		return s, nil
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, err
	}
	if len(data) > 1 {
		if s.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return s, err
		}
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, err
	}
	s.Skewness = calculateSkewness(data, s.Mean, s.StdDev)
	s.Distinct = distinct(data)

	if s.Q25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return s, err
	}
	if s.Q75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return s, err
	}
	s.Outliers = detectOutliers(data, s.Q25, s.Q75)
	return s, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// detectOutliers counts values outside the 1.5×IQR fences
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

func distinct(data []float64) int {
	seen := make(map[float64]struct{}, 16)
	for _, x := range data {
		seen[x] = struct{}{}
	}
	return len(seen)
}
