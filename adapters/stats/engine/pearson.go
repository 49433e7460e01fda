package engine

import (
	"math"

	"healthcorr/domain/correlation"
	"healthcorr/domain/survey"

	"gonum.org/v1/gonum/stat/distuv"
)

// Result is a Pearson coefficient with the sample it was computed from
type Result struct {
	R      float64
	N      int
	PValue float64
	OK     bool
	Reason correlation.AbsentReason
}

// Pearson computes the product-moment correlation of the complete pairs of xs and ys.
// Pairs are formed by index over the common prefix; a pair is complete when both sides
// are present. Fewer than correlation.MinPairs complete pairs, or zero variance on either
// side, yields ok == false.
func Pearson(xs, ys []survey.Optional) (float64, bool) {
	res := pearson(xs, ys)
	return res.R, res.OK
}

// PearsonResult is Pearson plus the complete-pair count and a two-sided p-value from the
// Student t distribution with n-2 degrees of freedom
func PearsonResult(xs, ys []survey.Optional) Result {
	res := pearson(xs, ys)
	if res.OK {
		res.PValue = pValue(res.R, res.N)
	}
	return res
}

func pearson(xs, ys []survey.Optional) Result {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}

	count := 0
	sumX, sumY := 0.0, 0.0
	sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0

	for i := 0; i < n; i++ {
		if !xs[i].Valid || !ys[i].Valid {
			continue
		}
		x, y := xs[i].Value, ys[i].Value
		count++
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
		sumY2 += y * y
	}

	if count < correlation.MinPairs {
		return Result{N: count, Reason: correlation.ReasonInsufficientPairs}
	}

	fn := float64(count)
	numerator := fn*sumXY - sumX*sumY
	radicand := (fn*sumX2 - sumX*sumX) * (fn*sumY2 - sumY*sumY)

	// Rounding can push a zero-variance radicand slightly negative
	if radicand <= 0 {
		return Result{N: count, Reason: correlation.ReasonZeroVariance}
	}
	denominator := math.Sqrt(radicand)
	if denominator == 0 {
		return Result{N: count, Reason: correlation.ReasonZeroVariance}
	}

	return Result{R: numerator / denominator, N: count, OK: true}
}

func pValue(r float64, n int) float64 {
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Min(1, math.Max(0, p))
}
