package engine

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"apistudy/domain/study"
)

// ExecutePaired runs the selected comparison on the two paired summary
// vectors (one value per subject per condition, equal length). MethodNone
// and degenerate inputs return the neutral {0, 1.0} rather than an error.
func ExecutePaired(method study.ComparisonMethod, a, b []float64) (statistic, pValue float64) {
	if len(a) != len(b) || len(a) <= 1 {
		return 0, 1.0
	}

	switch method {
	case study.MethodParametric:
		return pairedTTest(a, b)
	case study.MethodRankBased:
		return wilcoxonSignedRank(a, b)
	default:
		return 0, 1.0
	}
}

// pairedTTest runs the matched-pairs t-test on the per-subject differences.
// A zero-variance difference vector with a nonzero mean is a maximally
// separated pair set: statistic ±Inf, p = 0. All-equal pairs fall back to
// the neutral result.
func pairedTTest(a, b []float64) (statistic, pValue float64) {
	n := len(a)
	diffs := make([]float64, n)
	for i := range a {
		diffs[i] = a[i] - b[i]
	}

	meanDiff, _ := stats.Mean(diffs)
	sdDiff, _ := stats.StandardDeviationSample(diffs)

	if sdDiff == 0 || math.IsNaN(sdDiff) {
		if meanDiff == 0 {
			return 0, 1.0
		}
		return math.Inf(sign(meanDiff)), 0.0
	}

	t := meanDiff / (sdDiff / math.Sqrt(float64(n)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	pValue = 2 * (1 - dist.CDF(math.Abs(t)))
	return t, clampProbability(pValue)
}

// wilcoxonSignedRank runs the two-sided Wilcoxon signed-rank test using the
// normal approximation with tie correction. Zero differences are dropped
// before ranking; an all-zero difference vector (or zero rank variance from
// ties) is the documented degeneracy and yields {0, 1.0} instead of an
// error.
func wilcoxonSignedRank(a, b []float64) (statistic, pValue float64) {
	var diffs []float64
	for i := range a {
		if d := a[i] - b[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}

	n := len(diffs)
	if n == 0 {
		return 0, 1.0
	}

	absDiffs := make([]float64, n)
	for i, d := range diffs {
		absDiffs[i] = math.Abs(d)
	}
	ranks := averageRanks(absDiffs)

	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	statistic = math.Min(wPlus, wMinus)

	fn := float64(n)
	mean := fn * (fn + 1) / 4
	variance := fn*(fn+1)*(2*fn+1)/24 - tieCorrection(ranks)/48
	if variance <= 0 {
		return statistic, 1.0
	}

	z := (statistic - mean) / math.Sqrt(variance)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	pValue = 2 * (1 - norm.CDF(math.Abs(z)))
	return statistic, clampProbability(pValue)
}

// tieCorrection computes Σ(t³−t) over the tie groups of a rank vector
func tieCorrection(ranks []float64) float64 {
	counts := make(map[float64]int)
	for _, r := range ranks {
		counts[r]++
	}
	total := 0.0
	for _, t := range counts {
		if t > 1 {
			ft := float64(t)
			total += ft*ft*ft - ft
		}
	}
	return total
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}
