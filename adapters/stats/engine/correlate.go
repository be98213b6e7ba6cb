package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"apistudy/domain/study"
)

// MinCorrelationPairs is the hard power floor: with this many valid pairs
// or fewer, both coefficients are forced to r = 0, p = 1 rather than
// fabricating a spurious correlation. Not a tunable.
const MinCorrelationPairs = 10

// Correlate computes the linear (Pearson) and rank (Spearman) correlation
// between a process metric and an outcome metric, with two-sided p-values,
// and labels the pair jointly by magnitude and significance. Pairs with a
// missing value on either side are excluded before the floor check.
func Correlate(process, outcome []float64, processName, outcomeName string) study.CorrelationResult {
	x, y := validPairs(process, outcome)
	n := len(x)

	result := study.CorrelationResult{
		ProcessMetric: processName,
		OutcomeMetric: outcomeName,
		SampleSize:    n,
	}

	if n <= MinCorrelationPairs {
		result.PearsonR, result.PearsonP = 0, 1
		result.SpearmanR, result.SpearmanP = 0, 1
		result.Label = ClassifyCorrelation(0, 1)
		return result
	}

	result.PearsonR, result.PearsonP = pearson(x, y)
	result.SpearmanR, result.SpearmanP = spearman(x, y)
	result.Label = ClassifyCorrelation(result.PearsonR, result.PearsonP)
	return result
}

// validPairs keeps only the pairs where both sides are finite numbers
func validPairs(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var vx, vy []float64
	for i := 0; i < n; i++ {
		if isMissing(x[i]) || isMissing(y[i]) {
			continue
		}
		vx = append(vx, x[i])
		vy = append(vy, y[i])
	}
	return vx, vy
}

func isMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// pearson computes the linear correlation coefficient with its two-sided
// p-value. A degenerate (zero variance) input yields the neutral {0, 1}.
func pearson(x, y []float64) (r, p float64) {
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, 1.0
	}
	r = clampCoefficient(r)
	return r, correlationPValue(r, len(x))
}

// spearman computes the rank correlation coefficient: Pearson over
// average-ranked values, with the same t-transform p-value
func spearman(x, y []float64) (rho, p float64) {
	return pearson(averageRanks(x), averageRanks(y))
}

// correlationPValue converts a correlation coefficient to a two-sided
// p-value via the t transform with n−2 degrees of freedom
func correlationPValue(r float64, n int) float64 {
	if n < 3 {
		return 1.0
	}
	if 1-r*r <= 0 {
		// Perfect correlation; the t statistic diverges.
		return 0.0
	}

	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return clampProbability(2 * (1 - dist.CDF(math.Abs(t))))
}

// averageRanks converts values to 1-based ranks, ties sharing their
// average rank
func averageRanks(data []float64) []float64 {
	n := len(data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return data[idx[i]] < data[idx[j]]
	})

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && data[idx[j]] == data[idx[i]] {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2.0
		for k := i; k < j; k++ {
			ranks[idx[k]] = avgRank
		}
		i = j
	}
	return ranks
}

func clampCoefficient(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// ClassifyCorrelation maps a coefficient and its p-value to the joint
// qualitative label. Magnitude alone never earns a strong label: a
// magnitude that fails the significance gate is marked unreliable, and a
// tiny magnitude that passes it is merely detectable. Total and
// deterministic over every (r, p) pair.
func ClassifyCorrelation(r, p float64) string {
	magnitude := math.Abs(r)
	significant := p < significanceAlpha

	switch {
	case magnitude < 0.1:
		if significant {
			return "detectable"
		}
		return "inexistent"
	case magnitude < 0.3:
		return unreliableSuffix("weak", significant)
	case magnitude < 0.5:
		return unreliableSuffix("moderate", significant)
	case magnitude < 0.7:
		return unreliableSuffix("strong", significant)
	default:
		return unreliableSuffix("very strong", significant)
	}
}

func unreliableSuffix(label string, significant bool) string {
	if significant {
		return label
	}
	return label + " (unreliable)"
}
