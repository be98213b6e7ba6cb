package engine

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"apistudy/domain/study"
)

// maxNormalitySampleSize caps the sample fed to the goodness-of-fit test.
// Above this size the p-value is oversensitive to trivial departures, so a
// reproducible subsample of exactly this size is drawn instead.
const maxNormalitySampleSize = 5000

// NormalityClassifier decides whether a sample is plausibly normal, which
// in turn decides whether the parametric comparison path is admissible.
// Each classifier owns its RNG, so concurrent analyses never interfere with
// each other's subsampling determinism.
type NormalityClassifier struct {
	rng *rand.Rand
}

// NewNormalityClassifier creates a classifier with a seeded subsampler
func NewNormalityClassifier(seed int64) *NormalityClassifier {
	return &NormalityClassifier{rng: rand.New(rand.NewSource(seed))}
}

// Classify tests the null hypothesis "the sample is normal".
//
// Fixed rules, independent of the data:
//   - n < 3: the test is meaningless; returns {false, 1.0} so downstream
//     always takes the non-parametric path.
//   - any numerical failure (constant sample, invalid transform): returns
//     the conservative {false, 0.0} and the analysis continues.
func (c *NormalityClassifier) Classify(sample study.Sample) study.DistributionVerdict {
	if len(sample) < 3 {
		return study.DistributionVerdict{IsNormal: false, PValue: 1.0}
	}

	data := []float64(sample)
	if len(data) > maxNormalitySampleSize {
		data = c.subsample(data, maxNormalitySampleSize)
	}

	isNormal, p := testNormality(data)
	return study.DistributionVerdict{IsNormal: isNormal, PValue: p}
}

// subsample draws k values without replacement using the classifier's RNG
func (c *NormalityClassifier) subsample(data []float64, k int) []float64 {
	idx := c.rng.Perm(len(data))[:k]
	out := make([]float64, k)
	for i, j := range idx {
		out[i] = data[j]
	}
	return out
}

// testNormality runs D'Agostino's K² test for samples large enough to carry
// it, falling back to a Jarque-Bera style skewness/kurtosis approximation
// for very small samples. Decision threshold: p > 0.05.
func testNormality(data []float64) (isNormal bool, pValue float64) {
	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviationPopulation(data)
	if stdDev == 0 || math.IsNaN(stdDev) || math.IsInf(stdDev, 0) {
		return false, 0.0
	}

	if len(data) >= 8 {
		return dagostinoK2(data, mean, stdDev)
	}

	skewness := sampleSkewness(data, mean, stdDev)
	kurtosis := sampleKurtosis(data, mean, stdDev) - 3 // excess kurtosis

	testStat := math.Abs(skewness) + math.Abs(kurtosis)/2
	chi2 := distuv.ChiSquared{K: 2}
	pValue = 1 - chi2.CDF(testStat*testStat)
	if math.IsNaN(pValue) {
		return false, 0.0
	}
	return pValue > 0.05, pValue
}

// dagostinoK2 combines the D'Agostino skewness transform with the
// Anscombe-Glynn kurtosis transform into the K² statistic, chi-squared with
// two degrees of freedom under the null.
func dagostinoK2(data []float64, mean, stdDev float64) (isNormal bool, pValue float64) {
	n := float64(len(data))

	g1 := sampleSkewness(data, mean, stdDev)
	g2 := sampleKurtosis(data, mean, stdDev) // total kurtosis

	// Skewness transform to Z1
	y := g1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := (3 * (n*n + 27*n - 70) * (n + 1) * (n + 3)) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	if w2 <= 0 {
		return false, 0.0
	}
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform to Z2
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	if v <= 0 {
		return false, 0.0
	}
	x := (g2 - e) / math.Sqrt(v)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	if a <= 4 {
		return false, 0.0
	}

	term := 1 - 2/(9*a)
	den := 1 + x*math.Sqrt(2/(a-4))
	if den <= 0 {
		// Invalid fractional power; treat as non-normal.
		return false, 0.0
	}
	z2 := (term - math.Pow((1-2/a)/den, 1.0/3.0)) / math.Sqrt(2/(9*a))

	k2 := z1*z1 + z2*z2
	chi2 := distuv.ChiSquared{K: 2}
	pValue = 1 - chi2.CDF(k2)
	if math.IsNaN(pValue) {
		return false, 0.0
	}
	return pValue > 0.05, pValue
}

// sampleSkewness computes the adjusted Fisher-Pearson coefficient
func sampleSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubed := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
	}

	skewness := sumCubed / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

// sampleKurtosis computes bias-corrected total kurtosis (3.0 under the null)
func sampleKurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 3.0
	}

	n := float64(len(data))
	sumFourth := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sumFourth += d * d * d * d
	}

	excess := sumFourth/n - 3
	if n > 3 {
		correction := (n - 1) / ((n - 2) * (n - 3))
		excess = excess*correction + 6/(n+1)
	}
	return excess + 3
}
