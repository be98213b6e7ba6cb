package engine

import (
	"math"

	"github.com/montanaflynn/stats"

	"apistudy/domain/study"
)

// EffectSize computes the standardized mean-difference effect size
// (Cohen's d) over the signed per-subject differences: mean divided by the
// population standard deviation. A zero-variance difference set makes the
// standardized effect undefined, not infinite, so it maps to 0. Never
// returns NaN or Inf.
func EffectSize(diffs []float64) (d, meanDiff, stdDiff float64) {
	if len(diffs) == 0 {
		return 0, 0, 0
	}

	meanDiff, _ = stats.Mean(diffs)
	stdDiff, _ = stats.StandardDeviationPopulation(diffs)
	if stdDiff == 0 || math.IsNaN(stdDiff) {
		return 0, meanDiff, 0
	}
	return meanDiff / stdDiff, meanDiff, stdDiff
}

// ClassifyEffect maps |d| to the magnitude band shared by every report
// surface. This is the single implementation; the conclusion synthesizer
// reuses it rather than re-deriving the bands.
func ClassifyEffect(d float64) study.EffectMagnitude {
	abs := math.Abs(d)
	switch {
	case abs < 0.2:
		return study.EffectVerySmall
	case abs < 0.5:
		return study.EffectSmall
	case abs < 0.8:
		return study.EffectMedium
	default:
		return study.EffectLarge
	}
}
