package engine

import (
	"fmt"
	"math"

	"apistudy/domain/core"
	"apistudy/domain/study"
)

// InsufficientDataConclusion is the fixed verdict for n <= 1 pairs,
// independent of any computed values
const InsufficientDataConclusion = "insufficient data for statistical analysis"

// Conclude renders the directional natural-language verdict for a paired
// comparison. The direction word comes from the caller-supplied polarity;
// the synthesizer itself only knows sign and significance.
func Conclude(pValue, meanDiff float64, pairs int, condA, condB string, polarity study.Polarity) string {
	if pairs <= 1 {
		return InsufficientDataConclusion
	}
	if pValue >= significanceAlpha {
		return fmt.Sprintf("no significant difference between %s and %s", condA, condB)
	}
	if meanDiff < 0 {
		return fmt.Sprintf("%s is significantly %s than %s", condA, polarity, condB)
	}
	return fmt.Sprintf("%s is significantly %s than %s", condB, polarity, condA)
}

// StrongestSignificant scans the correlation results in the caller-supplied
// question order and reports the single strongest significant one: the
// maximum |pearson r| among entries clearing the significance gate, ties
// broken by first encounter. The fixed ordering keeps output reproducible.
func StrongestSignificant(order []core.QuestionID, results map[core.QuestionID]study.CorrelationResult) study.Finding {
	var best study.CorrelationResult
	found := false

	for _, q := range order {
		r, ok := results[q]
		if !ok || !r.Significant() {
			continue
		}
		if !found || math.Abs(r.PearsonR) > math.Abs(best.PearsonR) {
			best = r
			found = true
		}
	}

	if !found {
		return study.Finding{Summary: "no significant correlation identified"}
	}

	direction := "positive"
	if best.PearsonR < 0 {
		direction = "negative"
	}
	return study.Finding{
		Found:  true,
		Result: best,
		Summary: fmt.Sprintf("strongest significant correlation: %s vs %s (%s, r=%.3f)",
			best.ProcessMetric, best.OutcomeMetric, direction, best.PearsonR),
	}
}

// EvaluateHypothesis checks a review-study research question's expected
// correlation sign against its result. Significant correlations either
// support or contradict the expectation; a non-significant one leaves the
// hypothesis unsupported.
func EvaluateHypothesis(q core.QuestionID, expected study.HypothesisDirection, r study.CorrelationResult) study.HypothesisOutcome {
	outcome := study.HypothesisOutcome{Question: q, Expected: expected}

	if !r.Significant() {
		outcome.Verdict = "not supported: no significant correlation found"
		return outcome
	}

	observed := study.ExpectPositive
	if r.PearsonR < 0 {
		observed = study.ExpectNegative
	}

	if observed == expected {
		outcome.Verdict = fmt.Sprintf("supported: significant %s correlation with %s (r=%.3f)",
			directionWord(observed), r.OutcomeMetric, r.PearsonR)
	} else {
		outcome.Verdict = fmt.Sprintf("contradicted: significant %s correlation with %s (r=%.3f) opposes the expected direction",
			directionWord(observed), r.OutcomeMetric, r.PearsonR)
	}
	return outcome
}

func directionWord(d study.HypothesisDirection) string {
	if d == study.ExpectNegative {
		return "negative"
	}
	return "positive"
}
