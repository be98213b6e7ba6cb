package engine

import (
	"math"
	"reflect"
	"testing"

	"apistudy/domain/core"
	"apistudy/domain/study"
)

func pairedMeasurements(metricA, metricB []float64, condA, condB string) []study.Measurement {
	var ms []study.Measurement
	for i := range metricA {
		subject := study.SubjectKey{Owner: "acme", Name: string(rune('a' + i))}
		ms = append(ms,
			study.Measurement{Subject: subject, Condition: condA, Stratum: "simple", Value: metricA[i], Success: true},
			study.Measurement{Subject: subject, Condition: condB, Stratum: "simple", Value: metricB[i], Success: true},
		)
	}
	return ms
}

// TestCompare_ClearSeparation covers the canonical case: three subjects,
// one condition uniformly 10 units slower, normal pooled samples. The
// parametric path fires and the conclusion names the faster condition.
func TestCompare_ClearSeparation(t *testing.T) {
	ms := pairedMeasurements([]float64{10, 12, 11}, []float64{20, 22, 21}, "graphql", "rest")
	e := New(42)

	r, err := e.Compare(ms, ComparisonSpec{
		Metric:     "response_time_ms",
		ConditionA: "graphql",
		ConditionB: "rest",
		Polarity:   study.PolarityFaster,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Method != study.MethodParametric {
		t.Fatalf("expected parametric method, got %s", r.Method)
	}
	if r.TestName != "paired t-test" {
		t.Errorf("unexpected test name %q", r.TestName)
	}
	if r.MeanDifference != -10 {
		t.Errorf("expected mean difference -10, got %f", r.MeanDifference)
	}
	if r.PValue >= 0.05 {
		t.Errorf("expected significant result, got p=%f", r.PValue)
	}
	if r.Conclusion != "graphql is significantly faster than rest" {
		t.Errorf("unexpected conclusion %q", r.Conclusion)
	}
	if r.PairCount != 3 {
		t.Errorf("expected 3 pairs, got %d", r.PairCount)
	}
	if r.StatsA.Mean != 11 || r.StatsB.Mean != 21 {
		t.Errorf("descriptives wrong: meanA=%f meanB=%f", r.StatsA.Mean, r.StatsB.Mean)
	}
}

// TestCompare_ZeroVariance covers identical constant samples on both
// sides: non-normal verdicts, rank-based path, neutral outcome, zero
// effect, and no panic anywhere
func TestCompare_ZeroVariance(t *testing.T) {
	ms := pairedMeasurements([]float64{5, 5, 5}, []float64{5, 5, 5}, "graphql", "rest")
	e := New(42)

	r, err := e.Compare(ms, ComparisonSpec{
		Metric:     "response_size_bytes",
		ConditionA: "graphql",
		ConditionB: "rest",
		Polarity:   study.PolaritySmaller,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Method != study.MethodRankBased {
		t.Fatalf("constant samples should route to the rank-based path, got %s", r.Method)
	}
	if r.EffectSize != 0 {
		t.Errorf("expected zero effect, got %f", r.EffectSize)
	}
	if r.PValue != 1.0 {
		t.Errorf("expected neutral p=1.0, got %f", r.PValue)
	}
	if math.IsNaN(r.Statistic) || math.IsNaN(r.EffectSize) {
		t.Error("NaN leaked into the result")
	}
	if r.Conclusion != "no significant difference between graphql and rest" {
		t.Errorf("unexpected conclusion %q", r.Conclusion)
	}
}

// TestCompare_SinglePair covers the insufficient-data path: one complete
// pair cannot carry any test
func TestCompare_SinglePair(t *testing.T) {
	ms := pairedMeasurements([]float64{100}, []float64{900}, "graphql", "rest")
	e := New(42)

	r, err := e.Compare(ms, ComparisonSpec{
		Metric:     "response_time_ms",
		ConditionA: "graphql",
		ConditionB: "rest",
		Polarity:   study.PolarityFaster,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Method != study.MethodNone {
		t.Fatalf("expected MethodNone, got %s", r.Method)
	}
	if r.Conclusion != InsufficientDataConclusion {
		t.Errorf("unexpected conclusion %q", r.Conclusion)
	}
	if r.PValue != 1.0 {
		t.Errorf("expected p=1.0, got %f", r.PValue)
	}
	if r.EffectSize != 0 {
		t.Errorf("expected zero effect, got %f", r.EffectSize)
	}
	if r.TestName != "N/A" {
		t.Errorf("expected test name N/A, got %q", r.TestName)
	}
}

// TestCompare_IncompletePairsExcluded verifies subjects measured under a
// single condition do not enter the paired test
func TestCompare_IncompletePairsExcluded(t *testing.T) {
	ms := pairedMeasurements([]float64{10, 12, 11}, []float64{20, 22, 21}, "graphql", "rest")
	// One orphan subject with only the A side measured
	ms = append(ms, study.Measurement{
		Subject:   study.SubjectKey{Owner: "acme", Name: "orphan"},
		Condition: "graphql",
		Stratum:   "simple",
		Value:     999,
		Success:   true,
	})
	// And a failed trial that must be filtered out entirely
	ms = append(ms, study.Measurement{
		Subject:   study.SubjectKey{Owner: "acme", Name: "a"},
		Condition: "rest",
		Stratum:   "simple",
		Value:     1e9,
		Success:   false,
	})

	e := New(42)
	r, err := e.Compare(ms, ComparisonSpec{
		Metric: "response_time_ms", ConditionA: "graphql", ConditionB: "rest",
		Polarity: study.PolarityFaster,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.PairCount != 3 {
		t.Errorf("expected 3 complete pairs, got %d", r.PairCount)
	}
	if r.MeanDifference != -10 {
		t.Errorf("orphan or failed trial leaked into pairing: mean diff %f", r.MeanDifference)
	}
}

// TestCompare_Idempotent verifies back-to-back runs on identical input
// with the same seed produce identical results
func TestCompare_Idempotent(t *testing.T) {
	a := make([]float64, 40)
	b := make([]float64, 40)
	for i := range a {
		a[i] = float64(i%7) + 0.5
		b[i] = float64(i%5) + 3.5
	}
	ms := pairedMeasurements(a, b, "graphql", "rest")
	spec := ComparisonSpec{
		Metric: "response_time_ms", ConditionA: "graphql", ConditionB: "rest",
		Polarity: study.PolarityFaster,
	}

	e := New(1234)
	r1, err1 := e.Compare(ms, spec)
	r2, err2 := e.Compare(ms, spec)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Errorf("results differ across identical runs:\n%+v\n%+v", r1, r2)
	}
}

// TestCompare_InvalidSpec verifies the domain validator gates every
// produced result: a spec with no condition labels is rejected instead of
// yielding an empty comparison
func TestCompare_InvalidSpec(t *testing.T) {
	_, err := New(42).Compare(nil, ComparisonSpec{Metric: "response_time_ms"})
	if err == nil {
		t.Fatal("expected error for missing condition labels")
	}
}

// TestCompare_MethodAgreesWithNormality pins Compare's dispatch to the
// selection rule: a normal sample paired with an outlier-ridden one must
// route to the rank-based path, and the chosen method must match
// SelectMethod applied to the verdicts the result itself carries.
func TestCompare_MethodAgreesWithNormality(t *testing.T) {
	// Bell-shaped A side, B side dominated by a single extreme outlier
	a := []float64{0, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 4}
	b := make([]float64, len(a))
	for i := range b {
		b[i] = 1
	}
	b[len(b)-1] = 1000

	e := New(42)
	r, err := e.Compare(pairedMeasurements(a, b, "graphql", "rest"), ComparisonSpec{
		Metric: "response_time_ms", ConditionA: "graphql", ConditionB: "rest",
		Polarity: study.PolarityFaster,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.NormalityA.IsNormal {
		t.Error("bell-shaped sample should pass the normality check")
	}
	if r.NormalityB.IsNormal {
		t.Error("outlier-ridden sample should fail the normality check")
	}
	if r.Method != study.MethodRankBased {
		t.Errorf("mixed verdicts must route to the rank-based path, got %s", r.Method)
	}
	if want := study.SelectMethod(r.NormalityA, r.NormalityB); r.Method != want {
		t.Errorf("method %s disagrees with the selection rule %s", r.Method, want)
	}
}

func TestEffectSize_ZeroVariance(t *testing.T) {
	d, meanDiff, stdDiff := EffectSize([]float64{-10, -10, -10})
	if d != 0 {
		t.Errorf("expected d=0 for zero-variance differences, got %f", d)
	}
	if meanDiff != -10 {
		t.Errorf("expected mean -10, got %f", meanDiff)
	}
	if stdDiff != 0 {
		t.Errorf("expected std 0, got %f", stdDiff)
	}
}

func TestEffectSize_Standardized(t *testing.T) {
	// Differences [1, 2, 3]: mean 2, population std sqrt(2/3)
	d, _, _ := EffectSize([]float64{1, 2, 3})
	expected := 2.0 / math.Sqrt(2.0/3.0)
	if math.Abs(d-expected) > 1e-9 {
		t.Errorf("expected d=%f, got %f", expected, d)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Error("effect size must stay finite")
	}
}

func TestClassifyEffect_Bands(t *testing.T) {
	cases := []struct {
		d     float64
		label study.EffectMagnitude
	}{
		{0, study.EffectVerySmall},
		{0.19, study.EffectVerySmall},
		{-0.2, study.EffectSmall},
		{0.49, study.EffectSmall},
		{0.5, study.EffectMedium},
		{-0.79, study.EffectMedium},
		{0.8, study.EffectLarge},
		{-3.5, study.EffectLarge},
	}
	for _, c := range cases {
		if got := ClassifyEffect(c.d); got != c.label {
			t.Errorf("ClassifyEffect(%f): expected %s, got %s", c.d, c.label, got)
		}
	}
}

func TestConclude_Directions(t *testing.T) {
	cases := []struct {
		p, meanDiff float64
		pairs       int
		polarity    study.Polarity
		want        string
	}{
		{0.01, -5, 10, study.PolarityFaster, "graphql is significantly faster than rest"},
		{0.01, 5, 10, study.PolarityFaster, "rest is significantly faster than graphql"},
		{0.01, -5, 10, study.PolaritySmaller, "graphql is significantly smaller than rest"},
		{0.2, -5, 10, study.PolarityFaster, "no significant difference between graphql and rest"},
		{0.05, -5, 10, study.PolarityFaster, "no significant difference between graphql and rest"},
		{0.01, -5, 1, study.PolarityFaster, InsufficientDataConclusion},
		{0.01, -5, 0, study.PolarityFaster, InsufficientDataConclusion},
	}
	for _, c := range cases {
		got := Conclude(c.p, c.meanDiff, c.pairs, "graphql", "rest", c.polarity)
		if got != c.want {
			t.Errorf("Conclude(p=%f, diff=%f, n=%d): expected %q, got %q",
				c.p, c.meanDiff, c.pairs, c.want, got)
		}
	}
}

func TestStrongestSignificant(t *testing.T) {
	q1 := core.QuestionID("RQ01")
	q2 := core.QuestionID("RQ02")
	q3 := core.QuestionID("RQ03")
	order := []core.QuestionID{q1, q2, q3}

	results := map[core.QuestionID]study.CorrelationResult{
		q1: {ProcessMetric: "review_comments", OutcomeMetric: "merged", PearsonR: 0.3, PearsonP: 0.01},
		q2: {ProcessMetric: "pr_size_score", OutcomeMetric: "merged", PearsonR: -0.8, PearsonP: 0.001},
		q3: {ProcessMetric: "participants", OutcomeMetric: "merged", PearsonR: 0.9, PearsonP: 0.3},
	}

	f := StrongestSignificant(order, results)
	if !f.Found {
		t.Fatal("expected a significant finding")
	}
	// q3 has the largest |r| but fails the gate; q2 wins
	if f.Result.ProcessMetric != "pr_size_score" {
		t.Errorf("expected pr_size_score to win, got %s", f.Result.ProcessMetric)
	}

	none := StrongestSignificant(order, map[core.QuestionID]study.CorrelationResult{
		q1: {PearsonR: 0.9, PearsonP: 0.5},
	})
	if none.Found {
		t.Error("expected no finding when nothing clears the gate")
	}
	if none.Summary != "no significant correlation identified" {
		t.Errorf("unexpected summary %q", none.Summary)
	}
}

func TestStrongestSignificant_TieBreak(t *testing.T) {
	q1 := core.QuestionID("RQ01")
	q2 := core.QuestionID("RQ02")
	results := map[core.QuestionID]study.CorrelationResult{
		q1: {ProcessMetric: "first", PearsonR: 0.5, PearsonP: 0.01},
		q2: {ProcessMetric: "second", PearsonR: -0.5, PearsonP: 0.01},
	}

	f := StrongestSignificant([]core.QuestionID{q1, q2}, results)
	if f.Result.ProcessMetric != "first" {
		t.Errorf("tie must break to the earlier question, got %s", f.Result.ProcessMetric)
	}
}

func TestEvaluateHypothesis(t *testing.T) {
	q := core.QuestionID("RQ01")

	supported := EvaluateHypothesis(q, study.ExpectPositive, study.CorrelationResult{
		OutcomeMetric: "merged", PearsonR: 0.4, PearsonP: 0.01,
	})
	if supported.Verdict == "" || supported.Verdict[:9] != "supported" {
		t.Errorf("expected supported verdict, got %q", supported.Verdict)
	}

	contradicted := EvaluateHypothesis(q, study.ExpectPositive, study.CorrelationResult{
		OutcomeMetric: "merged", PearsonR: -0.4, PearsonP: 0.01,
	})
	if contradicted.Verdict[:12] != "contradicted" {
		t.Errorf("expected contradicted verdict, got %q", contradicted.Verdict)
	}

	unsupported := EvaluateHypothesis(q, study.ExpectNegative, study.CorrelationResult{
		OutcomeMetric: "merged", PearsonR: -0.9, PearsonP: 0.4,
	})
	if unsupported.Verdict != "not supported: no significant correlation found" {
		t.Errorf("unexpected verdict %q", unsupported.Verdict)
	}
}

func TestSelectMethod(t *testing.T) {
	normal := study.DistributionVerdict{IsNormal: true, PValue: 0.5}
	skewed := study.DistributionVerdict{IsNormal: false, PValue: 0.01}

	if m := study.SelectMethod(normal, normal); m != study.MethodParametric {
		t.Errorf("both normal should select parametric, got %s", m)
	}
	if m := study.SelectMethod(normal, skewed); m != study.MethodRankBased {
		t.Errorf("mixed verdicts should select rank-based, got %s", m)
	}
	if m := study.SelectMethod(skewed, skewed); m != study.MethodRankBased {
		t.Errorf("both skewed should select rank-based, got %s", m)
	}
}
