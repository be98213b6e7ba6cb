package engine

import (
	"hash/fnv"

	"apistudy/domain/study"
)

// significanceAlpha is the two-sided rejection threshold shared by every
// test in the package
const significanceAlpha = 0.05

// Engine runs complete paired-comparison and correlation analyses. It is
// stateless apart from the base seed, so a single instance is safe for
// concurrent use across research questions.
type Engine struct {
	seed int64
}

func New(seed int64) *Engine {
	return &Engine{seed: seed}
}

// seedFor derives a per-analysis seed from the base seed and a stable
// label, so independent analyses subsample independently while the whole
// run stays reproducible.
func (e *Engine) seedFor(label string) int64 {
	h := fnv.New64a()
	h.Write([]byte(label))
	return e.seed ^ int64(h.Sum64())
}

// ComparisonSpec names one paired comparison: which metric column, which
// conditions fill the A and B roles, and which direction word describes
// a negative A-minus-B difference.
type ComparisonSpec struct {
	Metric     string
	ConditionA string
	ConditionB string
	Polarity   study.Polarity
}

// Compare runs the full paired-comparison pipeline for one metric:
// descriptives and normality on the pooled per-condition samples, then
// pairing, test selection, execution, effect size, and the verdict. The
// result passes through the domain validator before it is returned; a
// spec without both condition labels is rejected there.
func (e *Engine) Compare(ms []study.Measurement, spec ComparisonSpec) (study.ComparisonResult, error) {
	pooledA := PooledSample(ms, spec.ConditionA)
	pooledB := PooledSample(ms, spec.ConditionB)

	result := study.ComparisonResult{
		Metric:     spec.Metric,
		ConditionA: spec.ConditionA,
		ConditionB: spec.ConditionB,
		StatsA:     Describe(pooledA),
		StatsB:     Describe(pooledB),
	}

	clsA := NewNormalityClassifier(e.seedFor(spec.Metric + "/" + spec.ConditionA))
	clsB := NewNormalityClassifier(e.seedFor(spec.Metric + "/" + spec.ConditionB))
	result.NormalityA = clsA.Classify(pooledA)
	result.NormalityB = clsB.Classify(pooledB)

	groups := AggregatePairs(ms, spec.ConditionA, spec.ConditionB)
	a, b := PairedVectors(groups)
	diffs := Differences(groups)
	result.PairCount = len(a)

	if len(a) <= 1 {
		result.Method = study.MethodNone
		result.TestName = result.Method.TestName()
		result.PValue = 1.0
		if len(diffs) == 1 {
			result.MeanDifference = diffs[0]
		}
		result.EffectLabel = ClassifyEffect(result.EffectSize)
		result.Conclusion = Conclude(result.PValue, result.MeanDifference, result.PairCount,
			spec.ConditionA, spec.ConditionB, spec.Polarity)
		return study.NewComparisonResult(result)
	}

	result.Method = study.SelectMethod(result.NormalityA, result.NormalityB)
	result.TestName = result.Method.TestName()
	result.Statistic, result.PValue = ExecutePaired(result.Method, a, b)

	result.EffectSize, result.MeanDifference, _ = EffectSize(diffs)
	result.EffectLabel = ClassifyEffect(result.EffectSize)

	result.Conclusion = Conclude(result.PValue, result.MeanDifference, result.PairCount,
		spec.ConditionA, spec.ConditionB, spec.Polarity)
	return study.NewComparisonResult(result)
}

// CorrelationSpec names one correlation analysis between a process metric
// and an outcome metric measured on the same subjects.
type CorrelationSpec struct {
	ProcessMetric string
	OutcomeMetric string
}

// Correlate runs one process-vs-outcome correlation analysis on aligned
// metric vectors.
func (e *Engine) Correlate(process, outcome []float64, spec CorrelationSpec) study.CorrelationResult {
	return Correlate(process, outcome, spec.ProcessMetric, spec.OutcomeMetric)
}
