package study

import (
	"fmt"
)

// ============================================================================
// MEASUREMENT PRIMITIVES
// ============================================================================

// SubjectKey identifies the experimental unit being measured repeatedly
// under different conditions (a repository, a pull request, ...).
type SubjectKey struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the canonical "owner/name" form
func (k SubjectKey) String() string {
	return fmt.Sprintf("%s/%s", k.Owner, k.Name)
}

// Measurement is one observed trial. Immutable once recorded; produced by
// the ingestion layer and consumed read-only by the analysis engine.
type Measurement struct {
	Subject   SubjectKey `json:"subject"`
	Condition string     `json:"condition"` // treatment label, e.g. "graphql" / "rest"
	Stratum   string     `json:"stratum"`   // sub-category, e.g. query complexity class
	Value     float64    `json:"value"`     // numeric outcome
	Success   bool       `json:"success"`   // only successful trials enter the analysis
}

// Sample is an ordered collection of numeric values for one condition,
// optionally restricted to one stratum. Derived, never persisted.
type Sample []float64

// GroupKey identifies one aggregation cell: subject crossed with stratum.
type GroupKey struct {
	Subject SubjectKey `json:"subject"`
	Stratum string     `json:"stratum"`
}

// String returns a stable key usable for sorting
func (k GroupKey) String() string {
	return fmt.Sprintf("%s|%s", k.Subject, k.Stratum)
}

// PairedGroup holds one summary value per condition for a single group key.
// INVARIANT: the group participates in paired tests only when both sides
// are present (Complete() returns true).
type PairedGroup struct {
	Key   GroupKey `json:"key"`
	MeanA float64  `json:"mean_a"`
	MeanB float64  `json:"mean_b"`
	HasA  bool     `json:"has_a"`
	HasB  bool     `json:"has_b"`
}

// Complete reports whether the group has a summary value on both sides
func (g PairedGroup) Complete() bool {
	return g.HasA && g.HasB
}

// Difference returns the signed per-subject difference (A − B).
// Only meaningful for complete groups.
func (g PairedGroup) Difference() float64 {
	return g.MeanA - g.MeanB
}

// ============================================================================
// VERDICTS AND RESULTS
// ============================================================================

// DistributionVerdict is the outcome of a normality check on one sample.
// Consumed immediately by the test selector, never persisted.
type DistributionVerdict struct {
	IsNormal bool    `json:"is_normal"`
	PValue   float64 `json:"p_value"`
}

// ComparisonMethod is the statistical path chosen for a paired comparison,
// selected by a pure function of the two pooled-sample normality verdicts.
type ComparisonMethod string

const (
	MethodParametric ComparisonMethod = "parametric" // matched-pairs t-test
	MethodRankBased  ComparisonMethod = "rank_based" // Wilcoxon signed-rank
	MethodNone       ComparisonMethod = "none"       // insufficient data, no test run
)

// TestName returns the human-readable test name reported downstream
func (m ComparisonMethod) TestName() string {
	switch m {
	case MethodParametric:
		return "paired t-test"
	case MethodRankBased:
		return "Wilcoxon signed-rank test"
	default:
		return "N/A"
	}
}

// SelectMethod chooses the comparison method from the normality verdicts of
// the two pooled per-condition samples. Both normal -> parametric, anything
// else -> rank based.
func SelectMethod(a, b DistributionVerdict) ComparisonMethod {
	if a.IsNormal && b.IsNormal {
		return MethodParametric
	}
	return MethodRankBased
}

// EffectMagnitude is the qualitative band for a standardized effect size
type EffectMagnitude string

const (
	EffectVerySmall EffectMagnitude = "very small"
	EffectSmall     EffectMagnitude = "small"
	EffectMedium    EffectMagnitude = "medium"
	EffectLarge     EffectMagnitude = "large"
)

// Polarity supplies the direction word for a metric, describing the side
// with the smaller summary value (e.g. "faster" for latency, "smaller" for
// payload size). The engine itself only knows sign and significance.
type Polarity string

const (
	PolarityFaster  Polarity = "faster"
	PolaritySmaller Polarity = "smaller"
)

// DescriptiveStats summarizes one pooled condition sample
type DescriptiveStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// ComparisonResult is the immutable outcome of one paired-comparison
// analysis. Produced once per run, consumed by report generation.
type ComparisonResult struct {
	Metric     string `json:"metric"`
	ConditionA string `json:"condition_a"`
	ConditionB string `json:"condition_b"`

	StatsA     DescriptiveStats    `json:"stats_a"`
	StatsB     DescriptiveStats    `json:"stats_b"`
	NormalityA DistributionVerdict `json:"normality_a"`
	NormalityB DistributionVerdict `json:"normality_b"`

	Method         ComparisonMethod `json:"method"`
	TestName       string           `json:"test_name"`
	Statistic      float64          `json:"statistic"`
	PValue         float64          `json:"p_value"`
	EffectSize     float64          `json:"effect_size"`
	EffectLabel    EffectMagnitude  `json:"effect_label"`
	MeanDifference float64          `json:"mean_difference"`
	PairCount      int              `json:"pair_count"`
	Conclusion     string           `json:"conclusion"`
}

// Significant reports whether the comparison cleared the significance gate
func (r ComparisonResult) Significant() bool {
	return r.Method != MethodNone && r.PValue < 0.05
}

// CorrelationResult holds both correlation coefficients for one
// (process metric, outcome metric) pair, plus the joint qualitative label.
type CorrelationResult struct {
	ProcessMetric string `json:"process_metric"`
	OutcomeMetric string `json:"outcome_metric"`

	PearsonR  float64 `json:"pearson_r"`
	PearsonP  float64 `json:"pearson_p"`
	SpearmanR float64 `json:"spearman_r"`
	SpearmanP float64 `json:"spearman_p"`

	Label      string `json:"label"`
	SampleSize int    `json:"sample_size"`
}

// Significant reports whether the linear coefficient cleared the gate.
// The Pearson p-value is the significance gate even when the rank
// coefficient is reported alongside it.
func (r CorrelationResult) Significant() bool {
	return r.PearsonP < 0.05
}

// validateComparisonResult checks the invariants every produced result obeys
func validateComparisonResult(r ComparisonResult) error {
	if r.PValue < 0.0 || r.PValue > 1.0 {
		return fmt.Errorf("p-value must be in [0.0, 1.0], got %f", r.PValue)
	}
	if r.PairCount < 0 {
		return fmt.Errorf("pair count must be >= 0, got %d", r.PairCount)
	}
	if r.ConditionA == "" || r.ConditionB == "" {
		return fmt.Errorf("both condition labels must be set")
	}
	return nil
}

// NewComparisonResult validates and returns a comparison result
func NewComparisonResult(r ComparisonResult) (ComparisonResult, error) {
	if err := validateComparisonResult(r); err != nil {
		return ComparisonResult{}, err
	}
	return r, nil
}
