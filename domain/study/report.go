package study

import (
	"apistudy/domain/core"
)

// HypothesisDirection is the correlation sign a research question expects
type HypothesisDirection int

const (
	ExpectPositive HypothesisDirection = 1
	ExpectNegative HypothesisDirection = -1
)

// HypothesisOutcome records how a review-study research question's expected
// direction held up against the significant correlations found.
type HypothesisOutcome struct {
	Question core.QuestionID     `json:"question"`
	Expected HypothesisDirection `json:"expected"`
	Verdict  string              `json:"verdict"`
}

// StratumSummary is the per-category descriptive breakdown of the
// comparison study: mean outcome per condition within one stratum.
type StratumSummary struct {
	Stratum string             `json:"stratum"`
	MeansA  map[string]float64 `json:"means_a"` // metric name -> mean under condition A
	MeansB  map[string]float64 `json:"means_b"` // metric name -> mean under condition B
}

// Finding is the single strongest significant correlation across a report's
// correlation results, or the absence of one.
type Finding struct {
	Found   bool              `json:"found"`
	Result  CorrelationResult `json:"result,omitempty"`
	Summary string            `json:"summary"`
}

// StudyReport is the structured result object handed to the (out of scope)
// report/dashboard layer. Immutable once built; every numeric value the
// renderer needs is already here.
type StudyReport struct {
	ID        core.ReportID  `json:"id"`
	Seed      int64          `json:"seed"`
	CreatedAt core.Timestamp `json:"created_at"`

	Comparisons  map[core.QuestionID]ComparisonResult  `json:"comparisons"`
	Correlations map[core.QuestionID]CorrelationResult `json:"correlations"`
	Hypotheses   []HypothesisOutcome                   `json:"hypotheses,omitempty"`
	Strata       []StratumSummary                      `json:"strata,omitempty"`
	Strongest    Finding                               `json:"strongest"`

	// ComparisonOrder and QuestionOrder fix the caller-supplied orderings.
	// The strongest-finding tie break depends on QuestionOrder.
	ComparisonOrder []core.QuestionID `json:"comparison_order"`
	QuestionOrder   []core.QuestionID `json:"question_order"`
}

// NewStudyReport creates an empty report shell for one analysis run
func NewStudyReport(seed int64) *StudyReport {
	return &StudyReport{
		ID:           core.ReportID(core.NewID()),
		Seed:         seed,
		CreatedAt:    core.Now(),
		Comparisons:  make(map[core.QuestionID]ComparisonResult),
		Correlations: make(map[core.QuestionID]CorrelationResult),
	}
}
