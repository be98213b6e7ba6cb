package app

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"apistudy/adapters/datafile"
	"apistudy/adapters/stats/engine"
	"apistudy/domain/core"
	"apistudy/domain/study"
	"apistudy/internal"
	apperrors "apistudy/internal/errors"
)

// ConditionA and ConditionB are the fixed roles of the comparison study
const (
	ConditionA = "graphql"
	ConditionB = "rest"
)

// ComparisonQuestion binds one research question of the comparison study
// to its metric and direction word
type ComparisonQuestion struct {
	ID       core.QuestionID
	Spec     engine.ComparisonSpec
	Question string
}

// ReviewQuestion binds one research question of the review study to its
// metric pair and the correlation sign its hypothesis expects
type ReviewQuestion struct {
	ID       core.QuestionID
	Process  string
	Outcome  string
	Expected study.HypothesisDirection
	Question string
}

// ComparisonQuestions returns the comparison study's research questions in
// report order
func ComparisonQuestions() []ComparisonQuestion {
	return []ComparisonQuestion{
		{
			ID: "RQ1",
			Spec: engine.ComparisonSpec{
				Metric:     datafile.MetricResponseTime,
				ConditionA: ConditionA,
				ConditionB: ConditionB,
				Polarity:   study.PolarityFaster,
			},
			Question: "Does the query-based API respond faster than the endpoint-based API?",
		},
		{
			ID: "RQ2",
			Spec: engine.ComparisonSpec{
				Metric:     datafile.MetricResponseSize,
				ConditionA: ConditionA,
				ConditionB: ConditionB,
				Polarity:   study.PolaritySmaller,
			},
			Question: "Does the query-based API return smaller payloads than the endpoint-based API?",
		},
	}
}

// ReviewQuestions returns the review study's research questions in report
// order. The first four correlate process metrics with merge status, the
// last four with review count.
func ReviewQuestions() []ReviewQuestion {
	return []ReviewQuestion{
		{ID: "RQ01", Process: datafile.MetricSizeScore, Outcome: datafile.MetricMergedStatus,
			Expected: study.ExpectPositive,
			Question: "Is pull-request size related to the final merge outcome?"},
		{ID: "RQ02", Process: datafile.MetricAnalysisHours, Outcome: datafile.MetricMergedStatus,
			Expected: study.ExpectNegative,
			Question: "Is review time related to the final merge outcome?"},
		{ID: "RQ03", Process: datafile.MetricDescriptionLength, Outcome: datafile.MetricMergedStatus,
			Expected: study.ExpectPositive,
			Question: "Is description length related to the final merge outcome?"},
		{ID: "RQ04", Process: datafile.MetricInteractions, Outcome: datafile.MetricMergedStatus,
			Expected: study.ExpectPositive,
			Question: "Is interaction volume related to the final merge outcome?"},
		{ID: "RQ05", Process: datafile.MetricSizeScore, Outcome: datafile.MetricReviewCount,
			Expected: study.ExpectPositive,
			Question: "Is pull-request size related to the number of reviews?"},
		{ID: "RQ06", Process: datafile.MetricAnalysisHours, Outcome: datafile.MetricReviewCount,
			Expected: study.ExpectPositive,
			Question: "Is review time related to the number of reviews?"},
		{ID: "RQ07", Process: datafile.MetricDescriptionLength, Outcome: datafile.MetricReviewCount,
			Expected: study.ExpectPositive,
			Question: "Is description length related to the number of reviews?"},
		{ID: "RQ08", Process: datafile.MetricInteractions, Outcome: datafile.MetricReviewCount,
			Expected: study.ExpectPositive,
			Question: "Is interaction volume related to the number of reviews?"},
	}
}

// StudyService runs both studies end to end over immutable in-memory
// records and assembles one StudyReport. Research questions execute in
// parallel; results are deterministic for a fixed seed because every
// analysis derives its own RNG state and inputs are never mutated.
type StudyService struct {
	engine  *engine.Engine
	seed    int64
	workers int
}

// NewStudyService creates a study service. workers <= 0 means no limit.
func NewStudyService(seed int64, workers int) *StudyService {
	return &StudyService{
		engine:  engine.New(seed),
		seed:    seed,
		workers: workers,
	}
}

// Run executes every research question of both studies and returns the
// complete report
func (s *StudyService) Run(ctx context.Context, experiments []datafile.ExperimentRecord, reviews []datafile.ReviewRecord) (*study.StudyReport, error) {
	started := time.Now()
	report := study.NewStudyReport(s.seed)

	comparisonQs := ComparisonQuestions()
	reviewQs := ReviewQuestions()

	comparisonResults := make([]study.ComparisonResult, len(comparisonQs))
	correlationResults := make([]study.CorrelationResult, len(reviewQs))

	g, _ := errgroup.WithContext(ctx)
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}

	for i, q := range comparisonQs {
		i, q := i, q
		g.Go(func() error {
			ms := datafile.Measurements(experiments, q.Spec.Metric)
			r, err := s.engine.Compare(ms, q.Spec)
			if err != nil {
				return apperrors.Wrapf(err, "comparison %s", q.ID)
			}
			comparisonResults[i] = r
			return nil
		})
	}

	for i, q := range reviewQs {
		i, q := i, q
		g.Go(func() error {
			process := datafile.ReviewVector(reviews, q.Process)
			outcome := datafile.ReviewVector(reviews, q.Outcome)
			correlationResults[i] = s.engine.Correlate(process, outcome, engine.CorrelationSpec{
				ProcessMetric: q.Process,
				OutcomeMetric: q.Outcome,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, q := range comparisonQs {
		if code := comparisonFallbackCode(comparisonResults[i]); code != "" {
			internal.DefaultLogger.Warn("[StudyService] %s: %s fell back to a neutral result (%s)",
				q.ID, q.Spec.Metric, code)
		}
		report.Comparisons[q.ID] = comparisonResults[i]
		report.ComparisonOrder = append(report.ComparisonOrder, q.ID)
	}
	for i, q := range reviewQs {
		if code := correlationFallbackCode(correlationResults[i]); code != "" {
			internal.DefaultLogger.Warn("[StudyService] %s: %s vs %s floored to r=0 (%s)",
				q.ID, q.Process, q.Outcome, code)
		}
		report.Correlations[q.ID] = correlationResults[i]
		report.QuestionOrder = append(report.QuestionOrder, q.ID)
		report.Hypotheses = append(report.Hypotheses,
			engine.EvaluateHypothesis(q.ID, q.Expected, correlationResults[i]))
	}

	report.Strata = s.strataBreakdown(experiments)
	report.Strongest = engine.StrongestSignificant(report.QuestionOrder, report.Correlations)

	internal.DefaultLogger.Info("[StudyService] report %s built in %.0fms (%d comparisons, %d correlations)",
		report.ID, float64(time.Since(started).Nanoseconds())/1e6,
		len(report.Comparisons), len(report.Correlations))
	return report, nil
}

// comparisonFallbackCode classifies a comparison result that degraded to
// a neutral or unstable outcome, returning the matching error code, or ""
// for a healthy result. The conditions never surface as errors; they are
// logged so a silent fallback is visible in the run output.
func comparisonFallbackCode(r study.ComparisonResult) string {
	switch {
	case r.Method == study.MethodNone:
		return apperrors.CodeInsufficientData
	case math.IsInf(r.Statistic, 0):
		return apperrors.CodeNumericFailure
	case r.StatsA.StdDev == 0 || r.StatsB.StdDev == 0:
		return apperrors.CodeDegenerateSample
	}
	return ""
}

// correlationFallbackCode reports the power floor: at or below the
// minimum pair count both coefficients were forced to zero
func correlationFallbackCode(r study.CorrelationResult) string {
	if r.SampleSize <= engine.MinCorrelationPairs {
		return apperrors.CodeInsufficientData
	}
	return ""
}

// strataBreakdown computes the per-category descriptive view of the
// comparison study: mean of each metric per condition within each stratum
func (s *StudyService) strataBreakdown(experiments []datafile.ExperimentRecord) []study.StratumSummary {
	timeMs := datafile.Measurements(experiments, datafile.MetricResponseTime)
	sizeMs := datafile.Measurements(experiments, datafile.MetricResponseSize)

	var summaries []study.StratumSummary
	for _, stratum := range engine.Strata(timeMs) {
		summaries = append(summaries, study.StratumSummary{
			Stratum: stratum,
			MeansA: map[string]float64{
				datafile.MetricResponseTime: engine.MeanByCondition(timeMs, stratum, ConditionA),
				datafile.MetricResponseSize: engine.MeanByCondition(sizeMs, stratum, ConditionA),
			},
			MeansB: map[string]float64{
				datafile.MetricResponseTime: engine.MeanByCondition(timeMs, stratum, ConditionB),
				datafile.MetricResponseSize: engine.MeanByCondition(sizeMs, stratum, ConditionB),
			},
		})
	}
	return summaries
}
