package datafile

import (
	"encoding/csv"
	"fmt"
	"os"

	"apistudy/domain/study"
	"apistudy/internal"
	apperrors "apistudy/internal/errors"
)

// SummaryWriter exports a study report as one flat CSV: a row per research
// question, comparison and correlation rows sharing the same column set
// with blanks where a field does not apply.
type SummaryWriter struct {
	filePath string
}

func NewSummaryWriter(filePath string) *SummaryWriter {
	return &SummaryWriter{filePath: filePath}
}

var summaryHeader = []string{
	"question", "analysis", "metric_a", "metric_b",
	"method", "statistic", "p_value", "effect_size", "effect_label",
	"mean_difference", "pearson_r", "spearman_r", "label",
	"sample_size", "conclusion",
}

// Write renders every result of the report in its fixed question order
func (w *SummaryWriter) Write(report *study.StudyReport) error {
	file, err := os.Create(w.filePath)
	if err != nil {
		return apperrors.Wrap(err, "creating summary file")
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(summaryHeader); err != nil {
		return apperrors.Wrap(err, "writing summary header")
	}

	for _, q := range report.ComparisonOrder {
		r, ok := report.Comparisons[q]
		if !ok {
			continue
		}
		row := []string{
			string(q), "comparison", r.Metric, "",
			string(r.Method), formatFloat(r.Statistic), formatFloat(r.PValue),
			formatFloat(r.EffectSize), string(r.EffectLabel),
			formatFloat(r.MeanDifference), "", "", "",
			fmt.Sprintf("%d", r.PairCount), r.Conclusion,
		}
		if err := cw.Write(row); err != nil {
			return apperrors.Wrap(err, "writing comparison row")
		}
	}

	for _, q := range report.QuestionOrder {
		r, ok := report.Correlations[q]
		if !ok {
			continue
		}
		row := []string{
			string(q), "correlation", r.ProcessMetric, r.OutcomeMetric,
			"", "", formatFloat(r.PearsonP), "", "",
			"", formatFloat(r.PearsonR), formatFloat(r.SpearmanR), r.Label,
			fmt.Sprintf("%d", r.SampleSize), "",
		}
		if err := cw.Write(row); err != nil {
			return apperrors.Wrap(err, "writing correlation row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Wrap(err, "flushing summary file")
	}

	internal.DefaultLogger.Info("[SummaryWriter] report %s written to %s", report.ID, w.filePath)
	return nil
}

// formatFloat keeps the export stable across runs; six significant
// figures is more precision than any downstream table renders
func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
