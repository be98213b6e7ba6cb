package datafile

import (
	"math"
	"strconv"
	"strings"

	"apistudy/domain/study"
	"apistudy/internal"
	apperrors "apistudy/internal/errors"
)

// ExperimentRecord is one API trial row from the comparison-study dataset.
// Malformed numeric cells carry NaN rather than failing the whole load.
type ExperimentRecord struct {
	Owner             string
	Name              string
	QueryType         string
	APIType           string
	ResponseTimeMS    float64
	ResponseSizeBytes float64
	Success           bool
}

// Experiment metric names shared by ingestion, analysis specs and export
const (
	MetricResponseTime = "response_time_ms"
	MetricResponseSize = "response_size_bytes"
)

// LoadExperimentData reads the comparison-study dataset. Rows missing the
// subject or condition fields are dropped; rows with malformed numerics
// are kept with NaN values and filtered later per metric.
func LoadExperimentData(path string) ([]ExperimentRecord, error) {
	table, err := NewDataReader(path).ReadTable()
	if err != nil {
		return nil, apperrors.Wrapf(err, "loading experiment data from %s", path)
	}

	records := make([]ExperimentRecord, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		rec := ExperimentRecord{
			Owner:             row["repository_owner"],
			Name:              row["repository_name"],
			QueryType:         row["query_type"],
			APIType:           row["api_type"],
			ResponseTimeMS:    parseFloatOrNaN(row["response_time_ms"]),
			ResponseSizeBytes: parseFloatOrNaN(row["response_size_bytes"]),
			Success:           parseBool(row["success"]),
		}
		if rec.Owner == "" || rec.Name == "" || rec.APIType == "" {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		internal.DefaultLogger.Warn("[ExperimentData] dropped %d rows missing subject or condition fields", dropped)
	}
	internal.DefaultLogger.Info("[ExperimentData] loaded %d trials from %s", len(records), path)
	return records, nil
}

// Measurements projects one numeric metric out of the trial records into
// the analysis engine's input shape. Trials whose metric value is NaN are
// marked unsuccessful so the aggregator excludes them.
func Measurements(records []ExperimentRecord, metric string) []study.Measurement {
	ms := make([]study.Measurement, 0, len(records))
	for _, rec := range records {
		value := rec.ResponseTimeMS
		if metric == MetricResponseSize {
			value = rec.ResponseSizeBytes
		}
		ms = append(ms, study.Measurement{
			Subject:   study.SubjectKey{Owner: rec.Owner, Name: rec.Name},
			Condition: rec.APIType,
			Stratum:   rec.QueryType,
			Value:     value,
			Success:   rec.Success && !math.IsNaN(value),
		})
	}
	return ms
}

// parseFloatOrNaN coerces malformed numeric cells to the missing sentinel
func parseFloatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
