package engine

import (
	"github.com/montanaflynn/stats"

	"apistudy/domain/study"
)

// Describe summarizes one pooled condition sample. An empty sample yields
// zeroed stats with Count 0 rather than an error; downstream rendering
// always has a complete result set.
func Describe(sample study.Sample) study.DescriptiveStats {
	if len(sample) == 0 {
		return study.DescriptiveStats{}
	}

	data := []float64(sample)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	// Population standard deviation, matching the aggregation convention
	// used for effect sizes.
	stdDev, _ := stats.StandardDeviationPopulation(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	return study.DescriptiveStats{
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Count:  len(data),
	}
}
