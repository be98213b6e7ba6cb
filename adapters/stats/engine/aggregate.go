package engine

import (
	"sort"

	"apistudy/domain/study"
)

// pairAccumulator collects per-condition running sums for one group key
type pairAccumulator struct {
	sumA, sumB float64
	nA, nB     int
}

// AggregatePairs groups successful measurements by (subject, stratum) and
// reduces each cell to one arithmetic-mean summary value per condition.
// Unsuccessful measurements are silently excluded; groups that saw only one
// condition are returned incomplete and dropped by PairedVectors before any
// test runs. Pure reduction, deterministic output order (sorted group keys).
func AggregatePairs(ms []study.Measurement, condA, condB string) []study.PairedGroup {
	acc := make(map[study.GroupKey]*pairAccumulator)

	for _, m := range ms {
		if !m.Success {
			continue
		}
		if m.Condition != condA && m.Condition != condB {
			continue
		}
		key := study.GroupKey{Subject: m.Subject, Stratum: m.Stratum}
		a, ok := acc[key]
		if !ok {
			a = &pairAccumulator{}
			acc[key] = a
		}
		if m.Condition == condA {
			a.sumA += m.Value
			a.nA++
		} else {
			a.sumB += m.Value
			a.nB++
		}
	}

	keys := make([]study.GroupKey, 0, len(acc))
	for key := range acc {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	groups := make([]study.PairedGroup, 0, len(keys))
	for _, key := range keys {
		a := acc[key]
		g := study.PairedGroup{Key: key}
		if a.nA > 0 {
			g.MeanA = a.sumA / float64(a.nA)
			g.HasA = true
		}
		if a.nB > 0 {
			g.MeanB = a.sumB / float64(a.nB)
			g.HasB = true
		}
		groups = append(groups, g)
	}
	return groups
}

// PairedVectors extracts the two paired summary vectors from the complete
// groups, preserving the aggregation order
func PairedVectors(groups []study.PairedGroup) (a, b []float64) {
	for _, g := range groups {
		if !g.Complete() {
			continue
		}
		a = append(a, g.MeanA)
		b = append(b, g.MeanB)
	}
	return a, b
}

// Differences returns the signed per-group differences (A − B) of the
// complete groups, in aggregation order
func Differences(groups []study.PairedGroup) []float64 {
	var diffs []float64
	for _, g := range groups {
		if !g.Complete() {
			continue
		}
		diffs = append(diffs, g.Difference())
	}
	return diffs
}

// PooledSample collects every successful outcome value for one condition
// across all subjects and strata
func PooledSample(ms []study.Measurement, condition string) study.Sample {
	var sample study.Sample
	for _, m := range ms {
		if m.Success && m.Condition == condition {
			sample = append(sample, m.Value)
		}
	}
	return sample
}

// MeanByCondition returns the mean successful outcome for one condition
// within one stratum, or 0 when the stratum saw no such measurements
func MeanByCondition(ms []study.Measurement, stratum, condition string) float64 {
	sum, n := 0.0, 0
	for _, m := range ms {
		if m.Success && m.Stratum == stratum && m.Condition == condition {
			sum += m.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Strata returns the distinct stratum labels of the successful
// measurements, sorted for deterministic iteration
func Strata(ms []study.Measurement) []string {
	seen := make(map[string]bool)
	for _, m := range ms {
		if m.Success {
			seen[m.Stratum] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
