package engine

import (
	"testing"

	"apistudy/domain/study"
)

func trial(owner, name, condition, stratum string, value float64, success bool) study.Measurement {
	return study.Measurement{
		Subject:   study.SubjectKey{Owner: owner, Name: name},
		Condition: condition,
		Stratum:   stratum,
		Value:     value,
		Success:   success,
	}
}

func TestAggregatePairs_MeansPerCell(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 100, true),
		trial("acme", "widget", "graphql", "simple", 120, true),
		trial("acme", "widget", "rest", "simple", 200, true),
		trial("acme", "widget", "rest", "simple", 220, true),
	}

	groups := AggregatePairs(ms, "graphql", "rest")
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if !g.Complete() {
		t.Fatal("group with both conditions should be complete")
	}
	if g.MeanA != 110 || g.MeanB != 210 {
		t.Errorf("means wrong: A=%f B=%f", g.MeanA, g.MeanB)
	}
	if g.Difference() != -100 {
		t.Errorf("expected difference -100, got %f", g.Difference())
	}
}

func TestAggregatePairs_ExcludesFailedTrials(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 100, true),
		trial("acme", "widget", "graphql", "simple", 1e9, false),
		trial("acme", "widget", "rest", "simple", 200, true),
	}

	groups := AggregatePairs(ms, "graphql", "rest")
	if groups[0].MeanA != 100 {
		t.Errorf("failed trial leaked into mean: %f", groups[0].MeanA)
	}
}

func TestAggregatePairs_IncompleteGroups(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 100, true),
		trial("acme", "widget", "rest", "simple", 200, true),
		trial("acme", "gadget", "graphql", "simple", 150, true),
	}

	groups := AggregatePairs(ms, "graphql", "rest")
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	a, b := PairedVectors(groups)
	if len(a) != 1 || len(b) != 1 {
		t.Errorf("incomplete group entered the paired vectors: %v %v", a, b)
	}
	diffs := Differences(groups)
	if len(diffs) != 1 || diffs[0] != -100 {
		t.Errorf("unexpected differences: %v", diffs)
	}
}

func TestAggregatePairs_DeterministicOrder(t *testing.T) {
	ms := []study.Measurement{
		trial("zeta", "z", "graphql", "simple", 1, true),
		trial("zeta", "z", "rest", "simple", 2, true),
		trial("alpha", "a", "graphql", "simple", 3, true),
		trial("alpha", "a", "rest", "simple", 4, true),
		trial("alpha", "a", "graphql", "complex", 5, true),
		trial("alpha", "a", "rest", "complex", 6, true),
	}

	groups := AggregatePairs(ms, "graphql", "rest")
	want := []string{"alpha/a|complex", "alpha/a|simple", "zeta/z|simple"}
	for i, g := range groups {
		if g.Key.String() != want[i] {
			t.Errorf("group %d: expected key %q, got %q", i, want[i], g.Key.String())
		}
	}
}

func TestAggregatePairs_IgnoresOtherConditions(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 100, true),
		trial("acme", "widget", "rest", "simple", 200, true),
		trial("acme", "widget", "grpc", "simple", 300, true),
	}

	groups := AggregatePairs(ms, "graphql", "rest")
	if groups[0].MeanA != 100 || groups[0].MeanB != 200 {
		t.Errorf("unrelated condition leaked in: %+v", groups[0])
	}
}

func TestPooledSample(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 100, true),
		trial("acme", "gadget", "graphql", "complex", 150, true),
		trial("acme", "widget", "graphql", "simple", 1e9, false),
		trial("acme", "widget", "rest", "simple", 200, true),
	}

	sample := PooledSample(ms, "graphql")
	if len(sample) != 2 {
		t.Fatalf("expected 2 values, got %d", len(sample))
	}
	if sample[0] != 100 || sample[1] != 150 {
		t.Errorf("unexpected pooled values: %v", sample)
	}
}

func TestMeanByCondition(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 100, true),
		trial("acme", "gadget", "graphql", "simple", 200, true),
		trial("acme", "widget", "graphql", "complex", 999, true),
	}

	if got := MeanByCondition(ms, "simple", "graphql"); got != 150 {
		t.Errorf("expected 150, got %f", got)
	}
	if got := MeanByCondition(ms, "missing", "graphql"); got != 0 {
		t.Errorf("empty stratum should yield 0, got %f", got)
	}
}

func TestStrata(t *testing.T) {
	ms := []study.Measurement{
		trial("acme", "widget", "graphql", "simple", 1, true),
		trial("acme", "widget", "graphql", "multiple", 1, true),
		trial("acme", "widget", "graphql", "complex", 1, true),
		trial("acme", "widget", "graphql", "failed-only", 1, false),
	}

	got := Strata(ms)
	want := []string{"complex", "multiple", "simple"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestDescribe(t *testing.T) {
	stats := Describe(study.Sample{1, 2, 3, 4, 5})
	if stats.Mean != 3 || stats.Median != 3 || stats.Min != 1 || stats.Max != 5 || stats.Count != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	empty := Describe(nil)
	if empty.Count != 0 || empty.Mean != 0 {
		t.Errorf("empty sample should zero out, got %+v", empty)
	}
}
