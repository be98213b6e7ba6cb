package engine

import (
	"math"
	"testing"
)

// TestNormality_TinySamples verifies samples below the minimum size are
// never classified as normal and carry the neutral p-value
func TestNormality_TinySamples(t *testing.T) {
	cls := NewNormalityClassifier(42)

	cases := [][]float64{
		nil,
		{},
		{1.0},
		{1.0, 2.0},
	}
	for _, sample := range cases {
		v := cls.Classify(sample)
		if v.IsNormal {
			t.Errorf("n=%d classified as normal", len(sample))
		}
		if v.PValue != 1.0 {
			t.Errorf("n=%d expected p=1.0, got %f", len(sample), v.PValue)
		}
	}
}

// TestNormality_ZeroVariance verifies a constant sample degrades to the
// conservative non-normal verdict instead of erroring
func TestNormality_ZeroVariance(t *testing.T) {
	cls := NewNormalityClassifier(42)

	v := cls.Classify([]float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5})
	if v.IsNormal {
		t.Error("constant sample classified as normal")
	}
	if v.PValue != 0.0 {
		t.Errorf("expected p=0.0 for degenerate sample, got %f", v.PValue)
	}
}

// TestNormality_SymmetricSmallSample exercises the small-sample fallback
// path (3 <= n < 8) on a symmetric sample
func TestNormality_SymmetricSmallSample(t *testing.T) {
	cls := NewNormalityClassifier(42)

	v := cls.Classify([]float64{10, 12, 11})
	if !v.IsNormal {
		t.Errorf("symmetric n=3 sample should pass, got p=%f", v.PValue)
	}
}

// TestNormality_BellShapedSample verifies the K² path accepts roughly
// bell-shaped data. The sample is binomial(4, 0.5) frequency counts,
// symmetric and mesokurtic enough to survive both transforms.
func TestNormality_BellShapedSample(t *testing.T) {
	cls := NewNormalityClassifier(42)

	sample := []float64{0, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 4}
	v := cls.Classify(sample)
	if !v.IsNormal {
		t.Errorf("bell-shaped sample rejected, p=%f", v.PValue)
	}
	if v.PValue <= 0.05 || v.PValue > 1.0 {
		t.Errorf("unexpected p-value %f", v.PValue)
	}
}

// TestNormality_ExtremeOutlier verifies the K² path rejects a sample with
// a single dominating outlier
func TestNormality_ExtremeOutlier(t *testing.T) {
	cls := NewNormalityClassifier(42)

	sample := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 100}
	v := cls.Classify(sample)
	if v.IsNormal {
		t.Errorf("outlier sample accepted as normal, p=%f", v.PValue)
	}
}

// TestNormality_SubsampleDeterminism verifies that classifiers built with
// the same seed produce identical verdicts on oversized samples
func TestNormality_SubsampleDeterminism(t *testing.T) {
	sample := make([]float64, 6000)
	for i := range sample {
		// Deterministic pseudo-random values, heavily right-skewed
		x := float64(i%97) / 97.0
		sample[i] = math.Exp(3 * x)
	}

	v1 := NewNormalityClassifier(7).Classify(sample)
	v2 := NewNormalityClassifier(7).Classify(sample)

	if v1 != v2 {
		t.Errorf("same seed produced different verdicts: %+v vs %+v", v1, v2)
	}
}
