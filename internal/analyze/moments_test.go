package analyze

import (
	"math"
	"testing"
)

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 1.75},
		{0.5, 2.5},
		{0.75, 3.25},
		{1, 4},
	}
	for _, c := range cases {
		if got := quantile(sorted, c.p); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("quantile(%v) = %v, want %v", c.p, got, c.want)
		}
	}
	if got := quantile([]float64{7}, 0.5); got != 7 {
		t.Errorf("single-element quantile = %v, want 7", got)
	}
	if !math.IsNaN(quantile(nil, 0.5)) {
		t.Error("empty quantile should be NaN")
	}
}

func TestSampleSkewness(t *testing.T) {
	if got := sampleSkewness([]float64{1, 2, 3, 4, 5}); got != 0 {
		t.Errorf("symmetric skewness = %v, want 0", got)
	}
	if got := sampleSkewness([]float64{1, 1, 1, 1, 100}); got <= 1 {
		t.Errorf("right-tailed skewness = %v, want > 1", got)
	}
	if got := sampleSkewness([]float64{100, 100, 100, 100, 1}); got >= -1 {
		t.Errorf("left-tailed skewness = %v, want < -1", got)
	}
	if got := sampleSkewness([]float64{1, 2}); got != 0 {
		t.Errorf("undersized sample skewness = %v, want 0", got)
	}
	if got := sampleSkewness([]float64{5, 5, 5}); got != 0 {
		t.Errorf("constant skewness = %v, want 0", got)
	}
}

func TestCoefficientOfVariationScaleInvariant(t *testing.T) {
	base := []float64{4, 8, 6, 5, 3, 7}
	scaled := make([]float64, len(base))
	for i, v := range base {
		scaled[i] = v * 1000
	}
	a := coefficientOfVariation(base)
	b := coefficientOfVariation(scaled)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("CV not scale invariant: %v vs %v", a, b)
	}
	if a <= 0 {
		t.Errorf("CV = %v, want positive for varying data", a)
	}
	if got := coefficientOfVariation([]float64{-5, 5}); got != 0 {
		t.Errorf("zero-mean CV = %v, want 0", got)
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(3.14159, 2); got != 3.14 {
		t.Errorf("roundTo = %v, want 3.14", got)
	}
	if got := roundTo(2.675, 0); got != 3 {
		t.Errorf("roundTo = %v, want 3", got)
	}
	if !math.IsNaN(roundTo(math.NaN(), 2)) {
		t.Error("NaN should pass through")
	}
	if !math.IsInf(roundTo(math.Inf(1), 2), 1) {
		t.Error("Inf should pass through")
	}
}

func TestFormatCount(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1234567:  "1,234,567",
		-4321:    "-4,321",
	}
	for n, want := range cases {
		if got := formatCount(n); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", n, got, want)
		}
	}
}
