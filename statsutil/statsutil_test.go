// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package statsutil_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/statsutil"
)

func TestSampleSummaryMeanVariance(t *testing.T) {
	s := statsutil.NewSampleSummary()
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	for _, x := range xs {
		s.Add(x)
	}
	if math.Abs(s.Mean()-5) > 1e-9 {
		t.Errorf("mean: got %v, want 5", s.Mean())
	}
	wantVar := 4.571428571428571
	if math.Abs(s.Variance()-wantVar) > 1e-6 {
		t.Errorf("variance: got %v, want %v", s.Variance(), wantVar)
	}
}

func TestPSRFConverged(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1, 2}
	b := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1, 2}
	r := statsutil.PSRF([][]float64{a, b})
	// With no between-chain variance the estimate reduces to
	// sqrt((n-1)/n) for n = 10 samples per chain.
	want := math.Sqrt(9.0 / 10.0)
	if math.Abs(r-want) > 1e-9 {
		t.Errorf("identical chains should give PSRF sqrt((n-1)/n) = %v, got %v", want, r)
	}
}

func TestHPDICoversMass(t *testing.T) {
	xs := make([]float64, 0, 1001)
	for i := -500; i <= 500; i++ {
		xs = append(xs, float64(i)/100)
	}
	lo, hi := statsutil.HPDI(xs, 0.5)
	if hi-lo > 5.1 || hi-lo < 4.9 {
		t.Errorf("expected HPDI width near 5.0 for uniform sample, got [%v, %v]", lo, hi)
	}
}

func TestQuantile(t *testing.T) {
	xs := []float64{5, 1, 4, 2, 3}
	got := statsutil.Quantile(xs, 0.5)
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("median: got %v, want 3", got)
	}
}
