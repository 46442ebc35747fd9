// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package populationtree_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/biallelicdata"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

func newPayload() tree.Payload { return populationtree.NewPayload(0.01) }

func twoLeafTree(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := tree.ParseNewick("(A:1,B:1);", newPayload)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	return tr
}

func TestPatternLikelihoodIsAProbability(t *testing.T) {
	tr := twoLeafTree(t)
	data := biallelicdata.New([]string{"A", "B"})
	if err := data.AddPattern([]int{1, 0}, []int{2, 2}); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	pt, err := populationtree.New(tr, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt.MutationRate.SetValue(1)
	pt.FreqR.SetValue(0.5)

	p := pt.PatternLikelihood(data.Pattern(0))
	if p < 0 || p > 1 || math.IsNaN(p) {
		t.Fatalf("got pattern likelihood %v, want a value in [0, 1]", p)
	}
}

func TestConstantPatternMoreLikelyUnderLowMutation(t *testing.T) {
	tr := twoLeafTree(t)
	data := biallelicdata.New([]string{"A", "B"})
	constant := biallelicdata.Pattern{Red: []int{0, 0}, Total: []int{2, 2}}
	segregating := biallelicdata.Pattern{Red: []int{1, 1}, Total: []int{2, 2}}

	pt, err := populationtree.New(tr, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt.MutationRate.SetValue(0.01)
	pt.FreqR.SetValue(0.5)

	lConst := pt.PatternLikelihood(constant)
	lSeg := pt.PatternLikelihood(segregating)
	if lConst <= lSeg {
		t.Errorf("expected an all-ancestral pattern to be more likely than a segregating one under low mutation: const=%v seg=%v", lConst, lSeg)
	}
}

func TestConstantSiteLogCorrectionIsNegative(t *testing.T) {
	tr := twoLeafTree(t)
	data := biallelicdata.New([]string{"A", "B"})
	pt, err := populationtree.New(tr, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt.MutationRate.SetValue(1)
	pt.FreqR.SetValue(0.5)

	corr := pt.ConstantSiteLogCorrection([]int{2, 2}, false)
	if corr >= 0 || math.IsNaN(corr) || math.IsInf(corr, 0) {
		t.Errorf("got correction %v, want a finite negative value", corr)
	}
}

func TestLogLikelihoodMatchesManualPatternSum(t *testing.T) {
	tr := twoLeafTree(t)
	data := biallelicdata.New([]string{"A", "B"})
	if err := data.AddPattern([]int{1, 0}, []int{2, 2}); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if err := data.AddPattern([]int{0, 1}, []int{2, 2}); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	pt, err := populationtree.New(tr, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pt.MutationRate.SetValue(1)
	pt.FreqR.SetValue(0.5)
	pt.SetNumThreads(2)

	got := pt.LogLikelihood()
	want := pt.PatternLogLikelihood(data.Pattern(0)) + pt.PatternLogLikelihood(data.Pattern(1))
	// LogLikelihood subtracts a constant-site correction term the
	// manual sum does not, so only check the per-pattern floor: the
	// corrected total must exceed the uncorrected sum (the
	// correction divides by something < 1, raising the likelihood).
	if got < want {
		t.Errorf("got corrected log-likelihood %v, want >= uncorrected sum %v", got, want)
	}
}

func TestCoalesceInBranchConvergesToExpectedTMRCA(t *testing.T) {
	rng := randomsource.New(42, 99)
	const theta = 1.0
	const lineages = 2
	const trials = 200000
	var sum float64
	for i := 0; i < trials; i++ {
		sum += populationtree.CoalesceInBranch(lineages, theta, rng)
	}
	mean := sum / trials
	want := theta * (1 - 1.0/lineages) // 0.5
	if math.Abs(mean-want) > 0.02 {
		t.Errorf("got mean TMRCA %v over %d trials, want within 0.02 of %v", mean, trials, want)
	}
}

func TestSimulateBiallelicSiteConvergesToFreqR(t *testing.T) {
	tr, err := tree.ParseNewick("(A:0.001,B:0.001);", newPayload)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	rng := randomsource.New(1, 2)
	sampleSizes := map[string]int{"A": 1, "B": 1}
	const trials = 20000
	var totalRed, totalAlleles int
	for i := 0; i < trials; i++ {
		p := populationtree.SimulateBiallelicSite(tr, 0.01, 0.3, sampleSizes, rng)
		for i, a := range p.Total {
			totalAlleles += a
			totalRed += p.Red[i]
		}
	}
	freq := float64(totalRed) / float64(totalAlleles)
	if math.Abs(freq-0.3) > 0.02 {
		t.Errorf("got simulated red-allele frequency %v over %d trials, want within 0.02 of 0.3", freq, trials)
	}
}
