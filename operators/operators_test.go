// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/operators"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

func TestScaleKeepsParameterPositive(t *testing.T) {
	p := parameter.New(1.0)
	s := operators.NewScale(p, 1.0, 0.5)
	rng := randomsource.New(1, 1)
	for i := 0; i < 100; i++ {
		logH, ok := s.Propose(rng)
		if !ok {
			t.Fatalf("Scale.Propose unexpectedly rejected")
		}
		if p.Value() <= 0 {
			t.Fatalf("parameter went non-positive: %v", p.Value())
		}
		if math.IsNaN(logH) || math.IsInf(logH, 0) {
			t.Fatalf("got non-finite log-Hastings %v", logH)
		}
		s.Optimize(true)
	}
}

func TestFreqMoverStaysInUnitInterval(t *testing.T) {
	p := parameter.New(0.5)
	f := operators.NewFreqMover(p, 1.0, 1.5)
	rng := randomsource.New(2, 3)
	for i := 0; i < 200; i++ {
		logH, ok := f.Propose(rng)
		if !ok || logH != 0 {
			t.Fatalf("got (logH=%v, ok=%v), want (0, true)", logH, ok)
		}
		if p.Value() < 0 || p.Value() > 1 {
			t.Fatalf("FreqMover produced out-of-range value %v", p.Value())
		}
	}
}

func TestRelativePopulationSizeMixerPreservesSum(t *testing.T) {
	a := parameter.New(1.0)
	b := parameter.New(2.0)
	c := parameter.New(3.0)
	wantSum := a.Value() + b.Value() + c.Value()
	mixer := operators.NewRelativePopulationSizeMixer([]*parameter.Parameter{a, b, c}, 1.0, 20.0)
	rng := randomsource.New(4, 5)
	logH, ok := mixer.Propose(rng)
	if !ok {
		t.Fatalf("mixer unexpectedly rejected")
	}
	if math.IsNaN(logH) || math.IsInf(logH, 0) {
		t.Fatalf("got non-finite log-Hastings %v", logH)
	}
	gotSum := a.Value() + b.Value() + c.Value()
	if math.Abs(gotSum-wantSum) > 1e-9 {
		t.Errorf("got total %v after mix, want %v preserved", gotSum, wantSum)
	}
	for _, v := range []float64{a.Value(), b.Value(), c.Value()} {
		if v <= 0 {
			t.Errorf("got non-positive population size %v after mix", v)
		}
	}
}

func TestEventTimeScalerRespectsValidity(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,C:2);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	op := operators.NewEventTimeScaler(tr, 0, tree.CollisionNone, 1.0, 0.3)
	rng := randomsource.New(6, 7)
	for i := 0; i < 50; i++ {
		op.Propose(rng)
		if err := tr.Validate(); err != nil {
			t.Fatalf("tree invalid after EventTimeScaler proposal: %v", err)
		}
		op.Optimize(true)
	}
}

func TestHeightMoveOperatorKeepsTreeValid(t *testing.T) {
	tr, err := tree.ParseNewick("(((A:1,B:1):1,C:2):1,D:3);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	op := operators.NewHeightMoveOperator(tr, 1.0)
	rng := randomsource.New(8, 9)
	for i := 0; i < 20; i++ {
		op.Propose(rng)
		if err := tr.Validate(); err != nil {
			t.Fatalf("tree invalid after HeightMoveOperator proposal: %v", err)
		}
	}
}

// fixedClusterHost is a minimal ClusterHost used to exercise
// ModelOperator's Gibbs sweep mechanics in isolation.
type fixedClusterHost struct {
	clusters []*parameter.Parameter
	values   []float64
}

func (h *fixedClusterHost) NumUnits() int { return len(h.clusters) }
func (h *fixedClusterHost) ClusterOf(i int) *parameter.Parameter { return h.clusters[i] }
func (h *fixedClusterHost) SetClusterOf(i int, c *parameter.Parameter) { h.clusters[i] = c }
func (h *fixedClusterHost) DistinctClusters() []*parameter.Parameter {
	seen := make(map[*parameter.Parameter]bool)
	var out []*parameter.Parameter
	for _, c := range h.clusters {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
func (h *fixedClusterHost) DrawNewCluster(rng *randomsource.Source) *parameter.Parameter {
	return parameter.New(rng.Float64() * 10)
}
func (h *fixedClusterHost) LogConditional(i int, candidate *parameter.Parameter) float64 {
	diff := h.values[i] - candidate.Value()
	return -diff * diff
}

func TestModelOperatorAlwaysAccepts(t *testing.T) {
	c1 := parameter.New(1.0)
	c2 := parameter.New(5.0)
	host := &fixedClusterHost{
		clusters: []*parameter.Parameter{c1, c1, c2},
		values:   []float64{1.1, 0.9, 5.2},
	}
	alpha := parameter.New(1.0)
	op := operators.NewModelOperator(host, alpha, 3, 1.0)
	rng := randomsource.New(10, 11)
	for i := 0; i < 20; i++ {
		_, ok := op.Propose(rng)
		if !ok {
			t.Fatalf("ModelOperator.Propose unexpectedly rejected")
		}
	}
	if host.DistinctClusters() == nil {
		t.Fatalf("expected at least one cluster to remain assigned")
	}
}

func TestConcentrationScalerName(t *testing.T) {
	alpha := parameter.New(1.0)
	op := operators.NewConcentrationScaler(alpha, 1.0, 0.5)
	if op.Name() != "ConcentrationScaler" {
		t.Errorf("got name %q, want ConcentrationScaler", op.Name())
	}
	rng := randomsource.New(12, 13)
	if _, ok := op.Propose(rng); !ok {
		t.Fatalf("ConcentrationScaler.Propose unexpectedly rejected")
	}
}
