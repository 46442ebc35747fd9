// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import (
	"math"

	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/randomsource"
)

// ClusterHost is the model-specific surface ModelOperator needs: a
// set of units (e.g. divergence-time classes) each currently assigned
// to a shared parameter handle (a "cluster"), with the ability to
// enumerate the clusters in use, draw a fresh candidate cluster from
// the base distribution, and price a unit's conditional log
// probability of belonging to a candidate cluster (prior plus
// whatever likelihood term the caller's model wants folded in).
type ClusterHost interface {
	NumUnits() int
	ClusterOf(i int) *parameter.Parameter
	SetClusterOf(i int, cluster *parameter.Parameter)
	DistinctClusters() []*parameter.Parameter
	DrawNewCluster(rng *randomsource.Source) *parameter.Parameter
	LogConditional(i int, candidate *parameter.Parameter) float64
}

// ModelOperator reassigns one unit's cluster membership via Neal's
// (2000) Algorithm 8: a Gibbs sweep over the existing occupied
// clusters plus m freshly drawn auxiliary candidates from the base
// distribution, weighted by each occupied cluster's size (or, for an
// auxiliary, concentration/m) times its conditional likelihood. This
// is the Dirichlet-process mechanism behind a model of shared
// parameter classes (in this module, shared population sizes, via
// internal/modelsetup's host): since it is an exact Gibbs draw from the
// full conditional, it is always accepted and contributes no further
// Hastings term.
type ModelOperator struct {
	weight        float64
	host          ClusterHost
	concentration *parameter.Parameter
	numAuxiliary  int
}

// NewModelOperator returns a ModelOperator over host, reading the
// concentration parameter from concentration and drawing numAuxiliary
// auxiliary candidate clusters per sweep (Neal's "m").
func NewModelOperator(host ClusterHost, concentration *parameter.Parameter, numAuxiliary int, weight float64) *ModelOperator {
	if numAuxiliary < 1 {
		numAuxiliary = 1
	}
	return &ModelOperator{weight: weight, host: host, concentration: concentration, numAuxiliary: numAuxiliary}
}

func (m *ModelOperator) Name() string    { return "ModelOperator" }
func (m *ModelOperator) Weight() float64 { return m.weight }

func (m *ModelOperator) Propose(rng *randomsource.Source) (float64, bool) {
	n := m.host.NumUnits()
	if n == 0 {
		return 0, false
	}
	i := rng.IntN(n)

	occupied := make(map[*parameter.Parameter]int)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		occupied[m.host.ClusterOf(j)]++
	}

	alpha := m.concentration.Value()
	var candidates []*parameter.Parameter
	var logWeights []float64
	for _, c := range m.host.DistinctClusters() {
		count := occupied[c]
		if count == 0 {
			continue
		}
		candidates = append(candidates, c)
		logWeights = append(logWeights, math.Log(float64(count))+m.host.LogConditional(i, c))
	}
	for a := 0; a < m.numAuxiliary; a++ {
		aux := m.host.DrawNewCluster(rng)
		candidates = append(candidates, aux)
		logWeights = append(logWeights, math.Log(alpha/float64(m.numAuxiliary))+m.host.LogConditional(i, aux))
	}

	chosen := sampleLogWeighted(rng, logWeights)
	m.host.SetClusterOf(i, candidates[chosen])
	return 0, true
}

// Optimize is a no-op: a Gibbs draw has no acceptance-rate tuning
// parameter.
func (m *ModelOperator) Optimize(accepted bool) {}

// sampleLogWeighted draws an index in [0, len(logWeights)) with
// probability proportional to exp(logWeights[i]), computed via the
// standard log-sum-exp normalization for numerical stability.
func sampleLogWeighted(rng *randomsource.Source, logWeights []float64) int {
	max := logWeights[0]
	for _, lw := range logWeights[1:] {
		if lw > max {
			max = lw
		}
	}
	weights := make([]float64, len(logWeights))
	var sum float64
	for i, lw := range logWeights {
		weights[i] = math.Exp(lw - max)
		sum += weights[i]
	}
	target := rng.Float64() * sum
	var cum float64
	for i, w := range weights {
		cum += w
		if target <= cum {
			return i
		}
	}
	return len(weights) - 1
}
