// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package populationtree

import (
	"math"

	"github.com/jsalarias/ecoevolity/biallelicdata"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

// CoalesceInBranch draws the total time for `lineages` gene copies to
// coalesce down to a single common ancestor, under a population of
// scaled size theta: the sum of independent Exponential(k(k-1)/theta)
// waiting times for k = lineages, lineages-1, ..., 2. Its expectation
// is theta*(1 - 1/lineages), the standard coalescent time-to-MRCA
// formula under this rate scaling.
func CoalesceInBranch(lineages int, theta float64, rng *randomsource.Source) float64 {
	var total float64
	for k := lineages; k > 1; k-- {
		rate := float64(k*(k-1)) / theta
		total += -math.Log(rng.Float64()) / rate
	}
	return total
}

// SimulateBiallelicSite draws one site's allele counts for every leaf
// population of tr, given a mutation rate and ancestral red-allele
// frequency, by independently evolving sampleSizes[leaf] gene copies
// per leaf forward from an ancestral draw at the root down through
// the branches on their path to that leaf. This marginal per-copy
// simulation does not model within-locus linkage via an explicit gene
// tree (see CoalesceInBranch for that); it is exact for the
// per-site, per-population allele-frequency distribution the
// likelihood engine conditions on, since the peeling recursion itself
// treats a site's lineages as exchangeable rather than tied to one
// realized gene genealogy.
func SimulateBiallelicSite(tr *tree.Tree, mu, pi1 float64, sampleSizes map[string]int, rng *randomsource.Source) *biallelicdata.Pattern {
	u := mu * pi1
	v := mu * (1 - pi1)

	leaves := tr.Leaves()
	red := make([]int, len(leaves))
	total := make([]int, len(leaves))

	for li, leaf := range leaves {
		n := sampleSizes[leaf.Label()]
		total[li] = n
		path := pathToRoot(leaf)
		for copyIdx := 0; copyIdx < n; copyIdx++ {
			state := rng.Float64() < pi1
			for i := len(path) - 1; i > 0; i-- {
				parent, child := path[i], path[i-1]
				t := parent.Height() - child.Height()
				state = evolveState(state, u, v, t, rng)
			}
			if state {
				red[li]++
			}
		}
	}
	return &biallelicdata.Pattern{Red: red, Total: total}
}

// pathToRoot returns the chain of nodes from the tree's root down to
// n, inclusive (path[0] is the root).
func pathToRoot(n *tree.Node) []*tree.Node {
	var rev []*tree.Node
	for cur := n; cur != nil; cur = cur.Parent() {
		rev = append(rev, cur)
	}
	path := make([]*tree.Node, len(rev))
	for i, node := range rev {
		path[len(rev)-1-i] = node
	}
	return path
}

// evolveState draws the state of a single lineage after time t has
// elapsed under the two-state continuous-time chain with forward
// rate u (green->red) and backward rate v (red->green), starting from
// state red.
func evolveState(red bool, u, v, t float64, rng *randomsource.Source) bool {
	total := u + v
	if total == 0 || t <= 0 {
		return red
	}
	// P(no change in state in time t) = exp(-total*t) plus the
	// stationary-mixing term; using the standard two-state CTMC
	// transition probability.
	pStayOrMixIn := math.Exp(-total * t)
	stationaryRed := u / total
	var pRedGivenRed, pRedGivenGreen float64
	pRedGivenRed = stationaryRed + (1-stationaryRed)*pStayOrMixIn
	pRedGivenGreen = stationaryRed * (1 - pStayOrMixIn)
	draw := rng.Float64()
	if red {
		return draw < pRedGivenRed
	}
	return draw < pRedGivenGreen
}
