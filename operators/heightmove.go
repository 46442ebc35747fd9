// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import (
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

// HeightMoveOperator is the trans-dimensional move that merges two
// neighboring divergence-time classes into one shared height, or
// splits a shared/polytomous height back apart, chosen with equal
// probability whenever both directions are available (falling back
// to whichever direction is available when only one is). The
// dimension-matching and dimension-change Jacobian terms are computed
// by Tree.MergeHeightUp/Tree.SplitHeightDown; this operator adds no
// further Hastings contribution beyond the direction-choice
// probabilities it is already symmetric in.
type HeightMoveOperator struct {
	weight float64
	tr     *tree.Tree
}

// NewHeightMoveOperator returns a HeightMoveOperator over tr.
func NewHeightMoveOperator(tr *tree.Tree, weight float64) *HeightMoveOperator {
	return &HeightMoveOperator{weight: weight, tr: tr}
}

func (h *HeightMoveOperator) Name() string    { return "HeightMoveOperator" }
func (h *HeightMoveOperator) Weight() float64 { return h.weight }

func (h *HeightMoveOperator) Propose(rng *randomsource.Source) (float64, bool) {
	numHeights := h.tr.NumHeights()
	var splittable []int
	for i := 0; i < numHeights; i++ {
		if h.tr.IsSplittableHeight(i) {
			splittable = append(splittable, i)
		}
	}
	canMerge := numHeights > 1
	canSplit := len(splittable) > 0
	if !canMerge && !canSplit {
		return 0, false
	}
	doSplit := canSplit && (!canMerge || rng.Bool())
	if doSplit {
		k := splittable[rng.IntN(len(splittable))]
		return h.tr.SplitHeightDown(k, rng)
	}
	k := rng.IntN(numHeights - 1)
	logHastings, _, _ := h.tr.MergeHeightUp(k)
	return logHastings, true
}

// Optimize is a no-op: the height-move operator has no continuous
// tuning parameter to adjust.
func (h *HeightMoveOperator) Optimize(accepted bool) {}
