// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PriorLnPDF returns the tree's total log prior density: the root
// height's own prior (set directly on its Parameter via
// Parameter.SetPrior), plus, for every other height, the density of a
// Beta(alpha, beta) distribution over that height's position as a
// fraction of its youngest parent's height (not the root height — the
// two coincide only when the height's parent is the root), adjusted
// by the Jacobian of the height-to-fraction reparameterization. The
// shared Beta shape parameters themselves carry their own (typically
// Gamma) priors, which are folded in here too.
func (t *Tree) PriorLnPDF() float64 {
	rootHeight := t.root.Height()
	if rootHeight <= 0 {
		return math.Inf(-1)
	}
	lnP := t.root.height.PriorLnPDF()

	alpha, beta := t.betaShapeA.Value(), t.betaShapeB.Value()
	betaDist := distuv.Beta{Alpha: alpha, Beta: beta}
	for i, h := range t.heights {
		if h == t.root.height || h.IsFixed() {
			continue
		}
		parentHeight, err := t.GetHeightOfYoungestParent(i)
		if err != nil || parentHeight <= 0 {
			return math.Inf(-1)
		}
		u := h.Value() / parentHeight
		if u <= 0 || u >= 1 {
			return math.Inf(-1)
		}
		lnP += betaDist.LogProb(u) - math.Log(parentHeight)
	}

	lnP += t.betaShapeA.PriorLnPDF()
	lnP += t.betaShapeB.PriorLnPDF()
	return lnP
}
