// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package operators implements the MCMC proposal kernels (§4.5 of the
// design): univariate scalers, a reflecting frequency mover, a
// Dirichlet-proposal relative-population-size mixer, the tree
// height-change movers (slide-bump, merge, split), the Dirichlet-
// process model operator, and a concentration scaler — each tunable
// toward Gelman's target acceptance rate of 0.234.
package operators

import (
	"math"

	"github.com/jsalarias/ecoevolity/randomsource"
)

// TargetAcceptanceRate is the acceptance rate automatic tuning aims
// for (Gelman et al.'s asymptotically-optimal rate for a broad class
// of random-walk Metropolis proposals).
const TargetAcceptanceRate = 0.234

// An Operator proposes a change to some part of the model state and
// reports the log of the Hastings ratio contribution of the proposal
// mechanism itself (not the prior/likelihood ratio, which the caller
// combines separately). ok is false when the move must be rejected
// outright (e.g. it would violate a hard constraint the operator
// cannot price into the Hastings ratio).
type Operator interface {
	Propose(rng *randomsource.Source) (logHastings float64, ok bool)
	Optimize(accepted bool)
	Weight() float64
	Name() string
}

// autoTuner implements Robbins-Monro-style acceptance-rate
// optimization: after every proposal the log of the tuning parameter
// is nudged toward whichever direction would move the running
// acceptance rate toward TargetAcceptanceRate, with a step size that
// shrinks as 1/(1+numTries) so the tuning parameter settles down
// rather than oscillating forever.
type autoTuner struct {
	tuning   float64
	numTries int
}

func newAutoTuner(initial float64) *autoTuner {
	return &autoTuner{tuning: initial}
}

func (a *autoTuner) value() float64 { return a.tuning }

func (a *autoTuner) update(accepted bool) {
	a.numTries++
	delta := 1.0 / (1.0 + float64(a.numTries))
	x := 0.0
	if accepted {
		x = 1.0
	}
	a.tuning = math.Exp(math.Log(a.tuning) + delta*(x-TargetAcceptanceRate))
}

// reflectIntoUnit reflects v into [0, 1] as if it were a billiard
// ball bouncing off the boundaries — the standard treatment for a
// symmetric window move on a bounded parameter, used by FreqMover.
func reflectIntoUnit(v float64) float64 {
	for v < 0 || v > 1 {
		if v < 0 {
			v = -v
		}
		if v > 1 {
			v = 2 - v
		}
	}
	return v
}
