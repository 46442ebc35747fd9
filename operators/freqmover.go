// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import (
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/randomsource"
)

// FreqMover is a symmetric window move on a [0, 1]-bounded parameter
// (the ancestral red-allele frequency pi1), reflecting any excursion
// outside the unit interval back in. Because the reflected window
// proposal is symmetric in the sense that density is conserved under
// reflection, its Hastings ratio contribution is 0.
type FreqMover struct {
	weight float64
	target *parameter.Parameter
	tuner  *autoTuner
}

// NewFreqMover returns a FreqMover on target with the given weight
// and initial window width.
func NewFreqMover(target *parameter.Parameter, weight, window float64) *FreqMover {
	return &FreqMover{weight: weight, target: target, tuner: newAutoTuner(window)}
}

func (f *FreqMover) Name() string    { return "FreqMover" }
func (f *FreqMover) Weight() float64 { return f.weight }

func (f *FreqMover) Propose(rng *randomsource.Source) (float64, bool) {
	window := f.tuner.value()
	v := f.target.Value() + window*(rng.Float64()-0.5)
	f.target.SetValue(reflectIntoUnit(v))
	return 0, true
}

func (f *FreqMover) Optimize(accepted bool) { f.tuner.update(accepted) }

// Window returns the operator's current tuning window width.
func (f *FreqMover) Window() float64 { return f.tuner.value() }
