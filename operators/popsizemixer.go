// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import (
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/randomsource"
)

// RelativePopulationSizeMixer re-proportions a set of population-size
// parameters that together are constrained to some total, by drawing
// new proportions from a Dirichlet distribution centered on the
// current proportions and scaled by a tunable concentration. Since
// the Dirichlet proposal is not symmetric, the move's Hastings ratio
// is the ratio of the reverse and forward proposal densities.
type RelativePopulationSizeMixer struct {
	weight  float64
	targets []*parameter.Parameter
	tuner   *autoTuner
}

// NewRelativePopulationSizeMixer returns a mixer over targets (which
// must have at least 2 entries) with the given weight and initial
// Dirichlet concentration scale (larger scale means a tighter,
// smaller-step proposal).
func NewRelativePopulationSizeMixer(targets []*parameter.Parameter, weight, scale float64) *RelativePopulationSizeMixer {
	// The tuner holds 1/scale: a larger scale raises the acceptance
	// rate, the opposite of the step-size knobs autoTuner assumes.
	return &RelativePopulationSizeMixer{weight: weight, targets: targets, tuner: newAutoTuner(1 / scale)}
}

func (m *RelativePopulationSizeMixer) Name() string    { return "RelativePopulationSizeMixer" }
func (m *RelativePopulationSizeMixer) Weight() float64 { return m.weight }

func (m *RelativePopulationSizeMixer) Propose(rng *randomsource.Source) (float64, bool) {
	n := len(m.targets)
	if n < 2 {
		return 0, false
	}
	old := make([]float64, n)
	var sum float64
	for i, p := range m.targets {
		old[i] = p.Value()
		sum += old[i]
	}
	if sum <= 0 {
		return 0, false
	}
	oldProp := make([]float64, n)
	for i, v := range old {
		oldProp[i] = v / sum
	}

	scale := 1 / m.tuner.value()
	alphaForward := make([]float64, n)
	for i, p := range oldProp {
		alphaForward[i] = p*scale + 1e-6
	}
	newProp := rng.Dirichlet(alphaForward, nil)

	alphaBackward := make([]float64, n)
	for i, p := range newProp {
		alphaBackward[i] = p*scale + 1e-6
	}

	lnForward := distributions.Dirichlet{Alpha: alphaForward}.LnPDF(newProp)
	lnBackward := distributions.Dirichlet{Alpha: alphaBackward}.LnPDF(oldProp)

	for i, p := range m.targets {
		p.SetValue(newProp[i] * sum)
	}
	return lnBackward - lnForward, true
}

func (m *RelativePopulationSizeMixer) Optimize(accepted bool) { m.tuner.update(accepted) }
