// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package parameter implements Parameter, a positive real-valued
// model quantity with a stored/restored snapshot, an optional fixed
// flag, and an optional prior distribution.
package parameter

import (
	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/randomsource"
)

// A Parameter is a single positive real value owned by the model: a
// height, a population size, a mutation rate, a state frequency, or a
// hyperparameter. It may be shared by multiple owners through a
// *Parameter handle — mutating through one handle is visible through
// every other handle to the same value, which is the mechanism by
// which internal tree nodes share a single height.
type Parameter struct {
	value       float64
	storedValue float64
	isFixed     bool
	prior       distributions.Distribution
}

// New returns a Parameter with the given initial value and no prior.
func New(value float64) *Parameter {
	return &Parameter{value: value, storedValue: value}
}

// NewWithPrior returns a Parameter with the given initial value and
// prior distribution.
func NewWithPrior(value float64, prior distributions.Distribution) *Parameter {
	return &Parameter{value: value, storedValue: value, prior: prior}
}

// Value returns the current value.
func (p *Parameter) Value() float64 {
	return p.value
}

// SetValue sets the current value without touching the stored
// snapshot.
func (p *Parameter) SetValue(v float64) {
	p.value = v
}

// IsFixed reports whether the parameter is held fixed by the model
// (never proposed on, and its prior is not counted).
func (p *Parameter) IsFixed() bool {
	return p.isFixed
}

// SetFixed sets the fixed flag.
func (p *Parameter) SetFixed(fixed bool) {
	p.isFixed = fixed
}

// Prior returns the parameter's prior distribution, or nil if none is
// set.
func (p *Parameter) Prior() distributions.Distribution {
	return p.prior
}

// SetPrior sets the parameter's prior distribution.
func (p *Parameter) SetPrior(prior distributions.Distribution) {
	p.prior = prior
}

// Store snapshots the current value so it can later be restored.
func (p *Parameter) Store() {
	p.storedValue = p.value
}

// Restore copies the stored snapshot back into the current value,
// undoing any changes made since the last Store. It is only valid to
// call Restore after a rejected proposal.
func (p *Parameter) Restore() {
	p.value = p.storedValue
}

// PriorLnPDF returns 0 when the parameter is fixed, else the prior's
// log density at the current value. It panics if no prior is set and
// the parameter is not fixed, since that reflects a model
// misconfiguration rather than a recoverable runtime condition.
func (p *Parameter) PriorLnPDF() float64 {
	if p.isFixed {
		return 0
	}
	if p.prior == nil {
		panic("parameter: PriorLnPDF called with no prior set")
	}
	lp, err := p.prior.LnPDF(p.value)
	if err != nil {
		// Improper priors have no normalized density; fall back to
		// their relative log density.
		return p.prior.RelativeLnPDF(p.value)
	}
	return lp
}

// Draw replaces the current value with a draw from the prior. It
// panics under the same conditions as PriorLnPDF.
func (p *Parameter) Draw(rng *randomsource.Source) {
	if p.prior == nil {
		panic("parameter: Draw called with no prior set")
	}
	p.value = p.prior.Draw(rng)
}

// Clone returns an independent copy of p (a fresh handle, not sharing
// storage with p).
func (p *Parameter) Clone() *Parameter {
	return &Parameter{
		value:       p.value,
		storedValue: p.storedValue,
		isFixed:     p.isFixed,
		prior:       p.prior,
	}
}
