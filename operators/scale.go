// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import (
	"math"

	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/randomsource"
)

// Scale multiplies a positive parameter by exp(lambda*(u-0.5)) for a
// uniform u, the standard scale move for a positive-real parameter
// (population size, mutation rate, concentration). Its Hastings
// ratio is the log of the multiplier itself.
type Scale struct {
	weight float64
	target *parameter.Parameter
	tuner  *autoTuner

	lastMultiplier float64
}

// NewScale returns a Scale move on target with the given relative
// operator weight and initial window width lambda (the log of the
// multiplier is drawn uniformly on (-lambda/2, lambda/2)).
func NewScale(target *parameter.Parameter, weight, lambda float64) *Scale {
	return &Scale{weight: weight, target: target, tuner: newAutoTuner(lambda)}
}

func (s *Scale) Name() string    { return "Scale" }
func (s *Scale) Weight() float64 { return s.weight }

func (s *Scale) Propose(rng *randomsource.Source) (float64, bool) {
	lambda := s.tuner.value()
	multiplier := math.Exp(lambda * (rng.Float64() - 0.5))
	s.lastMultiplier = multiplier
	s.target.SetValue(s.target.Value() * multiplier)
	return math.Log(multiplier), true
}

func (s *Scale) Optimize(accepted bool) { s.tuner.update(accepted) }

// Lambda returns the operator's current tuning window.
func (s *Scale) Lambda() float64 { return s.tuner.value() }
