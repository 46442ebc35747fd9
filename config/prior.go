// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package config

import (
	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
)

// Distribution builds the distributions.Distribution named by p.
func (p PriorConfig) Distribution() (distributions.Distribution, error) {
	switch p.Name {
	case "uniform":
		return distributions.Uniform{Min: p.Min, Max: p.Max}, nil
	case "exponential":
		return distributions.Exponential{Lambda: p.Rate}, nil
	case "gamma":
		return distributions.Gamma{Alpha: p.Shape, Theta: p.Scale}, nil
	case "beta":
		return distributions.Beta{Alpha: p.Alpha, Beta2: p.Beta}, nil
	default:
		return nil, &ecoerr.SettingError{Message: "unknown prior distribution " + p.Name}
	}
}
