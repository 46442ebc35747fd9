// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package operators

import "github.com/jsalarias/ecoevolity/parameter"

// ConcentrationScaler is a Scale move specialized for the Dirichlet-
// process concentration parameter that ModelOperator reads, kept as
// its own named type (rather than a bare Scale) since the chain's
// operator schedule and state log both want to report it under its
// own name.
type ConcentrationScaler struct {
	*Scale
}

// NewConcentrationScaler returns a ConcentrationScaler over the given
// concentration parameter.
func NewConcentrationScaler(concentration *parameter.Parameter, weight, lambda float64) *ConcentrationScaler {
	return &ConcentrationScaler{Scale: NewScale(concentration, weight, lambda)}
}

func (c *ConcentrationScaler) Name() string { return "ConcentrationScaler" }
