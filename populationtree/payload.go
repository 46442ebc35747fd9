// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package populationtree specializes the base tree model (package
// tree) with per-branch population size, a tree-wide mutation rate,
// and a tree-wide ancestral red-allele frequency, and implements the
// biallelic-marker likelihood peeling algorithm (Bryant et al. 2012)
// over a BiallelicData pattern store.
package populationtree

import "github.com/jsalarias/ecoevolity/parameter"
import "github.com/jsalarias/ecoevolity/tree"

// Payload is the per-node attribute PopulationTree attaches to every
// tree.Node: the population size (theta) of the branch above that
// node (the branch connecting it to its parent; meaningless at the
// root, which has no branch above it).
type Payload struct {
	PopSize *parameter.Parameter
}

// NewPayload returns a Payload with a fresh population-size
// parameter at the given initial value.
func NewPayload(popSize float64) *Payload {
	return &Payload{PopSize: parameter.New(popSize)}
}

// Clone returns a new Payload sharing the same population-size
// parameter handle as p — population sizes can be constrained equal
// across branches the same way heights are shared, and Store/Restore
// already snapshots at the Parameter level.
func (p *Payload) Clone() tree.Payload {
	return &Payload{PopSize: p.PopSize}
}

// Parameters returns the payload's population-size parameter.
func (p *Payload) Parameters() []*parameter.Parameter {
	return []*parameter.Parameter{p.PopSize}
}

// LnProbOfDrawingState returns the log-prior density of the
// population-size parameter, the contribution a height-split move
// must add to its Hastings ratio when it creates a new node (and thus
// draws a new population size for it).
func (p *Payload) LnProbOfDrawingState() float64 {
	if p.PopSize == nil {
		return 0
	}
	return p.PopSize.PriorLnPDF()
}
