// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package chain implements the MCMC scheduler: a single cooperative
// loop that picks one operator per step, weighted by its configured
// relative weight, proposes with it, and accepts or rejects via the
// Metropolis-Hastings ratio over the tree's prior and the
// population tree's biallelic likelihood. The only concurrency in a
// step is internal to the likelihood evaluator's worker pool
// (package populationtree) — operator order and acceptance are
// otherwise fully determined by the chain's seeded RNG.
package chain

import (
	"math"

	"github.com/jsalarias/ecoevolity/operators"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

// A Chain drives one MCMC trajectory over a tree/model pair.
type Chain struct {
	Tree  *tree.Tree
	Model *populationtree.PopulationTree

	// Concentration is the Dirichlet-process concentration
	// parameter, logged alongside the rest of the state when set.
	// It is nil for a fixed, non-clustering model.
	Concentration *parameter.Parameter

	Operators []operators.Operator
	RNG       *randomsource.Source

	Generation int

	cumWeights  []float64
	totalWeight float64
}

// New returns a Chain ready to step, with the tree's cached
// log-prior and log-likelihood initialized from its current state.
func New(tr *tree.Tree, model *populationtree.PopulationTree, ops []operators.Operator, rng *randomsource.Source) *Chain {
	c := &Chain{Tree: tr, Model: model, Operators: ops, RNG: rng}
	c.rebuildWeights()
	tr.SetLogPrior(tr.PriorLnPDF())
	tr.SetLogLikelihood(model.LogLikelihood())
	return c
}

func (c *Chain) rebuildWeights() {
	c.cumWeights = make([]float64, len(c.Operators))
	var sum float64
	for i, op := range c.Operators {
		sum += op.Weight()
		c.cumWeights[i] = sum
	}
	c.totalWeight = sum
}

func (c *Chain) pickOperator() operators.Operator {
	target := c.RNG.Float64() * c.totalWeight
	for i, cw := range c.cumWeights {
		if target <= cw {
			return c.Operators[i]
		}
	}
	return c.Operators[len(c.Operators)-1]
}

func (c *Chain) storeAll() {
	c.Tree.StoreState()
	c.Model.MutationRate.Store()
	c.Model.FreqR.Store()
}

func (c *Chain) restoreAll() {
	c.Tree.RestoreState()
	c.Model.MutationRate.Restore()
	c.Model.FreqR.Restore()
}

// Step performs one Metropolis-Hastings iteration: it picks an
// operator by weight, proposes with it, evaluates the resulting
// log-prior and log-likelihood, and accepts or rejects. It returns
// whether the proposal was accepted.
func (c *Chain) Step() bool {
	op := c.pickOperator()
	oldPrior := c.Tree.LogPrior()
	oldLikelihood := c.Tree.LogLikelihood()

	c.storeAll()
	logHastings, ok := op.Propose(c.RNG)
	if !ok {
		c.restoreAll()
		op.Optimize(false)
		c.Generation++
		return false
	}

	newPrior := c.Tree.PriorLnPDF()
	newLikelihood := c.Model.LogLikelihood()
	lnRatio := (newPrior + newLikelihood) - (oldPrior + oldLikelihood) + logHastings

	accept := lnRatio >= 0 || math.Log(c.RNG.Float64()) < lnRatio
	if accept {
		c.Tree.SetLogPrior(newPrior)
		c.Tree.SetLogLikelihood(newLikelihood)
	} else {
		c.restoreAll()
	}
	op.Optimize(accept)
	c.Generation++
	return accept
}

// Run advances the chain numGenerations steps, writing a sample to
// logger every sampleEvery generations. logger may be nil to run
// without logging.
func (c *Chain) Run(numGenerations, sampleEvery int, logger *StateLogWriter) error {
	for g := 0; g < numGenerations; g++ {
		c.Step()
		if logger != nil && sampleEvery > 0 && (g+1)%sampleEvery == 0 {
			if err := logger.WriteState(c); err != nil {
				return err
			}
		}
	}
	return nil
}
