// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package modelsetup

import (
	"github.com/jsalarias/ecoevolity/config"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

func payloadPopSize(n *tree.Node) *parameter.Parameter {
	p, ok := n.Payload().(*populationtree.Payload)
	if !ok || p == nil {
		return nil
	}
	return p.PopSize
}

// DrawTrueValues draws a full set of "true" parameter values from
// cfg's priors for a prior-predictive simulation: every branch's
// population size (already carrying its prior from BuildTree), the
// mutation rate, and the ancestral red-allele frequency. Any value
// cfg fixes is used as-is instead of drawn. It returns the mutation
// rate and ancestral frequency, since those live outside the tree
// itself; population sizes are set in place on tr.
//
// Divergence times are deliberately left exactly as given in the
// config's newick tree rather than redrawn from the root/non-root
// height priors: those priors are only well-defined relative to a
// root height that is itself free to vary during inference, and
// redrawing a generic tree's internal heights while respecting every
// node's ultrametricity and ancestor/descendant ordering constraints
// is a harder combinatorial problem than this tool's scope calls for.
// A simulation config is expected to name a tree with the exact
// divergence times to simulate under.
func DrawTrueValues(cfg *config.Config, tr *tree.Tree, rng *randomsource.Source) (mu, pi1 float64, err error) {
	for _, n := range tr.Nodes() {
		p := payloadPopSize(n)
		if p != nil && p.Prior() != nil {
			p.Draw(rng)
		}
	}

	if cfg.FixedMutationRate != nil {
		mu = *cfg.FixedMutationRate
	} else {
		prior, perr := cfg.MutationRatePrior.Distribution()
		if perr != nil {
			return 0, 0, perr
		}
		mu = prior.Draw(rng)
	}

	if cfg.FixedFreq != nil {
		pi1 = *cfg.FixedFreq
	} else {
		prior, perr := cfg.FreqPrior.Distribution()
		if perr != nil {
			return 0, 0, perr
		}
		pi1 = prior.Draw(rng)
	}

	return mu, pi1, nil
}
