// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package modelsetup

import (
	"github.com/jsalarias/ecoevolity/config"
	"github.com/jsalarias/ecoevolity/operators"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/tree"
)

func weightOf(cfg *config.Config, name string, fallback float64) float64 {
	if cfg.OperatorWeights != nil {
		if w, ok := cfg.OperatorWeights[name]; ok {
			return w
		}
	}
	return fallback
}

// buildOperators assembles the default operator schedule: a Scale and
// FreqMover on the mutation model (skipped when fixed), an
// EventTimeScaler per height-table slot plus one HeightMoveOperator
// for trans-dimensional merges/splits, a RelativePopulationSizeMixer
// over every branch's population size, and — when more than one
// branch can share a population-size class — a ModelOperator /
// ConcentrationScaler pair driving the Dirichlet-process clustering
// of popSizeClusterHost.
func buildOperators(cfg *config.Config, tr *tree.Tree, pt *populationtree.PopulationTree) ([]operators.Operator, *parameter.Parameter, error) {
	var ops []operators.Operator

	if !pt.MutationRate.IsFixed() {
		ops = append(ops, operators.NewScale(pt.MutationRate, weightOf(cfg, "mutation_rate", 1.0), 0.5))
	}
	if !pt.FreqR.IsFixed() {
		ops = append(ops, operators.NewFreqMover(pt.FreqR, weightOf(cfg, "freq", 1.0), 0.2))
	}

	for i := 0; i < tr.NumHeights(); i++ {
		if tr.IsRootHeightIndex(i) && tr.RootHeightFixed() {
			continue
		}
		ops = append(ops, operators.NewEventTimeScaler(tr, i, tree.CollisionNone, weightOf(cfg, "event_time", 1.0), 0.3))
	}
	ops = append(ops, operators.NewHeightMoveOperator(tr, weightOf(cfg, "height_move", 1.0)))

	popSizes := collectPopSizes(nonRootNodes(tr.Nodes()))
	if len(popSizes) > 1 {
		ops = append(ops, operators.NewRelativePopulationSizeMixer(popSizes, weightOf(cfg, "pop_size_mixer", 1.0), 20.0))
	}
	for _, p := range popSizes {
		ops = append(ops, operators.NewScale(p, weightOf(cfg, "pop_size_scale", 1.0)/float64(len(popSizes)), 0.3))
	}

	var concentration *parameter.Parameter
	nonRoot := nonRootNodes(tr.Nodes())
	if len(nonRoot) > 1 {
		concPrior, err := cfg.ConcentrationPrior.Distribution()
		if err != nil {
			return nil, nil, err
		}
		mean, err := concPrior.Mean()
		if err != nil {
			mean = 1
		}
		concentration = parameter.NewWithPrior(mean, concPrior)

		popSizePrior, err := cfg.PopulationSizePrior.Distribution()
		if err != nil {
			return nil, nil, err
		}
		host := newPopSizeClusterHost(nonRoot, popSizePrior)
		ops = append(ops, operators.NewModelOperator(host, concentration, 4, weightOf(cfg, "model", 1.0)))
		ops = append(ops, operators.NewConcentrationScaler(concentration, weightOf(cfg, "concentration", 1.0), 0.5))
	}

	return ops, concentration, nil
}

func collectPopSizes(nodes []*tree.Node) []*parameter.Parameter {
	var out []*parameter.Parameter
	for _, n := range nodes {
		out = append(out, n.Payload().(*populationtree.Payload).PopSize)
	}
	return out
}
