// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package modelsetup wires a config.Config into a runnable tree,
// biallelic-data-backed model, and operator schedule. It is the one
// place that knows how the ambient configuration format maps onto
// the tree/populationtree/operators packages, so the cmd binaries
// stay thin.
package modelsetup

import (
	"fmt"
	"os"

	"github.com/jsalarias/ecoevolity/biallelicdata"
	"github.com/jsalarias/ecoevolity/config"
	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/operators"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/tree"
)

// LoadData parses every configured Nexus file and merges them into a
// single BiallelicData keyed on the first file's population labels in
// sorted order,
// marking a locus boundary after each file's patterns. Every file
// must name the same set of populations (order may differ).
func LoadData(entries []config.DataConfig) (*biallelicdata.BiallelicData, error) {
	if len(entries) == 0 {
		return nil, &ecoerr.SettingError{Message: "no data files configured"}
	}

	first, err := parseOne(entries[0])
	if err != nil {
		return nil, err
	}
	combined := biallelicdata.New(first.SortedPopulationLabels())
	combined.SetDominant(entries[0].Dominant)
	if err := appendInto(combined, first); err != nil {
		return nil, err
	}

	for _, e := range entries[1:] {
		d, err := parseOne(e)
		if err != nil {
			return nil, err
		}
		if !sameLabelSet(combined.SortedPopulationLabels(), d.SortedPopulationLabels()) {
			return nil, &ecoerr.SettingError{Message: fmt.Sprintf("%s: population labels do not match the first data file", e.Path)}
		}
		if err := appendInto(combined, d); err != nil {
			return nil, err
		}
	}
	return combined, nil
}

func parseOne(e config.DataConfig) (*biallelicdata.BiallelicData, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := biallelicdata.ParseNexus(f, biallelicdata.ParseOptions{
		PopulationDelimiter: e.PopulationDelimiter,
		PopulationIsPrefix:  e.PopulationIsPrefix,
		GenotypesAreDiploid: e.GenotypesAreDiploid,
		Dominant:            e.Dominant,
	})
	if err != nil {
		return nil, err
	}
	if e.Fold {
		if err := d.Fold(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// appendInto copies every pattern of src into dst, remapping src's
// population order onto dst's, then marks a locus boundary.
func appendInto(dst, src *biallelicdata.BiallelicData) error {
	perm := make([]int, src.NumPopulations())
	for i := 0; i < src.NumPopulations(); i++ {
		label := src.PopulationLabel(i)
		j, err := indexOf(dst, label)
		if err != nil {
			return err
		}
		perm[i] = j
	}

	for i := 0; i < src.NumPatterns(); i++ {
		p := src.Pattern(i)
		red := make([]int, dst.NumPopulations())
		total := make([]int, dst.NumPopulations())
		for srcIdx, dstIdx := range perm {
			red[dstIdx] = p.Red[srcIdx]
			total[dstIdx] = p.Total[srcIdx]
		}
		count := int(src.Weight(i))
		for n := 0; n < count; n++ {
			if err := dst.AddPattern(red, total); err != nil {
				return err
			}
		}
	}
	dst.MarkLocusEnd()
	return nil
}

func indexOf(d *biallelicdata.BiallelicData, label string) (int, error) {
	for i := 0; i < d.NumPopulations(); i++ {
		if d.PopulationLabel(i) == label {
			return i, nil
		}
	}
	return 0, &ecoerr.MissingEntityError{Kind: "population", Name: label}
}

func sameLabelSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BuildTree parses the newick tree at path, giving every internal
// node a population-size payload drawn from popSizePrior's mean and
// carrying popSizePrior itself.
func BuildTree(path string, popSizePrior distributions.Distribution) (*tree.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mean, err := popSizePrior.Mean()
	if err != nil {
		mean = 0.01
	}
	newPayload := func() tree.Payload {
		pl := populationtree.NewPayload(mean)
		pl.PopSize.SetPrior(popSizePrior)
		return pl
	}
	tr, err := tree.ParseNewick(string(data), newPayload)
	if err != nil {
		return nil, &ecoerr.ParsingError{Path: path, Message: err.Error()}
	}
	return tr, nil
}

// BuildModel loads cfg's data and tree, assembles a PopulationTree
// with the configured priors (or fixed values), and returns it
// alongside the priced operator schedule and an optional
// concentration parameter for the population-size Dirichlet-process
// clustering operators (nil when clustering is not configured).
func BuildModel(cfg *config.Config) (*tree.Tree, *populationtree.PopulationTree, []operators.Operator, *parameter.Parameter, error) {
	popSizePrior, err := cfg.PopulationSizePrior.Distribution()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tr, err := BuildTree(cfg.TreePath, popSizePrior)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	data, err := LoadData(cfg.Data)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	pt, err := populationtree.New(tr, data)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pt.SetNumThreads(cfg.NumThreads)

	if err := wireMutationModel(cfg, pt); err != nil {
		return nil, nil, nil, nil, err
	}
	if cfg.FixRootHeight {
		tr.SetRootHeightFixed(true)
	} else {
		rootPrior, err := cfg.RootHeightPrior.Distribution()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		tr.Root().HeightParameter().SetPrior(rootPrior)
	}

	ops, concentration, err := buildOperators(cfg, tr, pt)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return tr, pt, ops, concentration, nil
}

func wireMutationModel(cfg *config.Config, pt *populationtree.PopulationTree) error {
	if cfg.FixedMutationRate != nil {
		pt.MutationRate.SetValue(*cfg.FixedMutationRate)
		pt.MutationRate.SetFixed(true)
	} else {
		prior, err := cfg.MutationRatePrior.Distribution()
		if err != nil {
			return err
		}
		pt.MutationRate.SetPrior(prior)
		mean, err := prior.Mean()
		if err == nil {
			pt.MutationRate.SetValue(mean)
		}
	}
	if cfg.FixedFreq != nil {
		pt.FreqR.SetValue(*cfg.FixedFreq)
		pt.FreqR.SetFixed(true)
	} else {
		prior, err := cfg.FreqPrior.Distribution()
		if err != nil {
			return err
		}
		pt.FreqR.SetPrior(prior)
	}
	return nil
}
