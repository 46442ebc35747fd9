// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package populationtree

import (
	"github.com/jsalarias/ecoevolity/biallelicdata"
	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/tree"
)

// A PopulationTree couples a tree.Tree (whose nodes carry *Payload)
// to a BiallelicData pattern store, a tree-wide mutation rate, and a
// tree-wide ancestral red-allele frequency, and computes the
// biallelic-marker likelihood of the data given the tree.
type PopulationTree struct {
	Tree *tree.Tree
	Data *biallelicdata.BiallelicData

	MutationRate *parameter.Parameter
	FreqR        *parameter.Parameter // pi1, the ancestral frequency of the "red" (derived) allele

	numThreads int

	popIndex map[string]int
}

// New returns a PopulationTree over tr and data, with a mutation rate
// of 1 (no prior, not flagged fixed) and a Beta(1,1) prior on the
// ancestral allele frequency.
// tr's leaf labels must match data's population labels.
func New(tr *tree.Tree, data *biallelicdata.BiallelicData) (*PopulationTree, error) {
	popIndex := make(map[string]int, data.NumPopulations())
	for i := 0; i < data.NumPopulations(); i++ {
		popIndex[data.PopulationLabel(i)] = i
	}
	for _, leaf := range tr.Leaves() {
		if _, ok := popIndex[leaf.Label()]; !ok {
			return nil, &ecoerr.MissingEntityError{Kind: "population matching leaf label", Name: leaf.Label()}
		}
	}
	pt := &PopulationTree{
		Tree:         tr,
		Data:         data,
		MutationRate: parameter.New(1),
		FreqR:        parameter.NewWithPrior(0.5, distributions.Beta{Alpha: 1, Beta2: 1}),
		popIndex:     popIndex,
	}
	return pt, nil
}

// SetNumThreads sets the number of worker goroutines used to split
// pattern likelihoods across. Values less than 1 are treated as 1;
// values greater than the number of patterns are silently reduced to
// the number of patterns.
func (pt *PopulationTree) SetNumThreads(n int) { pt.numThreads = n }

// NumThreads returns the configured worker count (at least 1).
func (pt *PopulationTree) NumThreads() int {
	if pt.numThreads < 1 {
		return 1
	}
	return pt.numThreads
}

func (pt *PopulationTree) populationIndex(label string) (int, error) {
	i, ok := pt.popIndex[label]
	if !ok {
		return 0, &ecoerr.MissingEntityError{Kind: "population", Name: label}
	}
	return i, nil
}

func payloadOf(n *tree.Node) *Payload {
	p, ok := n.Payload().(*Payload)
	if !ok || p == nil {
		panic("populationtree: node payload is not a *populationtree.Payload")
	}
	return p
}
