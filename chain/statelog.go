// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package chain

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/tree"
)

// StateLogWriter writes a tab-delimited state log, one row per
// sampled generation: generation number, log-likelihood, log-prior,
// number of distinct heights, then one height column per internal
// node (so a shared height simply repeats its value across the
// nodes that share it, keeping row width fixed across generations
// despite the model's varying number of distinct heights), one
// population-size column per non-root node, the mutation rate, the
// ancestral state frequency, and — when the chain clusters
// population sizes via a Dirichlet process — the concentration
// parameter.
type StateLogWriter struct {
	w           *bufio.Writer
	wroteHeader bool
}

// NewStateLogWriter returns a StateLogWriter over w.
func NewStateLogWriter(w io.Writer) *StateLogWriter {
	return &StateLogWriter{w: bufio.NewWriter(w)}
}

// WriteState appends one row describing c's current state, writing
// the header first if this is the writer's first call.
func (s *StateLogWriter) WriteState(c *Chain) error {
	internal := c.Tree.InternalNodes()
	nonRoot := nonRootNodes(c.Tree.Nodes())

	if !s.wroteHeader {
		header := []string{"generation", "ln_likelihood", "ln_prior", "num_heights"}
		for _, n := range internal {
			header = append(header, fmt.Sprintf("height_%d", n.Index()))
		}
		for _, n := range nonRoot {
			header = append(header, fmt.Sprintf("pop_size_%d", n.Index()))
		}
		header = append(header, "mutation_rate", "freq_1")
		if c.Concentration != nil {
			header = append(header, "concentration")
		}
		if _, err := fmt.Fprintln(s.w, strings.Join(header, "\t")); err != nil {
			return err
		}
		s.wroteHeader = true
	}

	row := []string{
		fmt.Sprint(c.Generation),
		fmt.Sprintf("%.6f", c.Tree.LogLikelihood()),
		fmt.Sprintf("%.6f", c.Tree.LogPrior()),
		fmt.Sprint(c.Tree.NumHeights()),
	}
	for _, n := range internal {
		row = append(row, fmt.Sprintf("%.6f", n.Height()))
	}
	for _, n := range nonRoot {
		row = append(row, fmt.Sprintf("%.6f", popSizeOf(n)))
	}
	row = append(row, fmt.Sprintf("%.6f", c.Model.MutationRate.Value()), fmt.Sprintf("%.6f", c.Model.FreqR.Value()))
	if c.Concentration != nil {
		row = append(row, fmt.Sprintf("%.6f", c.Concentration.Value()))
	}
	if _, err := fmt.Fprintln(s.w, strings.Join(row, "\t")); err != nil {
		return err
	}
	return s.w.Flush()
}

func nonRootNodes(nodes []*tree.Node) []*tree.Node {
	var out []*tree.Node
	for _, n := range nodes {
		if !n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}

func popSizeOf(n *tree.Node) float64 {
	p, ok := n.Payload().(*populationtree.Payload)
	if !ok || p == nil || p.PopSize == nil {
		return 0
	}
	return p.PopSize.Value()
}
