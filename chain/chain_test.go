// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package chain_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jsalarias/ecoevolity/biallelicdata"
	"github.com/jsalarias/ecoevolity/chain"
	"github.com/jsalarias/ecoevolity/operators"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

func newPayload() tree.Payload { return populationtree.NewPayload(0.01) }

func buildChain(t *testing.T) *chain.Chain {
	t.Helper()
	tr, err := tree.ParseNewick("(A:1,B:1);", newPayload)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	tr.Root().HeightParameter().SetPrior(distributions.Exponential{Lambda: 1})

	data := biallelicdata.New([]string{"A", "B"})
	if err := data.AddPattern([]int{1, 0}, []int{2, 2}); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if err := data.AddPattern([]int{0, 0}, []int{2, 2}); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}

	pt, err := populationtree.New(tr, data)
	if err != nil {
		t.Fatalf("populationtree.New: %v", err)
	}
	pt.MutationRate.SetValue(1)
	pt.FreqR.SetValue(0.5)

	ops := []operators.Operator{
		operators.NewEventTimeScaler(tr, 0, tree.CollisionNone, 1.0, 0.3),
		operators.NewFreqMover(pt.FreqR, 1.0, 0.3),
	}
	rng := randomsource.New(21, 34)
	return chain.New(tr, pt, ops, rng)
}

func TestStepLeavesTreeValid(t *testing.T) {
	c := buildChain(t)
	for i := 0; i < 200; i++ {
		c.Step()
		if err := c.Tree.Validate(); err != nil {
			t.Fatalf("tree invalid after step %d: %v", i, err)
		}
	}
	if c.Generation != 200 {
		t.Errorf("got generation %d, want 200", c.Generation)
	}
}

func TestRunWritesExpectedNumberOfSamples(t *testing.T) {
	c := buildChain(t)
	var buf bytes.Buffer
	logger := chain.NewStateLogWriter(&buf)
	if err := c.Run(100, 10, logger); err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// 1 header + 10 samples
	if len(lines) != 11 {
		t.Fatalf("got %d lines, want 11 (1 header + 10 samples)", len(lines))
	}
	header := strings.Split(lines[0], "\t")
	if header[0] != "generation" {
		t.Errorf("got first column %q, want generation", header[0])
	}
	for _, line := range lines[1:] {
		if len(strings.Split(line, "\t")) != len(header) {
			t.Errorf("row has a different column count than the header:\n%s\n%s", lines[0], line)
		}
	}
}
