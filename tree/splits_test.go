// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"testing"

	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/tree"
)

func TestSignatureIsDeterministic(t *testing.T) {
	const newick = "((A:1,B:1):1,(C:2,D:2):0);"
	a, err := tree.ParseNewick(newick, nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	b, err := tree.ParseNewick(newick, nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	if a.Signature() != b.Signature() {
		t.Errorf("expected matching signatures for two parses of the same newick string:\n%s\n%s", a.Signature(), b.Signature())
	}
}

// newFixedLeafTree builds a 4-leaf tree with leaf indices fixed to
// A=0, B=1, C=2, D=3 (as if drawn from the same dataset), pairing
// leaves lhs/rhs as the height-1 clade and the remaining two as the
// height-2 clade.
func newFixedLeafTree(t *testing.T, lhs, rhs [2]int) *tree.Tree {
	t.Helper()
	labels := []string{"A", "B", "C", "D"}
	leaves := make([]*tree.Node, 4)
	for i, l := range labels {
		leaves[i] = tree.NewLeaf(i, l, tree.EmptyPayload{})
	}
	innerA := tree.NewInternal(4, parameter.New(1), tree.EmptyPayload{})
	innerA.AddChild(leaves[lhs[0]])
	innerA.AddChild(leaves[lhs[1]])
	innerB := tree.NewInternal(5, parameter.New(2), tree.EmptyPayload{})
	innerB.AddChild(leaves[rhs[0]])
	innerB.AddChild(leaves[rhs[1]])
	root := tree.NewInternal(6, parameter.New(3), tree.EmptyPayload{})
	root.AddChild(innerA)
	root.AddChild(innerB)
	return tree.NewFromRoot(root, func() tree.Payload { return tree.EmptyPayload{} })
}

func TestSignatureDiffersForDifferentTopology(t *testing.T) {
	a := newFixedLeafTree(t, [2]int{0, 1}, [2]int{2, 3}) // (A,B),(C,D)
	b := newFixedLeafTree(t, [2]int{0, 2}, [2]int{1, 3}) // (A,C),(B,D)
	if a.Signature() == b.Signature() {
		t.Errorf("expected different signatures for different topologies:\n%s", a.Signature())
	}
}

func TestSplitsByHeightIndexCounts(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,(C:2,D:2):0);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	splits := tr.SplitsByHeightIndex()
	if len(splits) != tr.NumHeights() {
		t.Fatalf("got %d split groups, want %d", len(splits), tr.NumHeights())
	}
	total := 0
	for _, g := range splits {
		total += len(g)
	}
	if total != len(tr.InternalNodes()) {
		t.Errorf("got %d total splits, want %d internal nodes", total, len(tr.InternalNodes()))
	}
}
