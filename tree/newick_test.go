// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/tree"
)

func TestParseNewickDerivesHeights(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,(C:2,D:2):0);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	if tr.NumLeaves() != 4 {
		t.Fatalf("got %d leaves, want 4", tr.NumLeaves())
	}
	if math.Abs(tr.Root().Height()-2) > 1e-9 {
		t.Errorf("root height: got %v, want 2", tr.Root().Height())
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	for _, n := range tr.InternalNodes() {
		for _, c := range n.Children() {
			if n.Height() <= c.Height() {
				t.Errorf("node %d height %v does not exceed child height %v", n.Index(), n.Height(), c.Height())
			}
		}
	}
}

func TestParseNewickSharedHeightIndex(t *testing.T) {
	tr, err := tree.ParseNewick(
		"((A:1,B:1)[&height=1,height_index=0]:1,(C:2,D:2)[&height=2,height_index=1]:0)[&height=2,height_index=1];",
		nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	if tr.NumHeights() != 2 {
		t.Fatalf("got %d distinct heights, want 2 (root shares with (C,D))", tr.NumHeights())
	}
	if tr.Root().HeightParameter() != tr.Root().Children()[1].HeightParameter() {
		t.Errorf("root should share its height parameter with the (C,D) clade")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,(C:2,D:2):0);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	s := tr.Format(false)
	tr2, err := tree.ParseNewick(s, nil)
	if err != nil {
		t.Fatalf("re-parsing formatted newick %q: %v", s, err)
	}
	if math.Abs(tr2.Root().Height()-tr.Root().Height()) > 1e-9 {
		t.Errorf("round-tripped root height: got %v, want %v", tr2.Root().Height(), tr.Root().Height())
	}
}
