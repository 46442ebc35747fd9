// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

func TestSlideBumpHeightResolvesCollision(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,C:2);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	rng := randomsource.New(1, 2)

	ok := tr.SlideBumpHeight(0, 2.5, tree.CollisionNone, rng)
	if !ok {
		t.Fatalf("SlideBumpHeight rejected a move that should have succeeded")
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("tree invalid after slide-bump: %v", err)
	}
	if tr.NumHeights() != 2 {
		t.Errorf("got %d heights after slide, want 2", tr.NumHeights())
	}
	if math.Abs(tr.HeightValueAt(tr.NumHeights()-1) - 2.5) > 1e-9 {
		t.Errorf("slid height value: got %v, want 2.5", tr.HeightValueAt(tr.NumHeights()-1))
	}
	if tr.NumLeaves() != 3 {
		t.Errorf("leaf count changed by slide-bump: got %d, want 3", tr.NumLeaves())
	}
}

func TestSlideBumpHeightRejectsNegative(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,C:2);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	rng := randomsource.New(3, 4)
	if tr.SlideBumpHeight(0, -1, tree.CollisionNone, rng) {
		t.Errorf("expected a negative height to be rejected")
	}
}

func TestMergeHeightUpAbsorbsIntoPolytomy(t *testing.T) {
	tr, err := tree.ParseNewick("(((A:1,B:1):1,C:2):1,D:3);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	if tr.NumHeights() != 3 {
		t.Fatalf("got %d heights, want 3", tr.NumHeights())
	}

	_, degrees, numMerged := tr.MergeHeightUp(0)
	if numMerged != 1 {
		t.Fatalf("got %d merged nodes, want 1", numMerged)
	}
	if len(degrees) != 1 || degrees[0] != 3 {
		t.Errorf("got polytomy degrees %v, want [3]", degrees)
	}
	if tr.NumHeights() != 2 {
		t.Errorf("got %d heights after merge, want 2", tr.NumHeights())
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("tree invalid after merge: %v", err)
	}
}

func TestSplitHeightDownOnPolytomy(t *testing.T) {
	tr, err := tree.ParseNewick("(((A:1,B:1):1,C:2):1,D:3);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	tr.MergeHeightUp(0)
	if tr.GetNumberOfSplittableHeights() == 0 {
		t.Fatalf("expected a splittable polytomy height after the merge")
	}

	rng := randomsource.New(5, 6)
	before := tr.NumHeights()
	_, ok := tr.SplitHeightDown(0, rng)
	if !ok {
		t.Fatalf("SplitHeightDown failed to find a move on a clean polytomy")
	}
	if tr.NumHeights() != before+1 {
		t.Errorf("got %d heights after split, want %d", tr.NumHeights(), before+1)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("tree invalid after split: %v", err)
	}
}
