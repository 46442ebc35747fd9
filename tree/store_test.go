// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

func TestStoreRestoreUndoesSlideBump(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,C:2);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	wantRootHeight := tr.Root().Height()
	wantNumHeights := tr.NumHeights()

	tr.StoreState()
	rng := randomsource.New(7, 8)
	if !tr.SlideBumpHeight(0, 2.5, tree.CollisionNone, rng) {
		t.Fatalf("slide-bump unexpectedly rejected")
	}
	if math.Abs(tr.Root().Height()-wantRootHeight) < 1e-9 {
		t.Fatalf("test setup problem: slide-bump should have changed the root's identity/height")
	}

	tr.RestoreState()
	if err := tr.Validate(); err != nil {
		t.Fatalf("tree invalid after restore: %v", err)
	}
	if math.Abs(tr.Root().Height()-wantRootHeight) > 1e-9 {
		t.Errorf("root height after restore: got %v, want %v", tr.Root().Height(), wantRootHeight)
	}
	if tr.NumHeights() != wantNumHeights {
		t.Errorf("height count after restore: got %d, want %d", tr.NumHeights(), wantNumHeights)
	}
	leaves := make(map[string]bool)
	for _, l := range tr.Leaves() {
		leaves[l.Label()] = true
	}
	for _, want := range []string{"A", "B", "C"} {
		if !leaves[want] {
			t.Errorf("leaf %q missing after restore", want)
		}
	}
}

func TestStoreRestoreUndoesMerge(t *testing.T) {
	tr, err := tree.ParseNewick("(((A:1,B:1):1,C:2):1,D:3);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	wantNumHeights := tr.NumHeights()

	tr.StoreState()
	tr.MergeHeightUp(0)
	if tr.NumHeights() == wantNumHeights {
		t.Fatalf("test setup problem: merge should have changed the height count")
	}

	tr.RestoreState()
	if tr.NumHeights() != wantNumHeights {
		t.Errorf("height count after restore: got %d, want %d", tr.NumHeights(), wantNumHeights)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("tree invalid after restore: %v", err)
	}
}
