// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree_test

import (
	"math"
	"testing"

	"github.com/jsalarias/ecoevolity/parameter/distributions"
	"github.com/jsalarias/ecoevolity/tree"
)

func TestPriorLnPDFFiniteWithinSupport(t *testing.T) {
	tr, err := tree.ParseNewick("((A:1,B:1):1,C:2);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	tr.Root().HeightParameter().SetPrior(distributions.Uniform{Min: 0, Max: 10})

	lnP := tr.PriorLnPDF()
	if math.IsInf(lnP, -1) || math.IsNaN(lnP) {
		t.Fatalf("expected a finite log prior, got %v", lnP)
	}
}

func TestPriorLnPDFNegativeInfinityAtRootZero(t *testing.T) {
	tr, err := tree.ParseNewick("(A:0,B:0);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	tr.Root().HeightParameter().SetPrior(distributions.Uniform{Min: 0, Max: 10})
	if lnP := tr.PriorLnPDF(); !math.IsInf(lnP, -1) {
		t.Errorf("expected -Inf log prior at a zero root height, got %v", lnP)
	}
}

// TestPriorLnPDFScalesByYoungestParentNotRoot uses a three-height-level
// tree, where an interior height's parent is itself interior (not the
// root), to confirm PriorLnPDF scales each non-root height by its own
// youngest-parent height rather than the root height. With the tree's
// default Beta(1,1) shape (a uniform density, contributing a log
// density of 0), each non-root height's contribution reduces to
// -log(parentHeight), making the expected total checkable directly.
func TestPriorLnPDFScalesByYoungestParentNotRoot(t *testing.T) {
	tr, err := tree.ParseNewick("(((A:1,B:1):1,C:2):1,D:3);", nil)
	if err != nil {
		t.Fatalf("ParseNewick: %v", err)
	}
	tr.Root().HeightParameter().SetPrior(distributions.Uniform{Min: 0, Max: 10})

	want := tr.Root().HeightParameter().PriorLnPDF()
	for i := 0; i < tr.NumHeights(); i++ {
		if tr.IsRootHeightIndex(i) {
			continue
		}
		parentHeight, err := tr.GetHeightOfYoungestParent(i)
		if err != nil {
			t.Fatalf("GetHeightOfYoungestParent(%d): %v", i, err)
		}
		want += -math.Log(parentHeight)
	}

	if got := tr.PriorLnPDF(); math.Abs(got-want) > 1e-9 {
		t.Errorf("PriorLnPDF() = %v, want %v (scaled by each height's own youngest-parent height)", got, want)
	}
}
