// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package split_test

import (
	"testing"

	"github.com/jsalarias/ecoevolity/split"
)

func fromString(t *testing.T, str string) *split.Split {
	t.Helper()
	s := split.New(len(str))
	for i, c := range str {
		if c == '1' {
			s.SetLeafBit(i)
		}
	}
	return s
}

func TestEqualsAndUnrooted(t *testing.T) {
	a := fromString(t, "10100")
	b := fromString(t, "01011")

	if a.Equals(b) {
		t.Errorf("expected %q and %q to be bit-distinct", a, b)
	}
	if !a.EqualsUnrooted(b) {
		t.Errorf("expected %q and %q to be unrooted-equivalent", a, b)
	}
}

func TestCompatible(t *testing.T) {
	ab := fromString(t, "1100")
	cd := fromString(t, "0011")
	abc := fromString(t, "1110")

	if !ab.IsCompatible(cd) {
		t.Errorf("disjoint splits should be compatible")
	}
	if !ab.IsCompatible(abc) {
		t.Errorf("subset splits should be compatible")
	}
}

func TestProperSubset(t *testing.T) {
	ab := fromString(t, "1100")
	abc := fromString(t, "1110")

	if !ab.IsProperSubsetOf(abc) {
		t.Errorf("expected %q proper subset of %q", ab, abc)
	}
	if abc.IsProperSubsetOf(abc) {
		t.Errorf("a split must not be a proper subset of itself")
	}
}

func TestParentOf(t *testing.T) {
	a := fromString(t, "1000")
	b := fromString(t, "0100")
	c := fromString(t, "0010")
	abc := fromString(t, "1110")

	if !abc.IsParentOf([]*split.Split{a, b, c}) {
		t.Errorf("expected abc to be parent of a, b, c")
	}

	got, ok := abc.GetParentOf([]*split.Split{a, b, c})
	if !ok {
		t.Fatalf("expected GetParentOf to succeed")
	}
	if !got.Equals(abc) {
		t.Errorf("got %q, want %q", got, abc)
	}
}

func TestResizeClearsBits(t *testing.T) {
	s := split.New(4)
	s.SetLeafBit(0)
	s.SetLeafBit(3)
	s.Resize(8)
	for i := 0; i < 8; i++ {
		if s.GetLeafBit(i) {
			t.Errorf("bit %d should be cleared after resize", i)
		}
	}
}
