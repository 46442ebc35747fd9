// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package split implements a fixed-width bitset representing a
// clade's leaf membership, along with the comparisons needed by the
// shared-height tree model: compatibility, subset, parent-of, and
// sibling detection.
package split

import (
	"strings"
)

const wordBits = 64

// A Split is a bitset over the leaf set {0, ..., n-1} for some fixed
// n, used as the clade signature of a tree edge.
type Split struct {
	n     int
	words []uint64
	mask  uint64
}

// New returns an empty split over n leaves.
func New(n int) *Split {
	s := &Split{}
	s.Resize(n)
	return s
}

// Resize allocates the split for n leaves, clearing all bits.
func (s *Split) Resize(n int) {
	s.n = n
	nw := (n + wordBits - 1) / wordBits
	if nw == 0 {
		nw = 1
	}
	s.words = make([]uint64, nw)
	rem := n % wordBits
	if rem == 0 {
		s.mask = ^uint64(0)
	} else {
		s.mask = (uint64(1) << uint(rem)) - 1
	}
}

// NumLeaves returns the number of leaves the split is defined over.
func (s *Split) NumLeaves() int {
	return s.n
}

func (s *Split) lastWord() int {
	return len(s.words) - 1
}

// SetLeafBit sets the bit for leaf i.
func (s *Split) SetLeafBit(i int) {
	w, b := i/wordBits, uint(i%wordBits)
	s.words[w] |= uint64(1) << b
}

// GetLeafBit returns whether the bit for leaf i is set.
func (s *Split) GetLeafBit(i int) bool {
	w, b := i/wordBits, uint(i%wordBits)
	return s.words[w]&(uint64(1)<<b) != 0
}

// AddSplit ORs other's bits into s. Both splits must have the same
// width.
func (s *Split) AddSplit(other *Split) {
	for i := range s.words {
		s.words[i] |= other.words[i]
	}
}

// Clone returns a deep copy of s.
func (s *Split) Clone() *Split {
	c := &Split{
		n:     s.n,
		mask:  s.mask,
		words: make([]uint64, len(s.words)),
	}
	copy(c.words, s.words)
	return c
}

// Equals reports whether s and other are bit-identical.
func (s *Split) Equals(other *Split) bool {
	if s.n != other.n {
		return false
	}
	for i := range s.words {
		if s.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// complementWords returns s's bits complemented within the valid leaf
// range (trailing bits beyond n masked off in the last word).
func (s *Split) complementWords() []uint64 {
	w := make([]uint64, len(s.words))
	last := s.lastWord()
	for i, v := range s.words {
		c := ^v
		if i == last {
			c &= s.mask
		}
		w[i] = c
	}
	return w
}

// EqualsUnrooted reports whether s and other are equal either
// directly or after complementing one of them — the notion of
// equivalence appropriate when the root placement carries no
// information.
func (s *Split) EqualsUnrooted(other *Split) bool {
	if s.n != other.n {
		return false
	}
	if s.Equals(other) {
		return true
	}
	comp := s.complementWords()
	for i := range comp {
		if comp[i] != other.words[i] {
			return false
		}
	}
	return true
}

// IsCompatible reports whether s and other are compatible: their
// intersection is empty, equals s, or equals other.
func (s *Split) IsCompatible(other *Split) bool {
	interEmpty := true
	interEqS := true
	interEqOther := true
	for i := range s.words {
		inter := s.words[i] & other.words[i]
		if inter != 0 {
			interEmpty = false
		}
		if inter != s.words[i] {
			interEqS = false
		}
		if inter != other.words[i] {
			interEqOther = false
		}
	}
	return interEmpty || interEqS || interEqOther
}

// OverlapsWith reports whether s and other share at least one bit.
func (s *Split) OverlapsWith(other *Split) bool {
	for i := range s.words {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

func (s *Split) isEmpty() bool {
	for i, w := range s.words {
		v := w
		if i == s.lastWord() {
			v &= s.mask
		}
		if v != 0 {
			return false
		}
	}
	return true
}

// IsProperSubsetOf reports whether s is a non-empty, non-equal subset
// of other.
func (s *Split) IsProperSubsetOf(other *Split) bool {
	if s.Equals(other) {
		return false
	}
	for i := range s.words {
		if s.words[i]&^other.words[i] != 0 {
			return false
		}
	}
	return true
}

// IsParentOf reports whether the splits in children are pairwise
// disjoint, none empty, and their union equals s.
func (s *Split) IsParentOf(children []*Split) bool {
	if !s.CanBeSiblings(children) {
		return false
	}
	union := New(s.n)
	for _, c := range children {
		union.AddSplit(c)
	}
	return union.Equals(s)
}

// CanBeSiblings reports whether the given splits are pairwise
// disjoint and none is empty.
func (s *Split) CanBeSiblings(children []*Split) bool {
	for _, c := range children {
		if c.isEmpty() {
			return false
		}
	}
	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			if children[i].OverlapsWith(children[j]) {
				return false
			}
		}
	}
	return true
}

// GetParentOf returns the union split of children, which must satisfy
// CanBeSiblings, else returns an error via ok == false.
func (s *Split) GetParentOf(children []*Split) (*Split, bool) {
	if len(children) == 0 {
		return nil, false
	}
	if !children[0].CanBeSiblings(children) {
		return nil, false
	}
	union := New(children[0].n)
	for _, c := range children {
		union.AddSplit(c)
	}
	return union, true
}

// Compare orders splits lexicographically over their word vector;
// used to give a canonical ordering of splits.
func (s *Split) Compare(other *Split) int {
	for i := range s.words {
		if s.words[i] < other.words[i] {
			return -1
		}
		if s.words[i] > other.words[i] {
			return 1
		}
	}
	return 0
}

// String returns the split as a string of '0'/'1' characters, one per
// leaf, using the given on/off characters (or '1'/'0' when both are
// zero).
func (s *Split) String() string {
	return s.StringWithChars('1', '0')
}

// StringWithChars is String with configurable on/off characters.
func (s *Split) StringWithChars(on, off byte) string {
	var b strings.Builder
	b.Grow(s.n)
	for i := 0; i < s.n; i++ {
		if s.GetLeafBit(i) {
			b.WriteByte(on)
		} else {
			b.WriteByte(off)
		}
	}
	return b.String()
}
