// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"math"

	"github.com/jsalarias/ecoevolity/ecoerr"
)

// GetYoungestParent returns, among the nodes mapped to height index
// i, the one whose parent has the smallest height. It is an error to
// call this on the root's height index, since the root has no
// parent.
func (t *Tree) GetYoungestParent(i int) (*Node, error) {
	if t.IsRootHeightIndex(i) {
		return nil, &ecoerr.InvalidStateError{Message: "GetYoungestParent called on the root height index"}
	}
	nodes := t.NodesAtHeight(i)
	best := nodes[0]
	for _, n := range nodes[1:] {
		if n.parent.Height() < best.parent.Height() {
			best = n
		}
	}
	return best, nil
}

// GetHeightOfYoungestParent returns the height value of
// GetYoungestParent(i)'s parent.
func (t *Tree) GetHeightOfYoungestParent(i int) (float64, error) {
	n, err := t.GetYoungestParent(i)
	if err != nil {
		return 0, err
	}
	return n.parent.Height(), nil
}

// GetOldestChild returns, among the children of the nodes mapped to
// height index i, the one with the greatest height (the nearest
// neighbor constraining a downward slide).
func (t *Tree) GetOldestChild(i int) *Node {
	nodes := t.NodesAtHeight(i)
	var best *Node
	for _, n := range nodes {
		for _, c := range n.children {
			if best == nil || c.Height() > best.Height() {
				best = c
			}
		}
	}
	return best
}

// GetHeightOfOldestChild returns GetOldestChild(i)'s height.
func (t *Tree) GetHeightOfOldestChild(i int) float64 {
	return t.GetOldestChild(i).Height()
}

// GetNearestHeightIndex returns the table index whose value is
// nearest v by absolute difference.
func (t *Tree) GetNearestHeightIndex(v float64) int {
	best := 0
	bestDiff := math.Abs(t.heights[0].Value() - v)
	for i := 1; i < len(t.heights); i++ {
		d := math.Abs(t.heights[i].Value() - v)
		if d < bestDiff {
			bestDiff = d
			best = i
		}
	}
	return best
}

// GetInterveningHeightIndices returns the other height-table indices
// whose value lies strictly between the current value at index i and
// v, ordered from nearest to farthest in the direction of v.
func (t *Tree) GetInterveningHeightIndices(i int, v float64) []int {
	cur := t.heights[i].Value()
	lo, hi := cur, v
	ascending := true
	if lo > hi {
		lo, hi = hi, lo
		ascending = false
	}

	type idxVal struct {
		idx int
		val float64
	}
	var between []idxVal
	for j, h := range t.heights {
		if j == i {
			continue
		}
		val := h.Value()
		if val > lo && val < hi {
			between = append(between, idxVal{j, val})
		}
	}
	// Order toward v: ascending by value if v > cur (the nearest
	// intervening height comes first as we climb), descending if
	// v < cur (nearest first as we descend).
	for a := 0; a < len(between); a++ {
		for b := a + 1; b < len(between); b++ {
			var outOfOrder bool
			if ascending {
				outOfOrder = between[a].val > between[b].val
			} else {
				outOfOrder = between[a].val < between[b].val
			}
			if outOfOrder {
				between[a], between[b] = between[b], between[a]
			}
		}
	}
	out := make([]int, len(between))
	for k, iv := range between {
		out[k] = iv.idx
	}
	return out
}

// GetIndicesOfInterveningNodes is like GetInterveningHeightIndices but
// restricted to heights whose mapped nodes are ancestors or
// descendants (tree-connected) of a node currently at index i.
func (t *Tree) GetIndicesOfInterveningNodes(i int, v float64) []int {
	all := t.GetInterveningHeightIndices(i, v)
	anchor := t.NodesAtHeight(i)

	connected := func(j int) bool {
		for _, other := range t.NodesAtHeight(j) {
			for _, a := range anchor {
				if isAncestor(a, other) || isAncestor(other, a) {
					return true
				}
			}
		}
		return false
	}

	var out []int
	for _, j := range all {
		if connected(j) {
			out = append(out, j)
		}
	}
	return out
}

func isAncestor(ancestor, n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
