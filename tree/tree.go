// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"slices"
	"sort"

	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/parameter/distributions"
)

// A Tree is an ultrametric tree whose internal nodes may share height
// parameters. The height table is the sorted-ascending list of
// distinct height parameters referenced by internal nodes.
type Tree struct {
	root      *Node
	leaves    []*Node // index i is the leaf with index i
	heights   []*parameter.Parameter

	rootHeightFixed bool

	// Hyperparameters of the scaled-Beta prior on non-root heights
	// (see PriorLnPDF), themselves given Gamma priors and fixed by
	// default.
	betaShapeA *parameter.Parameter
	betaShapeB *parameter.Parameter

	logLikelihood float64
	logPrior      float64

	nextIndex int

	storedRoot          *Node
	storedLogLikelihood float64
	storedLogPrior      float64

	newPayload func() Payload
}

// New returns an empty tree that will use newPayload to create
// payloads for newly constructed internal nodes (e.g. during height
// splits). newPayload may be nil, in which case EmptyPayload is used.
func New(newPayload func() Payload) *Tree {
	if newPayload == nil {
		newPayload = func() Payload { return EmptyPayload{} }
	}
	betaShapeA := parameter.NewWithPrior(10*0.1, distributions.Gamma{Alpha: 10, Theta: 0.1})
	betaShapeA.SetFixed(true)
	betaShapeB := parameter.NewWithPrior(10*0.1, distributions.Gamma{Alpha: 10, Theta: 0.1})
	betaShapeB.SetFixed(true)
	return &Tree{
		newPayload: newPayload,
		betaShapeA: betaShapeA,
		betaShapeB: betaShapeB,
	}
}

// NewFromRoot builds a tree from an in-memory root node. Leaves must
// already carry unique, canonically sorted indices in [0, n).
func NewFromRoot(root *Node, newPayload func() Payload) *Tree {
	t := New(newPayload)
	t.root = root
	t.collectLeaves()
	t.renumberInternal()
	t.UpdateNodeHeights()
	t.SortNodeHeights()
	return t
}

func (t *Tree) collectLeaves() {
	var leaves []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].index < leaves[j].index })
	t.leaves = leaves
}

func (t *Tree) renumberInternal() {
	next := len(t.leaves)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
		n.index = next
		next++
	}
	walk(t.root)
	t.nextIndex = next
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node { return t.root }

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int { return len(t.leaves) }

// Leaf returns the leaf with the given index.
func (t *Tree) Leaf(i int) *Node { return t.leaves[i] }

// Leaves returns every leaf, ordered by index.
func (t *Tree) Leaves() []*Node { return t.leaves }

// LeafByLabel returns the leaf with the given label, or an error if
// none exists.
func (t *Tree) LeafByLabel(label string) (*Node, error) {
	for _, l := range t.leaves {
		if l.label == label {
			return l, nil
		}
	}
	return nil, &ecoerr.MissingEntityError{Kind: "leaf label", Name: label}
}

// Nodes returns every node in the tree in pre-order.
func (t *Tree) Nodes() []*Node {
	var nodes []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		nodes = append(nodes, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return nodes
}

// InternalNodes returns every non-leaf node, in pre-order.
func (t *Tree) InternalNodes() []*Node {
	var nodes []*Node
	for _, n := range t.Nodes() {
		if !n.IsLeaf() {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// PostOrder returns every node in post-order (children before
// parent), the order the likelihood peeling and splits traversal
// use.
func (t *Tree) PostOrder() []*Node {
	var nodes []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.children {
			walk(c)
		}
		nodes = append(nodes, n)
	}
	walk(t.root)
	return nodes
}

// RootHeightFixed reports whether the root height is held fixed
// (disallowing slide-bump moves from exceeding it).
func (t *Tree) RootHeightFixed() bool { return t.rootHeightFixed }

// SetRootHeightFixed sets whether the root height is fixed.
func (t *Tree) SetRootHeightFixed(fixed bool) {
	t.rootHeightFixed = fixed
	if t.root != nil && t.root.height != nil {
		t.root.height.SetFixed(fixed)
	}
}

// BetaShapeParameters returns the two shape parameters (alpha, beta)
// of the scaled-Beta prior placed on every non-root height.
func (t *Tree) BetaShapeParameters() (*parameter.Parameter, *parameter.Parameter) {
	return t.betaShapeA, t.betaShapeB
}

// LogLikelihood returns the tree's cached log-likelihood value.
func (t *Tree) LogLikelihood() float64 { return t.logLikelihood }

// SetLogLikelihood sets the tree's cached log-likelihood value.
func (t *Tree) SetLogLikelihood(v float64) { t.logLikelihood = v }

// LogPrior returns the tree's cached log-prior value.
func (t *Tree) LogPrior() float64 { return t.logPrior }

// SetLogPrior sets the tree's cached log-prior value.
func (t *Tree) SetLogPrior(v float64) { t.logPrior = v }

// Validate checks every structural invariant of the tree ("vet_tree"
// in the specification): the root has no parent and at least one
// child, every non-leaf node's height strictly exceeds every child's
// height, every leaf's height is exactly 0, and the height table is
// self-consistent.
func (t *Tree) Validate() error {
	if t.root == nil {
		return &ecoerr.InvalidStateError{Message: "tree has no root"}
	}
	if t.root.parent != nil {
		return &ecoerr.InvalidStateError{Message: "root has a parent"}
	}
	if len(t.root.children) == 0 {
		return &ecoerr.InvalidStateError{Message: "root has no children"}
	}
	for _, n := range t.Nodes() {
		if n.IsLeaf() {
			if len(n.children) != 0 {
				return &ecoerr.InvalidStateError{Message: fmt.Sprintf("leaf %q has children", n.label)}
			}
			continue
		}
		if len(n.children) < 2 {
			return &ecoerr.InvalidStateError{Message: fmt.Sprintf("internal node %d has fewer than 2 children", n.index)}
		}
		for _, c := range n.children {
			if c.parent != n {
				return &ecoerr.InvalidStateError{Message: fmt.Sprintf("node %d's child has a mismatched parent pointer", n.index)}
			}
			if n.Height() <= c.Height() {
				return &ecoerr.InvalidStateError{Message: fmt.Sprintf("node %d's height %.6g does not exceed child %d's height %.6g", n.index, n.Height(), c.index, c.Height())}
			}
		}
	}
	for i, h := range t.heights {
		if idx, err := t.GetNodeHeightIndex(h); err != nil || idx != i {
			return &ecoerr.InvalidStateError{Message: "height table is inconsistent with node height references"}
		}
	}
	return nil
}

// UpdateNodeHeights rebuilds the height table from the set of
// distinct height-parameter identities referenced by internal nodes.
// It does not sort the table; call SortNodeHeights afterward.
func (t *Tree) UpdateNodeHeights() {
	seen := make(map[*parameter.Parameter]bool)
	var heights []*parameter.Parameter
	for _, n := range t.InternalNodes() {
		if n.height == nil || seen[n.height] {
			continue
		}
		seen[n.height] = true
		heights = append(heights, n.height)
	}
	t.heights = heights
}

// SortNodeHeights sorts the height table ascending by parameter
// value. Table positions are stable between calls unless
// UpdateNodeHeights or a topology change intervenes.
func (t *Tree) SortNodeHeights() {
	slices.SortFunc(t.heights, func(a, b *parameter.Parameter) int {
		if a.Value() < b.Value() {
			return -1
		}
		if a.Value() > b.Value() {
			return 1
		}
		return 0
	})
}

// NumHeights returns the number of unique heights in the table.
func (t *Tree) NumHeights() int { return len(t.heights) }

// HeightParameterAt returns the height-table entry at index i.
func (t *Tree) HeightParameterAt(i int) *parameter.Parameter { return t.heights[i] }

// HeightValueAt returns the current value of the height-table entry
// at index i.
func (t *Tree) HeightValueAt(i int) float64 { return t.heights[i].Value() }

// GetNodeHeightIndex returns the table position of h by reference
// equality.
func (t *Tree) GetNodeHeightIndex(h *parameter.Parameter) (int, error) {
	for i, p := range t.heights {
		if p == h {
			return i, nil
		}
	}
	return -1, &ecoerr.MissingEntityError{Kind: "height parameter", Name: fmt.Sprintf("%p", h)}
}

// NodesAtHeight returns every internal node mapped to height index i.
func (t *Tree) NodesAtHeight(i int) []*Node {
	h := t.heights[i]
	var nodes []*Node
	for _, n := range t.InternalNodes() {
		if n.height == h {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// IsRootHeightIndex reports whether index i is the root's height.
func (t *Tree) IsRootHeightIndex(i int) bool {
	return t.heights[i] == t.root.height
}

// GetNumberOfSplittableHeights returns the number of heights that
// have either more than one mapped node or a mapped polytomy.
func (t *Tree) GetNumberOfSplittableHeights() int {
	n := 0
	for i := range t.heights {
		if t.IsSplittableHeight(i) {
			n++
		}
	}
	return n
}

// IsSplittableHeight reports whether height index i maps to more
// than one node, or to a single polytomy node — the two shapes
// SplitHeightDown knows how to break apart.
func (t *Tree) IsSplittableHeight(i int) bool {
	nodes := t.NodesAtHeight(i)
	if len(nodes) > 1 {
		return true
	}
	return len(nodes) == 1 && nodes[0].IsPolytomy()
}
