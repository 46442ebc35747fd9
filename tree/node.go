// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements the ultrametric, shared-height tree model:
// a Node type whose internal nodes may reference a height Parameter
// shared with other internal nodes, and a Tree (the "BaseTree" of the
// specification) that keeps a sorted table of the distinct height
// parameters and knows how to add, remove, reassign, and reorder them
// while preserving ultrametricity and topological validity.
//
// Only the likelihood engine (package populationtree) reaches into a
// node's Payload; every tree algorithm here is agnostic to it.
package tree

import (
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/split"
)

// A Payload carries the data specific to a tree specialization (e.g.
// the per-branch population size in PopulationTree). The base tree never reads payload fields directly;
// it only calls the methods below, which every specialization must
// supply.
type Payload interface {
	// Clone returns the payload for a node's copy when StoreState
	// or RestoreState clones the topology. An implementation may
	// share its parameter handles with the original (PopulationTree's
	// payload does); nodes created by tree moves get their payload
	// from the tree's payload factory instead.
	Clone() Payload

	// Parameters returns every *parameter.Parameter owned by this
	// payload, so the tree can fold them into store/restore and
	// into the log-prior sum.
	Parameters() []*parameter.Parameter

	// LnProbOfDrawingState returns the log probability of having
	// drawn this payload's current state, for use in the Hastings
	// ratio of a move that creates or removes the node. The base
	// tree's default payload returns 0; PopulationTree's payload
	// prices the population-size draw.
	LnProbOfDrawingState() float64
}

// EmptyPayload is the default Payload for a plain BaseTree with no
// per-branch attributes.
type EmptyPayload struct{}

func (EmptyPayload) Clone() Payload                   { return EmptyPayload{} }
func (EmptyPayload) Parameters() []*parameter.Parameter { return nil }
func (EmptyPayload) LnProbOfDrawingState() float64    { return 0 }

// A Node is a node in an ultrametric tree. Leaves occupy index
// [0, nLeaves) and carry a label; internal nodes reference a height
// Parameter that may be shared with other internal nodes — mutating
// the value through one node's reference is visible through every
// node sharing it.
type Node struct {
	index  int
	label  string
	height *parameter.Parameter // nil for leaves
	parent *Node
	children []*Node

	dirty      bool
	cladeDirty bool
	splitCache *split.Split

	payload Payload
}

// NewLeaf returns a leaf node with the given index and label. Leaves
// are always fixed at height 0.
func NewLeaf(index int, label string, payload Payload) *Node {
	return &Node{index: index, label: label, payload: payload, dirty: true, cladeDirty: true}
}

// NewInternal returns an internal node referencing the given height
// parameter (which may already be shared by other nodes).
func NewInternal(index int, height *parameter.Parameter, payload Payload) *Node {
	return &Node{index: index, height: height, payload: payload, dirty: true, cladeDirty: true}
}

// Index returns the node's index, unique within its tree.
func (n *Node) Index() int { return n.index }

// SetIndex reassigns the node's index. Used by the tree when
// renumbering nodes after a topology change.
func (n *Node) SetIndex(i int) { n.index = i }

// Label returns the node's label ("" for internal nodes).
func (n *Node) Label() string { return n.label }

// SetLabel sets the node's label.
func (n *Node) SetLabel(l string) { n.label = l }

// IsLeaf reports whether n is a leaf (no height parameter, no
// children).
func (n *Node) IsLeaf() bool { return n.height == nil }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Height returns the node's height: exactly 0 for a leaf, else the
// current value of its height parameter.
func (n *Node) Height() float64 {
	if n.height == nil {
		return 0
	}
	return n.height.Value()
}

// HeightParameter returns the node's height parameter, or nil for a
// leaf.
func (n *Node) HeightParameter() *parameter.Parameter { return n.height }

// SetHeightParameter reassigns the node's height parameter — the
// mechanism by which two nodes come to share (or stop sharing) a
// height.
func (n *Node) SetHeightParameter(h *parameter.Parameter) {
	n.height = h
	n.dirty = true
}

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in order. The returned slice
// must not be mutated by the caller; use AddChild/RemoveChild.
func (n *Node) Children() []*Node { return n.children }

// Degree returns the number of children.
func (n *Node) Degree() int { return len(n.children) }

// IsPolytomy reports whether the node has more than two children.
func (n *Node) IsPolytomy() bool { return len(n.children) > 2 }

// AddChild appends c as a child of n and sets c's parent to n.
func (n *Node) AddChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
	n.MarkDirty()
}

// RemoveChild detaches c from n's children. It panics if c is not a
// child of n.
func (n *Node) RemoveChild(c *Node) {
	for i, ch := range n.children {
		if ch == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			c.parent = nil
			n.MarkDirty()
			return
		}
	}
	panic("tree: RemoveChild called with a node that is not a child")
}

// ReplaceChild replaces old with next in n's children, preserving
// position. It panics if old is not a child of n.
func (n *Node) ReplaceChild(old, next *Node) {
	for i, ch := range n.children {
		if ch == old {
			n.children[i] = next
			next.parent = n
			old.parent = nil
			n.MarkDirty()
			return
		}
	}
	panic("tree: ReplaceChild called with a node that is not a child")
}

// Payload returns the node's payload.
func (n *Node) Payload() Payload { return n.payload }

// SetPayload replaces the node's payload.
func (n *Node) SetPayload(p Payload) { n.payload = p }

// MarkDirty marks the node's cached likelihood as stale, clears the
// cached clade splits of the node and its ancestors, and propagates
// clade-dirtiness up to the root.
func (n *Node) MarkDirty() {
	n.dirty = true
	for p := n; p != nil; p = p.parent {
		p.splitCache = nil
	}
	for p := n; p != nil; p = p.parent {
		if p.cladeDirty {
			break
		}
		p.cladeDirty = true
	}
}

// Dirty reports whether the node's own cached likelihood is stale.
func (n *Node) Dirty() bool { return n.dirty }

// CladeDirty reports whether any descendant's likelihood is stale.
func (n *Node) CladeDirty() bool { return n.cladeDirty }

// ClearDirty clears both the node and clade dirty flags, typically
// after recomputing and caching a likelihood.
func (n *Node) ClearDirty() {
	n.dirty = false
	n.cladeDirty = false
}

// Split returns the node's cached clade split, computing it if stale.
func (n *Node) Split(nLeaves int) *split.Split {
	if n.splitCache != nil && n.splitCache.NumLeaves() == nLeaves {
		return n.splitCache
	}
	s := split.New(nLeaves)
	if n.IsLeaf() {
		s.SetLeafBit(n.index)
	} else {
		for _, c := range n.children {
			s.AddSplit(c.Split(nLeaves))
		}
	}
	n.splitCache = s
	return s
}

// InvalidateSplit clears the node's cached split, forcing recompute
// on next access.
func (n *Node) InvalidateSplit() { n.splitCache = nil }

// cloneSubtree returns a deep copy of the subtree rooted at n: new
// Node structs with cloned payloads, but height parameters are the
// *same* pointers as the source (shared-reference semantics are part
// of what gets snapshotted, not duplicated).
func (n *Node) cloneSubtree(parent *Node) *Node {
	c := &Node{
		index:      n.index,
		label:      n.label,
		height:     n.height,
		parent:     parent,
		dirty:      n.dirty,
		cladeDirty: n.cladeDirty,
		payload:    n.payload.Clone(),
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, ch := range n.children {
			c.children[i] = ch.cloneSubtree(c)
		}
	}
	return c
}
