// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"github.com/jsalarias/ecoevolity/parameter"
	"github.com/jsalarias/ecoevolity/randomsource"
)

// A CollisionPolicy governs how a slide-bump move resolves a
// collision between the sliding height and an interposing height
// that shares an ancestor-descendant relationship with it.
type CollisionPolicy int

const (
	// CollisionNone always rotates the colliding child with its
	// own parent (an NNI); the grandchild handed back to that parent
	// is drawn uniformly from the colliding child's children.
	CollisionNone CollisionPolicy = iota
	// CollisionPermute, with several collision parents, shuffles
	// their natural rotation candidates across those parents; no
	// sibling candidate joins that pool, and a shuffle that leaves
	// every candidate in place is not redrawn. With a single
	// collision parent it swaps in a non-colliding sibling's
	// candidate when one is available.
	CollisionPermute
	// CollisionSwap picks one collision parent uniformly and
	// swaps its rotation candidate for a sibling-subtree
	// candidate, when one is available.
	CollisionSwap
	// CollisionSwapAll applies the CollisionSwap candidate swap
	// independently to every collision parent.
	CollisionSwapAll
)

// rotateUp makes child the new parent of parent: parent's parent (if
// any) is updated to point at child instead, and parent becomes one
// of child's children. If parent was the root, child becomes the new
// root.
func (t *Tree) rotateUp(parent, child *Node) {
	gp := parent.parent
	parent.RemoveChild(child)
	if gp == nil {
		child.parent = nil
		t.root = child
	} else {
		gp.ReplaceChild(parent, child)
	}
	child.AddChild(parent)
}

// collisionParents returns the nodes mapped to olderIdx that have at
// least one child mapped to youngerHeight.
func (t *Tree) collisionParents(olderIdx int, youngerHeight *parameter.Parameter) []*Node {
	var parents []*Node
	for _, p := range t.NodesAtHeight(olderIdx) {
		for _, c := range p.children {
			if c.height == youngerHeight {
				parents = append(parents, p)
				break
			}
		}
	}
	return parents
}

func collidingChildOf(p *Node, youngerHeight *parameter.Parameter) *Node {
	for _, c := range p.children {
		if c.height == youngerHeight {
			return c
		}
	}
	return nil
}

// pickSiblingCandidate looks for a non-colliding sibling d of c within p's
// children that has degree >= 3 (so removing one of its children
// still leaves it with >= 2), and returns a random child of d plus d
// itself. It returns (nil, nil) if no such sibling exists.
func pickSiblingCandidate(p, c *Node, rng *randomsource.Source) (candidate, fromParent *Node) {
	var eligible []*Node
	for _, d := range p.children {
		if d != c && d.Degree() >= 3 {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	d := eligible[rng.IntN(len(eligible))]
	return d.children[rng.IntN(len(d.children))], d
}

// resolveCollision rotates c up to replace p, backfilling p's lost
// child slot with winner (detached from its original parent).
func (t *Tree) resolveCollision(p, c, winner, winnerParent *Node) {
	t.rotateUp(p, c)
	winnerParent.RemoveChild(winner)
	p.AddChild(winner)
}

// applyCollision resolves the collision between height indices k and
// j using the current (pre-slide) height values to determine which
// is older.
func (t *Tree) applyCollision(k, j int, policy CollisionPolicy, rng *randomsource.Source) {
	olderIdx, youngerIdx := k, j
	if t.heights[j].Value() > t.heights[k].Value() {
		olderIdx, youngerIdx = j, k
	}
	youngerHeight := t.heights[youngerIdx]
	parents := t.collisionParents(olderIdx, youngerHeight)
	if len(parents) == 0 {
		return
	}

	type resolution struct {
		p, c, winner, winnerParent *Node
	}
	res := make([]resolution, len(parents))
	for i, p := range parents {
		c := collidingChildOf(p, youngerHeight)
		winner := c.children[rng.IntN(len(c.children))]
		res[i] = resolution{p: p, c: c, winner: winner, winnerParent: c}
	}

	switch policy {
	case CollisionPermute:
		if len(res) > 1 {
			winners := make([]*Node, len(res))
			owners := make([]*Node, len(res))
			for i, r := range res {
				winners[i] = r.winner
				owners[i] = r.winnerParent
			}
			rng.Shuffle(len(winners), func(i, j int) {
				winners[i], winners[j] = winners[j], winners[i]
				owners[i], owners[j] = owners[j], owners[i]
			})
			for i := range res {
				res[i].winner = winners[i]
				res[i].winnerParent = owners[i]
			}
		} else if cand, from := pickSiblingCandidate(res[0].p, res[0].c, rng); cand != nil {
			res[0].winner, res[0].winnerParent = cand, from
		}
	case CollisionSwap:
		i := rng.IntN(len(res))
		if cand, from := pickSiblingCandidate(res[i].p, res[i].c, rng); cand != nil {
			res[i].winner, res[i].winnerParent = cand, from
		}
	case CollisionSwapAll:
		for i := range res {
			if cand, from := pickSiblingCandidate(res[i].p, res[i].c, rng); cand != nil {
				res[i].winner, res[i].winnerParent = cand, from
			}
		}
	}

	for _, r := range res {
		t.resolveCollision(r.p, r.c, r.winner, r.winnerParent)
	}
}

// SlideBumpHeight proposes moving the height at table index k to
// newValue, resolving any collision with an interposing,
// tree-connected height using policy. It returns false (a rejection,
// not an error) when the move is illegal: a negative height, a move
// past a fixed root height, or a final position that does not leave
// the tree ultrametric. The caller is responsible for having stored
// the tree's state beforehand and restoring it if this returns false.
func (t *Tree) SlideBumpHeight(k int, newValue float64, policy CollisionPolicy, rng *randomsource.Source) bool {
	if newValue < 0 {
		return false
	}
	isRoot := t.IsRootHeightIndex(k)
	if isRoot {
		if t.rootHeightFixed {
			return false
		}
	} else if t.rootHeightFixed && newValue > t.root.height.Value() {
		return false
	}

	current := t.heights[k].Value()
	if newValue != current {
		for _, j := range t.GetIndicesOfInterveningNodes(k, newValue) {
			t.applyCollision(k, j, policy, rng)
		}
	}

	slid := t.heights[k]
	slid.SetValue(newValue)
	t.SortNodeHeights()
	slidIdx, _ := t.GetNodeHeightIndex(slid)
	for _, n := range t.NodesAtHeight(slidIdx) {
		n.MarkDirty()
		if n.parent != nil && n.parent.Height() <= newValue {
			return false
		}
		for _, c := range n.children {
			if c.Height() >= newValue {
				return false
			}
		}
	}
	t.root.MarkDirty()
	return true
}

// MergeHeightUp merges the height at table index k (which must not be
// the topmost index) into k+1: every node mapped to k either detaches
// into a polytomy at its k+1-mapped parent, or has its height
// parameter reassigned to k+1. It returns the Hastings contribution
// (the sum of LnProbOfDrawingState over every detached node), the
// degrees of the polytomies created or enlarged by the merge, and the
// number of nodes removed by detachment.
func (t *Tree) MergeHeightUp(k int) (logHastings float64, polytomyDegrees []int, numMerged int) {
	if k < 0 || k >= len(t.heights)-1 {
		panic("tree: MergeHeightUp requires 0 <= k < top index")
	}
	nodes := t.NodesAtHeight(k)
	kPlus1 := t.heights[k+1]

	for _, n := range nodes {
		if n.parent != nil && n.parent.height == kPlus1 {
			p := n.parent
			p.RemoveChild(n)
			for _, c := range n.children {
				p.AddChild(c)
			}
			polytomyDegrees = append(polytomyDegrees, p.Degree())
			numMerged++
			logHastings += n.payload.LnProbOfDrawingState()
		} else {
			n.SetHeightParameter(kPlus1)
		}
	}

	t.heights = append(t.heights[:k], t.heights[k+1:]...)
	t.SortNodeHeights()
	t.renumberInternal()
	return logHastings, polytomyDegrees, numMerged
}

// SplitHeightDown draws a new height uniformly on
// (heights[k-1] or 0, heights[k]) and moves a subset of the nodes
// mapped to k down to it, handling the singleton-polytomy special
// case, the shared-bifurcating-nodes case, and the mixed case. It
// returns the Hastings contribution (the sum of LnProbOfDrawingState
// over every newly created node) and ok == false if a rejection loop
// could not find a move that actually adds a height.
func (t *Tree) SplitHeightDown(k int, rng *randomsource.Source) (logHastings float64, ok bool) {
	nodes := t.NodesAtHeight(k)
	lowerBound := 0.0
	if k > 0 {
		lowerBound = t.heights[k-1].Value()
	}
	upperBound := t.heights[k].Value()
	newVal := rng.Uniform(lowerBound, upperBound)
	newHeight := parameter.New(newVal)

	breakOffBlock := func(parent *Node, block []int, children []*Node) {
		newNode := NewInternal(t.nextIndex, newHeight, t.newPayload())
		t.nextIndex++
		for _, idx := range block {
			c := children[idx]
			parent.RemoveChild(c)
			newNode.AddChild(c)
		}
		parent.AddChild(newNode)
		logHastings += newNode.payload.LnProbOfDrawingState()
	}

	splitPolytomy := func(n *Node) bool {
		children := n.children
		if len(children) < 3 {
			return false
		}
		for attempt := 0; attempt < 64; attempt++ {
			maxBlocks := len(children) - 1
			if maxBlocks < 2 {
				return false
			}
			blocks := rng.RestrictedSetPartition(len(children), 2, maxBlocks)
			var moving [][]int
			for _, b := range blocks {
				if len(b) >= 2 {
					moving = append(moving, b)
				}
			}
			if len(moving) == 0 {
				continue
			}
			for _, b := range moving {
				breakOffBlock(n, b, children)
			}
			return true
		}
		return false
	}

	switch {
	case len(nodes) == 1 && nodes[0].IsPolytomy():
		if !splitPolytomy(nodes[0]) {
			return 0, false
		}
	case len(nodes) >= 2:
		hasPolytomy := false
		for _, n := range nodes {
			if n.IsPolytomy() {
				hasPolytomy = true
				break
			}
		}

		var moveIdx []int
		if hasPolytomy {
			blocks := rng.RestrictedSetPartition(len(nodes), 1, 2)
			moveIdx = blocks[rng.IntN(len(blocks))]
		} else {
			blocks := rng.SetPartition(len(nodes), 2)
			if rng.Bool() {
				moveIdx = blocks[0]
			} else {
				moveIdx = blocks[1]
			}
		}

		moved := false
		for _, idx := range moveIdx {
			n := nodes[idx]
			if n.IsPolytomy() {
				if splitPolytomy(n) {
					moved = true
				}
				continue
			}
			n.SetHeightParameter(newHeight)
			moved = true
		}
		if !moved {
			return 0, false
		}
	default:
		return 0, false
	}

	t.heights = append(t.heights, newHeight)
	t.SortNodeHeights()
	t.renumberInternal()
	return logHastings, true
}
