// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

// StoreState snapshots the tree's current topology and every
// parameter value it owns, so a rejected move can be undone with
// RestoreState. Height and payload parameter values are snapshotted
// in place with Parameter.Store; the topology is snapshotted by
// cloning the node structure, which preserves height-parameter
// pointer identity (shared heights stay shared in the clone) while
// still being an independent set of Node structs.
func (t *Tree) StoreState() {
	for _, h := range t.heights {
		h.Store()
	}
	t.betaShapeA.Store()
	t.betaShapeB.Store()
	for _, n := range t.Nodes() {
		for _, p := range n.payload.Parameters() {
			p.Store()
		}
	}
	t.storedRoot = t.root.cloneSubtree(nil)
	t.storedLogLikelihood = t.logLikelihood
	t.storedLogPrior = t.logPrior
}

// RestoreState undoes every change made since the last StoreState:
// every parameter value still in the live height table or node
// payloads is restored in place, and the topology (together with the
// height table, which is rebuilt from it) is reset to the stored
// clone. Any height or node created after StoreState is simply
// discarded by the topology reset.
func (t *Tree) RestoreState() {
	for _, h := range t.heights {
		h.Restore()
	}
	t.betaShapeA.Restore()
	t.betaShapeB.Restore()
	for _, n := range t.Nodes() {
		for _, p := range n.payload.Parameters() {
			p.Restore()
		}
	}
	if t.storedRoot != nil {
		t.root = t.storedRoot.cloneSubtree(nil)
		t.collectLeaves()
		t.renumberInternal()
		t.UpdateNodeHeights()
		t.SortNodeHeights()
	}
	t.logLikelihood = t.storedLogLikelihood
	t.logPrior = t.storedLogPrior
}
