// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"sort"
	"strings"

	"github.com/jsalarias/ecoevolity/split"
)

// SplitsByHeightIndex returns, for every height-table index, the
// clade splits of every node mapped to that height. This is the
// tree's canonical per-height-class signature: two trees sharing the
// same topology and the same assignment of clades to height classes
// produce the same split sets at the same indices, regardless of the
// trees' node object identities.
func (t *Tree) SplitsByHeightIndex() [][]*split.Split {
	n := t.NumLeaves()
	out := make([][]*split.Split, len(t.heights))
	for i := range t.heights {
		for _, node := range t.NodesAtHeight(i) {
			out[i] = append(out[i], node.Split(n))
		}
	}
	return out
}

// Signature returns a canonical string encoding the tree's height
// classes and the splits mapped to each, suitable as a map key for
// tallying distinct shared-height topologies across an MCMC sample.
func (t *Tree) Signature() string {
	var b strings.Builder
	for i, splits := range t.SplitsByHeightIndex() {
		strs := make([]string, len(splits))
		for j, s := range splits {
			strs[j] = s.String()
		}
		sort.Strings(strs)
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strings.Join(strs, ","))
	}
	return b.String()
}
