// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/parameter"
)

// ParseNewick parses a newick string into a Tree. Leaf heights are
// always 0; an internal node's height is derived bottom-up from its
// first child's height plus that child's branch length, unless
// overridden by a trailing node comment. The comment syntax is
// "[&key=value,...]" immediately after a node's closing token,
// recognizing two keys: "height", which overrides the computed
// height, and "height_index", which maps the node onto a specific,
// shared slot in the height table — the first node to reference a
// given height_index defines that slot's Parameter, and every later
// node referencing the same index shares it.
func ParseNewick(s string, newPayload func() Payload) (*Tree, error) {
	if newPayload == nil {
		newPayload = func() Payload { return EmptyPayload{} }
	}
	p := &newickParser{
		s:             strings.TrimSpace(s),
		newPayload:    newPayload,
		leafIndex:     make(map[string]int),
		heightByIndex: make(map[int]*parameter.Parameter),
	}
	node, _, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == ';' {
		p.pos++
	}
	return NewFromRoot(node, newPayload), nil
}

type newickParser struct {
	s             string
	pos           int
	newPayload    func() Payload
	leafIndex     map[string]int
	heightByIndex map[int]*parameter.Parameter
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *newickParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

// parseNode parses one subtree starting at the current position and
// returns the built node along with the branch length written after
// it (0 if absent).
func (p *newickParser) parseNode() (*Node, float64, error) {
	p.skipSpace()
	var n *Node
	if p.peek() == '(' {
		p.pos++
		var children []*Node
		var branchLens []float64
		for {
			c, bl, err := p.parseNode()
			if err != nil {
				return nil, 0, err
			}
			children = append(children, c)
			branchLens = append(branchLens, bl)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, 0, &ecoerr.ParsingError{Message: fmt.Sprintf("expected ')' at position %d", p.pos)}
		}
		p.pos++

		heightVal := children[0].Height() + branchLens[0]
		h := parameter.New(heightVal)
		n = NewInternal(0, h, p.newPayload())
		for _, c := range children {
			n.AddChild(c)
		}
	} else {
		label := p.parseLabel()
		idx, ok := p.leafIndex[label]
		if !ok {
			idx = len(p.leafIndex)
			p.leafIndex[label] = idx
		}
		n = NewLeaf(idx, label, p.newPayload())
	}

	if comment, ok := p.parseComment(); ok && !n.IsLeaf() {
		if v, ok := comment["height"]; ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				n.height.SetValue(f)
			}
		}
		if v, ok := comment["height_index"]; ok {
			if idx, err := strconv.Atoi(v); err == nil {
				if shared, ok := p.heightByIndex[idx]; ok {
					n.SetHeightParameter(shared)
				} else {
					p.heightByIndex[idx] = n.height
				}
			}
		}
	}

	branchLen := 0.0
	p.skipSpace()
	if p.peek() == ':' {
		p.pos++
		branchLen = p.parseFloat()
	}
	return n, branchLen, nil
}

func (p *newickParser) parseLabel() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '(', ')', ',', ':', ';', '[':
			return strings.TrimSpace(p.s[start:p.pos])
		}
		p.pos++
	}
	return strings.TrimSpace(p.s[start:p.pos])
}

func (p *newickParser) parseFloat() float64 {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	f, _ := strconv.ParseFloat(p.s[start:p.pos], 64)
	return f
}

func (p *newickParser) parseComment() (map[string]string, bool) {
	p.skipSpace()
	if p.peek() != '[' {
		return nil, false
	}
	p.pos++
	if p.peek() == '&' {
		p.pos++
	}
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ']' {
		p.pos++
	}
	body := p.s[start:p.pos]
	if p.peek() == ']' {
		p.pos++
	}
	out := make(map[string]string)
	for _, kv := range strings.Split(body, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			out[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return out, true
}

// Format renders t as a newick string with branch lengths. Every
// internal node whose height is shared with another node carries a
// "[&height_index=N]" comment so a later ParseNewick round-trips the
// sharing; passing includeHeights also emits the node's absolute
// height as "height=V" in that comment.
func (t *Tree) Format(includeHeights bool) string {
	sharedCount := make(map[*parameter.Parameter]int)
	for _, n := range t.InternalNodes() {
		sharedCount[n.height]++
	}
	indexOf := make(map[*parameter.Parameter]int)
	for i, h := range t.heights {
		indexOf[h] = i
	}

	var write func(n *Node) string
	write = func(n *Node) string {
		var b strings.Builder
		if n.IsLeaf() {
			b.WriteString(n.label)
			return b.String()
		}
		b.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(write(c))
			b.WriteString(fmt.Sprintf(":%g", n.Height()-c.Height()))
		}
		b.WriteByte(')')
		if includeHeights || sharedCount[n.height] > 1 {
			comment := fmt.Sprintf("[&height_index=%d", indexOf[n.height])
			if includeHeights {
				comment += fmt.Sprintf(",height=%g", n.Height())
			}
			comment += "]"
			b.WriteString(comment)
		}
		return b.String()
	}
	return write(t.root) + ";"
}
