package wordgraph

import "github.com/typefrag/glyphseg/pkg/charset"

// Dawg is the compacted read-only form of the word graph. Edges of each node
// are stored contiguously and sorted by letter; there are no backward edges
// and no mutation operations.
type Dawg struct {
	starts []int32
	edges  []EdgeRecord
}

// EmptyDawg returns a dawg accepting nothing. This is the degraded form the
// engine falls back to when the trie blew its edge budget right before
// compaction.
func EmptyDawg() *Dawg {
	return &Dawg{starts: []int32{0, 0}}
}

// Root returns the root node.
func (d *Dawg) Root() NodeRef { return 0 }

// Empty reports whether the graph holds no edges at all. Validity checks
// against an empty graph pass vacuously.
func (d *Dawg) Empty() bool { return len(d.edges) == 0 }

// NumEdges returns the edge count.
func (d *Dawg) NumEdges() int { return len(d.edges) }

// NumNodes returns the node count.
func (d *Dawg) NumNodes() int {
	if len(d.starts) == 0 {
		return 0
	}
	return len(d.starts) - 1
}

func (d *Dawg) span(node NodeRef) (int32, int32, bool) {
	if node < 0 || int(node) >= len(d.starts)-1 {
		return 0, 0, false
	}
	return d.starts[node], d.starts[node+1], true
}

// EdgeForChar finds the edge out of node carrying ch.
func (d *Dawg) EdgeForChar(node NodeRef, ch charset.CharID) (EdgeRef, bool) {
	lo, hi, ok := d.span(node)
	if !ok {
		return EdgeRef{}, false
	}
	for i := lo; i < hi; i++ {
		letter := d.edges[i].Letter()
		if letter == ch {
			return EdgeRef{Node: node, Index: int(i - lo)}, true
		}
		if letter > ch {
			break
		}
	}
	return EdgeRef{}, false
}

func (d *Dawg) record(ref EdgeRef) (EdgeRecord, bool) {
	lo, hi, ok := d.span(ref.Node)
	if !ok || ref.Index < 0 || lo+int32(ref.Index) >= hi {
		return 0, false
	}
	return d.edges[lo+int32(ref.Index)], true
}

// NextNode returns the node the edge leads to. Terminal edges and bad refs
// return NoNode.
func (d *Dawg) NextNode(ref EdgeRef) NodeRef {
	rec, ok := d.record(ref)
	if !ok {
		return NoNode
	}
	return rec.Next()
}

// WordEnd reports whether the edge completes a word.
func (d *Dawg) WordEnd(ref EdgeRef) bool {
	rec, ok := d.record(ref)
	return ok && rec.WordEnd()
}

// EdgeChar returns the letter carried by the edge.
func (d *Dawg) EdgeChar(ref EdgeRef) charset.CharID {
	rec, ok := d.record(ref)
	if !ok {
		return charset.InvalidCharID
	}
	return rec.Letter()
}

// ChildrenOf lists the outgoing letters and edges of a node.
func (d *Dawg) ChildrenOf(node NodeRef) []Child {
	lo, hi, ok := d.span(node)
	if !ok {
		return nil
	}
	children := make([]Child, 0, hi-lo)
	for i := lo; i < hi; i++ {
		children = append(children, Child{
			Char: d.edges[i].Letter(),
			Edge: EdgeRef{Node: node, Index: int(i - lo)},
		})
	}
	return children
}

// Walk follows one letter from node. ok is false when no such edge exists;
// wordEnd reports whether the step completes a word; next is NoNode when the
// edge is terminal.
func (d *Dawg) Walk(node NodeRef, ch charset.CharID) (next NodeRef, wordEnd, ok bool) {
	ref, ok := d.EdgeForChar(node, ch)
	if !ok {
		return NoNode, false, false
	}
	return d.NextNode(ref), d.WordEnd(ref), true
}

// Accepts reports whether the exact id sequence is a word in the graph.
func (d *Dawg) Accepts(word []charset.CharID) bool {
	if len(word) == 0 {
		return false
	}
	node := d.Root()
	for i, ch := range word {
		next, wordEnd, ok := d.Walk(node, ch)
		if !ok {
			return false
		}
		if i == len(word)-1 {
			return wordEnd
		}
		if next == NoNode {
			return false
		}
		node = next
	}
	return false
}

// IsPrefix reports whether the id sequence can be extended into a word, and
// returns the node the traversal lands on.
func (d *Dawg) IsPrefix(word []charset.CharID) (NodeRef, bool) {
	node := d.Root()
	for _, ch := range word {
		next, _, ok := d.Walk(node, ch)
		if !ok || next == NoNode {
			return NoNode, false
		}
		node = next
	}
	return node, true
}
