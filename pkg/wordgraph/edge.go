/*
Package wordgraph implements the dictionary word graph: a mutable trie that
words are inserted into, and the compacted immutable DAWG the trie is squished
into once loading finishes.

Edges are fixed-width 64-bit records packing the letter id, a word-end flag,
a direction flag and the next-node index. Callers never touch the packing;
they hold EdgeRef values (node index + edge index) with explicit range checks.
*/
package wordgraph

import "github.com/typefrag/glyphseg/pkg/charset"

// NodeRef indexes a node in either graph representation.
type NodeRef int32

// NoNode marks a missing node, e.g. the target of a terminal edge in the
// compacted graph.
const NoNode NodeRef = -1

// EdgeRecord packs one edge: letter id in the low bits, word-end and
// direction flags above it, next-node index in the remaining high bits.
type EdgeRecord uint64

const (
	letterBits   = 21
	letterMask   = EdgeRecord(1)<<letterBits - 1
	wordEndFlag  = EdgeRecord(1) << letterBits
	backwardFlag = EdgeRecord(1) << (letterBits + 1)
	nextShift    = letterBits + 2
	nextMask     = EdgeRecord(1)<<40 - 1

	// all-ones next field means the edge leads nowhere
	noNextValue = nextMask
)

func newEdgeRecord(next NodeRef, backward, wordEnd bool, letter charset.CharID) EdgeRecord {
	nextField := noNextValue
	if next != NoNode {
		nextField = EdgeRecord(next) & nextMask
	}
	rec := nextField<<nextShift | EdgeRecord(letter)&letterMask
	if wordEnd {
		rec |= wordEndFlag
	}
	if backward {
		rec |= backwardFlag
	}
	return rec
}

// Letter returns the character id carried by the edge.
func (e EdgeRecord) Letter() charset.CharID {
	return charset.CharID(e & letterMask)
}

// WordEnd reports whether the edge completes a word.
func (e EdgeRecord) WordEnd() bool { return e&wordEndFlag != 0 }

// Backward reports the edge direction (builder graph only).
func (e EdgeRecord) Backward() bool { return e&backwardFlag != 0 }

// Next returns the node the edge leads to, or NoNode.
func (e EdgeRecord) Next() NodeRef {
	field := e >> nextShift & nextMask
	if field == noNextValue {
		return NoNode
	}
	return NodeRef(field)
}

func (e EdgeRecord) withNext(next NodeRef) EdgeRecord {
	return newEdgeRecord(next, e.Backward(), e.WordEnd(), e.Letter())
}

func (e EdgeRecord) withWordEnd() EdgeRecord {
	return e | wordEndFlag
}

// EdgeRef addresses one edge of one node. The zero value is not valid; use
// the lookup functions on Trie or Dawg to obtain refs.
type EdgeRef struct {
	Node  NodeRef
	Index int
}

// Child pairs an outgoing letter with the edge that carries it.
type Child struct {
	Char charset.CharID
	Edge EdgeRef
}

// Graph is the read surface shared by the mutable trie and the compacted
// DAWG. Traversal state is a NodeRef; every step yields an EdgeRef whose
// word-end flag decides acceptance.
type Graph interface {
	Root() NodeRef
	EdgeForChar(node NodeRef, ch charset.CharID) (EdgeRef, bool)
	NextNode(ref EdgeRef) NodeRef
	WordEnd(ref EdgeRef) bool
	EdgeChar(ref EdgeRef) charset.CharID
	ChildrenOf(node NodeRef) []Child
	NumEdges() int
}
