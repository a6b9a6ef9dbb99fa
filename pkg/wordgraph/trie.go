package wordgraph

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/typefrag/glyphseg/pkg/charset"
)

type trieNode struct {
	forward  []EdgeRecord
	backward []EdgeRecord
}

// Trie is the mutable builder form of the word graph. Nodes own forward and
// backward edge vectors; the backward edges exist only so that redundancy
// elimination can repoint and delete edges before compaction.
//
// maxEdges caps the total edge count (forward + backward). When an insert
// would blow the cap the whole edge set is cleared and insertion restarts
// from an empty trie: a hard memory ceiling traded against dictionary
// completeness, never a fatal error.
type Trie struct {
	nodes    []*trieNode
	numEdges int
	maxEdges int
}

// NewTrie returns an empty trie holding at most maxEdges edges.
// maxEdges <= 0 means unbounded.
func NewTrie(maxEdges int) *Trie {
	t := &Trie{maxEdges: maxEdges}
	t.newNode() // node 0 is the root
	return t
}

// Root returns the root node.
func (t *Trie) Root() NodeRef { return 0 }

// NumEdges returns the total number of edges (forward and backward).
func (t *Trie) NumEdges() int { return t.numEdges }

// NumNodes returns the number of live nodes.
func (t *Trie) NumNodes() int {
	n := 0
	for _, nd := range t.nodes {
		if nd != nil {
			n++
		}
	}
	return n
}

func (t *Trie) newNode() NodeRef {
	t.nodes = append(t.nodes, &trieNode{})
	return NodeRef(len(t.nodes) - 1)
}

// Clear drops every node and edge, leaving an empty root.
func (t *Trie) Clear() {
	t.nodes = t.nodes[:0]
	t.numEdges = 0
	t.newNode()
}

func (t *Trie) node(ref NodeRef) *trieNode {
	if ref < 0 || int(ref) >= len(t.nodes) {
		return nil
	}
	return t.nodes[ref]
}

// EdgeForChar finds the forward edge out of node carrying ch.
func (t *Trie) EdgeForChar(node NodeRef, ch charset.CharID) (EdgeRef, bool) {
	nd := t.node(node)
	if nd == nil {
		return EdgeRef{}, false
	}
	for i, rec := range nd.forward {
		if rec.Letter() == ch {
			return EdgeRef{Node: node, Index: i}, true
		}
	}
	return EdgeRef{}, false
}

func (t *Trie) record(ref EdgeRef) (EdgeRecord, bool) {
	nd := t.node(ref.Node)
	if nd == nil || ref.Index < 0 || ref.Index >= len(nd.forward) {
		return 0, false
	}
	return nd.forward[ref.Index], true
}

// NextNode returns the node the edge leads to, or NoNode on a bad ref.
func (t *Trie) NextNode(ref EdgeRef) NodeRef {
	rec, ok := t.record(ref)
	if !ok {
		return NoNode
	}
	return rec.Next()
}

// WordEnd reports whether the edge completes a word.
func (t *Trie) WordEnd(ref EdgeRef) bool {
	rec, ok := t.record(ref)
	return ok && rec.WordEnd()
}

// EdgeChar returns the letter carried by the edge.
func (t *Trie) EdgeChar(ref EdgeRef) charset.CharID {
	rec, ok := t.record(ref)
	if !ok {
		return charset.InvalidCharID
	}
	return rec.Letter()
}

// ChildrenOf lists the outgoing letters and edges of a node.
func (t *Trie) ChildrenOf(node NodeRef) []Child {
	nd := t.node(node)
	if nd == nil {
		return nil
	}
	children := make([]Child, 0, len(nd.forward))
	for i, rec := range nd.forward {
		children = append(children, Child{Char: rec.Letter(), Edge: EdgeRef{Node: node, Index: i}})
	}
	return children
}

// Insert adds a word to the trie, creating nodes and edges as needed and
// marking the final edge as word-end. When the edge budget is exceeded the
// trie is cleared and the word retried against the empty trie.
func (t *Trie) Insert(word []charset.CharID) {
	if len(word) == 0 {
		return
	}
	for attempt := 0; attempt < 2; attempt++ {
		if t.insert(word) {
			return
		}
		log.Warnf("word graph over edge budget (%d); clearing all edges and restarting", t.maxEdges)
		t.Clear()
	}
}

func (t *Trie) insert(word []charset.CharID) bool {
	node := t.Root()
	for i, ch := range word {
		last := i == len(word)-1
		if ref, ok := t.EdgeForChar(node, ch); ok {
			if last {
				t.markWordEnd(ref)
			}
			node = t.NextNode(ref)
			continue
		}
		if t.maxEdges > 0 && t.numEdges+2 > t.maxEdges {
			return false
		}
		next := t.newNode()
		t.addEdgePair(node, next, ch, last)
		node = next
	}
	return true
}

// markWordEnd sets the word-end flag on a forward edge and its backward twin.
func (t *Trie) markWordEnd(ref EdgeRef) {
	nd := t.node(ref.Node)
	rec := nd.forward[ref.Index]
	if rec.WordEnd() {
		return
	}
	nd.forward[ref.Index] = rec.withWordEnd()
	child := t.node(rec.Next())
	for i, brec := range child.backward {
		if brec.Next() == ref.Node && brec.Letter() == rec.Letter() {
			child.backward[i] = brec.withWordEnd()
			return
		}
	}
}

// addEdgePair links from -> to with a forward edge and records the backward
// twin on the destination node.
func (t *Trie) addEdgePair(from, to NodeRef, ch charset.CharID, wordEnd bool) {
	t.nodes[from].forward = append(t.nodes[from].forward,
		newEdgeRecord(to, false, wordEnd, ch))
	t.nodes[to].backward = append(t.nodes[to].backward,
		newEdgeRecord(from, true, wordEnd, ch))
	t.numEdges += 2
}

// sortEdges orders a node's forward edges by letter id. Node fan-out is
// small, so ordering cost is negligible and lookups in the compacted form
// stay deterministic.
func sortEdges(edges []EdgeRecord) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Letter() != edges[j].Letter() {
			return edges[i].Letter() < edges[j].Letter()
		}
		return edges[i].Next() < edges[j].Next()
	})
}

// Reduce performs redundancy elimination: any two non-root nodes whose
// outgoing edge sets are identical are merged, repointing the parents of the
// merged-away node through its backward edges. The pass repeats until no
// merge fires, so equal suffix subtrees collapse bottom-up. Returns the
// number of node merges performed; a second call on an already reduced trie
// returns zero.
func (t *Trie) Reduce() int {
	total := 0
	for {
		merged := t.reducePass()
		total += merged
		if merged == 0 {
			return total
		}
	}
}

func (t *Trie) reducePass() int {
	seen := make(map[string]NodeRef)
	merged := 0
	for i := len(t.nodes) - 1; i > 0; i-- {
		nd := t.nodes[i]
		if nd == nil {
			continue
		}
		sortEdges(nd.forward)
		key := forwardSignature(nd.forward)
		if keep, ok := seen[key]; ok {
			t.mergeNodes(keep, NodeRef(i))
			merged++
			continue
		}
		seen[key] = NodeRef(i)
	}
	return merged
}

// forwardSignature is the merge key: letter, word-end flag and next node of
// every outgoing edge.
func forwardSignature(edges []EdgeRecord) string {
	buf := make([]byte, 0, len(edges)*8)
	for _, rec := range edges {
		v := uint64(rec &^ backwardFlag)
		buf = append(buf,
			byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
			byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	}
	return string(buf)
}

// mergeNodes redirects every parent of dead to keep and deletes dead.
func (t *Trie) mergeNodes(keep, dead NodeRef) {
	deadNode := t.nodes[dead]

	for _, brec := range deadNode.backward {
		parent := t.nodes[brec.Next()]
		for k, frec := range parent.forward {
			if frec.Letter() == brec.Letter() && frec.Next() == dead {
				parent.forward[k] = frec.withNext(keep)
			}
		}
		t.nodes[keep].backward = append(t.nodes[keep].backward,
			newEdgeRecord(brec.Next(), true, brec.WordEnd(), brec.Letter()))
	}

	// Drop dead's own forward edges together with the backward twins they
	// left on the children. keep has an identical edge set, so nothing about
	// the accepted word set changes.
	for _, frec := range deadNode.forward {
		child := t.node(frec.Next())
		if child != nil {
			for k, brec := range child.backward {
				if brec.Next() == dead && brec.Letter() == frec.Letter() {
					child.backward = append(child.backward[:k], child.backward[k+1:]...)
					break
				}
			}
		}
		t.numEdges -= 2
	}
	t.nodes[dead] = nil
}

// Compact reduces the trie and squishes it into the immutable DAWG form.
// The trie itself is left reduced but still mutable; callers normally drop
// it after compaction.
func (t *Trie) Compact() *Dawg {
	t.Reduce()

	// Breadth-first remap of live, reachable nodes. Nodes without outgoing
	// edges are squished away: edges into them keep their word-end flag and
	// point at NoNode.
	remap := make(map[NodeRef]NodeRef, len(t.nodes))
	order := make([]NodeRef, 0, len(t.nodes))
	queue := []NodeRef{t.Root()}
	remap[t.Root()] = 0
	order = append(order, t.Root())
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, rec := range t.nodes[cur].forward {
			next := rec.Next()
			if next == NoNode || t.node(next) == nil || len(t.nodes[next].forward) == 0 {
				continue
			}
			if _, ok := remap[next]; !ok {
				remap[next] = NodeRef(len(order))
				order = append(order, next)
				queue = append(queue, next)
			}
		}
	}

	d := &Dawg{starts: make([]int32, 0, len(order)+1)}
	for _, old := range order {
		d.starts = append(d.starts, int32(len(d.edges)))
		forward := t.nodes[old].forward
		sortEdges(forward)
		for _, rec := range forward {
			next := rec.Next()
			mapped := NoNode
			if next != NoNode && t.node(next) != nil && len(t.nodes[next].forward) > 0 {
				mapped = remap[next]
			}
			d.edges = append(d.edges, newEdgeRecord(mapped, false, rec.WordEnd(), rec.Letter()))
		}
	}
	d.starts = append(d.starts, int32(len(d.edges)))
	log.Debugf("compacted word graph: %d nodes, %d edges", len(order), len(d.edges))
	return d
}
