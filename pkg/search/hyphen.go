package search

import (
	"github.com/charmbracelet/log"

	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

// Constraint is a pending ngram obligation carried across a hyphenated line
// break. It holds the reconstructed prefix text; the continuation discharges
// it when prefix plus continuation spell a dictionary word. Unlike the
// active-node walk, it survives prefixes whose raw ids (fragment
// placeholders from a substitution) have no edges in the word graph.
type Constraint struct {
	Ngram []charset.CharID
}

// LineContinuation carries a hyphenated word prefix across a line break so
// the continuation on the next line validates as the whole word. One
// instance tracks one text column; feed it words in reading order.
type LineContinuation struct {
	hyphenID charset.CharID

	word           *WordChoice
	activeNodes    []wordgraph.NodeRef
	constraints    []Constraint
	lastWordOnLine bool
}

// NewLineContinuation returns an empty tracker. hyphenID is the charset id
// of the hyphen character.
func NewLineContinuation(hyphenID charset.CharID) *LineContinuation {
	return &LineContinuation{hyphenID: hyphenID}
}

// HasWord reports whether a hyphenated prefix is pending.
func (lc *LineContinuation) HasWord() bool { return lc.word != nil }

// Word returns the stored prefix choice, hyphen already stripped, or nil.
func (lc *LineContinuation) Word() *WordChoice { return lc.word }

// ActiveNodes returns the word-graph nodes the stored prefix reached;
// continuation validation resumes the walk from them.
func (lc *LineContinuation) ActiveNodes() []wordgraph.NodeRef {
	if lc.word == nil {
		return nil
	}
	return lc.activeNodes
}

// Constraints returns the pending ngram obligations of the stored prefix.
func (lc *LineContinuation) Constraints() []Constraint {
	if lc.word == nil {
		return nil
	}
	return lc.constraints
}

// Reset prepares the tracker for the next word. The stored prefix survives
// exactly one boundary: the transition from the last word of a line to a
// word that is not last on its line. Every other transition clears it.
func (lc *LineContinuation) Reset(lastWordOnLine bool) {
	if !(lc.lastWordOnLine && !lastWordOnLine) {
		lc.clear()
	}
	lc.lastWordOnLine = lastWordOnLine
}

// Set stores choice as the pending hyphenated prefix, replacing a previous
// one only when the new rating is better. The trailing hyphen id is
// stripped from the stored copy; nodes and constraints are snapshotted.
func (lc *LineContinuation) Set(choice *WordChoice, nodes []wordgraph.NodeRef, constraints []Constraint) {
	if choice == nil || len(choice.IDs) == 0 {
		return
	}
	if lc.word != nil && lc.word.Rating <= choice.Rating {
		return
	}
	stored := choice.Clone()
	if stored.IDs[len(stored.IDs)-1] == lc.hyphenID {
		stored.IDs = stored.IDs[:len(stored.IDs)-1]
	}
	lc.word = stored
	lc.activeNodes = append([]wordgraph.NodeRef(nil), nodes...)
	lc.constraints = append([]Constraint(nil), constraints...)
	log.Debugf("stored hyphenated prefix of %d ids, %d active nodes", len(stored.IDs), len(nodes))
}

func (lc *LineContinuation) clear() {
	lc.word = nil
	lc.activeNodes = nil
	lc.constraints = nil
}

// FinishWord records a line-break hyphenation after a word was recognized:
// when the best reading of the last word on a line ends in a hyphen, its
// prefix, reached word-graph nodes and reconstructed-prefix constraint are
// stored for the next line.
func (s *Searcher) FinishWord(res *Result, lastWordOnLine bool) {
	if s.hyphen == nil || res == nil || res.Best == nil {
		return
	}
	if !lastWordOnLine {
		return
	}
	ids := res.Best.IDs
	if len(ids) < 2 || ids[len(ids)-1] != s.hyphen.hyphenID {
		return
	}
	prefix := ids[:len(ids)-1]
	var nodes []wordgraph.NodeRef
	if node, ok := s.dawg.IsPrefix(prefix); ok {
		nodes = append(nodes, node)
	}
	var constraints []Constraint
	if recon := res.Best.reconstructed(s.cs); len(recon) > 1 && recon[len(recon)-1] == s.hyphen.hyphenID {
		constraints = append(constraints, Constraint{Ngram: recon[:len(recon)-1]})
	}
	s.hyphen.Set(res.Best, nodes, constraints)
}
