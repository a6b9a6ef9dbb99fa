/*
Package search drives word recognition: a best-first search over ways of
grouping a word's fragments into characters, scored through the rating cache
and validated against the word graph and the ambiguity tables.
*/
package search

import (
	"github.com/typefrag/glyphseg/pkg/charset"
)

// WordChoice is one candidate reading of the word: the id per hypothesized
// character, the accumulated classifier rating (lower is better), the worst
// per-piece certainty, and the dictionary flags the search attaches.
type WordChoice struct {
	IDs       []charset.CharID
	Rating    float64
	Certainty float64

	// Valid is set when the id sequence, after reconstructing fragment
	// placeholders, is accepted by the word graph.
	Valid bool
	// Dangerous is set when the reading matches a dangerous wrong ngram
	// without applying the substitution.
	Dangerous bool
	// UsedReplacement is set on candidates produced by an ambiguity
	// substitution.
	UsedReplacement bool
}

// Clone returns a deep copy.
func (wc *WordChoice) Clone() *WordChoice {
	cp := *wc
	cp.IDs = append([]charset.CharID(nil), wc.IDs...)
	return &cp
}

// String renders the choice, collapsing fragment placeholders back into
// their replacement ngrams so a substituted reading prints as its corrected
// text.
func (wc *WordChoice) String(cs *charset.Charset) string {
	out := ""
	for i := 0; i < len(wc.IDs); i++ {
		id := wc.IDs[i]
		if info := cs.FragmentOf(id); info != nil {
			if info.Pos == 0 {
				out += cs.StringOf(info.NgramID)
			}
			continue
		}
		out += cs.StringOf(id)
	}
	return out
}

// reconstructed collapses runs of fragment placeholders into the base ngram
// id, yielding the sequence dictionary validation runs on.
func (wc *WordChoice) reconstructed(cs *charset.Charset) []charset.CharID {
	out := make([]charset.CharID, 0, len(wc.IDs))
	for _, id := range wc.IDs {
		if info := cs.FragmentOf(id); info != nil {
			if info.Pos == 0 {
				out = append(out, info.NgramID)
			}
			continue
		}
		out = append(out, id)
	}
	return out
}
