/*
Package ambig holds the tables of known confusable character sequences: a
"wrong" ngram the classifier tends to produce, the replacement it should be
read as, and how aggressively the substitution may be applied.

The tables are built once from a rule file and are read-only afterwards, so
independent searches may share one table without locking.
*/
package ambig

import (
	"github.com/typefrag/glyphseg/pkg/charset"
)

// MaxAmbigSize bounds the wrong-ngram length a rule may carry.
const MaxAmbigSize = 10

// Type classifies how a substitution may be applied.
type Type int

const (
	// NotAmbig: placeholder, no substitution.
	NotAmbig Type = iota
	// ReplaceAmbig: always substitute the replacement for the wrong ngram.
	ReplaceAmbig
	// DefiniteAmbig: substitute whenever the dictionary prefers the result.
	DefiniteAmbig
	// SimilarAmbig: dangerous; accept the wrong reading only when no
	// near-tie alternative uses the replacement.
	SimilarAmbig
	// CaseAmbig: wrong and correct differ only by letter case.
	CaseAmbig
)

func (t Type) String() string {
	switch t {
	case NotAmbig:
		return "not-ambiguous"
	case ReplaceAmbig:
		return "replace"
	case DefiniteAmbig:
		return "definite"
	case SimilarAmbig:
		return "dangerous"
	case CaseAmbig:
		return "case-only"
	}
	return "unknown"
}

// Spec is one ambiguity rule after charset resolution. For wrong ngrams
// longer than one character, CorrectFragments holds one placeholder id per
// wrong position so the search can keep one hypothesis slot per original
// fragment; the full replacement is reconstructed from CorrectNgramID.
type Spec struct {
	WrongNgram       []charset.CharID
	CorrectNgramID   charset.CharID
	CorrectFragments []charset.CharID
	Type             Type
}

// Table indexes ambiguity specs by the first character id of the wrong
// ngram. Replaceable rules and the rest live in separate tables, as the
// substitution pass and the danger check consult them independently.
type Table struct {
	replace map[charset.CharID][]*Spec
	dang    map[charset.CharID][]*Spec

	// oneToOneDefinite caches 1->1 DefiniteAmbig rules for the
	// classifier-facing short circuit; populated only when the config
	// enables definite ambigs for classification.
	oneToOneDefinite map[charset.CharID][]charset.CharID
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		replace:          make(map[charset.CharID][]*Spec),
		dang:             make(map[charset.CharID][]*Spec),
		oneToOneDefinite: make(map[charset.CharID][]charset.CharID),
	}
}

// LookupReplace returns the replaceable specs whose wrong ngram starts with
// first, sorted by wrong ngram.
func (t *Table) LookupReplace(first charset.CharID) []*Spec {
	return t.replace[first]
}

// LookupDangerous returns the non-replaceable (dangerous, definite, case)
// specs whose wrong ngram starts with first, sorted by wrong ngram.
func (t *Table) LookupDangerous(first charset.CharID) []*Spec {
	return t.dang[first]
}

// Lookup returns every spec whose wrong ngram starts with first.
func (t *Table) Lookup(first charset.CharID) []*Spec {
	rep := t.replace[first]
	dan := t.dang[first]
	if len(rep) == 0 {
		return dan
	}
	if len(dan) == 0 {
		return rep
	}
	out := make([]*Spec, 0, len(rep)+len(dan))
	out = append(out, rep...)
	out = append(out, dan...)
	return out
}

// DefiniteReplacements returns the cached 1->1 definite replacement ids for
// a character, or nil when the side table was not enabled at load time.
func (t *Table) DefiniteReplacements(ch charset.CharID) []charset.CharID {
	return t.oneToOneDefinite[ch]
}

// insert places a resolved spec into the right table, keeping per-first-char
// lists sorted by full wrong ngram for deterministic lookups.
func (t *Table) insert(spec *Spec) {
	table := t.dang
	if spec.Type == ReplaceAmbig {
		table = t.replace
	}
	first := spec.WrongNgram[0]
	list := table[first]
	pos := len(list)
	for i, existing := range list {
		if compareNgrams(spec.WrongNgram, existing.WrongNgram) < 0 {
			pos = i
			break
		}
	}
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = spec
	table[first] = list
}

func compareNgrams(a, b []charset.CharID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// MatchWrongNgram reports whether the candidate ids starting at offset spell
// the rule's wrong ngram.
func (s *Spec) MatchWrongNgram(ids []charset.CharID, offset int) bool {
	if offset+len(s.WrongNgram) > len(ids) {
		return false
	}
	for i, ch := range s.WrongNgram {
		if ids[offset+i] != ch {
			return false
		}
	}
	return true
}
