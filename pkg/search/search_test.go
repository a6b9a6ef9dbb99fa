package search

import (
	"strings"
	"testing"

	"github.com/typefrag/glyphseg/pkg/ambig"
	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/frag"
	"github.com/typefrag/glyphseg/pkg/ratings"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

// strip builds a word of n box fragments laid out left to right on a 12px
// pitch, so a merged range [a, b) has bounds [a*12, (b-1)*12+10].
func strip(n int) *frag.Word {
	finder := frag.NewFinder()
	frags := make([]*frag.Fragment, n)
	for i := 0; i < n; i++ {
		x := i * 12
		frags[i] = &frag.Fragment{Outlines: []*frag.Outline{frag.NewOutline(
			frag.Pt{X: x, Y: 0}, frag.Pt{X: x + 10, Y: 0},
			frag.Pt{X: x + 10, Y: 10}, frag.Pt{X: x, Y: 10},
		)}}
	}
	return frag.NewWord(finder, frags...)
}

type reading struct {
	class  string
	rating float64
}

// tableClassifier answers per fragment range, keyed by the range the blob's
// bounds cover on the 12px pitch. Ranges absent from the table are
// unclassifiable.
func tableClassifier(cs *charset.Charset, table map[[2]int]reading) ratings.ClassifierFunc {
	return func(blob *frag.Fragment) []ratings.Choice {
		b := blob.Bounds()
		key := [2]int{b.MinX / 12, b.MaxX/12 + 1}
		r, ok := table[key]
		if !ok {
			return nil
		}
		return []ratings.Choice{{Class: cs.IDOf(r.class), Rating: r.rating, Certainty: -r.rating}}
	}
}

func buildDawg(t *testing.T, cs *charset.Charset, words ...string) *wordgraph.Dawg {
	t.Helper()
	trie := wordgraph.NewTrie(10000)
	for _, w := range words {
		ids, ok := cs.IDsOfString(w)
		if !ok {
			t.Fatalf("word %q has unregistered characters", w)
		}
		trie.Insert(ids)
	}
	return trie.Compact()
}

func loadAmbigs(t *testing.T, cs *charset.Charset, rules string) *ambig.Table {
	t.Helper()
	table, err := ambig.Load(strings.NewReader(rules), cs, ambig.LoadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return table
}

func TestPerfectClassifierReadsDictionaryWord(t *testing.T) {
	cs := charset.FromString("cart")
	dawg := buildDawg(t, cs, "cat", "car", "cart")
	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 1}: {"c", 0.1},
		{1, 2}: {"a", 0.1},
		{2, 3}: {"t", 0.1},
	})

	s := New(cs, dawg, nil, classifier, DefaultOptions())
	res, err := s.Recognize(strip(3))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if got := res.Raw.String(cs); got != "cat" {
		t.Errorf("raw reading = %q, want cat", got)
	}
	if got := res.Best.String(cs); got != "cat" {
		t.Errorf("best reading = %q, want cat", got)
	}
	if !res.Best.Valid {
		t.Error("best reading should be dictionary valid")
	}
	if res.Best.Rating != res.Raw.Rating {
		t.Errorf("a valid raw reading should carry no extra cost: best %v raw %v",
			res.Best.Rating, res.Raw.Rating)
	}
	if res.StatesExplored > DefaultOptions().MaxStates {
		t.Errorf("explored %d states over budget %d", res.StatesExplored, DefaultOptions().MaxStates)
	}
}

func TestDefiniteAmbigSubstitutionWins(t *testing.T) {
	cs := charset.FromString("corn")
	table := loadAmbigs(t, cs, "v2\n2 r n 1 m 2\n")
	dawg := buildDawg(t, cs, "com")
	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 1}: {"c", 0.1},
		{1, 2}: {"o", 0.1},
		{2, 3}: {"r", 0.1},
		{3, 4}: {"n", 0.1},
	})

	s := New(cs, dawg, table, classifier, DefaultOptions())
	res, err := s.Recognize(strip(4))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if got := res.Raw.String(cs); got != "corn" {
		t.Errorf("raw reading = %q, want corn", got)
	}
	if got := res.Best.String(cs); got != "com" {
		t.Errorf("best reading = %q, want substituted com", got)
	}
	if !res.Best.UsedReplacement {
		t.Error("best reading should be marked as a replacement")
	}
	if !res.Best.Valid {
		t.Error("substituted reading should validate against the reconstructed ngram")
	}
	if len(res.Best.IDs) != 4 {
		t.Errorf("replacement must keep one id per piece, got %d ids", len(res.Best.IDs))
	}
}

func TestDangerousReadingOverriddenWithinDelta(t *testing.T) {
	cs := charset.FromString("rnm")
	table := loadAmbigs(t, cs, "v2\n2 r n 1 m 2\n")
	// Both readings are dictionary words; the dangerous one must still
	// yield to the replacement when their ratings are close.
	dawg := buildDawg(t, cs, "rn", "m")
	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 1}: {"r", 0.1},
		{1, 2}: {"n", 0.1},
	})

	s := New(cs, dawg, table, classifier, DefaultOptions())
	res, err := s.Recognize(strip(2))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if got := res.Best.String(cs); got != "m" {
		t.Errorf("best reading = %q, want replacement m", got)
	}
	if got := res.Raw.String(cs); got != "rn" {
		t.Errorf("raw reading = %q, want rn", got)
	}
}

func TestSimilarAmbigRuleProducesNearTieReplacement(t *testing.T) {
	cs := charset.FromString("rnm")
	// A dangerous rule, not a definite one: the wrong reading may stand,
	// but only after the replacement was weighed as a near-tie.
	table := loadAmbigs(t, cs, "v2\n2 r n 1 m 3\n")
	dawg := buildDawg(t, cs, "rn", "m")
	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 1}: {"r", 0.1},
		{1, 2}: {"n", 0.1},
		{0, 2}: {"m", 0.25},
	})

	s := New(cs, dawg, table, classifier, DefaultOptions())
	res, err := s.Recognize(strip(2))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if got := res.Raw.String(cs); got != "rn" {
		t.Errorf("raw reading = %q, want rn", got)
	}
	if got := res.Best.String(cs); got != "m" {
		t.Errorf("best reading = %q, want replacement m", got)
	}
	if !res.Best.UsedReplacement {
		t.Error("best reading should come from the dangerous rule's replacement")
	}
}

func TestUnclassifiablePieceRecoversByMerging(t *testing.T) {
	cs := charset.FromString("m")
	dawg := buildDawg(t, cs, "m")
	// Single fragments mean nothing; only the merged pair reads as m. The
	// initial all-split state yields no reading but its children must
	// still be explored.
	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 2}: {"m", 0.3},
	})

	s := New(cs, dawg, nil, classifier, DefaultOptions())
	res, err := s.Recognize(strip(2))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got := res.Best.String(cs); got != "m" {
		t.Errorf("best reading = %q, want m", got)
	}
	if !res.Best.Valid {
		t.Error("merged reading should be dictionary valid")
	}
}

func TestStateBudgetCapsExploration(t *testing.T) {
	cs := charset.FromString("a")
	table := map[[2]int]reading{}
	for a := 0; a < 8; a++ {
		for b := a + 1; b <= 8; b++ {
			table[[2]int{a, b}] = reading{"a", 0.2}
		}
	}
	classifier := tableClassifier(cs, table)

	opts := DefaultOptions()
	opts.MaxStates = 5
	s := New(cs, wordgraph.EmptyDawg(), nil, classifier, opts)
	res, err := s.Recognize(strip(8))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.StatesExplored != 5 {
		t.Errorf("StatesExplored = %d, want exactly the budget 5", res.StatesExplored)
	}
	if res.Best == nil {
		t.Fatal("budget-capped search should still return a reading")
	}
	if !res.Best.Valid {
		t.Error("an empty word graph accepts every reading")
	}
}

func TestEmptyWordRejected(t *testing.T) {
	cs := charset.New()
	s := New(cs, wordgraph.EmptyDawg(), nil, tableClassifier(cs, nil), DefaultOptions())
	if _, err := s.Recognize(frag.NewWord(frag.NewFinder())); err == nil {
		t.Fatal("expected an error for a word with no fragments")
	}
}

func TestLineContinuationResetBoundary(t *testing.T) {
	cs := charset.FromString("seg-")
	hyph := cs.IDOf("-")
	choice := &WordChoice{IDs: mustIDs(t, cs, "seg-"), Rating: 0.3}

	cases := []struct {
		name       string
		storedLast bool
		incoming   bool
		survives   bool
	}{
		{"line break", true, false, true},
		{"same line", false, false, false},
		{"into last word", false, true, false},
		{"two line ends", true, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lc := NewLineContinuation(hyph)
			lc.Reset(tc.storedLast)
			lc.Set(choice, []wordgraph.NodeRef{3}, nil)
			lc.Reset(tc.incoming)
			if lc.HasWord() != tc.survives {
				t.Errorf("HasWord after %v->%v = %v, want %v",
					tc.storedLast, tc.incoming, lc.HasWord(), tc.survives)
			}
		})
	}
}

func TestLineContinuationKeepsBetterRating(t *testing.T) {
	cs := charset.FromString("seg-")
	hyph := cs.IDOf("-")
	lc := NewLineContinuation(hyph)
	lc.Reset(true)

	lc.Set(&WordChoice{IDs: mustIDs(t, cs, "seg-"), Rating: 0.3}, nil, nil)
	if got := lc.Word().Rating; got != 0.3 {
		t.Fatalf("stored rating = %v, want 0.3", got)
	}
	if n := len(lc.Word().IDs); n != 3 {
		t.Errorf("trailing hyphen not stripped: %d ids, want 3", n)
	}

	lc.Set(&WordChoice{IDs: mustIDs(t, cs, "se-"), Rating: 0.9}, nil, nil)
	if got := lc.Word().Rating; got != 0.3 {
		t.Errorf("worse rating replaced the stored prefix: %v", got)
	}
	lc.Set(&WordChoice{IDs: mustIDs(t, cs, "se-"), Rating: 0.1}, nil, nil)
	if got := lc.Word().Rating; got != 0.1 {
		t.Errorf("better rating should replace the stored prefix: %v", got)
	}
}

func TestHyphenatedWordValidatesAcrossLines(t *testing.T) {
	cs := charset.FromString("segment-")
	dawg := buildDawg(t, cs, "segment")
	hyph := cs.IDOf("-")

	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 1}: {"m", 0.1},
		{1, 2}: {"e", 0.1},
		{2, 3}: {"n", 0.1},
		{3, 4}: {"t", 0.1},
	})
	s := New(cs, dawg, nil, classifier, DefaultOptions())
	lc := NewLineContinuation(hyph)
	s.SetLineContinuation(lc)

	// Last word of the previous line read "seg-".
	lc.Reset(true)
	s.FinishWord(&Result{Best: &WordChoice{IDs: mustIDs(t, cs, "seg-"), Rating: 0.4}}, true)
	if !lc.HasWord() {
		t.Fatal("hyphen-ended last word should be stored")
	}
	if len(lc.ActiveNodes()) == 0 {
		t.Fatal("stored prefix should carry the reached word graph node")
	}

	// First word of the next line.
	lc.Reset(false)
	if !lc.HasWord() {
		t.Fatal("stored prefix must survive the line break")
	}
	res, err := s.Recognize(strip(4))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got := res.Best.String(cs); got != "ment" {
		t.Fatalf("best reading = %q, want ment", got)
	}
	if !res.Best.Valid {
		t.Error("continuation should validate as the rest of segment")
	}

	// A mid-line word boundary drops the pending prefix.
	lc.Reset(false)
	if lc.HasWord() {
		t.Error("prefix should not survive a second word on the line")
	}
}

func TestSubstitutedHyphenPrefixValidatesViaConstraint(t *testing.T) {
	cs := charset.FromString("ment-r")
	table := loadAmbigs(t, cs, "v2\n2 r n 1 m 2\n")
	dawg := buildDawg(t, cs, "ment")

	classifier := tableClassifier(cs, map[[2]int]reading{
		{0, 1}: {"e", 0.1},
		{1, 2}: {"n", 0.1},
		{2, 3}: {"t", 0.1},
	})
	s := New(cs, dawg, table, classifier, DefaultOptions())
	lc := NewLineContinuation(cs.IDOf("-"))
	s.SetLineContinuation(lc)

	// The previous line ended on a substituted reading: placeholder ids
	// standing in for m, then the hyphen. Placeholders have no word graph
	// edges, so no active node can be stored; only the reconstructed
	// prefix constraint carries the obligation across the break.
	spec := table.Lookup(cs.IDOf("r"))[0]
	prefix := append(append([]charset.CharID{}, spec.CorrectFragments...), cs.IDOf("-"))
	lc.Reset(true)
	s.FinishWord(&Result{Best: &WordChoice{IDs: prefix, Rating: 0.4, UsedReplacement: true}}, true)

	if !lc.HasWord() {
		t.Fatal("hyphen-ended substituted word should be stored")
	}
	if len(lc.ActiveNodes()) != 0 {
		t.Fatal("placeholder ids should not reach a word graph node")
	}
	if len(lc.Constraints()) != 1 {
		t.Fatalf("stored %d constraints, want 1", len(lc.Constraints()))
	}

	lc.Reset(false)
	res, err := s.Recognize(strip(3))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if got := res.Best.String(cs); got != "ent" {
		t.Fatalf("best reading = %q, want ent", got)
	}
	if !res.Best.Valid {
		t.Error("m plus ent should validate as ment through the constraint")
	}
}

func mustIDs(t *testing.T, cs *charset.Charset, word string) []charset.CharID {
	t.Helper()
	ids, ok := cs.IDsOfString(word)
	if !ok {
		t.Fatalf("word %q has unregistered characters", word)
	}
	return ids
}
