package search

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/typefrag/glyphseg/pkg/ambig"
	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/frag"
	"github.com/typefrag/glyphseg/pkg/ratings"
	"github.com/typefrag/glyphseg/pkg/wordgraph"
)

// MaxJoints bounds the word width: each joint occupies one bit of the packed
// segmentation state.
const MaxJoints = 63

// Options tunes the segmentation search.
type Options struct {
	// MaxStates caps how many segmentation states one word may explore.
	MaxStates int
	// SegcostBias is the per-piece penalty added to a state's queue
	// priority, steering the search toward coarser segmentations.
	SegcostBias float64
	// OutOfDictThreshold is the per-character rating a non-dictionary
	// reading must stay under to be eligible as the best choice.
	OutOfDictThreshold float64
	// OutOfDictPenalty scales the rating of non-dictionary readings when
	// ranking best-choice candidates.
	OutOfDictPenalty float64
	// DangerousAmbigDelta is the rating margin within which a replacement
	// reading overrides a dangerous one.
	DangerousAmbigDelta float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		MaxStates:           30,
		SegcostBias:         0.125,
		OutOfDictThreshold:  1.25,
		OutOfDictPenalty:    1.25,
		DangerousAmbigDelta: 0.5,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.MaxStates <= 0 {
		o.MaxStates = d.MaxStates
	}
	if o.SegcostBias <= 0 {
		o.SegcostBias = d.SegcostBias
	}
	if o.OutOfDictThreshold <= 0 {
		o.OutOfDictThreshold = d.OutOfDictThreshold
	}
	if o.OutOfDictPenalty < 1 {
		o.OutOfDictPenalty = d.OutOfDictPenalty
	}
	if o.DangerousAmbigDelta <= 0 {
		o.DangerousAmbigDelta = d.DangerousAmbigDelta
	}
	return o
}

// Searcher recognizes one word at a time by exploring segmentations of its
// fragments best-first. It is not safe for concurrent use; run one Searcher
// per worker.
type Searcher struct {
	opts       Options
	cs         *charset.Charset
	dawg       *wordgraph.Dawg
	ambigs     *ambig.Table
	classifier ratings.Classifier
	hyphen     *LineContinuation
}

// New returns a Searcher over the given alphabet, word graph and ambiguity
// table. A nil ambiguity table disables substitution.
func New(cs *charset.Charset, dawg *wordgraph.Dawg, ambigs *ambig.Table, classifier ratings.Classifier, opts Options) *Searcher {
	if ambigs == nil {
		ambigs = ambig.NewTable()
	}
	return &Searcher{
		opts:       opts.normalized(),
		cs:         cs,
		dawg:       dawg,
		ambigs:     ambigs,
		classifier: classifier,
	}
}

// SetLineContinuation attaches hyphenated line-break tracking. Recognize
// consults it for cross-line dictionary validation and FinishWord feeds it.
func (s *Searcher) SetLineContinuation(lc *LineContinuation) { s.hyphen = lc }

// Result is the outcome of recognizing one word.
type Result struct {
	// Best is the preferred reading after dictionary validation and
	// ambiguity resolution.
	Best *WordChoice
	// Raw is the cheapest reading by classifier rating alone.
	Raw *WordChoice
	// StatesExplored counts segmentation states popped before termination.
	StatesExplored int
}

// segState is one packed segmentation: bit i set means joint i is joined,
// so its two neighbouring fragments form one piece. parent is the state the
// merge was derived from.
type segState struct {
	bits   uint64
	pieces int
	parent *segState
	// priority is the parent's evaluated rating plus the piece bias; the
	// real cost is computed when the state is popped.
	priority float64
}

// path renders the derivation chain of a state for debug traces.
func (st *segState) path() string {
	if st.parent == nil {
		return fmt.Sprintf("%#x", st.bits)
	}
	return fmt.Sprintf("%s > %#x", st.parent.path(), st.bits)
}

type stateQueue []*segState

func (q stateQueue) Len() int            { return len(q) }
func (q stateQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q stateQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *stateQueue) Push(x interface{}) { *q = append(*q, x.(*segState)) }
func (q *stateQueue) Pop() interface{} {
	old := *q
	n := len(old)
	st := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return st
}

// Recognize runs the best-first segmentation search over the word and
// returns the best and raw readings. The word's geometry is unchanged on
// return.
func (s *Searcher) Recognize(word *frag.Word) (*Result, error) {
	n := len(word.Fragments)
	if n == 0 {
		return nil, fmt.Errorf("search: word has no fragments")
	}
	joints := word.Joints()
	if joints > MaxJoints {
		return nil, fmt.Errorf("search: %d joints exceeds the %d-joint state limit", joints, MaxJoints)
	}

	matrix := ratings.NewMatrix(word)
	open := &stateQueue{{bits: 0, pieces: n}}
	closed := map[uint64]struct{}{0: {}}

	res := &Result{}
	var raw, best, bestRepl *WordChoice

	for open.Len() > 0 && res.StatesExplored < s.opts.MaxStates {
		st := heap.Pop(open).(*segState)
		res.StatesExplored++

		cands, cost, err := s.evaluateState(matrix, st.bits, n)
		if err != nil {
			return nil, err
		}
		if cands == nil {
			// Unclassifiable piece. The state contributes no reading
			// but coarser merges of it may still recover, so
			// expansion goes on below.
			log.Debugf("segmentation %s pruned: unclassifiable piece", st.path())
			cost = st.priority
		} else {
			base := cands[0]
			if raw == nil || base.Rating < raw.Rating {
				raw = base
			}
			for _, c := range cands {
				if s.eligible(c) && (best == nil || s.rank(c) < s.rank(best)) {
					best = c
				}
				if c.UsedReplacement && c.Valid && (bestRepl == nil || c.Rating < bestRepl.Rating) {
					bestRepl = c
				}
			}
		}

		for j := 0; j < joints; j++ {
			bit := uint64(1) << uint(j)
			if st.bits&bit != 0 {
				continue
			}
			child := st.bits | bit
			if _, seen := closed[child]; seen {
				continue
			}
			closed[child] = struct{}{}
			heap.Push(open, &segState{
				bits:     child,
				pieces:   st.pieces - 1,
				parent:   st,
				priority: cost + s.opts.SegcostBias*float64(st.pieces-1),
			})
		}
	}

	if raw == nil {
		return nil, fmt.Errorf("search: no classifiable segmentation in %d states", res.StatesExplored)
	}
	if best == nil {
		best = raw
	}
	if best.Dangerous && bestRepl != nil && bestRepl.Rating <= best.Rating+s.opts.DangerousAmbigDelta {
		log.Debugf("dangerous reading %q overridden by replacement %q",
			best.String(s.cs), bestRepl.String(s.cs))
		best = bestRepl
	}

	res.Best = best
	res.Raw = raw
	return res, nil
}

// eligible reports whether a candidate may become the best choice: it must
// be dictionary-valid or cheap enough per character to stand on its own.
func (s *Searcher) eligible(c *WordChoice) bool {
	if c.Valid {
		return true
	}
	return c.Rating <= s.opts.OutOfDictThreshold*float64(len(c.IDs))
}

// rank orders best-choice candidates; invalid readings pay the
// out-of-dictionary multiplier.
func (s *Searcher) rank(c *WordChoice) float64 {
	if c.Valid {
		return c.Rating
	}
	return c.Rating * s.opts.OutOfDictPenalty
}

// evaluateState scores one segmentation. It returns the base reading plus
// any ambiguity-substituted alternates, and the base rating for child
// priorities. A nil candidate slice with a nil error means some piece was
// unclassifiable and the state yields no reading.
func (s *Searcher) evaluateState(matrix *ratings.Matrix, bits uint64, n int) ([]*WordChoice, float64, error) {
	ids := make([]charset.CharID, 0, n)
	rating := 0.0
	certainty := math.Inf(1)

	start := 0
	for end := 1; end <= n; end++ {
		if end < n && bits&(uint64(1)<<uint(end-1)) != 0 {
			continue
		}
		choices, err := matrix.GetOrCompute(start, end, s.classifier)
		if err != nil {
			return nil, 0, err
		}
		if len(choices) == 0 {
			return nil, 0, nil
		}
		top := choices[0]
		ids = append(ids, top.Class)
		rating += top.Rating
		if top.Certainty < certainty {
			certainty = top.Certainty
		}
		start = end
	}

	base := &WordChoice{IDs: ids, Rating: rating, Certainty: certainty}
	base.Valid = s.accepts(base.reconstructed(s.cs))
	s.markDanger(base)

	cands := append([]*WordChoice{base}, s.substitutions(base)...)
	return cands, rating, nil
}

// accepts runs dictionary validation: an empty word graph accepts
// everything, and a pending hyphenated prefix from the previous line extends
// the walk start points and adds whole-word constraint checks.
func (s *Searcher) accepts(ids []charset.CharID) bool {
	if s.dawg.Empty() {
		return true
	}
	if len(ids) == 0 {
		return false
	}
	if s.dawg.Accepts(ids) {
		return true
	}
	if s.hyphen != nil {
		for _, node := range s.hyphen.ActiveNodes() {
			if s.acceptsFrom(node, ids) {
				return true
			}
		}
		for _, con := range s.hyphen.Constraints() {
			joined := make([]charset.CharID, 0, len(con.Ngram)+len(ids))
			joined = append(joined, con.Ngram...)
			joined = append(joined, ids...)
			if s.dawg.Accepts(joined) {
				return true
			}
		}
	}
	return false
}

func (s *Searcher) acceptsFrom(node wordgraph.NodeRef, ids []charset.CharID) bool {
	for i, id := range ids {
		next, wordEnd, ok := s.dawg.Walk(node, id)
		if !ok {
			return false
		}
		if i == len(ids)-1 {
			return wordEnd
		}
		if next == wordgraph.NoNode {
			return false
		}
		node = next
	}
	return false
}

// markDanger flags the reading when any window of it matches a dangerous
// wrong ngram, meaning a cheaper misreading the classifier is known to
// produce.
func (s *Searcher) markDanger(c *WordChoice) {
	for off := range c.IDs {
		for _, spec := range s.ambigs.LookupDangerous(c.IDs[off]) {
			if spec.Type == ambig.CaseAmbig {
				continue
			}
			if spec.MatchWrongNgram(c.IDs, off) {
				c.Dangerous = true
				return
			}
		}
	}
}

// substitutions generates alternate readings for every substitutable wrong
// ngram matching a suffix of the base reading. Dangerous rules produce
// alternates too: the near-tie check at termination needs a replacement
// candidate to weigh the dangerous reading against. The replacement occupies
// the matched slots as fragment placeholders, keeping one id per piece,
// while validation sees the reconstructed ngram.
func (s *Searcher) substitutions(base *WordChoice) []*WordChoice {
	var alts []*WordChoice
	for off := range base.IDs {
		for _, spec := range s.ambigs.Lookup(base.IDs[off]) {
			if spec.Type == ambig.NotAmbig || spec.Type == ambig.CaseAmbig {
				continue
			}
			if off+len(spec.WrongNgram) != len(base.IDs) {
				continue
			}
			if !spec.MatchWrongNgram(base.IDs, off) {
				continue
			}
			alt := base.Clone()
			copy(alt.IDs[off:], spec.CorrectFragments)
			alt.UsedReplacement = true
			alt.Dangerous = false
			alt.Valid = s.accepts(alt.reconstructed(s.cs))
			alts = append(alts, alt)
		}
	}
	return alts
}
