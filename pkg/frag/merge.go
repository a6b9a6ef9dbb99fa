package frag

import "fmt"

// MergedView is the scoped checkout of a merged fragment range: while held,
// the seams inside the range are hidden and Fragment() presents [start, end)
// as one synthetic blob. Release restores the split view; it is safe to call
// on every exit path, including early pruning, and is idempotent.
type MergedView struct {
	word     *Word
	start    int
	end      int
	merged   *Fragment
	hidden   []*Seam
	released bool
}

// Merge acquires a merged view over the fragment range [start, end).
// Out-of-range indices are a caller contract violation and fail immediately.
func Merge(w *Word, start, end int) (*MergedView, error) {
	if start < 0 || end > len(w.Fragments) || start >= end {
		return nil, fmt.Errorf("frag: merge range [%d, %d) invalid for %d fragments", start, end, len(w.Fragments))
	}

	v := &MergedView{word: w, start: start, end: end}

	// Hide every seam fully contained in the range; seams spanning wider
	// than the range stay visible, as hiding them would eat neighbours.
	for x := start; x < end-1; x++ {
		seam := w.Seams[x]
		if seam == nil {
			continue
		}
		if x-seam.WidthN >= start && x+seam.WidthP < end {
			seam.Hide()
			v.hidden = append(v.hidden, seam)
		}
	}

	merged := &Fragment{}
	for i := start; i < end; i++ {
		merged.Outlines = append(merged.Outlines, w.Fragments[i].Outlines...)
	}
	merged.prev = w.Fragments[start].prev
	merged.next = w.Fragments[end-1].next
	v.merged = merged
	return v, nil
}

// Fragment returns the synthetic merged blob. Valid until Release.
func (v *MergedView) Fragment() *Fragment { return v.merged }

// Release reveals the hidden seams in reverse order, restoring the split
// view exactly as it was before Merge.
func (v *MergedView) Release() {
	if v.released {
		return
	}
	for i := len(v.hidden) - 1; i >= 0; i-- {
		v.hidden[i].Reveal()
	}
	v.released = true
}
