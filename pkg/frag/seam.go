package frag

// Split is one pair of edge points to hide (merge) or reveal (split).
type Split struct {
	Point1 *EdgePt
	Point2 *EdgePt
}

// Seam describes how a merged blob splits back into parts: up to three
// splits, a priority cost reflecting how natural the split looks, and the
// number of neighbouring joints the seam spans on either side.
type Seam struct {
	Split1 *Split
	Split2 *Split
	Split3 *Split

	Priority float64
	WidthN   int
	WidthP   int
	Location Pt
}

func (s *Seam) splits() []*Split {
	var out []*Split
	for _, sp := range []*Split{s.Split1, s.Split2, s.Split3} {
		if sp != nil {
			out = append(out, sp)
		}
	}
	return out
}

// NumSplits returns the number of splits the seam carries.
func (s *Seam) NumSplits() int { return len(s.splits()) }

// Hide marks the edge points referenced by the seam hidden, merging the
// blobs around it for display and classification.
func (s *Seam) Hide() {
	if s == nil {
		return
	}
	for _, sp := range s.splits() {
		markEdgePair(sp.Point1, sp.Point2, true)
	}
}

// Reveal undoes Hide. Hide followed by Reveal restores the pre-hide state;
// both directions are idempotent.
func (s *Seam) Reveal() {
	if s == nil {
		return
	}
	for _, sp := range s.splits() {
		markEdgePair(sp.Point1, sp.Point2, false)
	}
}

// markEdgePair walks the ring from pt1 forward to pt2 and from pt2 forward
// to pt1, setting or clearing the hidden flag on every point passed. When
// the two points sit on different rings each walk wraps its own ring once.
func markEdgePair(pt1, pt2 *EdgePt, hidden bool) {
	if pt1 == nil || pt2 == nil {
		return
	}
	p := pt1
	for {
		p.Hidden = hidden
		p = p.next
		if p == pt2 || p == pt1 {
			break
		}
	}
	p = pt2
	for {
		p.Hidden = hidden
		p = p.next
		if p == pt1 || p == pt2 {
			break
		}
	}
}

// sharesPoint reports whether two seams reference any common edge point.
// Seams that share a point cannot be combined or applied independently.
func (s *Seam) sharesPoint(o *Seam) bool {
	for _, a := range s.splits() {
		for _, b := range o.splits() {
			if a.Point1 == b.Point1 || a.Point1 == b.Point2 ||
				a.Point2 == b.Point1 || a.Point2 == b.Point2 {
				return true
			}
		}
	}
	return false
}
