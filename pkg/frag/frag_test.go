package frag

import "testing"

// boxFragment builds a rectangular single-outline fragment.
func boxFragment(minX, minY, maxX, maxY int) *Fragment {
	return &Fragment{Outlines: []*Outline{NewOutline(
		Pt{minX, minY}, Pt{maxX, minY}, Pt{maxX, maxY}, Pt{minX, maxY},
	)}}
}

func hiddenCount(w *Word) int {
	n := 0
	for _, f := range w.Fragments {
		for _, o := range f.Outlines {
			n += o.HiddenCount()
		}
	}
	return n
}

func TestSeamHideRevealRestoresState(t *testing.T) {
	finder := NewFinder()
	w := NewWord(finder, boxFragment(0, 0, 10, 10), boxFragment(12, 0, 22, 10))

	if w.Joints() != 1 {
		t.Fatalf("Joints = %d, want 1", w.Joints())
	}
	seam := w.Seams[0]
	if seam.Split1 == nil {
		t.Fatal("joint seam has no split")
	}

	before := hiddenCount(w)
	seam.Hide()
	if hiddenCount(w) == before {
		t.Fatal("Hide changed nothing")
	}
	seam.Hide() // idempotent
	seam.Reveal()
	if got := hiddenCount(w); got != before {
		t.Errorf("hidden count after hide+reveal = %d, want %d", got, before)
	}
	seam.Reveal() // idempotent
	if got := hiddenCount(w); got != before {
		t.Errorf("second reveal disturbed state: %d, want %d", got, before)
	}
}

func TestMergedViewReleaseOnEveryPath(t *testing.T) {
	finder := NewFinder()
	w := NewWord(finder,
		boxFragment(0, 0, 10, 10),
		boxFragment(12, 0, 22, 10),
		boxFragment(24, 0, 34, 10),
	)
	before := hiddenCount(w)

	view, err := Merge(w, 0, 2)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	merged := view.Fragment()
	if len(merged.Outlines) != 2 {
		t.Errorf("merged view should expose 2 outlines, got %d", len(merged.Outlines))
	}
	if hiddenCount(w) == before {
		t.Error("merge should hide the in-range seam")
	}

	view.Release()
	if got := hiddenCount(w); got != before {
		t.Errorf("Release did not restore: %d hidden, want %d", got, before)
	}
	view.Release() // idempotent
	if got := hiddenCount(w); got != before {
		t.Errorf("double Release disturbed state: %d, want %d", got, before)
	}
}

func TestMergeContractViolations(t *testing.T) {
	finder := NewFinder()
	w := NewWord(finder, boxFragment(0, 0, 10, 10), boxFragment(12, 0, 22, 10))

	for _, rng := range [][2]int{{-1, 1}, {0, 3}, {1, 1}, {2, 1}} {
		if _, err := Merge(w, rng[0], rng[1]); err == nil {
			t.Errorf("Merge(%d, %d) should fail", rng[0], rng[1])
		}
	}
}

func TestPickGoodSeamPrefersNarrowVerticalCut(t *testing.T) {
	// A dumbbell: two fat ends joined by a thin neck at x=15. The cheapest
	// cut is across the neck.
	outline := NewOutline(
		Pt{0, 0}, Pt{14, 0}, Pt{15, 4}, Pt{16, 0}, Pt{30, 0},
		Pt{30, 10}, Pt{16, 10}, Pt{15, 6}, Pt{14, 10}, Pt{0, 10},
	)
	blob := &Fragment{Outlines: []*Outline{outline}}

	seam := NewFinder().PickGoodSeam(blob)
	if seam == nil {
		t.Fatal("no seam found")
	}
	if seam.Location.X < 13 || seam.Location.X > 17 {
		t.Errorf("seam at x=%d, want the neck near x=15", seam.Location.X)
	}
}

func TestSeamPileEvictsWorst(t *testing.T) {
	pile := newSeamPile(2)
	a := &Seam{Priority: 1}
	b := &Seam{Priority: 5}
	c := &Seam{Priority: 3}

	pile.add(a)
	pile.add(b)
	pile.add(c) // evicts b
	for _, s := range pile.seams {
		if s == b {
			t.Error("worst seam should have been evicted")
		}
	}
	if len(pile.seams) != 2 {
		t.Errorf("pile size = %d, want 2", len(pile.seams))
	}

	worse := &Seam{Priority: 9}
	pile.add(worse)
	for _, s := range pile.seams {
		if s == worse {
			t.Error("a worse seam must not displace a better one")
		}
	}
}

func TestCombineSeamsRejectsSharedPoints(t *testing.T) {
	p1 := &EdgePt{Pos: Pt{0, 0}}
	p2 := &EdgePt{Pos: Pt{0, 5}}
	p3 := &EdgePt{Pos: Pt{5, 0}}

	a := &Seam{Split1: &Split{Point1: p1, Point2: p2}, Priority: 1}
	b := &Seam{Split1: &Split{Point1: p2, Point2: p3}, Priority: 2}
	if combineSeams(a, b) != nil {
		t.Error("seams sharing a point must not combine")
	}

	c := &Seam{Split1: &Split{Point1: p3, Point2: &EdgePt{Pos: Pt{5, 5}}}, Priority: 2}
	combined := combineSeams(a, c)
	if combined == nil {
		t.Fatal("disjoint seams should combine")
	}
	if combined.NumSplits() != 2 {
		t.Errorf("combined splits = %d, want 2", combined.NumSplits())
	}
	if combined.Priority != 3 {
		t.Errorf("combined priority = %v, want the sum 3", combined.Priority)
	}
}
