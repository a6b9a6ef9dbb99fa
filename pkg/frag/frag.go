/*
Package frag carries the blob geometry the search consumes: fragments (the
smallest indivisible blob units of a word), their outlines as rings of edge
points, and the seams that let adjacent fragments be merged and split again
without destroying the underlying geometry.

Merging is non-destructive: the edge points along a seam are marked hidden
and later revealed, so any merge is reversible in the order it was applied.
*/
package frag

// Pt is an outline point position.
type Pt struct {
	X, Y int
}

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

// Union grows the box to cover o.
func (b Box) Union(o Box) Box {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	return b
}

// Width returns the horizontal extent.
func (b Box) Width() int { return b.MaxX - b.MinX }

// EdgePt is one point on an outline ring. Hidden points are treated as
// absent when the outline is rendered or re-classified; hiding is how two
// fragments appear merged.
type EdgePt struct {
	Pos    Pt
	Hidden bool
	next   *EdgePt
	prev   *EdgePt
}

// Next returns the following point on the ring.
func (p *EdgePt) Next() *EdgePt { return p.next }

// Prev returns the preceding point on the ring.
func (p *EdgePt) Prev() *EdgePt { return p.prev }

// Outline is a closed ring of edge points.
type Outline struct {
	start *EdgePt
}

// NewOutline builds a ring from the given positions, in order.
func NewOutline(points ...Pt) *Outline {
	if len(points) == 0 {
		return &Outline{}
	}
	pts := make([]*EdgePt, len(points))
	for i, pos := range points {
		pts[i] = &EdgePt{Pos: pos}
	}
	for i := range pts {
		pts[i].next = pts[(i+1)%len(pts)]
		pts[i].prev = pts[(i+len(pts)-1)%len(pts)]
	}
	return &Outline{start: pts[0]}
}

// Points returns the ring's points in order, one full revolution.
func (o *Outline) Points() []*EdgePt {
	if o.start == nil {
		return nil
	}
	var pts []*EdgePt
	p := o.start
	for {
		pts = append(pts, p)
		p = p.next
		if p == o.start {
			break
		}
	}
	return pts
}

// Bounds returns the outline's bounding box.
func (o *Outline) Bounds() Box {
	pts := o.Points()
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{MinX: pts[0].Pos.X, MinY: pts[0].Pos.Y, MaxX: pts[0].Pos.X, MaxY: pts[0].Pos.Y}
	for _, p := range pts[1:] {
		b = b.Union(Box{MinX: p.Pos.X, MinY: p.Pos.Y, MaxX: p.Pos.X, MaxY: p.Pos.Y})
	}
	return b
}

// HiddenCount returns the number of currently hidden points on the ring.
func (o *Outline) HiddenCount() int {
	n := 0
	for _, p := range o.Points() {
		if p.Hidden {
			n++
		}
	}
	return n
}

// Fragment is one indivisible blob unit of a word, owned by the caller for
// the duration of a search.
type Fragment struct {
	Outlines []*Outline

	next *Fragment
	prev *Fragment
}

// Next returns the following fragment of the word, or nil.
func (f *Fragment) Next() *Fragment { return f.next }

// Prev returns the preceding fragment of the word, or nil.
func (f *Fragment) Prev() *Fragment { return f.prev }

// Bounds returns the union of the fragment's outline boxes.
func (f *Fragment) Bounds() Box {
	if len(f.Outlines) == 0 {
		return Box{}
	}
	b := f.Outlines[0].Bounds()
	for _, o := range f.Outlines[1:] {
		b = b.Union(o.Bounds())
	}
	return b
}

// Word is the ordered fragment sequence under search, together with one seam
// per joint between adjacent fragments.
type Word struct {
	Fragments []*Fragment
	Seams     []*Seam
}

// NewWord chains the fragments and finds a seam for every joint using the
// given finder.
func NewWord(finder *Finder, fragments ...*Fragment) *Word {
	w := &Word{Fragments: fragments}
	for i := range fragments {
		if i > 0 {
			fragments[i].prev = fragments[i-1]
			fragments[i-1].next = fragments[i]
		}
	}
	for i := 0; i+1 < len(fragments); i++ {
		w.Seams = append(w.Seams, finder.FindSeam(fragments[i], fragments[i+1]))
	}
	return w
}

// Joints returns the number of joints between adjacent fragments.
func (w *Word) Joints() int { return len(w.Seams) }

// BoundsOf returns the bounding box of the fragment range [start, end).
func (w *Word) BoundsOf(start, end int) Box {
	b := w.Fragments[start].Bounds()
	for i := start + 1; i < end; i++ {
		b = b.Union(w.Fragments[i].Bounds())
	}
	return b
}
