package frag

import (
	"container/heap"
	"math"

	"github.com/charmbracelet/log"
)

// Finder evaluates candidate split geometries and picks the lowest-cost
// seam. Costs combine the split width, how vertical the cut is, and a
// penalty that pushes degenerate near-zero-width splits to the back of the
// queue.
type Finder struct {
	// MaxSplitLength bounds the distance between a candidate point pair.
	MaxSplitLength int
	// PileSize caps the number of runner-up seams retained for combining.
	PileSize int
	// BadAngleCost weights non-vertical cuts.
	BadAngleCost float64
	// WorstCost is added for splits that leave a sliver on either side.
	WorstCost float64
}

// NewFinder returns a finder with the default cost weights.
func NewFinder() *Finder {
	return &Finder{
		MaxSplitLength: 20,
		PileSize:       8,
		BadAngleCost:   2.0,
		WorstCost:      100.0,
	}
}

// seamQueue is a min-heap of seams by priority.
type seamQueue []*Seam

func (q seamQueue) Len() int            { return len(q) }
func (q seamQueue) Less(i, j int) bool  { return q[i].Priority < q[j].Priority }
func (q seamQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *seamQueue) Push(x interface{}) { *q = append(*q, x.(*Seam)) }
func (q *seamQueue) Pop() interface{} {
	old := *q
	n := len(old)
	s := old[n-1]
	*q = old[:n-1]
	return s
}

// seamPile is the bounded retention of runner-up seams: when full, adding a
// better seam evicts the current worst.
type seamPile struct {
	seams []*Seam
	cap   int
}

func newSeamPile(capacity int) *seamPile {
	return &seamPile{cap: capacity}
}

func (p *seamPile) add(seam *Seam) {
	if len(p.seams) < p.cap {
		p.seams = append(p.seams, seam)
		return
	}
	worst := 0
	for i, s := range p.seams {
		if s.Priority > p.seams[worst].Priority {
			worst = i
		}
	}
	if seam.Priority < p.seams[worst].Priority {
		p.seams[worst] = seam
	}
}

// CombineSeam feeds a new seam into the queue and, where the seam is
// compatible with a piled runner-up, also queues the combined multi-split
// seam. The seam itself joins the pile afterwards, evicting the worst piled
// entry if the pile is full.
func (f *Finder) CombineSeam(queue *seamQueue, pile *seamPile, seam *Seam) {
	heap.Push(queue, seam)
	for _, piled := range pile.seams {
		if combined := combineSeams(piled, seam); combined != nil {
			heap.Push(queue, combined)
		}
	}
	pile.add(seam)
}

// combineSeams merges two seams into one multi-split seam. Returns nil when
// they share an edge point or the merged seam would exceed three splits.
func combineSeams(a, b *Seam) *Seam {
	if a.sharesPoint(b) {
		return nil
	}
	splits := append(a.splits(), b.splits()...)
	if len(splits) > 3 {
		return nil
	}
	combined := &Seam{
		Priority: a.Priority + b.Priority,
		WidthN:   a.WidthN,
		WidthP:   b.WidthP,
		Location: a.Location,
	}
	for i, sp := range splits {
		switch i {
		case 0:
			combined.Split1 = sp
		case 1:
			combined.Split2 = sp
		case 2:
			combined.Split3 = sp
		}
	}
	return combined
}

// seamPriority scores one split inside the blob spanning [xmin, xmax].
func (f *Finder) seamPriority(sp *Split, xmin, xmax int) float64 {
	dx := float64(sp.Point1.Pos.X - sp.Point2.Pos.X)
	dy := float64(sp.Point1.Pos.Y - sp.Point2.Pos.Y)
	width := math.Hypot(dx, dy)

	// A natural chop is near-vertical: penalize horizontal reach.
	angle := math.Abs(dx) / (width + 1)
	priority := width + f.BadAngleCost*angle*width

	// Splits hugging either end of the blob produce a degenerate sliver.
	cutX := (sp.Point1.Pos.X + sp.Point2.Pos.X) / 2
	span := xmax - xmin
	if span > 0 {
		left := cutX - xmin
		right := xmax - cutX
		if left*8 < span || right*8 < span {
			priority += f.WorstCost
		}
	}
	return priority
}

// PickGoodSeam chooses the lowest-cost split of a merged blob. Candidate
// point pairs are drawn from the fragment's outline points; pairs further
// apart than MaxSplitLength are not considered. Returns nil when the blob
// offers no acceptable split.
func (f *Finder) PickGoodSeam(fragment *Fragment) *Seam {
	var points []*EdgePt
	for _, o := range fragment.Outlines {
		for _, p := range o.Points() {
			if !p.Hidden {
				points = append(points, p)
			}
		}
	}
	if len(points) < 2 {
		return nil
	}
	box := fragment.Bounds()

	queue := &seamQueue{}
	heap.Init(queue)
	pile := newSeamPile(f.PileSize)

	f.tryPointPairs(points, box, queue, pile)

	if queue.Len() == 0 {
		log.Debugf("no candidate seams in blob spanning x [%d, %d]", box.MinX, box.MaxX)
		return nil
	}
	return heap.Pop(queue).(*Seam)
}

// tryPointPairs scores every eligible point pair as a single-split seam.
func (f *Finder) tryPointPairs(points []*EdgePt, box Box, queue *seamQueue, pile *seamPile) {
	maxLen := float64(f.MaxSplitLength)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			p1, p2 := points[i], points[j]
			if p1.next == p2 || p2.next == p1 {
				continue // adjacent ring points cut nothing
			}
			dx := float64(p1.Pos.X - p2.Pos.X)
			dy := float64(p1.Pos.Y - p2.Pos.Y)
			if math.Hypot(dx, dy) > maxLen {
				continue
			}
			sp := &Split{Point1: p1, Point2: p2}
			seam := &Seam{
				Split1:   sp,
				Priority: f.seamPriority(sp, box.MinX, box.MaxX),
				Location: Pt{X: (p1.Pos.X + p2.Pos.X) / 2, Y: (p1.Pos.Y + p2.Pos.Y) / 2},
			}
			f.CombineSeam(queue, pile, seam)
		}
	}
}

// FindSeam builds the seam between two adjacent fragments of a word: the
// closest pair of outline points across the gap, scored over the union box.
func (f *Finder) FindSeam(a, b *Fragment) *Seam {
	var best *Split
	bestDist := math.Inf(1)
	for _, oa := range a.Outlines {
		for _, pa := range oa.Points() {
			for _, ob := range b.Outlines {
				for _, pb := range ob.Points() {
					d := math.Hypot(float64(pa.Pos.X-pb.Pos.X), float64(pa.Pos.Y-pb.Pos.Y))
					if d < bestDist {
						bestDist = d
						best = &Split{Point1: pa, Point2: pb}
					}
				}
			}
		}
	}
	if best == nil {
		return &Seam{}
	}
	box := a.Bounds().Union(b.Bounds())
	return &Seam{
		Split1:   best,
		Priority: f.seamPriority(best, box.MinX, box.MaxX),
		Location: Pt{X: (best.Point1.Pos.X + best.Point2.Pos.X) / 2, Y: (best.Point1.Pos.Y + best.Point2.Pos.Y) / 2},
	}
}
