package ratings

import (
	"testing"

	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/frag"
)

func testWord(n int) *frag.Word {
	finder := frag.NewFinder()
	fragments := make([]*frag.Fragment, n)
	for i := range fragments {
		x := i * 12
		fragments[i] = &frag.Fragment{Outlines: []*frag.Outline{frag.NewOutline(
			frag.Pt{X: x, Y: 0}, frag.Pt{X: x + 10, Y: 0},
			frag.Pt{X: x + 10, Y: 10}, frag.Pt{X: x, Y: 10},
		)}}
	}
	return frag.NewWord(finder, fragments...)
}

// countingClassifier records every invocation.
type countingClassifier struct {
	calls int
}

func (c *countingClassifier) Classify(blob *frag.Fragment) []Choice {
	c.calls++
	return []Choice{{Class: charset.CharID(len(blob.Outlines)), Rating: 1}}
}

func TestAtMostOnePerRange(t *testing.T) {
	const n = 4
	word := testWord(n)
	matrix := NewMatrix(word)
	cl := &countingClassifier{}

	// Request every range several times in scrambled order.
	for pass := 0; pass < 3; pass++ {
		for start := 0; start < n; start++ {
			for end := n; end > start; end-- {
				if _, err := matrix.GetOrCompute(start, end, cl); err != nil {
					t.Fatalf("GetOrCompute(%d, %d): %v", start, end, err)
				}
			}
		}
	}

	distinct := n * (n + 1) / 2
	if cl.calls != distinct {
		t.Errorf("classifier ran %d times, want exactly %d distinct ranges", cl.calls, distinct)
	}
}

func TestComputeRestoresGeometry(t *testing.T) {
	word := testWord(3)
	matrix := NewMatrix(word)
	cl := &countingClassifier{}

	hidden := func() int {
		n := 0
		for _, f := range word.Fragments {
			for _, o := range f.Outlines {
				n += o.HiddenCount()
			}
		}
		return n
	}
	before := hidden()

	choices, err := matrix.GetOrCompute(0, 3, cl)
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if len(choices) != 1 || choices[0].Class != 3 {
		t.Errorf("merged blob should carry 3 outlines, got %v", choices)
	}
	if got := hidden(); got != before {
		t.Errorf("geometry not restored after classification: %d hidden, want %d", got, before)
	}
}

func TestEmptyResultIsCachedToo(t *testing.T) {
	word := testWord(2)
	matrix := NewMatrix(word)
	calls := 0
	reject := ClassifierFunc(func(*frag.Fragment) []Choice {
		calls++
		return nil
	})

	for i := 0; i < 3; i++ {
		choices, err := matrix.GetOrCompute(0, 1, reject)
		if err != nil {
			t.Fatalf("GetOrCompute: %v", err)
		}
		if len(choices) != 0 {
			t.Fatalf("want unclassifiable, got %v", choices)
		}
	}
	if calls != 1 {
		t.Errorf("unclassifiable range recomputed: %d calls, want 1", calls)
	}
}

func TestRangeContract(t *testing.T) {
	matrix := NewMatrix(testWord(2))
	cl := &countingClassifier{}
	for _, rng := range [][2]int{{-1, 1}, {0, 3}, {1, 1}, {2, 0}} {
		if _, err := matrix.GetOrCompute(rng[0], rng[1], cl); err == nil {
			t.Errorf("range [%d, %d) should be rejected", rng[0], rng[1])
		}
	}
	if cl.calls != 0 {
		t.Errorf("contract violations must not reach the classifier")
	}
}
