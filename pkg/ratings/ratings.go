/*
Package ratings memoizes classifier results per contiguous fragment range of
one word, guaranteeing at most one classifier invocation per distinct range
no matter how many search states request it.
*/
package ratings

import (
	"fmt"

	"github.com/typefrag/glyphseg/pkg/charset"
	"github.com/typefrag/glyphseg/pkg/frag"
)

// Choice is one ranked classifier hypothesis for a blob.
type Choice struct {
	Class     charset.CharID
	Rating    float64
	Certainty float64
}

// Classifier turns one (possibly merged) blob into ranked hypotheses, best
// (lowest rating) first. An empty result means the blob is unclassifiable.
type Classifier interface {
	Classify(blob *frag.Fragment) []Choice
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(blob *frag.Fragment) []Choice

// Classify implements Classifier.
func (f ClassifierFunc) Classify(blob *frag.Fragment) []Choice { return f(blob) }

type cell struct {
	classified bool
	choices    []Choice
}

// Matrix is the per-word rating cache: an upper-triangular (start, end)
// indexed store over the word's fragment count. It is private to one search
// instance; no locking.
type Matrix struct {
	word  *frag.Word
	n     int
	cells []cell
}

// NewMatrix returns an empty cache for the given word.
func NewMatrix(word *frag.Word) *Matrix {
	n := len(word.Fragments)
	return &Matrix{word: word, n: n, cells: make([]cell, n*n)}
}

// index maps the half-open range [start, end) onto the triangular store.
func (m *Matrix) index(start, end int) (int, error) {
	if start < 0 || end > m.n || start >= end {
		return 0, fmt.Errorf("ratings: range [%d, %d) invalid for %d fragments", start, end, m.n)
	}
	return start*m.n + (end - 1), nil
}

// Get returns the cached choices for [start, end) and whether the range has
// been classified yet.
func (m *Matrix) Get(start, end int) ([]Choice, bool, error) {
	i, err := m.index(start, end)
	if err != nil {
		return nil, false, err
	}
	c := m.cells[i]
	return c.choices, c.classified, nil
}

// Put stores choices for [start, end), overwriting any previous entry.
func (m *Matrix) Put(start, end int, choices []Choice) error {
	i, err := m.index(start, end)
	if err != nil {
		return err
	}
	m.cells[i] = cell{classified: true, choices: choices}
	return nil
}

// GetOrCompute returns the cached result for [start, end) or, on a miss,
// acquires a merged view of the range, classifies the synthetic blob,
// releases the view, stores and returns the result. The merged view is
// released on every path, so the word's split geometry is always restored.
func (m *Matrix) GetOrCompute(start, end int, classifier Classifier) ([]Choice, error) {
	i, err := m.index(start, end)
	if err != nil {
		return nil, err
	}
	if m.cells[i].classified {
		return m.cells[i].choices, nil
	}

	view, err := frag.Merge(m.word, start, end)
	if err != nil {
		return nil, err
	}
	defer view.Release()

	choices := classifier.Classify(view.Fragment())
	m.cells[i] = cell{classified: true, choices: choices}
	return choices, nil
}

// Len returns the word's fragment count.
func (m *Matrix) Len() int { return m.n }
