// Package bank implements the shade bank: the growing, append-only pool of
// measured (input, image) sample pairs that backs all geometric queries.
//
// The bank is versioned so derived artifacts (tessellations) can be cached
// and invalidated, and it hands out immutable snapshots so per-round workers
// never observe a half-updated pool.
package bank

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrEmptyBank is returned when an operation needs at least one sample.
var ErrEmptyBank = errors.New("bank is empty")

// ErrDimensionMismatch indicates a sample whose input or image dimension
// disagrees with the bank.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SamplePoint is one measured pair: a device input code and the image-space
// (Lab) value it produced. Immutable once appended.
type SamplePoint struct {
	Input []float64 `json:"input"`
	Image []float64 `json:"image"`
}

// Bank is the mutable owner of the sample pool. Safe for concurrent use;
// appends happen at round boundaries, readers work from Snapshot views.
type Bank struct {
	mu      sync.RWMutex
	dim     int
	points  []SamplePoint
	version uint64
}

// New creates an empty bank for input/image vectors of the given dimension.
func New(dim int) (*Bank, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}
	return &Bank{dim: dim}, nil
}

// Dim returns the configured vector dimension.
func (b *Bank) Dim() int { return b.dim }

// Len returns the number of samples.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.points)
}

// Version returns the current pool version. It increments once per Append
// call that adds at least one point.
func (b *Bank) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Append adds measured samples to the pool. Vectors are cloned; the caller
// keeps ownership of its slices. All-or-nothing on dimension errors.
func (b *Bank) Append(points ...SamplePoint) error {
	for _, p := range points {
		if len(p.Input) != b.dim {
			return &ErrDimensionMismatch{Expected: b.dim, Actual: len(p.Input)}
		}
		if len(p.Image) != b.dim {
			return &ErrDimensionMismatch{Expected: b.dim, Actual: len(p.Image)}
		}
	}
	if len(points) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range points {
		b.points = append(b.points, SamplePoint{
			Input: slices.Clone(p.Input),
			Image: slices.Clone(p.Image),
		})
	}
	b.version++
	return nil
}

// Snapshot returns an immutable view of the pool at its current version.
// The view shares no mutable state with the bank.
func (b *Bank) Snapshot() *View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v := &View{
		dim:     b.dim,
		version: b.version,
		points:  b.points[:len(b.points):len(b.points)],
	}
	return v
}

// View is a read-only snapshot of the bank at a fixed version.
//
// The backing array is shared with the bank but never mutated: the bank only
// ever appends past the view's length.
type View struct {
	dim     int
	version uint64
	points  []SamplePoint
}

// Dim returns the vector dimension.
func (v *View) Dim() int { return v.dim }

// Len returns the number of samples in the view.
func (v *View) Len() int { return len(v.points) }

// Version returns the bank version the view was taken at.
func (v *View) Version() uint64 { return v.version }

// At returns the i-th sample. The returned vectors must not be modified.
func (v *View) At(i int) SamplePoint { return v.points[i] }

// Inputs returns the input-space coordinates of all samples. The outer slice
// is fresh, inner vectors are shared and must not be modified.
func (v *View) Inputs() [][]float64 {
	out := make([][]float64, len(v.points))
	for i := range v.points {
		out[i] = v.points[i].Input
	}
	return out
}

// Images returns the image-space coordinates of all samples. The outer slice
// is fresh, inner vectors are shared and must not be modified.
func (v *View) Images() [][]float64 {
	out := make([][]float64, len(v.points))
	for i := range v.points {
		out[i] = v.points[i].Image
	}
	return out
}

// Gather collects the samples at the given pool indices.
func (v *View) Gather(indices []int) (inputs, images [][]float64) {
	inputs = make([][]float64, len(indices))
	images = make([][]float64, len(indices))
	for i, idx := range indices {
		inputs[i] = v.points[idx].Input
		images[i] = v.points[idx].Image
	}
	return inputs, images
}
