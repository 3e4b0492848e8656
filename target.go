package shadematch

import "fmt"

// Status classifies a target over the course of a run.
type Status int

const (
	// StatusNotFoundYet means no measured estimate has met the threshold.
	// Terminal only when the iteration cap freezes the run.
	StatusNotFoundYet Status = iota
	// StatusFound means an acceptable input code was measured. Terminal.
	StatusFound
	// StatusOutOfGamut means the target lies outside the hull of the
	// current pool's image points. It may still be promoted to Found by a
	// later, broader search as the pool grows toward the gamut boundary.
	StatusOutOfGamut
)

func (s Status) String() string {
	switch s {
	case StatusNotFoundYet:
		return "NotFoundYet"
	case StatusFound:
		return "Found"
	case StatusOutOfGamut:
		return "OutOfGamut"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IterationRecord is one entry of a target's append-only audit trail: the
// simplex and weights used for a round's interpolation and what the
// measured estimate achieved.
type IterationRecord struct {
	Round         int
	VertexIndices []int
	SimplexInputs [][]float64
	SimplexImages [][]float64
	Weights       []float64
	Estimate      []float64
	Measured      []float64
	Error         float64
}

// Result is the terminal report for one target. Every target gets one:
// Solve never fails because of a single unmatchable color.
type Result struct {
	// Target is the requested image-space color.
	Target []float64
	// Status is the final classification. StatusNotFoundYet here means the
	// iteration cap was reached; BestInput still holds the best effort.
	Status Status
	// BestInput is the input code whose measured image came closest.
	BestInput []float64
	// BestImage is the image value BestInput actually measured to.
	BestImage []float64
	// BestError is the color difference between BestImage and Target.
	BestError float64
	// Rounds is the number of refinement rounds spent on this target.
	Rounds int
	// History is the per-round audit trail.
	History []IterationRecord
}

// best tracks the best measured estimate for a target. The zero value means
// "no estimate yet"; valid distinguishes it from a genuine zero error.
type best struct {
	valid bool
	input []float64
	image []float64
	err   float64
}

func (b *best) update(input, image []float64, err float64) bool {
	if b.valid && err >= b.err {
		return false
	}
	b.valid = true
	b.input = input
	b.image = image
	b.err = err
	return true
}

// target is the controller's private working state for one requested color.
// Never shared across targets; the pool snapshot is the only shared input.
type target struct {
	image  []float64
	status Status
	best   best

	// Working simplex from the last successful location, used as the
	// geometric frame for refinement.
	vertexIndices []int
	simplexInputs [][]float64
	simplexImages [][]float64

	rounds  int
	history []IterationRecord
}
