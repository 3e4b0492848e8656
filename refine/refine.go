// Package refine constructs new candidate sample points around a missed
// target. Given the simplex used for the last interpolation and the error
// the measured estimate actually showed, it places three prototype vertices
// behind the target (seen from the estimate) so that, once measured, they
// form a smaller enclosing simplex together with the estimate.
package refine

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/shadematch/geom"
)

// DefaultScaling is the default geometric scaling constant. Larger values
// bracket the target more reliably but converge slower; smaller values are
// faster but fragile under measurement noise.
const DefaultScaling = 2.0

// ErrZeroError is returned when the estimate already coincides with the
// target, leaving no error direction to refine along.
var ErrZeroError = errors.New("zero error vector: estimate already matches target")

// Candidate is one proposed sample point, expressed in input space and
// ready to be measured.
type Candidate struct {
	// Input is the device code to measure, clipped to the valid domain.
	Input []float64
	// Image is the image-space prototype the candidate aims at.
	Image []float64
	// Weights are the prototype's barycentric coordinates in the old
	// simplex. They are affine, not convex: refinement extrapolates.
	Weights []float64
	// Clipped lists input components that were moved back into the domain.
	// Clipping is the main source of degraded convergence, so callers log
	// it rather than ignore it.
	Clipped []int
}

// Refiner holds the tuning of the refinement rule.
type Refiner struct {
	// Scaling trades convergence speed against bracketing robustness.
	Scaling float64
	// DomainLo and DomainHi bound each input component.
	DomainLo, DomainHi float64
}

// New creates a Refiner with the given scaling constant; values <= 0 fall
// back to DefaultScaling. The input domain defaults to [0,1] per channel.
func New(scaling float64) *Refiner {
	if scaling <= 0 {
		scaling = DefaultScaling
	}
	return &Refiner{Scaling: scaling, DomainLo: 0, DomainHi: 1}
}

// Candidates proposes three new input-space sample points.
//
// simplexInputs/simplexImages are the co-indexed vertices of the simplex the
// last estimate was interpolated in. estimateImage is the image value the
// estimate actually measured to; targetImage is where it should have landed.
//
// The prototypes form an equilateral triangle in the image-space plane
// perpendicular to the error vector, offset behind the target away from the
// estimate, then are carried to input space through the old simplex's
// barycentric relationship. Only 3-dimensional spaces are supported.
func (r *Refiner) Candidates(simplexInputs, simplexImages [][]float64, targetImage, estimateImage []float64) ([]Candidate, error) {
	d := len(targetImage)
	if d != 3 {
		return nil, fmt.Errorf("refinement supports dimension 3, got %d", d)
	}
	if len(simplexInputs) != d+1 || len(simplexImages) != d+1 {
		return nil, fmt.Errorf("refinement needs a %d-vertex simplex, got %d/%d vertices",
			d+1, len(simplexInputs), len(simplexImages))
	}

	e := geom.Sub(estimateImage, targetImage)
	norm := geom.Norm(e)
	if norm == 0 {
		return nil, ErrZeroError
	}

	w, u1, u2 := errorBasis(e, norm)
	step := r.Scaling * norm

	candidates := make([]Candidate, 0, d)
	for j := 0; j < d; j++ {
		theta := 2 * math.Pi * float64(j) / float64(d)
		cos, sin := math.Cos(theta), math.Sin(theta)

		proto := make([]float64, d)
		for i := 0; i < d; i++ {
			proto[i] = targetImage[i] + step*(cos*u1[i]+sin*u2[i]-w[i])
		}

		weights, err := geom.Barycentric(simplexImages, proto)
		if err != nil {
			return nil, err
		}

		input := geom.Interpolate(simplexInputs, weights)
		clipped := geom.Clip(input, r.DomainLo, r.DomainHi)

		candidates = append(candidates, Candidate{
			Input:   input,
			Image:   proto,
			Weights: weights,
			Clipped: clipped,
		})
	}
	return candidates, nil
}

// errorBasis builds a right-handed orthonormal basis (u1, u2, w) with w
// aligned to the error vector.
//
// The perpendicular axes are seeded from the coordinate axis least aligned
// with the error, then orthogonalized. This avoids the division-by-component
// blowup of the algebraic construction when the error has zero components:
// the seed axis is by construction never parallel to the error.
func errorBasis(e []float64, norm float64) (w, u1, u2 []float64) {
	w = geom.Scale(e, 1/norm)

	seed := 0
	for i := 1; i < len(w); i++ {
		if math.Abs(w[i]) < math.Abs(w[seed]) {
			seed = i
		}
	}

	u1 = make([]float64, len(w))
	u1[seed] = 1
	dot := geom.Dot(u1, w)
	for i := range u1 {
		u1[i] -= dot * w[i]
	}
	u1, _ = geom.NormalizeCopy(u1)

	// u2 = w x u1 completes the right-handed triple.
	u2 = []float64{
		w[1]*u1[2] - w[2]*u1[1],
		w[2]*u1[0] - w[0]*u1[2],
		w[0]*u1[1] - w[1]*u1[0],
	}
	return w, u1, u2
}
