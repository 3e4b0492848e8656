package geom

import (
	"errors"
	"fmt"
	"math"
)

// DefaultEpsilon is the containment tolerance applied to barycentric
// coordinates. Points on a shared face resolve to a coordinate of ~0 and
// must still count as inside.
const DefaultEpsilon = 1e-9

// pivotEpsilon is the degeneracy threshold of the barycentric solve. A pivot
// below it means the simplex has (numerically) zero volume.
const pivotEpsilon = 1e-12

// ErrDegenerateSimplex is returned when a simplex has numerically zero
// volume, so barycentric coordinates are not uniquely defined.
var ErrDegenerateSimplex = errors.New("degenerate simplex: vertices are affinely dependent")

// Barycentric solves for the weights w such that
//
//	p = Σ w[i]*verts[i]  and  Σ w[i] = 1.
//
// verts must hold d+1 vertices of dimension d. The weights are affine, not
// convex: components outside [0,1] indicate a point outside the simplex,
// which is valid output (used for extrapolation).
func Barycentric(verts [][]float64, p []float64) ([]float64, error) {
	d := len(p)
	if len(verts) != d+1 {
		return nil, fmt.Errorf("barycentric: need %d vertices for dimension %d, got %d", d+1, d, len(verts))
	}
	for i, v := range verts {
		if len(v) != d {
			return nil, fmt.Errorf("barycentric: vertex %d has dimension %d, want %d", i, len(v), d)
		}
	}

	// Augmented (d+1)x(d+2) system: one row per coordinate plus the
	// partition-of-unity row.
	n := d + 1
	m := make([][]float64, n)
	for j := 0; j < d; j++ {
		row := make([]float64, n+1)
		for i := 0; i < n; i++ {
			row[i] = verts[i][j]
		}
		row[n] = p[j]
		m[j] = row
	}
	unity := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		unity[i] = 1
	}
	m[d] = unity

	// Gaussian elimination with partial pivoting.
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < pivotEpsilon {
			return nil, ErrDegenerateSimplex
		}
		m[col], m[pivot] = m[pivot], m[col]

		inv := 1 / m[col][col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := m[r][col] * inv
			if f == 0 {
				continue
			}
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = m[i][n] / m[i][i]
	}
	return w, nil
}

// Contains reports whether barycentric weights describe a point inside the
// closed simplex, within tolerance eps. Pass a negative eps to use
// DefaultEpsilon.
func Contains(w []float64, eps float64) bool {
	if eps < 0 {
		eps = DefaultEpsilon
	}
	for _, wi := range w {
		if wi < -eps || wi > 1+eps {
			return false
		}
	}
	return true
}

// Interpolate applies barycentric weights to a matching set of vertices and
// returns the weighted combination. This is the input-space leg of the
// interpolation: weights solved against image-space vertices are applied to
// the co-indexed input-space vertices.
func Interpolate(verts [][]float64, w []float64) []float64 {
	if len(verts) == 0 {
		return nil
	}
	out := make([]float64, len(verts[0]))
	for i, v := range verts {
		for j := range out {
			out[j] += w[i] * v[j]
		}
	}
	return out
}
