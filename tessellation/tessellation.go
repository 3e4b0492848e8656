// Package tessellation builds a Delaunay simplicial decomposition of the
// sample pool's input-space coordinates and locates targets inside it.
//
// The tessellation topology is built in input space, but location runs in
// image space: each simplex's vertex indices are resolved against the
// co-indexed image coordinates. That is only geometrically valid while the
// device's input→image mapping does not invert orientation locally; when it
// does, location can miss and the caller falls back to the combinatorial
// enclosing-simplex search.
package tessellation

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/shadematch/geom"
)

// ErrDegenerateInput is returned by Build when the sample points span no
// volume (all collinear/coplanar), so no simplex can be formed.
var ErrDegenerateInput = errors.New("degenerate input: points span no volume")

// Tessellation is a set of simplices covering the convex hull of the points
// it was built from. Derived, immutable; rebuild when the pool grows.
type Tessellation struct {
	dim       int
	version   uint64
	simplices [][]int
}

// Dim returns the spatial dimension.
func (t *Tessellation) Dim() int { return t.dim }

// Len returns the number of simplices.
func (t *Tessellation) Len() int { return len(t.simplices) }

// Version returns the pool version recorded at build time (0 if none was
// supplied). Callers use it to detect stale tessellations.
func (t *Tessellation) Version() uint64 { return t.version }

// Simplices returns the vertex-index tuples. The result must not be
// modified.
func (t *Tessellation) Simplices() [][]int { return t.simplices }

// Build computes the Delaunay tessellation of the given points using
// incremental Bowyer-Watson insertion. points must hold at least dim+1
// affinely independent vectors of equal dimension.
func Build(points [][]float64) (*Tessellation, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to tessellate")
	}
	dim := len(points[0])
	if dim < 1 {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("point %d has dimension %d, want %d", i, len(p), dim)
		}
	}
	if len(points) < dim+1 {
		return nil, fmt.Errorf("%w: need at least %d points, got %d", ErrDegenerateInput, dim+1, len(points))
	}

	n := len(points)
	all := make([][]float64, n, n+dim+1)
	copy(all, points)
	all = append(all, superSimplex(points)...)

	// Seed with the super-simplex, then insert the real points one by one.
	seed := make([]int, dim+1)
	for i := range seed {
		seed[i] = n + i
	}
	simplices := [][]int{seed}

	for i := 0; i < n; i++ {
		simplices = insert(all, simplices, i)
	}

	// Strip everything that still touches a super-simplex vertex.
	kept := simplices[:0]
	for _, s := range simplices {
		touchesSuper := false
		for _, v := range s {
			if v >= n {
				touchesSuper = true
				break
			}
		}
		if !touchesSuper {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, ErrDegenerateInput
	}

	return &Tessellation{dim: dim, simplices: kept}, nil
}

// BuildVersioned is Build plus a pool version stamp for cache invalidation.
func BuildVersioned(points [][]float64, version uint64) (*Tessellation, error) {
	t, err := Build(points)
	if err != nil {
		return nil, err
	}
	t.version = version
	return t, nil
}

// insert performs one Bowyer-Watson insertion step: carve out the cavity of
// simplices whose circumsphere contains point idx and re-fill it with
// simplices fanning out from idx.
func insert(all [][]float64, simplices [][]int, idx int) [][]int {
	p := all[idx]

	var bad [][]int
	var good [][]int
	for _, s := range simplices {
		if circumsphereContains(all, s, p) {
			bad = append(bad, s)
		} else {
			good = append(good, s)
		}
	}
	if len(bad) == 0 {
		// Point outside every circumsphere: numerically possible on the
		// super-simplex boundary, nothing to do.
		return simplices
	}

	// Faces of the cavity are the faces owned by exactly one bad simplex.
	faceCount := make(map[string][]int)
	for _, s := range bad {
		for drop := range s {
			face := make([]int, 0, len(s)-1)
			for j, v := range s {
				if j != drop {
					face = append(face, v)
				}
			}
			slices.Sort(face)
			key := faceKey(face)
			if _, seen := faceCount[key]; seen {
				faceCount[key] = nil // interior face, shared by two bad simplices
			} else {
				faceCount[key] = face
			}
		}
	}

	for _, face := range faceCount {
		if face == nil {
			continue
		}
		s := append(slices.Clone(face), idx)
		if degenerate(all, s) {
			continue
		}
		good = append(good, s)
	}
	return good
}

func faceKey(face []int) string {
	var sb strings.Builder
	for _, v := range face {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(':')
	}
	return sb.String()
}

// superSimplex returns dim+1 vertices of a corner simplex that strictly
// contains the bounding box of the points.
func superSimplex(points [][]float64) [][]float64 {
	dim := len(points[0])

	lo := slices.Clone(points[0])
	hi := slices.Clone(points[0])
	for _, p := range points {
		for j, x := range p {
			lo[j] = math.Min(lo[j], x)
			hi[j] = math.Max(hi[j], x)
		}
	}
	span := 1.0
	for j := range lo {
		span = math.Max(span, hi[j]-lo[j])
	}
	margin := span + 1

	base := make([]float64, dim)
	for j := range base {
		base[j] = lo[j] - margin
	}
	scale := float64(dim) * (span + 2*margin) * 2

	verts := make([][]float64, dim+1)
	verts[0] = base
	for i := 1; i <= dim; i++ {
		v := slices.Clone(base)
		v[i-1] += scale
		verts[i] = v
	}
	return verts
}

// circumsphereContains reports whether p lies inside the circumsphere of
// simplex s. Degenerate simplices count as containing, so they are carved
// out of the tessellation as soon as a point lands near them.
func circumsphereContains(all [][]float64, s []int, p []float64) bool {
	center, r2, err := circumsphere(all, s)
	if err != nil {
		return true
	}
	d2 := geom.SquaredL2(p, center)
	eps := 1e-9 * (1 + r2)
	return d2 <= r2+eps
}

// circumsphere solves the linear system equating squared distances from the
// center to every vertex.
func circumsphere(all [][]float64, s []int) (center []float64, r2 float64, err error) {
	dim := len(all[s[0]])
	v0 := all[s[0]]

	m := make([][]float64, dim)
	for k := 1; k <= dim; k++ {
		vk := all[s[k]]
		row := make([]float64, dim+1)
		var rhs float64
		for j := 0; j < dim; j++ {
			row[j] = vk[j] - v0[j]
			rhs += vk[j]*vk[j] - v0[j]*v0[j]
		}
		row[dim] = rhs / 2
		m[k-1] = row
	}

	center, err = solve(m)
	if err != nil {
		return nil, 0, err
	}
	return center, geom.SquaredL2(v0, center), nil
}

// degenerate reports whether the simplex vertices are affinely dependent.
func degenerate(all [][]float64, s []int) bool {
	_, _, err := circumsphere(all, s)
	return err != nil
}

// solve runs Gaussian elimination with partial pivoting on an augmented
// n x (n+1) matrix.
func solve(m [][]float64) ([]float64, error) {
	n := len(m)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, geom.ErrDegenerateSimplex
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := m[r][col] / m[col][col]
			if f == 0 {
				continue
			}
			for c := col; c <= n; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = m[i][n] / m[i][i]
	}
	return x, nil
}
