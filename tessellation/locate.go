package tessellation

import (
	"github.com/hupe1980/shadematch/geom"
)

// Location is the result of a successful point location.
type Location struct {
	// SimplexID indexes into Simplices().
	SimplexID int
	// Indices are the pool indices of the enclosing simplex's vertices.
	Indices []int
	// Weights are the target's barycentric coordinates in that simplex.
	Weights []float64
}

// Locate finds the simplex whose image contains target when the
// tessellation's vertex indices are resolved against coords, and returns the
// target's barycentric coordinates there.
//
// coords is the locating space: pass image-space coordinates to locate a
// perceptual target over an input-space topology. A false return means the
// target lies outside the hull of coords (the out-of-gamut signal); it is
// not an error.
//
// Simplices that are degenerate in the locating space are skipped.
func (t *Tessellation) Locate(coords [][]float64, target []float64) (Location, bool) {
	verts := make([][]float64, t.dim+1)
	for id, s := range t.simplices {
		for i, vi := range s {
			verts[i] = coords[vi]
		}
		w, err := geom.Barycentric(verts, target)
		if err != nil {
			continue
		}
		if geom.Contains(w, -1) {
			return Location{SimplexID: id, Indices: s, Weights: w}, true
		}
	}
	return Location{}, false
}
