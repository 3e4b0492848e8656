// Package search implements the combinatorial enclosing-simplex fallback:
// given only the raw pool (no tessellation), find d+1 measured points whose
// image-space simplex contains a target color.
//
// Candidates are ranked by perceptual distance to the target and searched in
// expanding neighborhoods, so the first hit is also the lowest-combined-rank
// enclosing simplex. No attempt is made to find the best-conditioned one.
package search

import (
	"sort"

	"github.com/hupe1980/shadematch/colordiff"
	"github.com/hupe1980/shadematch/geom"
)

// CoincidenceTolerance is the color difference below which the nearest pool
// point counts as the target itself, short-circuiting to a single-point
// degenerate answer.
const CoincidenceTolerance = 1e-9

// Match is a successful enclosing-simplex search result.
type Match struct {
	// Indices are pool indices of the simplex vertices, nearest-ranked
	// first. A single-index match is the degenerate exact-hit case.
	Indices []int
	// Weights are the target's barycentric coordinates in the simplex,
	// co-indexed with Indices.
	Weights []float64
}

// Degenerate reports whether the match is the single-point exact-hit case.
func (m Match) Degenerate() bool { return len(m.Indices) == 1 }

// Enclosing searches for d+1 pool points whose image-space simplex encloses
// target.
//
// Ranking all points by diff to the target, it tries every (d+1)-combination
// of the k nearest that includes rank k, for k = d+1 up to maxNeighbors.
// Combinations tested at smaller k are never retested. A false return means
// no enclosing simplex exists within the neighbor budget; callers treat that
// as the out-of-gamut signal.
func Enclosing(target []float64, images [][]float64, diff colordiff.Func, maxNeighbors int) (Match, bool) {
	n := len(images)
	if n == 0 {
		return Match{}, false
	}
	d := len(target)

	ranked := rank(target, images, diff)

	if diff(target, images[ranked[0].index]) <= CoincidenceTolerance {
		return Match{Indices: []int{ranked[0].index}, Weights: []float64{1}}, true
	}

	if maxNeighbors > n {
		maxNeighbors = n
	}
	if maxNeighbors < d+1 {
		return Match{}, false
	}

	verts := make([][]float64, d+1)
	combo := make([]int, d)
	for k := d + 1; k <= maxNeighbors; k++ {
		newest := ranked[k-1].index

		// All d-combinations of the first k-1 ranks, lexicographic.
		for i := range combo {
			combo[i] = i
		}
		for {
			indices := make([]int, 0, d+1)
			for _, c := range combo {
				indices = append(indices, ranked[c].index)
			}
			indices = append(indices, newest)

			for i, idx := range indices {
				verts[i] = images[idx]
			}
			w, err := geom.Barycentric(verts, target)
			if err == nil && geom.Contains(w, -1) {
				return Match{Indices: indices, Weights: w}, true
			}

			if !nextCombination(combo, k-1) {
				break
			}
		}
	}
	return Match{}, false
}

type rankedPoint struct {
	index int
	dist  float64
}

func rank(target []float64, images [][]float64, diff colordiff.Func) []rankedPoint {
	ranked := make([]rankedPoint, len(images))
	for i, img := range images {
		ranked[i] = rankedPoint{index: i, dist: diff(target, img)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].dist < ranked[b].dist
	})
	return ranked
}

// nextCombination advances combo to the next d-combination of [0, n) in
// lexicographic order. Returns false when exhausted.
func nextCombination(combo []int, n int) bool {
	d := len(combo)
	for i := d - 1; i >= 0; i-- {
		if combo[i] < n-(d-i) {
			combo[i]++
			for j := i + 1; j < d; j++ {
				combo[j] = combo[j-1] + 1
			}
			return true
		}
	}
	return false
}
