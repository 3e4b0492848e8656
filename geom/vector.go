package geom

import (
	"math"
	"slices"
)

// Sub returns a - b as a new vector.
// Assumes vectors are the same length (caller's responsibility).
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// Add returns a + b as a new vector.
// Assumes vectors are the same length (caller's responsibility).
func Add(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// Scale returns s*v as a new vector.
func Scale(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = s * v[i]
	}
	return out
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// NormalizeCopy returns a unit-length copy of v.
// Returns false if v has zero L2 norm.
func NormalizeCopy(v []float64) ([]float64, bool) {
	n := Norm(v)
	if n == 0 {
		return nil, false
	}
	dst := slices.Clone(v)
	inv := 1 / n
	for i := range dst {
		dst[i] *= inv
	}
	return dst, true
}

// Clip clamps every component of v to [lo, hi] in place and returns the
// indices of the components that were moved. A nil return means v was
// already inside the domain.
func Clip(v []float64, lo, hi float64) []int {
	var moved []int
	for i := range v {
		switch {
		case v[i] < lo:
			v[i] = lo
			moved = append(moved, i)
		case v[i] > hi:
			v[i] = hi
			moved = append(moved, i)
		}
	}
	return moved
}
