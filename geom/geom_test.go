package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitTetra = [][]float64{
	{0, 0, 0},
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

func TestBarycentric(t *testing.T) {
	tests := []struct {
		name     string
		p        []float64
		expected []float64
		inside   bool
	}{
		{"Interior", []float64{0.2, 0.3, 0.1}, []float64{0.4, 0.2, 0.3, 0.1}, true},
		{"Centroid", []float64{0.25, 0.25, 0.25}, []float64{0.25, 0.25, 0.25, 0.25}, true},
		{"Outside", []float64{2, 2, 2}, []float64{-5, 2, 2, 2}, false},
		{"OnFace", []float64{0.5, 0.5, 0}, []float64{0, 0.5, 0.5, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Barycentric(unitTetra, tt.p)
			require.NoError(t, err)

			var sum float64
			for i, wi := range w {
				assert.InDelta(t, tt.expected[i], wi, 1e-9)
				sum += wi
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
			assert.Equal(t, tt.inside, Contains(w, -1))
		})
	}
}

func TestBarycentricVertexRoundTrip(t *testing.T) {
	// A vertex must come back as a permutation of (1,0,0,0) and reproduce
	// itself exactly through Interpolate.
	for i, v := range unitTetra {
		w, err := Barycentric(unitTetra, v)
		require.NoError(t, err)

		for j, wj := range w {
			if j == i {
				assert.InDelta(t, 1.0, wj, 1e-9)
			} else {
				assert.InDelta(t, 0.0, wj, 1e-9)
			}
		}

		back := Interpolate(unitTetra, w)
		for j := range v {
			assert.InDelta(t, v[j], back[j], 1e-9)
		}
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	flat := [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0}, // coplanar with the other three
	}
	_, err := Barycentric(flat, []float64{0.5, 0.5, 0.5})
	assert.ErrorIs(t, err, ErrDegenerateSimplex)
}

func TestBarycentricDimensionChecks(t *testing.T) {
	_, err := Barycentric(unitTetra[:3], []float64{0, 0, 0})
	assert.Error(t, err)

	bad := [][]float64{{0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	_, err = Barycentric(bad, []float64{0, 0, 0})
	assert.Error(t, err)
}

func TestContainsFaceTolerance(t *testing.T) {
	// Slightly negative weight within eps still counts as inside.
	w := []float64{-1e-12, 0.5, 0.5, 1e-12}
	assert.True(t, Contains(w, -1))
	assert.False(t, Contains(w, 0))
}

func TestVectorOps(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}

	assert.Equal(t, []float64{-3, -3, -3}, Sub(a, b))
	assert.Equal(t, []float64{5, 7, 9}, Add(a, b))
	assert.Equal(t, []float64{2, 4, 6}, Scale(a, 2))
	assert.InDelta(t, 32.0, Dot(a, b), 1e-12)
	assert.InDelta(t, 27.0, SquaredL2(a, b), 1e-12)
	assert.InDelta(t, math.Sqrt(14), Norm(a), 1e-12)
}

func TestNormalizeCopy(t *testing.T) {
	v, ok := NormalizeCopy([]float64{3, 4})
	require.True(t, ok)
	assert.InDelta(t, 0.6, v[0], 1e-12)
	assert.InDelta(t, 0.8, v[1], 1e-12)

	_, ok = NormalizeCopy([]float64{0, 0, 0})
	assert.False(t, ok)
}

func TestClip(t *testing.T) {
	v := []float64{-0.2, 0.5, 1.4}
	moved := Clip(v, 0, 1)
	assert.Equal(t, []float64{0, 0.5, 1}, v)
	assert.Equal(t, []int{0, 2}, moved)

	v = []float64{0.1, 0.9}
	assert.Nil(t, Clip(v, 0, 1))
}
