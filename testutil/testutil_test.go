package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearDevice(t *testing.T) {
	d := &LinearDevice{Scale: []float64{10, 10, 10}}
	assert.Equal(t, []float64{2, 3, 1}, d.Image([]float64{0.2, 0.3, 0.1}))
}

func TestGammaDevice(t *testing.T) {
	d := &GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 2}
	img := d.Image([]float64{0.5, 1, 0})
	assert.InDelta(t, 25, img[0], 1e-12)
	assert.InDelta(t, 100, img[1], 1e-12)
	assert.InDelta(t, 0, img[2], 1e-12)
}

func TestMeasurerCounts(t *testing.T) {
	m := NewMeasurer(&LinearDevice{Scale: []float64{1, 1, 1}})

	images, err := m.Measure(context.Background(), [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}})
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, 2, m.Measured())
}

func TestNoisyMeasurerReproducible(t *testing.T) {
	device := &LinearDevice{Scale: []float64{10, 10, 10}}
	a := NewNoisyMeasurer(device, 0.5, 42)
	b := NewNoisyMeasurer(device, 0.5, 42)

	in := [][]float64{{0.5, 0.5, 0.5}}
	ia, err := a.Measure(context.Background(), in)
	require.NoError(t, err)
	ib, err := b.Measure(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, ia, ib)

	// Under noise, the reading deviates from the clean image.
	assert.NotEqual(t, device.Image(in[0]), ia[0])
}

func TestSeedBank(t *testing.T) {
	b, err := SeedBank(&LinearDevice{Scale: []float64{10, 10, 10}}, CornerInputs())
	require.NoError(t, err)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []float64{10, 0, 0}, b.Snapshot().At(1).Image)
}

func TestGridInputs(t *testing.T) {
	grid := GridInputs(3)
	assert.Len(t, grid, 27)
	assert.Equal(t, []float64{0, 0, 0}, grid[0])
	assert.Equal(t, []float64{1, 1, 1}, grid[26])

	for _, p := range grid {
		for _, x := range p {
			assert.GreaterOrEqual(t, x, 0.0)
			assert.LessOrEqual(t, x, 1.0)
		}
	}
}
