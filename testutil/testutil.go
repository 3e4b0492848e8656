package testutil

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/shadematch/bank"
)

// Device is a synthetic input→image mapping standing in for the real
// printer+instrument loop.
type Device interface {
	Image(input []float64) []float64
}

// DeviceFunc adapts a plain function to the Device interface.
type DeviceFunc func(input []float64) []float64

// Image implements Device.
func (f DeviceFunc) Image(input []float64) []float64 { return f(input) }

// LinearDevice maps input to image by per-channel scaling: image[i] =
// Scale[i] * input[i]. Exactly invertible, and linear, so barycentric
// interpolation of its samples is exact.
type LinearDevice struct {
	Scale []float64
}

// Image implements Device.
func (d *LinearDevice) Image(input []float64) []float64 {
	out := make([]float64, len(input))
	for i := range input {
		out[i] = d.Scale[i] * input[i]
	}
	return out
}

// GammaDevice maps input to image by image[i] = Scale[i] * input[i]^Gamma.
// Still exactly invertible but nonlinear, so interpolated estimates miss and
// the refinement loop has real work to do.
type GammaDevice struct {
	Scale []float64
	Gamma float64
}

// Image implements Device.
func (d *GammaDevice) Image(input []float64) []float64 {
	out := make([]float64, len(input))
	for i := range input {
		out[i] = d.Scale[i] * math.Pow(input[i], d.Gamma)
	}
	return out
}

// Measurer wraps a Device as a shadematch measurement collaborator and
// counts calls, for asserting batching behavior. Safe for concurrent use.
type Measurer struct {
	device Device
	noise  float64
	rng    *rand.Rand

	mu       sync.Mutex
	calls    int
	measured int
}

// NewMeasurer creates a noise-free Measurer over the device.
func NewMeasurer(device Device) *Measurer {
	return &Measurer{device: device}
}

// NewNoisyMeasurer adds uniform noise in [-amplitude, amplitude] per image
// component, with a fixed seed for reproducibility.
func NewNoisyMeasurer(device Device, amplitude float64, seed int64) *Measurer {
	return &Measurer{device: device, noise: amplitude, rng: rand.New(rand.NewSource(seed))}
}

// Measure implements shadematch.Measurer.
func (m *Measurer) Measure(_ context.Context, inputs [][]float64) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.measured += len(inputs)

	images := make([][]float64, len(inputs))
	for i, in := range inputs {
		img := m.device.Image(in)
		if m.noise > 0 {
			for j := range img {
				img[j] += m.noise * (2*m.rng.Float64() - 1)
			}
		}
		images[i] = img
	}
	return images, nil
}

// Calls returns the number of Measure invocations so far.
func (m *Measurer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Measured returns the total number of patches measured so far.
func (m *Measurer) Measured() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.measured
}

// SeedBank pre-measures the given inputs on the device and returns a bank
// holding the resulting sample pool.
func SeedBank(device Device, inputs [][]float64) (*bank.Bank, error) {
	if len(inputs) == 0 {
		return bank.New(0)
	}
	b, err := bank.New(len(inputs[0]))
	if err != nil {
		return nil, err
	}
	points := make([]bank.SamplePoint, len(inputs))
	for i, in := range inputs {
		points[i] = bank.SamplePoint{Input: in, Image: device.Image(in)}
	}
	if err := b.Append(points...); err != nil {
		return nil, err
	}
	return b, nil
}

// CornerInputs returns the canonical 4-point seed: origin plus the three
// unit axes of the input cube.
func CornerInputs() [][]float64 {
	return [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// GridInputs returns an n×n×n lattice over [0,1]^3.
func GridInputs(n int) [][]float64 {
	if n < 2 {
		n = 2
	}
	step := 1.0 / float64(n-1)
	out := make([][]float64, 0, n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				out = append(out, []float64{
					float64(i) * step,
					float64(j) * step,
					float64(k) * step,
				})
			}
		}
	}
	return out
}
