package benchmark_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/hupe1980/shadematch"
	"github.com/hupe1980/shadematch/colordiff"
	"github.com/hupe1980/shadematch/search"
	"github.com/hupe1980/shadematch/tessellation"
	"github.com/hupe1980/shadematch/testutil"
)

func randomInputs(n int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	inputs := make([][]float64, 0, n+4)
	// Corners keep every random target inside the hull.
	inputs = append(inputs, testutil.CornerInputs()...)
	for len(inputs) < n+4 {
		inputs = append(inputs, []float64{rng.Float64(), rng.Float64(), rng.Float64()})
	}
	return inputs
}

func BenchmarkTessellationBuild(b *testing.B) {
	for _, n := range []int{50, 200, 500} {
		b.Run(fmt.Sprintf("n%d", n), func(b *testing.B) {
			b.ReportAllocs()
			inputs := randomInputs(n, 1)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := tessellation.Build(inputs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkTessellationLocate(b *testing.B) {
	b.ReportAllocs()

	device := &testutil.GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 1.4}
	inputs := randomInputs(200, 2)
	images := make([][]float64, len(inputs))
	for i, in := range inputs {
		images[i] = device.Image(in)
	}

	tess, err := tessellation.Build(inputs)
	if err != nil {
		b.Fatal(err)
	}
	target := device.Image([]float64{0.4, 0.5, 0.6})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tess.Locate(images, target)
	}
}

func BenchmarkEnclosingSearch(b *testing.B) {
	b.ReportAllocs()

	device := &testutil.GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 1.4}
	inputs := randomInputs(200, 3)
	images := make([][]float64, len(inputs))
	for i, in := range inputs {
		images[i] = device.Image(in)
	}
	target := device.Image([]float64{0.4, 0.5, 0.6})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		search.Enclosing(target, images, colordiff.CIE76, 20)
	}
}

func BenchmarkSolve(b *testing.B) {
	b.ReportAllocs()

	device := &testutil.GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 1.3}
	rng := rand.New(rand.NewSource(4))
	targets := make([][]float64, 16)
	for i := range targets {
		targets[i] = device.Image([]float64{
			0.2 + 0.6*rng.Float64(),
			0.2 + 0.6*rng.Float64(),
			0.2 + 0.6*rng.Float64(),
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		bank, err := testutil.SeedBank(device, testutil.GridInputs(3))
		if err != nil {
			b.Fatal(err)
		}
		m, err := shadematch.New(bank, colordiff.CIE76)
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		if _, err := m.Solve(context.Background(), targets, testutil.NewMeasurer(device)); err != nil {
			b.Fatal(err)
		}
	}
}
