package shadematch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/shadematch/bank"
	"github.com/hupe1980/shadematch/colordiff"
	"github.com/hupe1980/shadematch/testutil"
)

func cornerBank(t *testing.T) (*bank.Bank, *testutil.Measurer) {
	t.Helper()
	device := &testutil.LinearDevice{Scale: []float64{10, 10, 10}}
	b, err := testutil.SeedBank(device, testutil.CornerInputs())
	require.NoError(t, err)
	return b, testutil.NewMeasurer(device)
}

func TestNewValidation(t *testing.T) {
	b, _ := cornerBank(t)

	_, err := New(nil, colordiff.CIE76)
	assert.Error(t, err)

	_, err = New(b, nil)
	assert.Error(t, err)

	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)
	assert.Same(t, b, m.Bank())
}

func TestSolveInputValidation(t *testing.T) {
	b, measurer := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.Solve(ctx, [][]float64{{1, 2, 3}}, nil)
	assert.ErrorIs(t, err, ErrNilMeasurer)

	_, err = m.Solve(ctx, nil, measurer)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = m.Solve(ctx, [][]float64{{1, 2}}, measurer)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)

	empty, err := bank.New(3)
	require.NoError(t, err)
	m2, err := New(empty, colordiff.CIE76)
	require.NoError(t, err)
	_, err = m2.Solve(ctx, [][]float64{{1, 2, 3}}, measurer)
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestSolveDegenerateInitialPool(t *testing.T) {
	device := &testutil.LinearDevice{Scale: []float64{10, 10, 10}}
	b, err := testutil.SeedBank(device, [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, // all in one plane
	})
	require.NoError(t, err)

	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)
	_, err = m.Solve(context.Background(), [][]float64{{1, 1, 1}}, testutil.NewMeasurer(device))
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

// The canonical single-tetrahedron scenario: target (2,3,1) under the
// identity-scaled device resolves in one round through barycentric
// interpolation alone.
func TestSolveLinearSingleRound(t *testing.T) {
	b, measurer := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	results, err := m.Solve(context.Background(), [][]float64{{2, 3, 1}}, measurer)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, StatusFound, r.Status)
	assert.Equal(t, 1, r.Rounds)
	assert.InDelta(t, 0.0, r.BestError, 1e-9)
	assert.InDelta(t, 0.2, r.BestInput[0], 1e-9)
	assert.InDelta(t, 0.3, r.BestInput[1], 1e-9)
	assert.InDelta(t, 0.1, r.BestInput[2], 1e-9)

	require.Len(t, r.History, 1)
	rec := r.History[0]
	require.Len(t, rec.Weights, 4)
	var sum float64
	for _, w := range rec.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Equal(t, 1, measurer.Calls())

	// The measured sample joined the pool.
	assert.Equal(t, 5, b.Len())
}

func TestSolveOutOfGamut(t *testing.T) {
	b, measurer := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	results, err := m.Solve(context.Background(), [][]float64{{100, 100, 100}}, measurer)
	require.NoError(t, err)

	r := results[0]
	assert.Equal(t, StatusOutOfGamut, r.Status)
	// No measurement was worth issuing for an unbracketable target.
	assert.Equal(t, 0, measurer.Calls())
	// The closing scan still reports the best available point.
	assert.NotNil(t, r.BestInput)
	assert.Greater(t, r.BestError, 0.0)
}

func TestSolveIdempotentOnExactHit(t *testing.T) {
	b, measurer := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	// Target equals an already-measured pool image: no measurement happens.
	results, err := m.Solve(context.Background(), [][]float64{{10, 0, 0}}, measurer)
	require.NoError(t, err)

	r := results[0]
	assert.Equal(t, StatusFound, r.Status)
	assert.Equal(t, 0, r.Rounds)
	assert.Equal(t, 0, measurer.Calls())
	assert.Equal(t, []float64{1, 0, 0}, r.BestInput)
	assert.InDelta(t, 0.0, r.BestError, 1e-9)
}

func TestSolveNonlinearConvergence(t *testing.T) {
	device := &testutil.GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 1.2}
	b, err := testutil.SeedBank(device, testutil.GridInputs(3))
	require.NoError(t, err)
	measurer := testutil.NewMeasurer(device)

	m, err := New(b, colordiff.CIE76,
		WithThreshold(0.5),
		WithMaxIterations(10),
	)
	require.NoError(t, err)

	target := device.Image([]float64{0.62, 0.55, 0.71})
	results, err := m.Solve(context.Background(), [][]float64{target}, measurer)
	require.NoError(t, err)

	r := results[0]
	assert.Equal(t, StatusFound, r.Status)
	assert.LessOrEqual(t, r.BestError, 0.5)
	require.NotEmpty(t, r.History)

	// Noise-free refinement: the best error seen so far never worsens as
	// rounds progress.
	bestSoFar := r.History[0].Error
	for _, rec := range r.History[1:] {
		if rec.Error < bestSoFar {
			bestSoFar = rec.Error
		}
	}
	assert.LessOrEqual(t, r.BestError, bestSoFar+1e-9)
	assert.LessOrEqual(t, r.BestError, r.History[0].Error)
}

func TestSolveMaxIterationsFreezes(t *testing.T) {
	device := &testutil.GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 2.5}
	b, err := testutil.SeedBank(device, testutil.CornerInputs())
	require.NoError(t, err)
	measurer := testutil.NewMeasurer(device)

	// An impossible threshold freezes the target at its best effort.
	m, err := New(b, colordiff.CIE76,
		WithThreshold(1e-12),
		WithMaxIterations(3),
	)
	require.NoError(t, err)

	target := device.Image([]float64{0.2, 0.15, 0.3})
	results, err := m.Solve(context.Background(), [][]float64{target}, measurer)
	require.NoError(t, err)

	r := results[0]
	assert.Equal(t, StatusNotFoundYet, r.Status)
	assert.LessOrEqual(t, r.Rounds, 3)
	assert.True(t, r.BestError > 0)
	assert.NotNil(t, r.BestInput)
	assert.LessOrEqual(t, measurer.Calls(), 3)
}

func TestSolveBatchesAcrossTargets(t *testing.T) {
	b, measurer := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	targets := [][]float64{
		{2, 3, 1},       // needs one interpolation round
		{10, 0, 0},      // exact hit, no measurement
		{1, 1, 6},       // needs one interpolation round
		{100, 100, 100}, // out of gamut
		{4, 2, 2},       // needs one interpolation round
	}
	results, err := m.Solve(context.Background(), targets, measurer)
	require.NoError(t, err)
	require.Len(t, results, 5)

	// All three interpolation targets share a single measurement call. The
	// exact hit resolves from the initial pool and must not be measured, so
	// every other in-gamut target has to sit farther than the threshold from
	// all seed images.
	assert.Equal(t, 1, measurer.Calls())
	assert.Equal(t, 3, measurer.Measured())

	assert.Equal(t, StatusFound, results[0].Status)
	assert.Equal(t, StatusFound, results[1].Status)
	assert.Equal(t, StatusFound, results[2].Status)
	assert.Equal(t, StatusOutOfGamut, results[3].Status)
	assert.Equal(t, StatusFound, results[4].Status)

	for _, i := range []int{0, 2, 4} {
		assert.Equal(t, 1, results[i].Rounds, "target %d", i)
	}
	assert.Equal(t, 0, results[1].Rounds)
}

func TestSolveOutOfGamutPromotion(t *testing.T) {
	device := &testutil.LinearDevice{Scale: []float64{10, 10, 10}}
	b, err := testutil.SeedBank(device, testutil.CornerInputs())
	require.NoError(t, err)

	m, err := New(b, colordiff.CIE76, WithThreshold(2.0))
	require.NoError(t, err)

	// Outside the initial hull. The first round classifies it OutOfGamut;
	// appending boundary samples lets a later Solve promote it.
	target := []float64{8, 8, 2}
	results, err := m.Solve(context.Background(), [][]float64{target}, testutil.NewMeasurer(device))
	require.NoError(t, err)
	require.Equal(t, StatusOutOfGamut, results[0].Status)

	require.NoError(t, b.Append(bank.SamplePoint{
		Input: []float64{0.8, 0.8, 0.2},
		Image: device.Image([]float64{0.8, 0.8, 0.2}),
	}))

	results, err = m.Solve(context.Background(), [][]float64{target}, testutil.NewMeasurer(device))
	require.NoError(t, err)
	assert.Equal(t, StatusFound, results[0].Status)
	assert.InDelta(t, 0.0, results[0].BestError, 1e-9)
}

func TestSolveMeasurementError(t *testing.T) {
	b, _ := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	boom := errors.New("instrument offline")
	failing := MeasureFunc(func(context.Context, [][]float64) ([][]float64, error) {
		return nil, boom
	})

	_, err = m.Solve(context.Background(), [][]float64{{2, 3, 1}}, failing)
	var me *ErrMeasurement
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 1, me.Round)
	assert.ErrorIs(t, err, boom)
}

func TestSolveMalformedMeasurementBatch(t *testing.T) {
	b, _ := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	short := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		return nil, nil
	})
	_, err = m.Solve(context.Background(), [][]float64{{2, 3, 1}}, short)
	var me *ErrMeasurement
	assert.ErrorAs(t, err, &me)

	wrongDim := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		out := make([][]float64, len(inputs))
		for i := range out {
			out[i] = []float64{0}
		}
		return out, nil
	})
	_, err = m.Solve(context.Background(), [][]float64{{2, 3, 1}}, wrongDim)
	assert.ErrorAs(t, err, &me)
}

func TestSolveParallelTargets(t *testing.T) {
	device := &testutil.GammaDevice{Scale: []float64{100, 100, 100}, Gamma: 1.3}
	b, err := testutil.SeedBank(device, testutil.GridInputs(3))
	require.NoError(t, err)
	measurer := testutil.NewMeasurer(device)

	m, err := New(b, colordiff.CIE76,
		WithThreshold(1.0),
		WithMaxIterations(8),
		WithParallelism(4),
	)
	require.NoError(t, err)

	inputs := [][]float64{
		{0.3, 0.4, 0.5},
		{0.7, 0.45, 0.6},
		{0.5, 0.5, 0.5},
		{0.35, 0.75, 0.4},
		{0.6, 0.3, 0.8},
		{0.45, 0.65, 0.35},
	}
	targets := make([][]float64, len(inputs))
	for i, in := range inputs {
		targets[i] = device.Image(in)
	}

	results, err := m.Solve(context.Background(), targets, measurer)
	require.NoError(t, err)
	require.Len(t, results, len(targets))

	for i, r := range results {
		assert.Equal(t, StatusFound, r.Status, "target %d", i)
		assert.LessOrEqual(t, r.BestError, 1.0, "target %d", i)
	}
}

func TestSolveWithMetrics(t *testing.T) {
	b, measurer := cornerBank(t)
	mc := &BasicMetricsCollector{}
	m, err := New(b, colordiff.CIE76, WithMetricsCollector(mc))
	require.NoError(t, err)

	_, err = m.Solve(context.Background(), [][]float64{{2, 3, 1}}, measurer)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.GreaterOrEqual(t, stats.RoundCount, int64(1))
	assert.Equal(t, int64(1), stats.MeasureCount)
	assert.Equal(t, int64(1), stats.MeasureItems)
	assert.GreaterOrEqual(t, stats.LocateCount, int64(1))
}

func TestSolveCanceledContext(t *testing.T) {
	b, measurer := cornerBank(t)
	m, err := New(b, colordiff.CIE76)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Solve(ctx, [][]float64{{2, 3, 1}}, measurer)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, measurer.Calls())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NotFoundYet", StatusNotFoundYet.String())
	assert.Equal(t, "Found", StatusFound.String())
	assert.Equal(t, "OutOfGamut", StatusOutOfGamut.String())
	assert.Equal(t, "Unknown(9)", Status(9).String())
}
