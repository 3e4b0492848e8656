package shadematch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureFunc(t *testing.T) {
	called := false
	f := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		called = true
		return inputs, nil
	})

	out, err := f.Measure(context.Background(), [][]float64{{1, 2, 3}})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, [][]float64{{1, 2, 3}}, out)
}

func TestRateLimitedMeasurerPassthrough(t *testing.T) {
	inner := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		out := make([][]float64, len(inputs))
		for i, in := range inputs {
			out[i] = []float64{in[0] * 2}
		}
		return out, nil
	})

	m := NewRateLimitedMeasurer(inner, 1000, 100)
	out, err := m.Measure(context.Background(), [][]float64{{1}, {2}, {3}})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float64{4}, out[1])
}

func TestRateLimitedMeasurerEmptyBatch(t *testing.T) {
	inner := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		return nil, nil
	})

	m := NewRateLimitedMeasurer(inner, 0.001, 1)
	// An empty batch must not consume budget or block.
	_, err := m.Measure(context.Background(), nil)
	assert.NoError(t, err)
}

func TestRateLimitedMeasurerBatchExceedsBurst(t *testing.T) {
	inner := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		return inputs, nil
	})

	m := NewRateLimitedMeasurer(inner, 10, 1)
	_, err := m.Measure(context.Background(), [][]float64{{1}, {2}})
	assert.Error(t, err)
}

func TestRateLimitedMeasurerInnerError(t *testing.T) {
	boom := errors.New("lamp failure")
	inner := MeasureFunc(func(_ context.Context, inputs [][]float64) ([][]float64, error) {
		return nil, boom
	})

	m := NewRateLimitedMeasurer(inner, 1000, 100)
	_, err := m.Measure(context.Background(), [][]float64{{1}})
	assert.ErrorIs(t, err, boom)
}
