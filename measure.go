package shadematch

import (
	"context"

	"golang.org/x/time/rate"
)

// Measurer is the external measurement collaborator: it realizes a batch of
// device input codes (prints and reads swatches, in the original workflow)
// and returns their image-space values in the same order.
//
// Measure may be slow and interactive; shadematch issues one call per round
// with every pending candidate batched together and holds no internal state
// across the call. A non-nil error aborts the run.
type Measurer interface {
	Measure(ctx context.Context, inputs [][]float64) ([][]float64, error)
}

// MeasureFunc adapts a plain function to the Measurer interface.
type MeasureFunc func(ctx context.Context, inputs [][]float64) ([][]float64, error)

// Measure implements Measurer.
func (f MeasureFunc) Measure(ctx context.Context, inputs [][]float64) ([][]float64, error) {
	return f(ctx, inputs)
}

// RateLimitedMeasurer wraps a Measurer with a token-bucket limit on measured
// patches, for instruments with a duty cycle or per-hour patch budget.
type RateLimitedMeasurer struct {
	inner   Measurer
	limiter *rate.Limiter
}

// NewRateLimitedMeasurer allows up to patchesPerSecond measured patches on
// average, with the given burst (at least one full page of patches is a
// sensible burst).
func NewRateLimitedMeasurer(inner Measurer, patchesPerSecond float64, burst int) *RateLimitedMeasurer {
	return &RateLimitedMeasurer{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(patchesPerSecond), burst),
	}
}

// Measure implements Measurer. It blocks until the batch fits the budget,
// then delegates unchanged.
func (m *RateLimitedMeasurer) Measure(ctx context.Context, inputs [][]float64) ([][]float64, error) {
	if len(inputs) > 0 {
		if err := m.limiter.WaitN(ctx, len(inputs)); err != nil {
			return nil, err
		}
	}
	return m.inner.Measure(ctx, inputs)
}
