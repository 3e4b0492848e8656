package shadematch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/shadematch/bank"
	"github.com/hupe1980/shadematch/geom"
	"github.com/hupe1980/shadematch/tessellation"
)

var (
	// ErrNoTargets is returned when Solve is called with an empty target list.
	ErrNoTargets = errors.New("no targets to solve")

	// ErrNilMeasurer is returned when Solve is called without a measurer.
	ErrNilMeasurer = errors.New("measurer must not be nil")

	// ErrEmptyBank is returned when the shade bank holds no samples.
	ErrEmptyBank = bank.ErrEmptyBank

	// ErrDegenerateInput is returned when the initial pool spans no volume,
	// so no tessellation can be built.
	ErrDegenerateInput = tessellation.ErrDegenerateInput

	// ErrDegenerateSimplex indicates a zero-volume simplex. It is recovered
	// internally by widening the search; callers only see it when retries
	// are exhausted, and then only in logs, never as a Solve failure.
	ErrDegenerateSimplex = geom.ErrDegenerateSimplex
)

// ErrDimensionMismatch indicates a target/bank dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrMeasurement indicates the external measurement collaborator failed or
// returned a malformed batch.
type ErrMeasurement struct {
	Round int
	cause error
}

func (e *ErrMeasurement) Error() string {
	return fmt.Sprintf("measurement failed in round %d: %v", e.Round, e.cause)
}

func (e *ErrMeasurement) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *bank.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	return err
}
