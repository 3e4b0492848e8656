package shadematch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordRound is called after each refinement round with the number of
	// targets still pending and the round duration (excluding measurement).
	RecordRound(pending int, duration time.Duration)

	// RecordLocate is called after each tessellation point location.
	RecordLocate(found bool)

	// RecordFallbackSearch is called after each combinatorial
	// enclosing-simplex search.
	RecordFallbackSearch(found bool)

	// RecordRefine is called after each refinement step.
	RecordRefine(candidates int, err error)

	// RecordMeasure is called after each batched measurement call.
	RecordMeasure(batch int, duration time.Duration, err error)

	// RecordClip is called once per clipped candidate.
	RecordClip(components int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRound(int, time.Duration)          {}
func (NoopMetricsCollector) RecordLocate(bool)                       {}
func (NoopMetricsCollector) RecordFallbackSearch(bool)               {}
func (NoopMetricsCollector) RecordRefine(int, error)                 {}
func (NoopMetricsCollector) RecordMeasure(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordClip(int)                          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RoundCount        atomic.Int64
	RoundTotalNanos   atomic.Int64
	LocateCount       atomic.Int64
	LocateMisses      atomic.Int64
	FallbackCount     atomic.Int64
	FallbackMisses    atomic.Int64
	RefineCount       atomic.Int64
	RefineErrors      atomic.Int64
	RefineCandidates  atomic.Int64
	MeasureCount      atomic.Int64
	MeasureErrors     atomic.Int64
	MeasureItems      atomic.Int64
	MeasureTotalNanos atomic.Int64
	ClippedCandidates atomic.Int64
	ClippedComponents atomic.Int64
}

// RecordRound implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRound(pending int, duration time.Duration) {
	b.RoundCount.Add(1)
	b.RoundTotalNanos.Add(duration.Nanoseconds())
}

// RecordLocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocate(found bool) {
	b.LocateCount.Add(1)
	if !found {
		b.LocateMisses.Add(1)
	}
}

// RecordFallbackSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallbackSearch(found bool) {
	b.FallbackCount.Add(1)
	if !found {
		b.FallbackMisses.Add(1)
	}
}

// RecordRefine implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRefine(candidates int, err error) {
	b.RefineCount.Add(1)
	b.RefineCandidates.Add(int64(candidates))
	if err != nil {
		b.RefineErrors.Add(1)
	}
}

// RecordMeasure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMeasure(batch int, duration time.Duration, err error) {
	b.MeasureCount.Add(1)
	b.MeasureItems.Add(int64(batch))
	b.MeasureTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MeasureErrors.Add(1)
	}
}

// RecordClip implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClip(components int) {
	b.ClippedCandidates.Add(1)
	b.ClippedComponents.Add(int64(components))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		RoundCount:        b.RoundCount.Load(),
		RoundAvgNanos:     avg(b.RoundTotalNanos.Load(), b.RoundCount.Load()),
		LocateCount:       b.LocateCount.Load(),
		LocateMisses:      b.LocateMisses.Load(),
		FallbackCount:     b.FallbackCount.Load(),
		FallbackMisses:    b.FallbackMisses.Load(),
		RefineCount:       b.RefineCount.Load(),
		RefineErrors:      b.RefineErrors.Load(),
		RefineCandidates:  b.RefineCandidates.Load(),
		MeasureCount:      b.MeasureCount.Load(),
		MeasureErrors:     b.MeasureErrors.Load(),
		MeasureItems:      b.MeasureItems.Load(),
		MeasureAvgNanos:   avg(b.MeasureTotalNanos.Load(), b.MeasureCount.Load()),
		ClippedCandidates: b.ClippedCandidates.Load(),
		ClippedComponents: b.ClippedComponents.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RoundCount        int64
	RoundAvgNanos     int64
	LocateCount       int64
	LocateMisses      int64
	FallbackCount     int64
	FallbackMisses    int64
	RefineCount       int64
	RefineErrors      int64
	RefineCandidates  int64
	MeasureCount      int64
	MeasureErrors     int64
	MeasureItems      int64
	MeasureAvgNanos   int64
	ClippedCandidates int64
	ClippedComponents int64
}
