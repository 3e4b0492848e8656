package shadematch

import (
	"log/slog"
	"runtime"
)

type options struct {
	threshold        float64
	maxIterations    int
	maxNeighbors     int
	scalingConstant  float64
	parallelism      int
	retessellateGrow float64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Matcher behavior.
type Option func(*options)

// WithThreshold sets the acceptable color difference. A target whose best
// measured estimate differs from it by no more than threshold is Found.
func WithThreshold(threshold float64) Option {
	return func(o *options) {
		if threshold > 0 {
			o.threshold = threshold
		}
	}
}

// WithMaxIterations caps the number of refinement rounds per run. When the
// cap is hit, unresolved targets keep their best estimate so far and are
// reported as NotFoundYet; this is never a process-level failure.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithMaxNeighbors bounds the neighborhood of the combinatorial
// enclosing-simplex search. Total work is O(maxNeighbors · C(maxNeighbors, d)),
// so keep this modest; 20 covers typical pools.
func WithMaxNeighbors(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxNeighbors = n
		}
	}
}

// WithScalingConstant sets the geometric scaling of refinement candidates.
// Larger values are more likely to bracket the target but converge slower;
// the default 2.0 is robust against moderate measurement noise.
func WithScalingConstant(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scalingConstant = s
		}
	}
}

// WithParallelism bounds the number of targets processed concurrently within
// a round. Targets only read the round's pool snapshot, so they parallelize
// freely; defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithRetessellationGrowth sets the pool growth factor that triggers a
// tessellation rebuild between rounds. Rebuilding is O(n^2)-ish, so it is
// amortized: with factor g, the pool must grow to g times the size it had at
// the last build. Rounds in between rely on the combinatorial search for
// newly added points. Values <= 1 rebuild every round.
func WithRetessellationGrowth(g float64) Option {
	return func(o *options) {
		if g > 0 {
			o.retessellateGrow = g
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		threshold:        1.0,
		maxIterations:    10,
		maxNeighbors:     20,
		scalingConstant:  2.0,
		parallelism:      runtime.GOMAXPROCS(0),
		retessellateGrow: 1.5,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
