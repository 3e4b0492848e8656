// Package shadematch finds device input codes that reproduce target
// perceptual colors, given only an empirically sampled device response.
//
// The device's input→image mapping (e.g. printer RGB → CIE Lab) is known
// only at the measured points of a growing shade bank. For each target
// color, shadematch locates or constructs a simplex of measured points whose
// image-space hull encloses the target and interpolates an input estimate
// through barycentric coordinates. When the measured estimate still misses,
// it generates new geometrically derived candidates that shrink the
// enclosing region for the next measurement round.
//
// # Quick Start
//
//	b, _ := bank.New(3)
//	b.Append(initialSamples...) // pre-measured (input, image) pairs
//
//	m, _ := shadematch.New(b, colordiff.CIEDE2000,
//	    shadematch.WithThreshold(1.0),
//	    shadematch.WithMaxIterations(10),
//	)
//
//	// The measurer is the system boundary: print the batch, read the
//	// instrument, return Lab values in batch order.
//	results, _ := m.Solve(ctx, targets, measurer)
//	for _, r := range results {
//	    fmt.Println(r.Status, r.BestInput, r.BestError)
//	}
//
// Every target always terminates with a classification (Found, OutOfGamut or
// a frozen best effort after the iteration cap) and the best input estimate
// seen; a single unmatchable target never fails the run.
//
// # Measurement Model
//
// All geometry is synchronous and CPU-bound. The only blocking operation is
// the external Measurer, which may be a human-in-the-loop instrument
// round-trip; shadematch batches all candidates of a round into a single
// Measure call and holds no locks across it.
package shadematch
