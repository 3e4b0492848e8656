package shadematch

import (
	"context"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/shadematch/bank"
	"github.com/hupe1980/shadematch/colordiff"
	"github.com/hupe1980/shadematch/geom"
	"github.com/hupe1980/shadematch/refine"
	"github.com/hupe1980/shadematch/search"
	"github.com/hupe1980/shadematch/tessellation"
)

// Matcher drives the per-target search: locate an enclosing simplex,
// interpolate an input estimate, measure, refine, repeat. One Matcher can
// run multiple Solve calls, each against the same growing shade bank.
type Matcher struct {
	bank    *bank.Bank
	diff    colordiff.Func
	refiner *refine.Refiner
	opts    options
}

// New creates a Matcher over the given shade bank and color-difference
// function.
func New(b *bank.Bank, diff colordiff.Func, optFns ...Option) (*Matcher, error) {
	if b == nil {
		return nil, fmt.Errorf("bank must not be nil")
	}
	if diff == nil {
		return nil, fmt.Errorf("color-difference function must not be nil")
	}

	opts := applyOptions(optFns)
	return &Matcher{
		bank:    b,
		diff:    diff,
		refiner: refine.New(opts.scalingConstant),
		opts:    opts,
	}, nil
}

// Bank returns the underlying shade bank.
func (m *Matcher) Bank() *bank.Bank { return m.bank }

// batchItem is one queued input code awaiting measurement, tagged with the
// target it serves.
type batchItem struct {
	targetIdx int
	estimate  bool // true for interpolated estimates, false for refinement candidates
	input     []float64
	record    *IterationRecord // audit entry completed once measured (estimates only)
}

// Solve runs the matching loop for the given image-space targets until each
// is Found, classified OutOfGamut, or the iteration cap freezes it.
//
// The returned slice is co-indexed with targets and always complete: every
// target reports the best input estimate found anywhere in the accumulated
// pool, even when unresolved. Solve fails
// only on malformed global input (empty bank, dimension mismatch, degenerate
// initial pool) or when the measurer itself errors.
func (m *Matcher) Solve(ctx context.Context, targets [][]float64, measurer Measurer) ([]Result, error) {
	if measurer == nil {
		return nil, ErrNilMeasurer
	}
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	if m.bank.Len() == 0 {
		return nil, ErrEmptyBank
	}
	dim := m.bank.Dim()
	for _, tg := range targets {
		if len(tg) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(tg)}
		}
	}

	states := make([]*target, len(targets))
	pending := roaring.New()
	for i, tg := range targets {
		states[i] = &target{image: tg, status: StatusNotFoundYet}
		pending.Add(uint32(i))
	}

	view := m.bank.Snapshot()
	tess, err := tessellation.BuildVersioned(view.Inputs(), view.Version())
	if err != nil {
		return nil, err
	}
	lastBuildLen := view.Len()

	// Exact hits in the initial pool resolve without any measurement.
	m.resolveExactHits(ctx, states, pending, view)

	var refineQueue []batchItem
	for round := 1; round <= m.opts.maxIterations && !pending.IsEmpty(); round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		roundStart := time.Now()
		view = m.bank.Snapshot()

		if float64(view.Len()) >= m.opts.retessellateGrow*float64(lastBuildLen) {
			if fresh, err := tessellation.BuildVersioned(view.Inputs(), view.Version()); err == nil {
				tess = fresh
				lastBuildLen = view.Len()
			}
		}

		estimates := m.planRound(ctx, states, pending, view, tess)

		batch := append(refineQueue, estimates...)
		refineQueue = nil
		if len(batch) == 0 {
			// Only unbracketable targets remain; the closing scan is all
			// that is left to try.
			break
		}

		images, err := m.measure(ctx, measurer, batch, round)
		if err != nil {
			return nil, err
		}

		// Round-boundary append: workers of the next round see the grown
		// pool through a fresh snapshot, never a half-updated one.
		points := make([]bank.SamplePoint, len(batch))
		for i, item := range batch {
			points[i] = bank.SamplePoint{Input: item.input, Image: images[i]}
		}
		if err := m.bank.Append(points...); err != nil {
			return nil, translateError(err)
		}

		refineQueue = m.evaluateRound(ctx, states, pending, batch, images, round)

		m.opts.metricsCollector.RecordRound(int(pending.GetCardinality()), time.Since(roundStart))
		m.opts.logger.LogRound(ctx, round, int(pending.GetCardinality()), len(batch))
	}

	m.finalScan(ctx, states, pending)

	results := make([]Result, len(states))
	for i, st := range states {
		results[i] = Result{
			Target:    st.image,
			Status:    st.status,
			BestInput: st.best.input,
			BestImage: st.best.image,
			BestError: st.best.err,
			Rounds:    st.rounds,
			History:   st.history,
		}
	}
	return results, nil
}

// resolveExactHits marks targets already matched by the initial pool as
// Found, so an already-solved target triggers no measurement at all.
func (m *Matcher) resolveExactHits(ctx context.Context, states []*target, pending *roaring.Bitmap, view *bank.View) {
	for i, st := range states {
		idx, d := m.nearest(st.image, view)
		if idx < 0 || d > m.opts.threshold {
			continue
		}
		p := view.At(idx)
		st.best.update(p.Input, p.Image, d)
		st.status = StatusFound
		pending.Remove(uint32(i))
		m.opts.logger.LogStatus(ctx, i, st.status, d)
	}
}

// planRound finds an enclosing simplex and queues an interpolated estimate
// for every pending target. Targets are independent within a round: they
// share only the immutable pool snapshot, so planning fans out across
// workers.
func (m *Matcher) planRound(ctx context.Context, states []*target, pending *roaring.Bitmap, view *bank.View, tess *tessellation.Tessellation) []batchItem {
	indices := pending.ToArray()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.parallelism)
	planned := make([]*batchItem, len(indices))
	for slot, idx := range indices {
		g.Go(func() error {
			planned[slot] = m.planTarget(gctx, int(idx), states[idx], view, tess)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	var estimates []batchItem
	for _, item := range planned {
		if item != nil {
			estimates = append(estimates, *item)
		}
	}
	return estimates
}

// planTarget locates an enclosing simplex for one target and builds its
// estimate batch item. Returns nil when the target cannot be bracketed this
// round.
func (m *Matcher) planTarget(ctx context.Context, idx int, st *target, view *bank.View, tess *tessellation.Tessellation) *batchItem {
	images := view.Images()

	var vertexIndices []int
	var weights []float64

	// A stale tessellation would keep resolving to the original coarse
	// simplex and starve the refined points, so once the pool has outgrown
	// it the ranked combinatorial search leads and the tessellation is only
	// a backstop.
	fresh := tess != nil && tess.Version() == view.Version()
	if fresh {
		loc, ok := tess.Locate(images, st.image)
		m.opts.metricsCollector.RecordLocate(ok)
		m.opts.logger.LogLocate(ctx, idx, ok)
		if ok {
			vertexIndices, weights = loc.Indices, loc.Weights
		}
	}
	if vertexIndices == nil {
		match, ok := search.Enclosing(st.image, images, m.diff, m.opts.maxNeighbors)
		m.opts.metricsCollector.RecordFallbackSearch(ok)
		m.opts.logger.LogFallbackSearch(ctx, idx, m.opts.maxNeighbors, ok)
		if ok {
			vertexIndices, weights = match.Indices, match.Weights
		}
	}
	if vertexIndices == nil && !fresh && tess != nil {
		if loc, ok := tess.Locate(images, st.image); ok {
			vertexIndices, weights = loc.Indices, loc.Weights
		}
	}

	if vertexIndices == nil {
		// Outside the hull of everything measured so far. Not an error:
		// the target stays pending and is retried as the pool grows.
		if st.status == StatusNotFoundYet {
			st.status = StatusOutOfGamut
			m.opts.logger.LogStatus(ctx, idx, st.status, st.best.err)
		}
		return nil
	}

	inputs, imgVerts := view.Gather(vertexIndices)
	st.vertexIndices = vertexIndices
	st.simplexInputs = inputs
	st.simplexImages = imgVerts

	estimate := geom.Interpolate(inputs, weights)
	record := &IterationRecord{
		VertexIndices: vertexIndices,
		SimplexInputs: inputs,
		SimplexImages: imgVerts,
		Weights:       weights,
		Estimate:      estimate,
	}
	return &batchItem{targetIdx: idx, estimate: true, input: estimate, record: record}
}

// measure issues the round's single batched measurement call.
func (m *Matcher) measure(ctx context.Context, measurer Measurer, batch []batchItem, round int) ([][]float64, error) {
	inputs := make([][]float64, len(batch))
	for i, item := range batch {
		inputs[i] = item.input
	}

	start := time.Now()
	images, err := measurer.Measure(ctx, inputs)
	m.opts.metricsCollector.RecordMeasure(len(inputs), time.Since(start), err)
	m.opts.logger.LogMeasure(ctx, len(inputs), err)
	if err != nil {
		return nil, &ErrMeasurement{Round: round, cause: err}
	}
	if len(images) != len(inputs) {
		return nil, &ErrMeasurement{
			Round: round,
			cause: fmt.Errorf("batch size mismatch: sent %d, got %d", len(inputs), len(images)),
		}
	}
	dim := m.bank.Dim()
	for i, img := range images {
		if len(img) != dim {
			return nil, &ErrMeasurement{
				Round: round,
				cause: &ErrDimensionMismatch{Expected: dim, Actual: len(img), cause: fmt.Errorf("image %d", i)},
			}
		}
	}
	return images, nil
}

// evaluateRound folds the measured batch back into per-target state:
// updates best estimates, finalizes Found targets, and generates the next
// round's refinement candidates for targets that missed.
func (m *Matcher) evaluateRound(ctx context.Context, states []*target, pending *roaring.Bitmap, batch []batchItem, images [][]float64, round int) []batchItem {
	var refineQueue []batchItem

	for i, item := range batch {
		st := states[item.targetIdx]
		measured := images[i]
		d := m.diff(st.image, measured)
		st.best.update(item.input, measured, d)

		if item.estimate {
			st.rounds++
			rec := *item.record
			rec.Round = round
			rec.Measured = measured
			rec.Error = d
			st.history = append(st.history, rec)
		}

		if d <= m.opts.threshold {
			if st.status != StatusFound {
				st.status = StatusFound
				pending.Remove(uint32(item.targetIdx))
				m.opts.logger.LogStatus(ctx, item.targetIdx, st.status, d)
			}
			continue
		}

		if item.estimate && len(st.vertexIndices) == m.bank.Dim()+1 {
			refineQueue = append(refineQueue, m.refineTarget(ctx, item.targetIdx, st, measured)...)
		}
	}
	return refineQueue
}

// refineTarget derives the next round's candidate sample points from a
// missed estimate. A degenerate working simplex is dropped so the target
// re-enters the search with a wider neighborhood next round instead of
// aborting.
func (m *Matcher) refineTarget(ctx context.Context, idx int, st *target, measured []float64) []batchItem {
	cands, err := m.refiner.Candidates(st.simplexInputs, st.simplexImages, st.image, measured)
	m.opts.metricsCollector.RecordRefine(len(cands), err)
	m.opts.logger.LogRefine(ctx, idx, len(cands), err)
	if err != nil {
		st.vertexIndices = nil
		st.simplexInputs = nil
		st.simplexImages = nil
		return nil
	}

	items := make([]batchItem, 0, len(cands))
	for _, c := range cands {
		if len(c.Clipped) > 0 {
			m.opts.metricsCollector.RecordClip(len(c.Clipped))
			m.opts.logger.LogClip(ctx, idx, c.Clipped, c.Input)
		}
		items = append(items, batchItem{targetIdx: idx, input: c.Input})
	}
	return items
}

// finalScan is the closing best-effort step: a linear scan of the entire
// accumulated pool for every unresolved target. It can retroactively
// resolve targets whose simplex tracks failed, and promote OutOfGamut
// targets that a grown pool now covers.
func (m *Matcher) finalScan(ctx context.Context, states []*target, pending *roaring.Bitmap) {
	view := m.bank.Snapshot()

	resolved, frozen := 0, 0
	it := pending.Iterator()
	for it.HasNext() {
		idx := int(it.Next())
		st := states[idx]

		if i, d := m.nearest(st.image, view); i >= 0 && (!st.best.valid || d < st.best.err) {
			p := view.At(i)
			st.best.update(p.Input, p.Image, d)
		}

		if st.best.valid && st.best.err <= m.opts.threshold {
			st.status = StatusFound
			resolved++
			m.opts.logger.LogStatus(ctx, idx, st.status, st.best.err)
		} else {
			frozen++
		}
	}
	m.opts.logger.LogFinalScan(ctx, resolved, frozen)
}

// nearest returns the pool index closest to img by the configured color
// difference, or -1 for an empty view.
func (m *Matcher) nearest(img []float64, view *bank.View) (int, float64) {
	bestIdx, bestDist := -1, 0.0
	for i := 0; i < view.Len(); i++ {
		d := m.diff(img, view.At(i).Image)
		if bestIdx < 0 || d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	return bestIdx, bestDist
}
