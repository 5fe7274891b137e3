// Package kpm - in-place accuracy refinement.
//
// Refinement is strictly additive: existing moments and sample vectors are
// reused; only the incremental moments and/or vectors are computed and
// merged into the accumulator by its cumulative sample count. Nothing is
// ever recomputed from zero, and nothing ever shrinks.
package kpm

import (
	"fmt"
	"math"
)

// IncreaseAccuracy grows the estimate to the targets carried by the given
// options (WithMoments, WithVectors, WithSamplingPoints; WithKernel,
// WithContext, WithWorkers and WithOnSample may also be adjusted; kernel
// choice does not touch raw moments).
//
//   - Moment growth resumes each sample's Chebyshev recursion from its
//     stored last-two vectors.
//   - Vector growth draws new sample vectors from the same factory stream
//     and computes them at the full target order; the merge is a
//     moving-average over the cumulative sample count.
//   - Targets already met are a no-op: zero recomputation, bit-identical
//     moments.
//   - A defaulted sampling grid follows the moment target (K = 2·N); a grid
//     pinned by WithSamplingPoints is kept and validated against the new
//     moment count.
//
// Errors:
//   - ErrInconsistentRescaling  bounds, margin, factory or weighting changed
//   - ErrInvalidRefinement      a target below the current state
//   - ErrSamplingTooCoarse      sampling points below the moment target
//   - ctx.Err()                 cancelled between samples; completed new
//     samples are kept and merged, the rest of the request is dropped
func (s *SpectralDensity) IncreaseAccuracy(opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.opts
	for _, opt := range opts {
		opt(&next)
	}

	return s.refineLocked(next)
}

// RefineResolution grows the sampling grid (and with it the expansion
// order) until the kernel-limited energy resolution reaches tol:
// K' = ceil(1.6·2a/tol), N' = K'/2. A tol coarser than the current
// resolution is a no-op. tol must be finite and positive
// (ErrInvalidRefinement otherwise).
func (s *SpectralDensity) RefineResolution(tol float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !(tol > 0) || math.IsInf(tol, 0) {
		return fmt.Errorf("kpm: RefineResolution: tol %g: %w", tol, ErrInvalidRefinement)
	}
	if tol > s.resolutionLocked() {
		return nil // already finer than requested
	}

	sampling := int(math.Ceil(resolutionFactor * 2 * s.eng.scale.a / tol))
	moments := sampling / 2
	if moments < s.numMoments {
		moments = s.numMoments
	}
	if sampling < moments {
		sampling = moments
	}

	next := s.opts
	next.moments = moments
	next.sampling = sampling

	return s.refineLocked(next)
}

// refineLocked validates the target options against the committed state and
// runs the incremental computation. Caller holds the write lock.
func (s *SpectralDensity) refineLocked(next Options) error {
	// 1. Rescale-affecting options are fixed once moments exist.
	cur := s.opts
	switch {
	case next.hasBounds != cur.hasBounds || next.bounds != cur.bounds:
		return fmt.Errorf("kpm: refine: bounds changed: %w", ErrInconsistentRescaling)
	case next.margin != cur.margin:
		return fmt.Errorf("kpm: refine: margin changed: %w", ErrInconsistentRescaling)
	case next.factory != cur.factory:
		return fmt.Errorf("kpm: refine: vector factory changed: %w", ErrInconsistentRescaling)
	case next.weighting != cur.weighting:
		return fmt.Errorf("kpm: refine: weighting changed: %w", ErrInconsistentRescaling)
	}

	// 2. A defaulted grid tracks the moment target; an explicit
	// WithSamplingPoints grid stays pinned and is validated strictly.
	if !next.hasSampling && next.sampling < DefaultSamplingFactor*next.moments {
		next.sampling = DefaultSamplingFactor * next.moments
	}

	// 3. Monotonicity: refinement only ever grows the estimate.
	if next.moments < s.numMoments || next.vectors < len(s.slots) {
		return fmt.Errorf("kpm: refine: targets (%d moments, %d vectors) below current (%d, %d): %w",
			next.moments, next.vectors, s.numMoments, len(s.slots), ErrInvalidRefinement)
	}
	if next.sampling < next.moments {
		return fmt.Errorf("kpm: refine: %d sampling points for %d moments: %w", next.sampling, next.moments, ErrSamplingTooCoarse)
	}

	// 4. No-op targets: commit the cheap knobs (kernel, grid, hooks) and
	// return without touching a single vector.
	if next.moments == s.numMoments && next.vectors == len(s.slots) {
		s.opts = next
		s.sampling = next.sampling

		return nil
	}

	// 5. Draw the incremental sample vectors from the same stream,
	// sequentially, so a refined run is bit-identical to a single larger
	// run with the same seed.
	newSlots := make([]*sampleSlot, next.vectors-len(s.slots))
	for i := range newSlots {
		newSlots[i] = s.eng.newSlot(next.factory)
	}

	all := make([]*sampleSlot, 0, next.vectors)
	all = append(all, s.slots...)
	all = append(all, newSlots...)

	// Worker count and progress hook apply to this run already.
	s.opts.workers = next.workers
	s.opts.onSample = next.onSample

	err := s.runSlots(next.ctx, all, next.moments)
	if err == nil {
		s.slots = all
		s.numMoments = next.moments
		s.sampling = next.sampling
		s.opts = next

		return nil
	}

	// 6. Partial completion: slot extension is atomic, so a new sample
	// either reached the full target order or never started. Keep the
	// completed prefix of the new samples; already-extended old slots keep
	// their extra rows and resume for free next time. The committed moment
	// count never moves unless every sample reached the target.
	for _, sl := range newSlots {
		if sl.have == 0 {
			break
		}
		s.slots = append(s.slots, sl)
	}
	s.opts.vectors = len(s.slots)

	return fmt.Errorf("kpm: refine: %w", err)
}
