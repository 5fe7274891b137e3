// SPDX-License-Identifier: MIT

// Package kpm: functional configuration and sentinel errors for the
// spectral-density estimator. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - the error taxonomy surfaced by New, Evaluate, Average and refinement.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each option impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//   - Reusability: Options fields are unexported; public APIs consume ...Option.
package kpm

import (
	"context"
	"errors"
	"math"

	"github.com/katalvlaran/spectral/operator"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultMoments is the initial Chebyshev expansion order N.
	DefaultMoments = 100

	// DefaultVectors is the initial number of random sample vectors R.
	DefaultVectors = 10

	// DefaultMargin is the spectral rescale margin ε: the rescaled spectrum
	// is kept a factor ε/2 inside (-1, 1) to suppress reconstruction
	// artifacts at the band edges. Tuned empirically; its optimum depends on
	// the operator's spectral gap structure, hence configurable.
	DefaultMargin = 0.01

	// DefaultSamplingFactor sets the default Gauss–Chebyshev grid size to
	// DefaultSamplingFactor·N when WithSamplingPoints is not supplied.
	DefaultSamplingFactor = 2

	// DefaultLorentzLambda is the λ parameter used by a zero-valued Lorentz
	// kernel.
	DefaultLorentzLambda = 4.0

	// resolutionFactor relates the Gauss–Chebyshev grid size K to the
	// achievable energy resolution: resolution = 2a/(K/resolutionFactor).
	resolutionFactor = 1.6
)

// ---------- Error taxonomy ----------

var (
	// ErrInconsistentRescaling is returned when a refinement call attempts
	// to change bounds, margin, vector factory or weighting after moments
	// have been accumulated; the accumulated moments would be invalidated.
	ErrInconsistentRescaling = errors.New("kpm: rescaling is fixed once moments exist")

	// ErrOutOfBand is returned when a queried energy lies outside the
	// rescaled spectral band (see WithNaNOutside for the NaN-fill policy).
	ErrOutOfBand = errors.New("kpm: energy outside the spectral band")

	// ErrInvalidRefinement is returned when a refinement target is below
	// the current state; refinement is monotonically increasing only.
	ErrInvalidRefinement = errors.New("kpm: refinement target below current state")

	// ErrResolvedWeighting is returned when a scalar-density API (Evaluate,
	// Curve, Average, StdError) is called on an estimator whose weighting
	// resolves more than one component; use EvaluateResolved instead.
	ErrResolvedWeighting = errors.New("kpm: weighting is component-resolved; use EvaluateResolved")

	// ErrSamplingTooCoarse is returned when the number of Gauss–Chebyshev
	// sampling points is smaller than the number of moments; the quadrature
	// would alias the highest-order terms.
	ErrSamplingTooCoarse = errors.New("kpm: sampling points fewer than moments")

	// ErrNoSamples is returned by statistics that need at least two
	// completed sample vectors.
	ErrNoSamples = errors.New("kpm: not enough completed samples")
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicMomentsInvalid  = "kpm: WithMoments: count must be at least 1"
	panicVectorsInvalid  = "kpm: WithVectors: count must be at least 1"
	panicMarginInvalid   = "kpm: WithMargin: margin must lie in (0, 0.5)"
	panicSamplingInvalid = "kpm: WithSamplingPoints: count must be at least 1"
	panicWorkersInvalid  = "kpm: WithWorkers: count must be at least 1"
	panicBoundsInvalid   = "kpm: WithBounds: bounds must be finite with Lo < Hi"
	panicWeightingWidth  = "kpm: weighting width must be at least 1"
	panicSiteInvalid     = "kpm: site indices must be non-negative"
	panicNoSites         = "kpm: at least one site index is required"
	panicNilWeighting    = "kpm: NewOperatorWeighting: nil operator"
)

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors panic only on nonsensical values (programmer error); data-
// dependent validation happens inside New and refinement calls, which
// return sentinel errors.
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// It is intentionally opaque; public entry points accept ...Option.
type Options struct {
	ctx         context.Context
	moments     int
	vectors     int
	sampling    int  // 0 ⇒ DefaultSamplingFactor·moments, resolved in New
	hasSampling bool // explicit grid: refinement keeps it instead of 2·N
	margin      float64
	bounds      operator.Bounds
	hasBounds   bool
	factory     VectorFactory
	weighting   Weighting
	kernel      Kernel
	seed        int64
	workers     int // 0 ⇒ runtime.GOMAXPROCS(0), resolved in New
	nanOutside  bool
	onSample    func(done, total int)
}

// DefaultOptions returns Options with:
//   - Background context
//   - DefaultMoments moments, DefaultVectors sample vectors
//   - DefaultMargin rescale margin, bounds estimated by a Lanczos probe
//   - random-phase vector factory seeded from seed 0 (stable default)
//   - Jackson damping kernel, density-of-states weighting
//   - worker pool sized to GOMAXPROCS
//   - out-of-band energy queries rejected with ErrOutOfBand
func DefaultOptions() Options {
	return Options{
		ctx:      context.Background(),
		moments:  DefaultMoments,
		vectors:  DefaultVectors,
		sampling: 0,
		margin:   DefaultMargin,
		kernel:   Jackson{},
		seed:     0,
		workers:  0,
	}
}

// WithContext sets the context used for cooperative cancellation, checked
// between vector samples (never mid-recursion, so partial results stay
// valid and mergeable). A nil context has no effect.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithMoments sets the Chebyshev expansion order N. Panics when count < 1.
// N = 1 degenerates to a zeroth-moment estimate: valid, just low resolution.
func WithMoments(count int) Option {
	if count < 1 {
		panic(panicMomentsInvalid)
	}

	return func(o *Options) { o.moments = count }
}

// WithVectors sets the number of random sample vectors R used for the
// stochastic trace estimate. Panics when count < 1.
func WithVectors(count int) Option {
	if count < 1 {
		panic(panicVectorsInvalid)
	}

	return func(o *Options) { o.vectors = count }
}

// WithSamplingPoints sets the Gauss–Chebyshev grid size K used by Curve and
// Average, and pins it: refinement keeps an explicit grid instead of the
// default 2·N tracking. Must end up ≥ the moment count (ErrSamplingTooCoarse
// otherwise). Panics when count < 1.
func WithSamplingPoints(count int) Option {
	if count < 1 {
		panic(panicSamplingInvalid)
	}

	return func(o *Options) {
		o.sampling = count
		o.hasSampling = true
	}
}

// WithMargin sets the spectral rescale margin ε. Panics unless ε ∈ (0, 0.5).
func WithMargin(margin float64) Option {
	if !(margin > 0 && margin < 0.5) {
		panic(panicMarginInvalid)
	}

	return func(o *Options) { o.margin = margin }
}

// WithBounds supplies precomputed spectral bounds, skipping the Lanczos
// probe. The caller guarantees Lo ≤ λmin ≤ λmax ≤ Hi; an underestimate
// corrupts the expansion silently. Panics on non-finite or inverted bounds.
func WithBounds(b operator.Bounds) Option {
	if !(b.Lo < b.Hi) || math.IsInf(b.Lo, 0) || math.IsInf(b.Hi, 0) {
		panic(panicBoundsInvalid)
	}

	return func(o *Options) {
		o.bounds = b
		o.hasBounds = true
	}
}

// WithVectorFactory replaces the default random-phase factory. Supplying a
// site-restricted factory turns the global trace estimator into a local
// density estimator at zero additional algorithmic cost. A nil factory has
// no effect.
func WithVectorFactory(f VectorFactory) Option {
	return func(o *Options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithWeighting installs an auxiliary weighting operator W, producing the
// spectral decomposition of W's matrix elements rather than the plain
// density of states. A nil weighting has no effect.
func WithWeighting(w Weighting) Option {
	return func(o *Options) {
		if w != nil {
			o.weighting = w
		}
	}
}

// WithKernel replaces the Jackson damping kernel. Kernel choice does not
// touch the raw moments, so it may also be changed on refinement calls to
// re-damp at a different resolution without recomputation. A nil kernel has
// no effect.
func WithKernel(k Kernel) Option {
	return func(o *Options) {
		if k != nil {
			o.kernel = k
		}
	}
}

// WithSeed fixes the base RNG seed: same seed ⇒ identical results.
// Seed 0 selects a stable default stream. Ignored when WithVectorFactory
// supplies an explicit factory.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.seed = seed }
}

// WithWorkers caps the number of concurrent per-vector moment computations.
// Results are independent of the worker count, bit for bit. Panics when
// count < 1.
func WithWorkers(count int) Option {
	if count < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = count }
}

// WithNaNOutside switches the out-of-band policy of Evaluate from
// returning ErrOutOfBand to filling NaN for the offending energies.
func WithNaNOutside() Option {
	return func(o *Options) { o.nanOutside = true }
}

// WithOnSample installs a progress hook invoked after each completed sample
// vector with (done, total) counts. Invocations are serialized; the hook
// must not call back into the estimator.
func WithOnSample(fn func(done, total int)) Option {
	return func(o *Options) { o.onSample = fn }
}
