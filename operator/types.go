// Package operator: sentinel errors, the Bounds value type, and functional
// options for the spectral-bounds probe.
package operator

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrOperator is returned when an operator is malformed: nil, of zero
	// dimension, or producing non-finite values under Apply.
	ErrOperator = errors.New("operator: invalid operator")

	// ErrFlatSpectrum is returned when the spectrum collapses to a single
	// eigenvalue; no spectral density can be resolved on a zero-width band.
	ErrFlatSpectrum = errors.New("operator: spectrum collapses to a single eigenvalue")

	// ErrProbeFailed is returned when the bounds probe cannot start, i.e.
	// the supplied start vector is zero or of the wrong length.
	ErrProbeFailed = errors.New("operator: spectral probe failed to start")
)

// Bounds is a conservative enclosure of the operator spectrum.
// Invariant: Lo ≤ λmin ≤ λmax ≤ Hi for every eigenvalue λ.
type Bounds struct {
	// Lo is a lower bound on the smallest eigenvalue.
	Lo float64
	// Hi is an upper bound on the largest eigenvalue.
	Hi float64
}

// Width returns Hi - Lo, the spectral spread covered by the bounds.
func (b Bounds) Width() float64 { return b.Hi - b.Lo }

// Center returns (Lo + Hi) / 2, the midpoint of the covered band.
func (b Bounds) Center() float64 { return (b.Lo + b.Hi) / 2 }

// Probe defaults: single source of truth for EstimateBounds behavior.
const (
	// DefaultProbeIterations caps the number of Lanczos steps. The probe
	// usually converges in far fewer steps; the cap bounds worst-case cost.
	DefaultProbeIterations = 80

	// DefaultProbeTolerance is the relative tolerance on the extremal Ritz
	// values at which the probe stops early. The KPM rescale margin absorbs
	// errors below this scale, so tighter convergence buys nothing.
	DefaultProbeTolerance = 1e-3
)

// Internal panic messages (no magic strings). Panics are reserved for
// nonsensical option values, i.e. programmer error.
const (
	panicIterationsInvalid = "operator: WithIterations: count must be at least 1"
	panicToleranceInvalid  = "operator: WithTolerance: tol must be finite, positive"
)

// ProbeOption mutates probe options. Safe to apply repeatedly.
type ProbeOption func(*ProbeOptions)

// ProbeOptions holds configurable parameters for EstimateBounds.
type ProbeOptions struct {
	ctx        context.Context
	iterations int
	tolerance  float64
	seed       int64
	start      []complex128
}

// DefaultProbeOptions returns probe options with:
//   - Background context
//   - DefaultProbeIterations Lanczos steps at most
//   - DefaultProbeTolerance relative convergence tolerance
//   - seed 0 (stable default stream)
//   - a random-phase start vector
func DefaultProbeOptions() ProbeOptions {
	return ProbeOptions{
		ctx:        context.Background(),
		iterations: DefaultProbeIterations,
		tolerance:  DefaultProbeTolerance,
		seed:       0,
		start:      nil,
	}
}

// WithContext sets the context used for cooperative cancellation; the probe
// checks it between Lanczos steps. A nil context has no effect.
func WithContext(ctx context.Context) ProbeOption {
	return func(o *ProbeOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithIterations caps the number of Lanczos steps. Panics when count < 1.
func WithIterations(count int) ProbeOption {
	if count < 1 {
		panic(panicIterationsInvalid)
	}

	return func(o *ProbeOptions) { o.iterations = count }
}

// WithTolerance sets the relative convergence tolerance on the extremal
// Ritz values. Panics unless tol is finite and positive.
func WithTolerance(tol float64) ProbeOption {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicToleranceInvalid)
	}

	return func(o *ProbeOptions) { o.tolerance = tol }
}

// WithSeed fixes the RNG seed of the random-phase start vector.
// Seed 0 selects a stable default stream.
func WithSeed(seed int64) ProbeOption {
	return func(o *ProbeOptions) { o.seed = seed }
}

// WithStart supplies an explicit probe start vector instead of a random one.
// The vector must have the operator's dimension and a non-zero norm;
// otherwise EstimateBounds returns ErrProbeFailed.
func WithStart(v []complex128) ProbeOption {
	return func(o *ProbeOptions) { o.start = v }
}
