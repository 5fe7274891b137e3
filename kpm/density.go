// Package kpm - the SpectralDensity result object: construction, parallel
// sampling, and density reconstruction.
package kpm

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/spectral/cheb"
	"github.com/katalvlaran/spectral/operator"
)

// SpectralDensity is the KPM estimate of an operator's spectral density:
// accumulated Chebyshev moments, the rescale transform, and the sample
// bookkeeping needed to refine the estimate in place.
//
// The object is safe for concurrent use: reads (Evaluate, Average, Curve,
// accessors) share an RLock; refinement takes the write lock. Moments only
// ever grow: refinement is append-only, never destructive.
type SpectralDensity struct {
	mu sync.RWMutex

	op    operator.Linear
	n     int
	width int
	eng   engine

	// opts holds the resolved configuration; refinement compares against it
	// to reject rescale-affecting changes.
	opts Options

	// slots are the per-sample accumulators, in the order their seed
	// vectors were drawn. The merge over slots is a fixed-order reduction,
	// so results are independent of worker count and completion order.
	slots []*sampleSlot

	numMoments int // N: moments visible to readers
	sampling   int // K: Gauss–Chebyshev grid size
}

// New builds a SpectralDensity for op and runs the initial
// (moments, vectors) budget.
//
// Steps: validate the operator, resolve options, obtain spectral bounds
// (Lanczos probe unless WithBounds), fix the rescale transform, seed the
// sample vectors, and accumulate their moments on the worker pool.
//
// Errors:
//   - operator.ErrOperator      invalid operator or non-finite action
//   - operator.ErrFlatSpectrum  single-eigenvalue spectrum
//   - ErrSamplingTooCoarse      sampling points < moments
//   - ctx.Err()                 cancelled during construction
func New(op operator.Linear, opts ...Option) (*SpectralDensity, error) {
	if err := operator.Validate(op); err != nil {
		return nil, fmt.Errorf("kpm: New: %w", err)
	}

	// 1. Resolve options.
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.sampling == 0 {
		o.sampling = DefaultSamplingFactor * o.moments
	}
	if o.sampling < o.moments {
		return nil, fmt.Errorf("kpm: New: %d sampling points for %d moments: %w", o.sampling, o.moments, ErrSamplingTooCoarse)
	}
	if o.workers == 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.factory == nil {
		o.factory = NewRandomPhase(deriveSeed(o.seed, streamSamples))
	}

	width := 1
	if o.weighting != nil {
		width = o.weighting.Width()
		if width < 1 {
			panic(panicWeightingWidth)
		}
	}

	// 2. Spectral bounds: supplied or probed, conservative either way.
	bounds := o.bounds
	if !o.hasBounds {
		var err error
		bounds, err = operator.EstimateBounds(op,
			operator.WithContext(o.ctx),
			operator.WithSeed(deriveSeed(o.seed, streamBounds)),
			operator.WithTolerance(o.margin/2))
		if err != nil {
			return nil, fmt.Errorf("kpm: New: %w", err)
		}
		o.bounds = bounds
		o.hasBounds = true
	}

	// 3. Fix the rescale transform for the lifetime of the estimator.
	scale, err := computeRescale(bounds, o.margin)
	if err != nil {
		return nil, err
	}

	s := &SpectralDensity{
		op:         op,
		n:          op.Dim(),
		width:      width,
		opts:       o,
		numMoments: o.moments,
		sampling:   o.sampling,
	}
	s.eng = engine{op: op, n: s.n, scale: scale, weighting: o.weighting, width: width}

	// 4. Seed the initial sample vectors sequentially (deterministic order),
	// then accumulate their moments in parallel.
	slots := make([]*sampleSlot, o.vectors)
	for i := range slots {
		slots[i] = s.eng.newSlot(o.factory)
	}
	if err = s.runSlots(o.ctx, slots, o.moments); err != nil {
		return nil, fmt.Errorf("kpm: New: %w", err)
	}
	s.slots = slots

	return s, nil
}

// runSlots extends every slot to target moments on a bounded worker pool.
// Each worker writes only its own slot, so there is no shared mutable state
// during computation; the merge happens later, in fixed slot order, on
// read. Cancellation is checked between samples, never mid-recursion, so
// completed slots stay valid and mergeable.
func (s *SpectralDensity) runSlots(ctx context.Context, slots []*sampleSlot, target int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.workers)

	var (
		hookMu sync.Mutex
		done   int
		total  = len(slots)
	)
	for _, sl := range slots {
		sl := sl
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := s.eng.extend(sl, target); err != nil {
				return err
			}
			if s.opts.onSample != nil {
				hookMu.Lock()
				done++
				s.opts.onSample(done, total)
				hookMu.Unlock()
			}

			return nil
		})
	}

	return g.Wait()
}

// normMoments returns the merged, normalized moment rows: the fixed-order
// sum over slots, divided by the sample count and the rescale factor a. The
// accumulation itself is never touched; normalization happens on read.
// Result layout: rows[k*width+i], k < numMoments.
func (s *SpectralDensity) normMoments() ([]float64, error) {
	if len(s.slots) == 0 {
		return nil, fmt.Errorf("kpm: no completed samples: %w", ErrNoSamples)
	}

	size := s.numMoments * s.width
	m := make([]float64, size)
	for _, sl := range s.slots {
		// Slots may hold more rows than the committed moment count after a
		// cancelled refinement; merge only the committed prefix.
		floats.Add(m, sl.rows[:size])
	}
	floats.Scale(1/(float64(len(s.slots))*s.eng.scale.a), m)

	return m, nil
}

// dampedCoeffs turns normalized moments into the Chebyshev series
// coefficients of the damped reconstruction for one component:
// c_0 = g_0·m_0, c_k = 2·g_k·m_k.
func (s *SpectralDensity) dampedCoeffs(m []float64, component int) []float64 {
	g := s.opts.kernel.Damping(s.numMoments)
	coeffs := make([]float64, s.numMoments)
	for k := range coeffs {
		coeffs[k] = g[k] * m[k*s.width+component]
		if k > 0 {
			coeffs[k] *= 2
		}
	}

	return coeffs
}

// Evaluate returns the spectral density at the given energies (original,
// un-rescaled units), element-wise: permuting the input permutes the output
// correspondingly.
//
// Energies outside the rescaled band yield ErrOutOfBand, or NaN entries
// under WithNaNOutside.
//
// Errors: ErrResolvedWeighting when the weighting resolves more than one
// component (use EvaluateResolved), ErrOutOfBand as above.
func (s *SpectralDensity) Evaluate(energies []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.width != 1 {
		return nil, fmt.Errorf("kpm: Evaluate: width %d: %w", s.width, ErrResolvedWeighting)
	}

	m, err := s.normMoments()
	if err != nil {
		return nil, err
	}
	coeffs := s.dampedCoeffs(m, 0)

	out := make([]float64, len(energies))
	for i, e := range energies {
		out[i], err = s.evalOne(coeffs, e)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// evalOne reconstructs one density value from damped series coefficients.
func (s *SpectralDensity) evalOne(coeffs []float64, e float64) (float64, error) {
	x := s.eng.scale.toCanonical(e)
	if x <= -1 || x >= 1 || math.IsNaN(x) {
		if s.opts.nanOutside {
			return math.NaN(), nil
		}
		band := s.eng.scale.band()

		return 0, fmt.Errorf("kpm: energy %g outside [%g, %g]: %w", e, band.Lo, band.Hi, ErrOutOfBand)
	}

	// ρ(e) = series(x) / (π·√(1-x²)); the 1/a energy-unit normalization is
	// already folded into the moments.
	return cheb.Eval(coeffs, x) / (math.Pi * math.Sqrt(1-x*x)), nil
}

// EvaluateResolved is the component-resolved variant of Evaluate: row i of
// the result holds the densities of every weighting component at
// energies[i]. Valid for any width, including 1.
func (s *SpectralDensity) EvaluateResolved(energies []float64) (*mat.Dense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := s.normMoments()
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(energies), s.width, nil)
	for c := 0; c < s.width; c++ {
		coeffs := s.dampedCoeffs(m, c)
		for i, e := range energies {
			v, evalErr := s.evalOne(coeffs, e)
			if evalErr != nil {
				return nil, evalErr
			}
			out.Set(i, c, v)
		}
	}

	return out, nil
}

// Curve reconstructs the density on the estimator's Gauss–Chebyshev grid of
// SamplingPoints() energies, returned in ascending energy order. This is
// the natural grid of the expansion: quadrature against these points (see
// Average) is exact for the truncated series.
func (s *SpectralDensity) Curve() (energies, densities []float64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.width != 1 {
		return nil, nil, fmt.Errorf("kpm: Curve: width %d: %w", s.width, ErrResolvedWeighting)
	}

	m, err := s.normMoments()
	if err != nil {
		return nil, nil, err
	}
	coeffs := s.dampedCoeffs(m, 0)
	xs, gammas := s.seriesAtNodes(coeffs)

	k := len(xs)
	energies = make([]float64, k)
	densities = make([]float64, k)
	for j := 0; j < k; j++ {
		// Reverse: nodes descend in x, callers want ascending energies.
		r := k - 1 - j
		energies[j] = s.eng.scale.fromCanonical(xs[r])
		densities[j] = gammas[r] / (math.Pi * math.Sqrt(1-xs[r]*xs[r]))
	}

	return energies, densities, nil
}

// seriesAtNodes evaluates the damped series at the K Gauss–Chebyshev nodes
// by direct cosine sums: γ_j = c_0 + Σ_{k≥1} c_k·cos(k·θ_j). O(N·K).
func (s *SpectralDensity) seriesAtNodes(coeffs []float64) (xs, gammas []float64) {
	k := s.sampling
	xs = make([]float64, k)
	gammas = make([]float64, k)
	for j := 0; j < k; j++ {
		theta := math.Pi * (float64(j) + 0.5) / float64(k)
		xs[j] = math.Cos(theta)
		sum := coeffs[0]
		for q := 1; q < len(coeffs); q++ {
			sum += coeffs[q] * math.Cos(float64(q)*theta)
		}
		gammas[j] = sum
	}

	return xs, gammas
}

// Average integrates the reconstructed density against a weight function
// over the spectral band using Gauss–Chebyshev quadrature on the sampling
// grid:
//
//	∫ ρ(e)·f(e) de ≈ (a/K)·Σ_j γ_j·f(e_j).
//
// A nil weight integrates the density itself; for the identity weighting
// this is exactly 1 up to floating-point rounding, the estimator's core
// normalization check. A Fermi function yields the filled-state fraction.
func (s *SpectralDensity) Average(f func(float64) float64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.width != 1 {
		return 0, fmt.Errorf("kpm: Average: width %d: %w", s.width, ErrResolvedWeighting)
	}

	m, err := s.normMoments()
	if err != nil {
		return 0, err
	}
	coeffs := s.dampedCoeffs(m, 0)
	xs, gammas := s.seriesAtNodes(coeffs)

	var sum float64
	for j, g := range gammas {
		if f != nil {
			g *= f(s.eng.scale.fromCanonical(xs[j]))
		}
		sum += g
	}

	return s.eng.scale.a / float64(s.sampling) * sum, nil
}

// AverageCheby integrates the density against a weight function given by
// its Chebyshev coefficients in the RESCALED variable x ∈ (-1, 1) (plain-T
// basis, e.g. from cheb.Fit). Orthogonality collapses the integral to a
// closed-form moment-domain sum with no quadrature or reconstruction:
//
//	∫ ρ(e)·f(x(e)) de = Σ_k f_k·g_k·μ_k.
//
// Coefficients beyond the moment count carry no information and are
// ignored.
func (s *SpectralDensity) AverageCheby(coeffs []float64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.width != 1 {
		return 0, fmt.Errorf("kpm: AverageCheby: width %d: %w", s.width, ErrResolvedWeighting)
	}

	m, err := s.normMoments()
	if err != nil {
		return 0, err
	}
	g := s.opts.kernel.Damping(s.numMoments)

	limit := len(coeffs)
	if limit > s.numMoments {
		limit = s.numMoments
	}

	var sum float64
	for k := 0; k < limit; k++ {
		sum += coeffs[k] * g[k] * m[k]
	}

	// Moments fold in 1/a for densities per unit energy; the energy
	// integral multiplies it back.
	return s.eng.scale.a * sum, nil
}

// StdError estimates the stochastic standard error of the density at each
// energy: the spread of the per-sample reconstructions divided by √R.
// Needs at least two completed samples (ErrNoSamples otherwise). The error
// shrinks as 1/√R; request more vectors via IncreaseAccuracy to tighten
// it. Finite-sample spread is a quantifiable property, not a failure.
func (s *SpectralDensity) StdError(energies []float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.width != 1 {
		return nil, fmt.Errorf("kpm: StdError: width %d: %w", s.width, ErrResolvedWeighting)
	}
	r := len(s.slots)
	if r < 2 {
		return nil, fmt.Errorf("kpm: StdError: %d samples: %w", r, ErrNoSamples)
	}

	// Per-sample densities: each slot normalized on its own (count 1).
	perSample := make([][]float64, r)
	invA := 1 / s.eng.scale.a
	for i, sl := range s.slots {
		m := make([]float64, s.numMoments)
		floats.ScaleTo(m, invA, sl.rows[:s.numMoments])
		coeffs := s.dampedCoeffs(m, 0)

		densities := make([]float64, len(energies))
		for j, e := range energies {
			v, err := s.evalOne(coeffs, e)
			if err != nil {
				return nil, err
			}
			densities[j] = v
		}
		perSample[i] = densities
	}

	out := make([]float64, len(energies))
	sample := make([]float64, r)
	sqrtR := math.Sqrt(float64(r))
	for j := range energies {
		for i := range perSample {
			sample[i] = perSample[i][j]
		}
		out[j] = stat.StdDev(sample, nil) / sqrtR
	}

	return out, nil
}

// Moments returns a copy of the merged, normalized moment rows
// (NumMoments·Width values, row-major).
func (s *SpectralDensity) Moments() ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.normMoments()
}

// Dim returns the operator dimension n.
func (s *SpectralDensity) Dim() int { return s.n }

// Width returns the number of weighting components per moment (1 for a
// plain or operator-weighted density).
func (s *SpectralDensity) Width() int { return s.width }

// NumMoments returns the current Chebyshev expansion order N.
func (s *SpectralDensity) NumMoments() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.numMoments
}

// NumVectors returns the number of completed sample vectors R.
func (s *SpectralDensity) NumVectors() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.slots)
}

// SamplingPoints returns the Gauss–Chebyshev grid size K used by Curve and
// Average.
func (s *SpectralDensity) SamplingPoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sampling
}

// Bounds returns the energy band covered by the rescale transform, i.e. the
// image of the canonical interval [-1, 1]. Slightly wider than the supplied
// or probed spectral bounds, by the margin.
func (s *SpectralDensity) Bounds() operator.Bounds {
	return s.eng.scale.band()
}

// Resolution returns the kernel-limited energy resolution achievable on the
// current sampling grid: 2a/(K/1.6).
func (s *SpectralDensity) Resolution() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resolutionLocked()
}

func (s *SpectralDensity) resolutionLocked() float64 {
	return 2 * s.eng.scale.a / (float64(s.sampling) / resolutionFactor)
}
