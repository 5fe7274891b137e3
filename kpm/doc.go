// Package kpm estimates the spectral density of a large, sparse, Hermitian
// linear operator with the Kernel Polynomial Method: a Chebyshev expansion
// of the density combined with stochastic trace estimation over random
// vectors. The operator is never diagonalized; the only access is
// "apply to vector".
//
// What:
//
//   - New: rescale the spectrum into (-1, 1), draw R sample vectors, and
//     accumulate N Chebyshev moments per sample via the matvec recursion
//     t_{k+1} = 2R·t_k - t_{k-1}.
//   - Evaluate / EvaluateResolved: densities at arbitrary energies from the
//     kernel-damped series ρ(x) = [g_0·m_0 + 2·Σ g_k·m_k·T_k(x)]/(π√(1-x²)).
//   - Curve: the density on the natural Gauss–Chebyshev grid.
//   - Average / AverageCheby: integrals of the density against a weight
//     function (quadrature on the grid, or closed-form in moment domain
//     when the weight's Chebyshev expansion is known), e.g. the filled
//     state count under a Fermi function; ≡ 1 for the identity weight.
//   - IncreaseAccuracy / RefineResolution: append-only refinement. More
//     moments resume each sample's recursion, more vectors extend the
//     moving average; nothing is recomputed from zero.
//   - StdError: stochastic error bars from the per-sample spread.
//
// Why:
//   - Exact diagonalization is O(n³); a KPM estimate is O(R·N·nnz) and
//     resolves the full band at kernel-limited resolution ~2a/N, which is
//     what transport, DOS and local-density studies actually need.
//
// Key types:
//
//   - SpectralDensity: the refinable result object (RWMutex-guarded)
//   - VectorFactory:  sample-vector source (random phase default; site
//     cyclers turn the trace estimate into exact local densities)
//   - Weighting:      auxiliary operator W for operator-weighted densities
//   - Kernel:         damping coefficients (Jackson default, Lorentz,
//     Dirichlet)
//
// Concurrency:
//
//   - Sample vectors are embarrassingly parallel: each runs on a worker
//     pool slot with no shared mutable state; the merge is a fixed-order
//     reduction, so results are bit-identical for any worker count.
//   - Cancellation is cooperative, checked between samples only, so
//     partial results remain valid and mergeable.
//
// Errors:
//
//   - operator.ErrOperator      malformed operator or non-finite action
//   - operator.ErrFlatSpectrum  single-eigenvalue spectrum
//   - ErrInconsistentRescaling  bounds/margin/factory/weighting change after
//     moments exist
//   - ErrOutOfBand              energy query outside the rescaled band
//   - ErrInvalidRefinement      refinement target below current state
//   - ErrResolvedWeighting      scalar API on a component-resolved estimator
//   - ErrSamplingTooCoarse      sampling grid smaller than the expansion
//   - ErrNoSamples              statistics need at least two samples
//
// Complexity:
//
//   - New / IncreaseAccuracy: O(R·N·cost(Apply)) time, O(R·n) space
//   - Evaluate:               O(N·len(energies))
//   - Curve / Average:        O(N·K)
//
// Stochastic estimation error (finite-sample variance) is not an error
// condition: it is a quantifiable property, exposed through StdError and
// shrunk by requesting more vectors.
package kpm
