// Package operator defines the linear-operator capability consumed by the
// KPM estimator, concrete adapters for common matrix backends, and a
// conservative estimator of the operator's spectral bounds.
//
// What:
//
//   - Linear: the opaque capability {Dim, Apply(dst, src)} over complex128
//     vectors. The estimator never sees more than this surface; lattice or
//     graph construction stays with the caller.
//   - New: wrap a plain matvec callback as a Linear.
//   - Sparse: compile a coordinate list into a compressed-row backend, the
//     intended representation for large operators.
//   - Dense / Sym: adapters over gonum dense complex and real-symmetric
//     matrices (cblas128.Gemv and mat.VecDense.MulVec under the hood).
//   - EstimateBounds: a Lanczos probe that tracks extremal Rayleigh
//     quotients and widens the resulting Ritz interval outward by the
//     residual bound, so the returned Bounds never underestimate the
//     spectrum.
//
// Why:
//   - KPM rescales the spectrum into (-1, 1) before expanding; the rescale
//     transform is only valid when the supplied bounds truly cover all
//     eigenvalues. A conservative (possibly too wide) interval merely costs
//     resolution; an underestimate silently corrupts the expansion.
//
// Concurrency:
//   - Linear.Apply must be safe for concurrent calls: the moment engine
//     fans samples out across a worker pool. The adapters in this package
//     satisfy this (Sym keeps its scratch in a sync.Pool).
//
// Errors:
//
//   - ErrOperator      zero dimension, nil action, or non-finite values
//   - ErrFlatSpectrum  spectrum collapses to a single eigenvalue
//   - ErrProbeFailed   probe start vector unusable (zero or wrong length)
//
// Complexity:
//
//   - Sparse.Apply:     O(n + nnz)
//   - Dense.Apply:      O(n²)
//   - Sym.Apply:        O(n²) (two real multiplies)
//   - EstimateBounds:   O(k·cost(Apply) + k³) for k probe iterations
package operator
