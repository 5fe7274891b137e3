// Package spectral estimates the spectral density of large, sparse,
// Hermitian linear operators — Hamiltonians of lattice models, graph
// Laplacians, covariance operators — without ever diagonalizing them.
//
// 🚀 What is spectral?
//
//	A deterministic, thread-safe implementation of the Kernel Polynomial
//	Method (KPM) that brings together:
//		• Operator adapters: wrap any "apply to vector" capability — callback, CSR, dense
//		• Spectral bounds: conservative Lanczos probes of the extreme eigenvalues
//		• Chebyshev moments: O(N) matvec recursion per random sample vector
//		• Kernel damping: Jackson (default), Lorentz, Dirichlet
//		• Reconstruction: densities at arbitrary energies, Gauss–Chebyshev averages
//		• Refinement: grow moments and sample vectors without recomputation
//
// ✨ Why choose spectral?
//
//   - Deterministic – seeded RNG streams, identical results across runs
//   - Rock-solid guarantees – R/W locks, sentinel errors, in-code docs & hooks
//   - Parallel – per-sample fan-out over a bounded worker pool, bit-stable merges
//   - Extensible – plug in custom vector factories, weightings and kernels
//
// Under the hood, everything is organized under three subpackages:
//
//	operator/ — the Linear capability, sparse/dense adapters & spectral bounds
//	cheb/     — Chebyshev nodes, Clenshaw evaluation & function fitting
//	kpm/      — moments, kernels, SpectralDensity & accuracy refinement
//
// Quick sketch:
//
//	op, _ := operator.New(n, hamiltonian)      // wrap a matvec callback
//	rho, _ := kpm.New(op, kpm.WithSeed(7))     // estimate the density of states
//	norm, _ := rho.Average(nil)                // ≈ 1.0 by construction
//	dens, _ := rho.Evaluate([]float64{0, 0.5}) // densities at chosen energies
//
// Dive into the kpm package documentation for the full model: moments,
// kernels, weightings, local densities and accuracy refinement.
//
//	go get github.com/katalvlaran/spectral
package spectral
