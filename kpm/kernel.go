// SPDX-License-Identifier: MIT

// Package kpm - damping kernels.
//
// A truncated Chebyshev expansion reconstructs the density with Gibbs
// oscillations near sharp features. Damping multiplies moment k by a
// coefficient g_k that decays with k, trading oscillation for a known
// broadening. Damping is applied at reconstruction time only; the raw
// moments stay available for re-damping at a different resolution without
// recomputation.
package kpm

import "math"

// Kernel maps a moment count n to the damping coefficients g_0..g_{n-1}.
//
// Invariants every kernel must satisfy:
//   - g_0 = 1 (the total weight, i.e. the density normalization, is kept);
//   - coefficients never increase with k.
type Kernel interface {
	Damping(n int) []float64
}

// Jackson is the default damping kernel:
//
//	g_k = [(N-k+1)·cos(πk/(N+1)) + sin(πk/(N+1))·cot(π/(N+1))] / (N+1).
//
// It is optimal for density-of-states reconstruction: the broadening is
// close to Gaussian with width π/N and the damped series is non-negative
// for non-negative densities.
type Jackson struct{}

func (Jackson) Damping(n int) []float64 {
	if n < 1 {
		return nil
	}

	var (
		g     = make([]float64, n)
		denom = float64(n + 1)
		q     = math.Pi / denom
		cot   = math.Cos(q) / math.Sin(q)
	)
	for k := range g {
		g[k] = (float64(n-k+1)*math.Cos(q*float64(k)) + math.Sin(q*float64(k))*cot) / denom
	}

	return g
}

// Lorentz is the damping kernel g_k = sinh(λ(1-k/N))/sinh(λ). It broadens
// sharp features into Lorentzians, matching the analytic structure of Green
// functions; the default λ balances resolution against oscillation.
type Lorentz struct {
	// Lambda is the damping strength; 0 selects DefaultLorentzLambda.
	Lambda float64
}

func (l Lorentz) Damping(n int) []float64 {
	if n < 1 {
		return nil
	}

	lambda := l.Lambda
	if lambda == 0 {
		lambda = DefaultLorentzLambda
	}

	var (
		g    = make([]float64, n)
		sinh = math.Sinh(lambda)
	)
	for k := range g {
		g[k] = math.Sinh(lambda*(1-float64(k)/float64(n))) / sinh
	}

	return g
}

// Dirichlet applies no damping at all (g_k = 1): plain truncation, with all
// its Gibbs oscillations. Useful for diagnostics and convergence studies.
type Dirichlet struct{}

func (Dirichlet) Damping(n int) []float64 {
	if n < 1 {
		return nil
	}

	g := make([]float64, n)
	for k := range g {
		g[k] = 1
	}

	return g
}
