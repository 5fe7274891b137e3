// Package kpm_test provides runnable, deterministic examples for the
// spectral-density estimator. Fixed seeds and unit-norm sample vectors make
// every // Output: block stable on CI.
package kpm_test

import (
	"fmt"
	"math"

	"github.com/katalvlaran/spectral/kpm"
	"github.com/katalvlaran/spectral/operator"
)

// Example estimates the density of states of a 1-d chain with uniform
// hopping and verifies the trace normalization: the density integrates to
// exactly 1 for the identity weight.
func Example() {
	// 1. The Hamiltonian as an opaque matvec: (H·v)[i] = v[i-1] + v[i+1].
	const n = 100
	chain, err := operator.New(n, func(dst, src []complex128) {
		for i := range dst {
			var v complex128
			if i > 0 {
				v += src[i-1]
			}
			if i < n-1 {
				v += src[i+1]
			}
			dst[i] = v
		}
	})
	if err != nil {
		fmt.Println("operator:", err)

		return
	}

	// 2. Estimate with the default budget (100 moments, 10 vectors).
	rho, err := kpm.New(chain, kpm.WithSeed(42))
	if err != nil {
		fmt.Println("kpm:", err)

		return
	}

	// 3. The identity average is the core correctness check.
	norm, err := rho.Average(nil)
	if err != nil {
		fmt.Println("average:", err)

		return
	}

	fmt.Printf("moments: %d, vectors: %d\n", rho.NumMoments(), rho.NumVectors())
	fmt.Printf("DOS norm: %.4f\n", norm)
	// Output:
	// moments: 100, vectors: 10
	// DOS norm: 1.0000
}

// ExampleSpectralDensity_IncreaseAccuracy refines an estimate in place:
// previously accumulated moments and samples are reused, only the increment
// is computed.
func ExampleSpectralDensity_IncreaseAccuracy() {
	const n = 64
	chain, _ := operator.New(n, func(dst, src []complex128) {
		for i := range dst {
			var v complex128
			if i > 0 {
				v += src[i-1]
			}
			if i < n-1 {
				v += src[i+1]
			}
			dst[i] = v
		}
	})

	rho, err := kpm.New(chain,
		kpm.WithMoments(32), kpm.WithVectors(4), kpm.WithSeed(7))
	if err != nil {
		fmt.Println("kpm:", err)

		return
	}
	fmt.Printf("before: N=%d R=%d\n", rho.NumMoments(), rho.NumVectors())

	if err = rho.IncreaseAccuracy(kpm.WithMoments(128), kpm.WithVectors(12)); err != nil {
		fmt.Println("refine:", err)

		return
	}
	fmt.Printf("after:  N=%d R=%d\n", rho.NumMoments(), rho.NumVectors())

	// Shrinking is refused: refinement is monotone.
	err = rho.IncreaseAccuracy(kpm.WithMoments(16))
	fmt.Println("shrink allowed:", err == nil)
	// Output:
	// before: N=32 R=4
	// after:  N=128 R=12
	// shrink allowed: false
}

// ExampleNewSiteCycler computes an exact local density of states by cycling
// deterministic basis vectors through the first sites of the chain.
func ExampleNewSiteCycler() {
	const n = 32
	chain, _ := operator.New(n, func(dst, src []complex128) {
		for i := range dst {
			var v complex128
			if i > 0 {
				v += src[i-1]
			}
			if i < n-1 {
				v += src[i+1]
			}
			dst[i] = v
		}
	})

	// One pass over the listed sites makes the "stochastic" trace exact.
	rho, err := kpm.New(chain,
		kpm.WithMoments(64), kpm.WithVectors(4),
		kpm.WithVectorFactory(kpm.NewSiteCycler(0, 1, 2, 3)))
	if err != nil {
		fmt.Println("kpm:", err)

		return
	}

	norm, err := rho.Average(nil)
	if err != nil {
		fmt.Println("average:", err)

		return
	}

	// The local density over 4 of 32 sites carries 4/32 of the total
	// weight... normalized per sample, so it still integrates to 1.
	fmt.Printf("local DOS norm: %.4f\n", norm)
	// Output:
	// local DOS norm: 1.0000
}

// ExampleSpectralDensity_Average integrates the density against a Fermi
// weight, yielding the filled-state fraction at the given temperature.
func ExampleSpectralDensity_Average() {
	const n = 80
	chain, _ := operator.New(n, func(dst, src []complex128) {
		for i := range dst {
			var v complex128
			if i > 0 {
				v += src[i-1]
			}
			if i < n-1 {
				v += src[i+1]
			}
			dst[i] = v
		}
	})

	rho, err := kpm.New(chain, kpm.WithSeed(1))
	if err != nil {
		fmt.Println("kpm:", err)

		return
	}

	fermi := func(e float64) float64 { return 1 / (1 + math.Exp(4*e)) }
	filled, err := rho.Average(fermi)
	if err != nil {
		fmt.Println("average:", err)

		return
	}

	// A symmetric band at half filling.
	fmt.Printf("filled fraction ≈ 0.5: %v\n", math.Abs(filled-0.5) < 0.05)
	// Output:
	// filled fraction ≈ 0.5: true
}
