// Package kpm_test - shared fixtures: a 1-d chain Hamiltonian, a diagonal
// operator with a known spectrum, and a call-counting vector factory.
package kpm_test

import (
	"math"

	"github.com/katalvlaran/spectral/kpm"
	"github.com/katalvlaran/spectral/operator"
)

// buildChain returns the Hamiltonian of a 1-d chain of n sites with uniform
// hopping 1 and open ends: (H·v)[i] = v[i-1] + v[i+1]. Its eigenvalues are
// 2·cos(kπ/(n+1)), k = 1..n, so the spectrum fills (-2, 2) and the bulk
// density of states approaches 1/(π·√(4-e²)).
func buildChain(n int) operator.Linear {
	op, err := operator.New(n, func(dst, src []complex128) {
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
		panic(err)
	}

	return op
}

// chainExtremes returns the analytic extreme eigenvalues of buildChain(n).
func chainExtremes(n int) (lo, hi float64) {
	hi = 2 * math.Cos(math.Pi/float64(n+1))

	return -hi, hi
}

// buildDiag returns a diagonal operator with the given spectrum, one
// eigenvalue per site. The exact density is a sum of delta peaks.
func buildDiag(eigs []float64) operator.Linear {
	op, err := operator.New(len(eigs), func(dst, src []complex128) {
		for i := range dst {
			dst[i] = complex(eigs[i], 0) * src[i]
		}
	})
	if err != nil {
		panic(err)
	}

	return op
}

// identityOp returns the identity operator of dimension n, for weighting
// equivalence tests.
func identityOp(n int) operator.Linear {
	op, err := operator.New(n, func(dst, src []complex128) {
		copy(dst, src)
	})
	if err != nil {
		panic(err)
	}

	return op
}

// countingFactory wraps a factory and counts Next calls, to prove that
// no-op refinements draw nothing.
type countingFactory struct {
	inner kpm.VectorFactory
	calls int
}

func newCountingFactory(seed int64) *countingFactory {
	return &countingFactory{inner: kpm.NewRandomPhase(seed)}
}

func (f *countingFactory) Next(dst []complex128) {
	f.calls++
	f.inner.Next(dst)
}
