package kpm

import (
	"math"
)

// VectorFactory produces the sample vectors of the stochastic trace
// estimate.
//
// Contract:
//   - Next fills dst (length = operator dimension n) with the next sample.
//   - Over many draws, E[v·v*] = I/n, so that Tr(A) ≈ n·E[⟨v|A|v⟩]. The
//     bundled random factories produce exactly unit-norm vectors.
//   - Vectors must be non-zero with probability 1; a zero vector yields an
//     uninformative (all-zero) sample, not an error.
//
// Factories are pluggable: a factory supported on a prescribed site subset
// turns the global trace estimator into a local density estimator.
//
// Next is called sequentially under the estimator lock; implementations
// need not be goroutine-safe.
type VectorFactory interface {
	Next(dst []complex128)
}

// randomPhase draws i.i.d. unit-modulus phases per entry, scaled to unit
// norm. For trace estimation of generic operators this has lower variance
// than Gaussian entries.
type randomPhase struct {
	rng interface{ Float64() float64 }
}

// NewRandomPhase returns the default sample-vector factory: entries
// exp(2πiθ)/√n with i.i.d. uniform phases θ. Seed 0 selects a stable
// default stream; same seed ⇒ identical vector sequence.
func NewRandomPhase(seed int64) VectorFactory {
	return &randomPhase{rng: rngFromSeed(seed)}
}

func (f *randomPhase) Next(dst []complex128) {
	inv := 1 / math.Sqrt(float64(len(dst)))
	for i := range dst {
		theta := 2 * math.Pi * f.rng.Float64()
		dst[i] = complex(math.Cos(theta)*inv, math.Sin(theta)*inv)
	}
}

// randomSigns draws real Rademacher entries ±1/√n. Useful when the operator
// and weighting are purely real and complex arithmetic buys nothing.
type randomSigns struct {
	rng interface{ Int63() int64 }
}

// NewRandomSigns returns a factory of real ±1/√n entries (Rademacher).
func NewRandomSigns(seed int64) VectorFactory {
	return &randomSigns{rng: rngFromSeed(seed)}
}

func (f *randomSigns) Next(dst []complex128) {
	inv := 1 / math.Sqrt(float64(len(dst)))
	for i := range dst {
		if f.rng.Int63()&1 == 0 {
			dst[i] = complex(inv, 0)
		} else {
			dst[i] = complex(-inv, 0)
		}
	}
}

// siteCycler deterministically cycles through basis vectors e_s for a
// prescribed site list: with R = len(sites) sample vectors the "stochastic"
// trace becomes the exact sum of the listed diagonal elements, i.e. an
// exact local density.
type siteCycler struct {
	sites []int
	next  int
}

// NewSiteCycler returns a deterministic factory cycling through the basis
// vectors of the given site indices. Panics when no site is given or an
// index is negative; an index beyond the operator dimension surfaces as an
// out-of-range panic on the first draw.
func NewSiteCycler(sites ...int) VectorFactory {
	if len(sites) == 0 {
		panic(panicNoSites)
	}
	for _, s := range sites {
		if s < 0 {
			panic(panicSiteInvalid)
		}
	}

	cp := make([]int, len(sites))
	copy(cp, sites)

	return &siteCycler{sites: cp}
}

func (f *siteCycler) Next(dst []complex128) {
	for i := range dst {
		dst[i] = 0
	}
	dst[f.sites[f.next]] = 1
	f.next = (f.next + 1) % len(f.sites)
}
