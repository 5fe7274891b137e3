package kpm

import (
	"sync"

	"gonum.org/v1/gonum/blas/cblas128"

	"github.com/katalvlaran/spectral/operator"
)

// Weighting is the auxiliary-operator capability of operator-weighted
// densities: it turns a (bra, ket) vector pair into one or more real moment
// contributions Re⟨bra|W|ket⟩.
//
// Contract:
//   - Width is the number of components a single pair contributes (1 for a
//     plain operator expectation, len(sites) for a site-resolved density).
//   - Accumulate ADDS the contributions into dst (length Width); it never
//     overwrites.
//   - Accumulate must be safe for concurrent calls: samples run on a worker
//     pool with disjoint dst rows.
//
// The imaginary parts of Hermitian expectation values are stochastic noise
// and are discarded by contract.
type Weighting interface {
	Width() int
	Accumulate(dst []float64, bra, ket []complex128)
}

// opWeighting weights moments by a caller-supplied linear operator W:
// dst[0] += Re⟨bra|W|ket⟩. Scratch for W·ket lives in a sync.Pool so that
// concurrent samples never share buffers.
type opWeighting struct {
	w    operator.Linear
	pool sync.Pool
}

// NewOperatorWeighting weights the spectral density by the expectation of
// w, yielding the spectral decomposition ρ_W(e) = ρ(e)·W(e). The weighting
// operator need not be Hermitian, but it is applied consistently on the ket
// side. Panics on a nil operator.
func NewOperatorWeighting(w operator.Linear) Weighting {
	if w == nil {
		panic(panicNilWeighting)
	}

	ow := &opWeighting{w: w}
	ow.pool.New = func() interface{} {
		buf := make([]complex128, w.Dim())

		return &buf
	}

	return ow
}

func (ow *opWeighting) Width() int { return 1 }

func (ow *opWeighting) Accumulate(dst []float64, bra, ket []complex128) {
	bufp := ow.pool.Get().(*[]complex128)
	buf := *bufp

	ow.w.Apply(buf, ket)
	dst[0] += real(cblas128.Dotc(
		cblas128.Vector{N: len(bra), Inc: 1, Data: bra},
		cblas128.Vector{N: len(buf), Inc: 1, Data: buf}))

	ow.pool.Put(bufp)
}

// siteWeighting resolves the density per lattice site: component i receives
// Re(conj(bra[sites[i]])·ket[sites[i]]), the diagonal matrix element of the
// projector onto that site.
type siteWeighting struct {
	sites []int
}

// NewSiteWeighting returns a site-resolved weighting: the estimator's
// moment rows carry one component per listed site, and EvaluateResolved
// yields the local density of states at each. Panics when no site is given
// or an index is negative.
func NewSiteWeighting(sites ...int) Weighting {
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

	return &siteWeighting{sites: cp}
}

func (sw *siteWeighting) Width() int { return len(sw.sites) }

func (sw *siteWeighting) Accumulate(dst []float64, bra, ket []complex128) {
	for i, s := range sw.sites {
		// Re(conj(a)·b) without forming the complex product.
		dst[i] += real(bra[s])*real(ket[s]) + imag(bra[s])*imag(ket[s])
	}
}
