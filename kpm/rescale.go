package kpm

import (
	"fmt"
	"math"

	"github.com/katalvlaran/spectral/operator"
)

// rescaleParams is the affine transform mapping the operator spectrum into
// the canonical interval: x = (e - c)/a. With margin ε the rescaled
// spectrum lies a factor ε/2 inside (-1, 1), which keeps the 1/√(1-x²)
// reconstruction weight finite across the whole physical band.
type rescaleParams struct {
	a float64 // scale:  (Hi - Lo) / (2 - margin)
	c float64 // center: (Hi + Lo) / 2
}

// computeRescale derives the rescale parameters from conservative spectral
// bounds. Pure; the result is fixed at construction, since changing bounds
// after moments have been accumulated would invalidate them (see
// ErrInconsistentRescaling in refine.go).
func computeRescale(b operator.Bounds, margin float64) (rescaleParams, error) {
	if math.IsNaN(b.Lo) || math.IsNaN(b.Hi) || math.IsInf(b.Lo, 0) || math.IsInf(b.Hi, 0) || b.Lo > b.Hi {
		return rescaleParams{}, fmt.Errorf("kpm: rescale: bounds [%g, %g]: %w", b.Lo, b.Hi, operator.ErrOperator)
	}

	// Degenerate band: a single eigenvalue has no density to resolve.
	// The threshold mirrors the bounds-probe accuracy (margin/2 relative).
	tol := margin / 2
	if b.Width() <= math.Abs(b.Lo+b.Hi)*tol/2 {
		return rescaleParams{}, fmt.Errorf("kpm: rescale: bounds [%g, %g]: %w", b.Lo, b.Hi, operator.ErrFlatSpectrum)
	}

	return rescaleParams{
		a: b.Width() / (2 - margin),
		c: b.Center(),
	}, nil
}

// toCanonical maps an energy into the rescaled variable x = (e - c)/a.
func (p rescaleParams) toCanonical(e float64) float64 { return (e - p.c) / p.a }

// fromCanonical maps a rescaled point back to energy units.
func (p rescaleParams) fromCanonical(x float64) float64 { return x*p.a + p.c }

// band returns the energy interval covered by the rescale transform,
// i.e. the image of [-1, 1].
func (p rescaleParams) band() operator.Bounds {
	return operator.Bounds{Lo: p.c - p.a, Hi: p.c + p.a}
}
