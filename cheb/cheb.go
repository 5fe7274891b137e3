package cheb

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadDegree is returned when a node count or fit degree below 1 is
// requested; a Chebyshev expansion needs at least the constant term.
var ErrBadDegree = errors.New("cheb: degree must be at least 1")

// Nodes returns the k Gauss–Chebyshev abscissas x_j = cos(π(j+½)/k),
// j = 0..k-1, in natural θ order (descending in x). These are the zeros of
// T_k and the quadrature points of the Gauss–Chebyshev rule.
func Nodes(k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("cheb: Nodes(%d): %w", k, ErrBadDegree)
	}

	xs := make([]float64, k)
	for j := range xs {
		xs[j] = math.Cos(math.Pi * (float64(j) + 0.5) / float64(k))
	}

	return xs, nil
}

// Eval evaluates the Chebyshev series Σ c_k·T_k(x) by the Clenshaw
// recurrence. Empty coefficients evaluate to 0. Numerically stable for
// |x| ≤ 1; outside that interval the recurrence grows like the polynomials
// themselves.
func Eval(coeffs []float64, x float64) float64 {
	switch len(coeffs) {
	case 0:
		return 0
	case 1:
		return coeffs[0]
	}

	// Clenshaw: b_k = c_k + 2x·b_{k+1} - b_{k+2}, result c_0 + x·b_1 - b_2.
	var b1, b2 float64
	for k := len(coeffs) - 1; k >= 1; k-- {
		b1, b2 = coeffs[k]+2*x*b1-b2, b1
	}

	return coeffs[0] + x*b1 - b2
}

// Fit computes the degree-d Chebyshev interpolant of f on [-1, 1] by cosine
// sums at the d+1 Gauss–Chebyshev nodes:
//
//	c_0 = (1/K)·Σ_j f(x_j),  c_k = (2/K)·Σ_j f(x_j)·cos(k·θ_j),  K = d+1.
//
// The returned coefficients are in the plain-T basis accepted by Eval.
// For f continuous on [-1, 1] the interpolant converges uniformly as the
// degree grows; for analytic f convergence is geometric.
func Fit(f func(float64) float64, degree int) ([]float64, error) {
	if degree < 1 {
		return nil, fmt.Errorf("cheb: Fit(degree=%d): %w", degree, ErrBadDegree)
	}
	if f == nil {
		return nil, fmt.Errorf("cheb: Fit: nil function: %w", ErrBadDegree)
	}

	k := degree + 1
	// f at the nodes; θ_j = π(j+½)/K.
	fx := make([]float64, k)
	for j := range fx {
		fx[j] = f(math.Cos(math.Pi * (float64(j) + 0.5) / float64(k)))
	}

	coeffs := make([]float64, k)
	for m := range coeffs {
		var sum float64
		for j := range fx {
			sum += fx[j] * math.Cos(float64(m)*math.Pi*(float64(j)+0.5)/float64(k))
		}
		coeffs[m] = 2 * sum / float64(k)
	}
	coeffs[0] /= 2

	return coeffs, nil
}
