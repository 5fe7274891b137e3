// Package cheb provides the Chebyshev-polynomial primitives used by the KPM
// density reconstructor: Gauss–Chebyshev nodes, Clenshaw evaluation of a
// Chebyshev series, and fitting of a scalar function on [-1, 1].
//
// Conventions:
//
//   - Series are in the plain-T basis: f(x) ≈ Σ_{k=0}^{d} c_k·T_k(x) with
//     T_k the Chebyshev polynomial of the first kind. No implicit halving of
//     c_0; coefficients returned by Fit are directly consumable by Eval.
//   - Nodes(k) returns the Gauss–Chebyshev abscissas x_j = cos(π(j+½)/k),
//     in natural θ order (descending in x).
//
// Errors:
//
//   - ErrBadDegree  requested node count or fit degree below 1
//
// Complexity:
//
//   - Nodes: O(k) · Eval: O(len(coeffs)) · Fit: O(d²)
package cheb
