package cheb_test

import (
	"fmt"
	"math"

	"github.com/katalvlaran/spectral/cheb"
)

// ExampleFit fits exp on [-1, 1] and evaluates the series with Clenshaw's
// recurrence; an entire function converges geometrically in the degree.
func ExampleFit() {
	coeffs, err := cheb.Fit(math.Exp, 16)
	if err != nil {
		fmt.Println("fit:", err)

		return
	}

	for _, x := range []float64{-1, 0, 0.5} {
		fmt.Printf("exp(%+.1f) ≈ %.6f\n", x, cheb.Eval(coeffs, x))
	}
	// Output:
	// exp(-1.0) ≈ 0.367879
	// exp(+0.0) ≈ 1.000000
	// exp(+0.5) ≈ 1.648721
}

// ExampleNodes lists the Gauss–Chebyshev abscissas, the zeros of T_4.
func ExampleNodes() {
	xs, err := cheb.Nodes(4)
	if err != nil {
		fmt.Println("nodes:", err)

		return
	}

	for _, x := range xs {
		fmt.Printf("%+.4f\n", x)
	}
	// Output:
	// +0.9239
	// +0.3827
	// -0.3827
	// -0.9239
}
