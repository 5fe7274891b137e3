// Package operator_test - adapter construction, contract validation and
// matvec correctness for the dense and symmetric backends.
package operator_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/spectral/operator"
)

// chainMatVec returns the matvec of an open 1-d chain with uniform hopping:
// (H·v)[i] = v[i-1] + v[i+1].
func chainMatVec(n int) operator.MatVec {
	return func(dst, src []complex128) {
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
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := operator.New(0, chainMatVec(0))
	assert.ErrorIs(t, err, operator.ErrOperator)

	_, err = operator.New(-3, chainMatVec(4))
	assert.ErrorIs(t, err, operator.ErrOperator)

	_, err = operator.New(4, nil)
	assert.ErrorIs(t, err, operator.ErrOperator)

	op, err := operator.New(4, chainMatVec(4))
	require.NoError(t, err)
	assert.Equal(t, 4, op.Dim())
}

type zeroDim struct{}

func (zeroDim) Dim() int                { return 0 }
func (zeroDim) Apply(_, _ []complex128) {}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, operator.Validate(nil), operator.ErrOperator)
	assert.ErrorIs(t, operator.Validate(zeroDim{}), operator.ErrOperator)

	op, err := operator.New(2, chainMatVec(2))
	require.NoError(t, err)
	assert.NoError(t, operator.Validate(op))
}

func TestDense_Validation(t *testing.T) {
	_, err := operator.Dense(nil)
	assert.ErrorIs(t, err, operator.ErrOperator)

	_, err = operator.Dense(mat.NewCDense(2, 3, nil))
	assert.ErrorIs(t, err, operator.ErrOperator)
}

func TestDense_Apply(t *testing.T) {
	// A 2×2 Hermitian matrix with a complex off-diagonal.
	a := mat.NewCDense(2, 2, []complex128{
		2, complex(0, -1),
		complex(0, 1), 3,
	})
	op, err := operator.Dense(a)
	require.NoError(t, err)
	require.Equal(t, 2, op.Dim())

	src := []complex128{complex(1, 1), complex(2, 0)}
	dst := make([]complex128, 2)
	op.Apply(dst, src)

	// Row 0: 2·(1+i) + (-i)·2 = 2
	// Row 1: i·(1+i) + 3·2   = 5+i
	assert.InDelta(t, 2, real(dst[0]), 1e-15)
	assert.InDelta(t, 0, imag(dst[0]), 1e-15)
	assert.InDelta(t, 5, real(dst[1]), 1e-15)
	assert.InDelta(t, 1, imag(dst[1]), 1e-15)
}

func TestSym_Validation(t *testing.T) {
	_, err := operator.Sym(nil)
	assert.ErrorIs(t, err, operator.ErrOperator)
}

func TestSym_Apply(t *testing.T) {
	// Real-symmetric matrix acting on a genuinely complex vector.
	a := mat.NewSymDense(3, []float64{
		1, 2, 0,
		2, 0, -1,
		0, -1, 4,
	})
	op, err := operator.Sym(a)
	require.NoError(t, err)
	require.Equal(t, 3, op.Dim())

	src := []complex128{complex(1, 2), complex(0, -1), complex(3, 0)}
	dst := make([]complex128, 3)
	op.Apply(dst, src)

	// Real and imaginary parts pass through the matrix independently.
	want := []complex128{
		complex(1, 0),  // 1·1 + 2·0 + 0·3,  i·(1·2 + 2·(-1))
		complex(-1, 4), // 2·1 - 1·3,        i·(2·2)
		complex(12, 1), // -1·0 + 4·3,       i·(-1·(-1))
	}
	for i := range want {
		assert.InDelta(t, real(want[i]), real(dst[i]), 1e-15, "entry %d", i)
		assert.InDelta(t, imag(want[i]), imag(dst[i]), 1e-15, "entry %d", i)
	}
}

func TestSym_ApplyConcurrent(t *testing.T) {
	// The pooled scratch must keep concurrent Apply calls independent.
	const n, workers = 64, 8

	data := make([]float64, n*n)
	for i := 0; i < n; i++ {
		data[i*n+i] = float64(i)
		if i+1 < n {
			data[i*n+i+1] = 1
			data[(i+1)*n+i] = 1
		}
	}
	op, err := operator.Sym(mat.NewSymDense(n, data))
	require.NoError(t, err)

	src := make([]complex128, n)
	for i := range src {
		src[i] = complex(float64(i%5), float64(i%3))
	}
	want := make([]complex128, n)
	op.Apply(want, src)

	var wg sync.WaitGroup
	results := make([][]complex128, workers)
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < 50; iter++ {
				dst := make([]complex128, n)
				op.Apply(dst, src)
				results[w] = dst
			}
		}()
	}
	wg.Wait()

	for w, got := range results {
		assert.Equal(t, want, got, "worker %d", w)
	}
}
