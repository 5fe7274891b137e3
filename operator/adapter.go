package operator

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// Linear is the opaque operator capability consumed by the KPM estimator.
//
// Contract:
//   - Apply computes dst = Op·src; dst and src have length Dim() and never
//     alias; src is read-only for the implementation.
//   - Apply must be safe for concurrent calls: samples run on a worker pool.
//   - The operator is expected to be Hermitian; this is the caller's
//     responsibility and is not verified (doing so would cost a full matvec
//     sweep per basis vector).
type Linear interface {
	// Dim returns the dimension n of the space the operator acts on.
	Dim() int
	// Apply computes dst = Op·src for dense vectors of length Dim().
	Apply(dst, src []complex128)
}

// MatVec is a plain matvec callback, the minimal shape a caller needs to
// provide. Sparse backends typically close over their index structure.
type MatVec func(dst, src []complex128)

// matvecOp adapts a MatVec callback to the Linear capability.
type matvecOp struct {
	n  int
	mv MatVec
}

func (o *matvecOp) Dim() int { return o.n }

func (o *matvecOp) Apply(dst, src []complex128) { o.mv(dst, src) }

// New wraps a matvec callback as a Linear of dimension n.
// Returns ErrOperator when n < 1 or mv is nil.
func New(n int, mv MatVec) (Linear, error) {
	if n < 1 {
		return nil, fmt.Errorf("operator: New: dimension %d: %w", n, ErrOperator)
	}
	if mv == nil {
		return nil, fmt.Errorf("operator: New: nil matvec: %w", ErrOperator)
	}

	return &matvecOp{n: n, mv: mv}, nil
}

// Validate checks the minimal operator contract shared by all consumers.
// Returns ErrOperator for a nil operator or a non-positive dimension.
func Validate(op Linear) error {
	if op == nil {
		return fmt.Errorf("operator: nil operator: %w", ErrOperator)
	}
	if op.Dim() < 1 {
		return fmt.Errorf("operator: dimension %d: %w", op.Dim(), ErrOperator)
	}

	return nil
}

// denseOp applies a dense complex matrix via one cblas128.Gemv call.
type denseOp struct {
	a cblas128.General
	n int
}

func (o *denseOp) Dim() int { return o.n }

func (o *denseOp) Apply(dst, src []complex128) {
	cblas128.Gemv(blas.NoTrans, 1,
		o.a,
		cblas128.Vector{N: o.n, Inc: 1, Data: src},
		0,
		cblas128.Vector{N: o.n, Inc: 1, Data: dst})
}

// Dense adapts a square dense complex matrix (Hermitian expected) to the
// Linear capability. The matrix data is referenced, not copied.
// Returns ErrOperator when the matrix is empty or not square.
func Dense(a *mat.CDense) (Linear, error) {
	if a == nil {
		return nil, fmt.Errorf("operator: Dense: nil matrix: %w", ErrOperator)
	}
	r, c := a.Dims()
	if r < 1 || r != c {
		return nil, fmt.Errorf("operator: Dense: %dx%d matrix is not square: %w", r, c, ErrOperator)
	}

	return &denseOp{a: a.RawCMatrix(), n: r}, nil
}

// symScratch holds the per-call real/imaginary workspace of symOp.Apply.
type symScratch struct {
	xre, xim *mat.VecDense
	yre, yim *mat.VecDense
}

// symOp applies a real-symmetric matrix to complex vectors by acting on the
// real and imaginary parts separately. Scratch lives in a sync.Pool so that
// concurrent Apply calls never share buffers.
type symOp struct {
	a    mat.Symmetric
	n    int
	pool sync.Pool
}

func (o *symOp) Dim() int { return o.n }

func (o *symOp) Apply(dst, src []complex128) {
	s := o.pool.Get().(*symScratch)

	// 1. Split src into real and imaginary parts.
	xre := s.xre.RawVector().Data
	xim := s.xim.RawVector().Data
	for i, v := range src {
		xre[i] = real(v)
		xim[i] = imag(v)
	}

	// 2. Two real matvecs through gonum.
	s.yre.MulVec(o.a, s.xre)
	s.yim.MulVec(o.a, s.xim)

	// 3. Recombine into dst.
	yre := s.yre.RawVector().Data
	yim := s.yim.RawVector().Data
	for i := range dst {
		dst[i] = complex(yre[i], yim[i])
	}

	o.pool.Put(s)
}

// Sym adapts a real-symmetric gonum matrix to the Linear capability.
// Returns ErrOperator when the matrix is nil or empty.
func Sym(a mat.Symmetric) (Linear, error) {
	if a == nil {
		return nil, fmt.Errorf("operator: Sym: nil matrix: %w", ErrOperator)
	}
	n := a.SymmetricDim()
	if n < 1 {
		return nil, fmt.Errorf("operator: Sym: dimension %d: %w", n, ErrOperator)
	}

	o := &symOp{a: a, n: n}
	o.pool.New = func() interface{} {
		return &symScratch{
			xre: mat.NewVecDense(n, nil),
			xim: mat.NewVecDense(n, nil),
			yre: mat.NewVecDense(n, nil),
			yim: mat.NewVecDense(n, nil),
		}
	}

	return o, nil
}
