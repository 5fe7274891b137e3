// Package kpm - the Chebyshev moment engine.
//
// For each sample vector α_0 the engine runs the Chebyshev recursion on the
// rescaled operator R = (Op - c·I)/a:
//
//	α_1 = R·α_0,  α_{k+1} = 2R·α_k - α_{k-1},
//
// and accumulates moment contributions. Two accumulation paths exist:
//
//   - density of states (no weighting): the doubling identities
//     m_{2j} = 2⟨α_j|α_j⟩ - m_0 and m_{2j+1} = 2⟨α_{j+1}|α_j⟩ - m_1
//     yield two moments per operator application;
//   - weighted: m_k = ⟨α_0|W|α_k⟩, one moment per application.
//
// Each sample keeps its last two recursion vectors, so refinement resumes
// the recursion where it stopped instead of recomputing from α_0. This is
// the numerically dominant step: O(N) operator applications per sample,
// each O(nnz(Op)).
package kpm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/cblas128"

	"github.com/katalvlaran/spectral/operator"
)

// sampleSlot is the per-sample state of the moment engine. Workers operate
// on disjoint slots; no slot is touched by two goroutines at once.
type sampleSlot struct {
	// seed is α_0, kept for the weighted accumulation path and so the slot
	// can be re-derived if ever needed.
	seed []complex128

	// prev, cur are the last two recursion vectors (α_j, α_{j+1}); the
	// recursion resumes from them on refinement.
	prev, cur []complex128

	// have is the number of moments already accumulated for this sample.
	have int

	// rows holds the have·width accumulated moment values, row-major with
	// stride width: rows[k*width+i] is component i of moment k.
	rows []float64
}

// engine bundles the immutable per-estimator inputs of slot extension.
type engine struct {
	op        operator.Linear
	n         int
	scale     rescaleParams
	weighting Weighting // nil ⇒ density-of-states doubling path
	width     int
}

// newSlot seeds a fresh sample slot from the factory.
func (e *engine) newSlot(factory VectorFactory) *sampleSlot {
	s := &sampleSlot{seed: make([]complex128, e.n)}
	factory.Next(s.seed)

	return s
}

// extend grows the slot's accumulated moments to target. It is a no-op when
// the slot already has that many. The recursion resumes from the stored
// last-two vectors; previously accumulated rows are never recomputed
// (except the single shared even moment when resuming from an odd count,
// which is recomputed to the identical value).
//
// Returns ErrOperator when the operator action produced non-finite moments.
//
// Complexity: O((target - have)·cost(Apply) + (target - have)·n).
func (e *engine) extend(s *sampleSlot, target int) error {
	// The recursion seeds two moments at once; keep at least m_0, m_1 so
	// the doubling identities always have their anchors. Reads clamp to the
	// estimator's moment count.
	if target < 2 {
		target = 2
	}
	if s.have >= target {
		return nil
	}

	rows := make([]float64, target*e.width)
	copy(rows, s.rows)

	scratch := make([]complex128, e.n)
	mStart := s.have

	// 1. First touch: α_1 = R·α_0 and the two anchor moments.
	if s.have == 0 {
		s.prev = make([]complex128, e.n)
		copy(s.prev, s.seed)
		s.cur = make([]complex128, e.n)
		e.applyRescaled(s.cur, s.seed)

		if e.weighting == nil {
			rows[0] = vdotRe(s.seed, s.seed)
			rows[1] = vdotRe(s.seed, s.cur)
		} else {
			e.weighting.Accumulate(rows[0:e.width], s.seed, s.seed)
			e.weighting.Accumulate(rows[e.width:2*e.width], s.seed, s.cur)
		}
		mStart = 2
	}

	prev, cur := s.prev, s.cur

	if e.weighting == nil {
		// 2a. Doubling path: one application per moment PAIR.
		for p := mStart / 2; p < target/2; p++ {
			prev, cur, scratch = e.advance(prev, cur, scratch)
			rows[2*p] = 2*vdotRe(prev, prev) - rows[0]
			rows[2*p+1] = 2*vdotRe(cur, prev) - rows[1]
		}
		if target%2 == 1 {
			// Odd tail: the last even-index moment comes from cur alone.
			rows[target-1] = 2*vdotRe(cur, cur) - rows[0]
		}
	} else {
		// 2b. Weighted path: full recursion, one application per moment.
		for k := mStart; k < target; k++ {
			prev, cur, scratch = e.advance(prev, cur, scratch)
			e.weighting.Accumulate(rows[k*e.width:(k+1)*e.width], s.seed, cur)
		}
	}

	// 3. Reject non-finite moments: they indicate a malformed operator or
	// weighting, never a valid sample.
	for i := s.have * e.width; i < target*e.width; i++ {
		if math.IsNaN(rows[i]) || math.IsInf(rows[i], 0) {
			return fmt.Errorf("kpm: non-finite moment %d: %w", i/e.width, operator.ErrOperator)
		}
	}

	s.prev, s.cur = prev, cur
	s.rows = rows
	s.have = target

	return nil
}

// applyRescaled computes dst = (Op·src - c·src)/a, the action of the
// rescaled operator.
func (e *engine) applyRescaled(dst, src []complex128) {
	e.op.Apply(dst, src)
	cblas128.Scal(complex(1/e.scale.a, 0), cvec(dst))
	cblas128.Axpy(complex(-e.scale.c/e.scale.a, 0), cvec(src), cvec(dst))
}

// advance performs one recursion step α_{k+1} = 2R·α_k - α_{k-1}, fused
// into three BLAS calls, and rotates the buffers: the returned triple is
// (α_k, α_{k+1}, free buffer).
func (e *engine) advance(prev, cur, scratch []complex128) (p, c, free []complex128) {
	e.op.Apply(scratch, cur)
	cblas128.Scal(complex(2/e.scale.a, 0), cvec(scratch))
	cblas128.Axpy(complex(-2*e.scale.c/e.scale.a, 0), cvec(cur), cvec(scratch))
	cblas128.Axpy(-1, cvec(prev), cvec(scratch))

	return cur, scratch, prev
}

// vdotRe is Re⟨x|y⟩ over contiguous complex vectors.
func vdotRe(x, y []complex128) float64 {
	return real(cblas128.Dotc(cvec(x), cvec(y)))
}

// cvec wraps a contiguous complex slice as a cblas128 vector view.
func cvec(x []complex128) cblas128.Vector {
	return cblas128.Vector{N: len(x), Inc: 1, Data: x}
}
