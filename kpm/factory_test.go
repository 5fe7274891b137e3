// Package kpm_test - sample-vector factory contracts.
package kpm_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/spectral/kpm"
)

func norm(v []complex128) float64 {
	var s float64
	for _, z := range v {
		s += real(z)*real(z) + imag(z)*imag(z)
	}

	return math.Sqrt(s)
}

func TestRandomPhase_UnitNormUnitModulus(t *testing.T) {
	const n = 128
	f := kpm.NewRandomPhase(5)

	v := make([]complex128, n)
	f.Next(v)

	assert.InDelta(t, 1, norm(v), 1e-12, "unit L2 norm")
	want := 1 / math.Sqrt(float64(n))
	for i, z := range v {
		assert.InDelta(t, want, cmplx.Abs(z), 1e-12, "entry %d modulus", i)
	}
}

func TestRandomPhase_DeterministicStreams(t *testing.T) {
	a := make([]complex128, 32)
	b := make([]complex128, 32)

	kpm.NewRandomPhase(7).Next(a)
	kpm.NewRandomPhase(7).Next(b)
	assert.Equal(t, a, b, "same seed ⇒ identical draws")

	kpm.NewRandomPhase(8).Next(b)
	assert.NotEqual(t, a, b, "different seeds ⇒ different draws")

	// Seed 0 maps to the stable default stream, not a time-based source.
	kpm.NewRandomPhase(0).Next(a)
	kpm.NewRandomPhase(0).Next(b)
	assert.Equal(t, a, b)
}

func TestRandomSigns_RademacherEntries(t *testing.T) {
	const n = 64
	v := make([]complex128, n)
	kpm.NewRandomSigns(3).Next(v)

	want := 1 / math.Sqrt(float64(n))
	var plus, minus int
	for i, z := range v {
		assert.Zero(t, imag(z), "entry %d must be real", i)
		switch real(z) {
		case want:
			plus++
		case -want:
			minus++
		default:
			t.Fatalf("entry %d = %v, want ±%v", i, z, want)
		}
	}
	assert.Equal(t, n, plus+minus)
	assert.InDelta(t, 1, norm(v), 1e-12)
}

func TestSiteCycler_CyclesBasisVectors(t *testing.T) {
	f := kpm.NewSiteCycler(2, 5)
	v := make([]complex128, 8)

	expectBasis := func(site int) {
		t.Helper()
		for i, z := range v {
			if i == site {
				assert.Equal(t, complex(1, 0), z)
			} else {
				assert.Equal(t, complex(0, 0), z)
			}
		}
	}

	f.Next(v)
	expectBasis(2)
	f.Next(v)
	expectBasis(5)
	f.Next(v) // wraps around
	expectBasis(2)
}
