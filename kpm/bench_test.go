package kpm_test

import (
	"testing"

	"github.com/katalvlaran/spectral/kpm"
	"github.com/katalvlaran/spectral/operator"
)

// benchmarkNew is a helper that builds the full estimate for a chain of n
// sites with the given moment/vector budget. It resets the timer before
// entering the loop and fails on unexpected errors.
func benchmarkNew(b *testing.B, n, moments, vectors, workers int) {
	op := buildChain(n)
	bounds := operator.Bounds{Lo: -2.5, Hi: 2.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := kpm.New(op,
			kpm.WithMoments(moments), kpm.WithVectors(vectors),
			kpm.WithWorkers(workers), kpm.WithBounds(bounds))
		if err != nil {
			b.Fatalf("New failed: %v", err)
		}
	}
}

// BenchmarkNew_Small benchmarks the default budget on a 256-site chain.
func BenchmarkNew_Small(b *testing.B) {
	benchmarkNew(b, 256, 100, 10, 1)
}

// BenchmarkNew_Medium benchmarks a 4096-site chain, single worker.
func BenchmarkNew_Medium(b *testing.B) {
	benchmarkNew(b, 4096, 100, 10, 1)
}

// BenchmarkNew_MediumParallel benchmarks the same budget with the sample
// vectors spread over 8 workers.
func BenchmarkNew_MediumParallel(b *testing.B) {
	benchmarkNew(b, 4096, 100, 10, 8)
}

// BenchmarkIncreaseAccuracy_Resume measures moment growth on an existing
// estimate: each refinement resumes the recursion instead of restarting it.
func BenchmarkIncreaseAccuracy_Resume(b *testing.B) {
	op := buildChain(1024)
	bounds := operator.Bounds{Lo: -2.5, Hi: 2.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		rho, err := kpm.New(op,
			kpm.WithMoments(64), kpm.WithVectors(4),
			kpm.WithWorkers(1), kpm.WithBounds(bounds))
		if err != nil {
			b.Fatalf("New failed: %v", err)
		}
		b.StartTimer()

		if err = rho.IncreaseAccuracy(kpm.WithMoments(128)); err != nil {
			b.Fatalf("IncreaseAccuracy failed: %v", err)
		}
	}
}

// BenchmarkEvaluate benchmarks density reconstruction at 100 energies on a
// finished estimate; this path never touches the operator.
func BenchmarkEvaluate(b *testing.B) {
	rho, err := kpm.New(buildChain(512),
		kpm.WithMoments(200), kpm.WithVectors(4), kpm.WithWorkers(1),
		kpm.WithBounds(operator.Bounds{Lo: -2.5, Hi: 2.5}))
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	energies := make([]float64, 100)
	for i := range energies {
		energies[i] = -2 + 4*float64(i)/99
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = rho.Evaluate(energies); err != nil {
			b.Fatalf("Evaluate failed: %v", err)
		}
	}
}

// BenchmarkCurve benchmarks the full-grid reconstruction (K = 400 nodes).
func BenchmarkCurve(b *testing.B) {
	rho, err := kpm.New(buildChain(512),
		kpm.WithMoments(200), kpm.WithVectors(4), kpm.WithWorkers(1),
		kpm.WithBounds(operator.Bounds{Lo: -2.5, Hi: 2.5}))
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err = rho.Curve(); err != nil {
			b.Fatalf("Curve failed: %v", err)
		}
	}
}

// BenchmarkEstimateBounds benchmarks the Lanczos spectral probe alone.
func BenchmarkEstimateBounds(b *testing.B) {
	op := buildChain(4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := operator.EstimateBounds(op, operator.WithSeed(1)); err != nil {
			b.Fatalf("EstimateBounds failed: %v", err)
		}
	}
}
