// Package kpm - RNG utilities shared by the vector factories.
//
// This file centralizes deterministic random generation for the estimator.
//
// Goals:
//   - Determinism: same seed ⇒ identical results across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden anywhere.
//   - Independence: derived streams (bounds probe vs. sample vectors) are
//     decorrelated by a SplitMix64-style mix.
//
// Concurrency:
//   - math/rand.Rand is NOT goroutine-safe. Factories draw sample vectors
//     sequentially under the estimator lock; workers never touch the RNG.
package kpm

import "math/rand"

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
// The value is arbitrary but stable to keep reproducible defaults.
const defaultRNGSeed int64 = 1

// Stream identifiers for seed derivation. Keeping them distinct guarantees
// the bounds probe and the sample vectors never share a stream.
const (
	streamBounds  uint64 = 0
	streamSamples uint64 = 1
)

// rngFromSeed returns a deterministic *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; otherwise use the provided seed verbatim.
//
// Complexity: O(1).
func rngFromSeed(seed int64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}

	return rand.New(rand.NewSource(s))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit
// seed via a SplitMix64-style finalizer (Vigna 2014 constants); small input
// changes produce large, well-distributed output changes.
//
// Complexity: O(1).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}
