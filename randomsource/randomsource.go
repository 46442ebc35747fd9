// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package randomsource implements a seeded pseudo-random source used
// throughout the engine. Unlike the package-level functions in
// math/rand/v2, a Source is an explicit value threaded through every
// call that needs randomness — there is no hidden global state, so a
// chain's trajectory is fully determined by its seed.
package randomsource

import (
	"math"
	"math/rand/v2"
)

// A Source wraps a seeded PRNG and exposes the draws needed by the
// tree moves, distributions, and simulation code: uniforms, gamma and
// beta variates, Dirichlet vectors, set partitions, and random
// subsets.
type Source struct {
	rng *rand.Rand
}

// New returns a Source seeded with seed1, seed2 (the two halves of a
// PCG state, for full 128-bit seed control).
func New(seed1, seed2 uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// NewFromInt64 returns a Source seeded from a single 64-bit seed, as
// is convenient for CLI --seed flags.
func NewFromInt64(seed int64) *Source {
	return New(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
}

// Float64 returns a uniform draw in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a uniform draw in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// IntN returns a uniform draw in [0, n).
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// Int64N returns a uniform draw in [0, n).
func (s *Source) Int64N(n int64) int64 {
	return s.rng.Int64N(n)
}

// Bool returns a fair coin flip.
func (s *Source) Bool() bool {
	return s.rng.IntN(2) == 0
}

// Shuffle randomizes the order of a slice of length n using the
// provided swap function, in the manner of rand.Shuffle.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Gamma draws from a Gamma(shape, scale) distribution using the
// Marsaglia-Tsang method.
func (s *Source) Gamma(shape, scale float64) float64 {
	if shape < 1 {
		u := s.rng.Float64()
		return s.Gamma(1+shape, scale) * math.Pow(u, 1/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.normal()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Beta draws from a Beta(alpha, beta) distribution via two Gamma
// draws.
func (s *Source) Beta(alpha, beta float64) float64 {
	x := s.Gamma(alpha, 1)
	y := s.Gamma(beta, 1)
	return x / (x + y)
}

// Dirichlet draws a vector from a Dirichlet(alpha...) distribution,
// writing the k-dimensional result into dst (which must have the same
// length as alpha) and also returning it.
func (s *Source) Dirichlet(alpha []float64, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(alpha))
	}
	var sum float64
	for i, a := range alpha {
		g := s.Gamma(a, 1)
		dst[i] = g
		sum += g
	}
	for i := range dst {
		dst[i] /= sum
	}
	return dst
}

func (s *Source) normal() float64 {
	return s.rng.NormFloat64()
}

// RandomSubset draws a uniform random subset of size k (without
// replacement) from {0, ..., n-1}, returned in ascending order.
func (s *Source) RandomSubset(n, k int) []int {
	if k > n {
		k = n
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	s.rng.Shuffle(n, func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	sub := append([]int(nil), pool[:k]...)
	// Keep a stable, ascending presentation: callers rely on
	// index order being irrelevant to the set they represent,
	// but ascending output makes test fixtures reproducible.
	for i := 1; i < len(sub); i++ {
		for j := i; j > 0 && sub[j-1] > sub[j]; j-- {
			sub[j-1], sub[j] = sub[j], sub[j-1]
		}
	}
	return sub
}

// SetPartition draws a uniformly random partition of {0, ..., n-1}
// into exactly k non-empty blocks. It panics if k < 1 or k > n.
func (s *Source) SetPartition(n, k int) [][]int {
	if k < 1 || k > n {
		panic("randomsource: SetPartition requires 1 <= k <= n")
	}
	// Element 0 goes to block 0 and every other element gets a
	// uniformly random block label; labelings that leave a block
	// empty are rejected. Each partition into k blocks matches
	// exactly (k-1)! accepted labelings, so accepted draws are
	// uniform. For the small n typical of a tree's children, a direct
	// rejection sampler is fine.
	for {
		blocks := make([][]int, k)
		assigned := make([]int, n)
		assigned[0] = 0
		maxBlock := 0
		for i := 1; i < n; i++ {
			c := s.rng.IntN(k)
			assigned[i] = c
			if c > maxBlock {
				maxBlock = c
			}
		}
		if maxBlock != k-1 {
			continue
		}
		for i, b := range assigned {
			blocks[b] = append(blocks[b], i)
		}
		ok := true
		for _, b := range blocks {
			if len(b) == 0 {
				ok = false
				break
			}
		}
		if ok {
			return blocks
		}
	}
}

// RestrictedSetPartition draws a block count uniformly from
// [minBlocks, maxBlocks] (clamped to [1, n]) and then a uniformly
// random partition of {0, ..., n-1} into that many non-empty blocks
// via SetPartition. Partitions with different block counts are
// therefore not equally likely overall.
func (s *Source) RestrictedSetPartition(n, minBlocks, maxBlocks int) [][]int {
	if maxBlocks > n {
		maxBlocks = n
	}
	if minBlocks < 1 {
		minBlocks = 1
	}
	k := minBlocks
	if maxBlocks > minBlocks {
		k = minBlocks + s.rng.IntN(maxBlocks-minBlocks+1)
	}
	return s.SetPartition(n, k)
}
