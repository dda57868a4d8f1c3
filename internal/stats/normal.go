// Package stats provides the distribution and sampling utilities the pricing
// engines build on.
package stats

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// Sampler draws independent standard-normal variates from its own seeded
// source. A Sampler is not safe for concurrent use; give each goroutine one.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler seeded with seed.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Fill overwrites dst with standard-normal draws.
func (s *Sampler) Fill(dst []float64) {
	for i := range dst {
		dst[i] = s.rng.NormFloat64()
	}
}

// StreamSeed derives the seed of sub-stream idx from a base seed, so batches
// drawn in parallel stay reproducible whatever the worker count.
func StreamSeed(base uint64, idx int) uint64 {
	// splitmix64 finalizer
	z := base + uint64(idx+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// NewSeed returns a clock-derived seed for callers that did not supply one.
// Callers must report the seed they used so the run can be replayed.
func NewSeed() uint64 {
	return StreamSeed(uint64(time.Now().UnixNano()), 0)
}

// StandardError returns sqrt(variance/n), or zero when n < 2.
func StandardError(variance float64, n int) float64 {
	if n < 2 || variance <= 0 {
		return 0
	}
	return math.Sqrt(variance / float64(n))
}
