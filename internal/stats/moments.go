package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Moments holds the count, mean and sum of squared deviations (M2) of a
// sample. Partial moments from separate batches combine exactly with Merge.
type Moments struct {
	N    int
	Mean float64
	M2   float64
}

// MomentsOf computes the moments of xs.
func MomentsOf(xs []float64) Moments {
	switch len(xs) {
	case 0:
		return Moments{}
	case 1:
		return Moments{N: 1, Mean: xs[0]}
	}
	mean, variance := stat.MeanVariance(xs, nil)
	n := len(xs)
	return Moments{N: n, Mean: mean, M2: variance * float64(n-1)}
}

// Merge combines two sets of moments weighted by their sample counts.
func (m Moments) Merge(o Moments) Moments {
	if o.N == 0 {
		return m
	}
	if m.N == 0 {
		return o
	}
	n := m.N + o.N
	delta := o.Mean - m.Mean
	nf, of, tf := float64(m.N), float64(o.N), float64(n)
	return Moments{
		N:    n,
		Mean: m.Mean + delta*of/tf,
		M2:   m.M2 + o.M2 + delta*delta*nf*of/tf,
	}
}

// Variance returns the unbiased sample variance, or zero when N < 2.
func (m Moments) Variance() float64 {
	if m.N < 2 {
		return 0
	}
	return m.M2 / float64(m.N-1)
}

// StdErr returns the standard error of the mean.
func (m Moments) StdErr() float64 {
	return StandardError(m.Variance(), m.N)
}

// StrikeGrid returns n strikes evenly spaced over [lo, hi], endpoints included.
func StrikeGrid(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
