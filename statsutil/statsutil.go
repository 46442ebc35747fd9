// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package statsutil implements the summary statistics needed to
// monitor and report on an MCMC chain: an online mean/variance/skew/
// kurtosis accumulator, effective sample size (ESS), the potential
// scale reduction factor (PSRF) across chains, highest posterior
// density intervals (HPDI), and quantiles.
package statsutil

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// A SampleSummary accumulates mean, variance, skewness, and kurtosis
// online (Welford-style), without storing every sample.
type SampleSummary struct {
	n        int64
	mean     float64
	m2       float64
	m3       float64
	m4       float64
}

// NewSampleSummary returns an empty accumulator.
func NewSampleSummary() *SampleSummary {
	return &SampleSummary{}
}

// Add folds a new sample into the accumulator.
func (s *SampleSummary) Add(x float64) {
	n1 := float64(s.n)
	s.n++
	n := float64(s.n)
	delta := x - s.mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * n1
	s.mean += deltaN
	s.m4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*s.m2 - 4*deltaN*s.m3
	s.m3 += term1*deltaN*(n-2) - 3*deltaN*s.m2
	s.m2 += term1
}

// N returns the number of samples folded in.
func (s *SampleSummary) N() int64 {
	return s.n
}

// Mean returns the running mean.
func (s *SampleSummary) Mean() float64 {
	return s.mean
}

// Variance returns the running sample variance (divisor n-1).
func (s *SampleSummary) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

// Skewness returns the running sample skewness.
func (s *SampleSummary) Skewness() float64 {
	if s.n < 2 || s.m2 == 0 {
		return 0
	}
	n := float64(s.n)
	return (math.Sqrt(n) * s.m3) / math.Pow(s.m2, 1.5)
}

// Kurtosis returns the running excess sample kurtosis.
func (s *SampleSummary) Kurtosis() float64 {
	if s.n < 2 || s.m2 == 0 {
		return 0
	}
	n := float64(s.n)
	return (n*s.m4)/(s.m2*s.m2) - 3
}

// MeanVariance computes the mean and sample variance of xs directly
// (not online), delegating to gonum's stat package.
func MeanVariance(xs []float64) (mean, variance float64) {
	return stat.MeanVariance(xs, nil)
}

// Skew computes the sample skewness of xs directly, delegating to
// gonum's stat package.
func Skew(xs []float64) float64 {
	return stat.Skew(xs, nil)
}

// AutocorrelationTime estimates the integrated autocorrelation time
// of a chain of samples using Geyer's initial positive sequence
// estimator, which ESS is derived from.
func AutocorrelationTime(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 1
	}
	mean, variance := stat.MeanVariance(xs, nil)
	if variance == 0 {
		return float64(n)
	}

	maxLag := n - 1
	rho := make([]float64, 0, maxLag)
	for lag := 1; lag < maxLag; lag++ {
		var c float64
		for i := 0; i < n-lag; i++ {
			c += (xs[i] - mean) * (xs[i+lag] - mean)
		}
		c /= float64(n)
		rho = append(rho, c/variance)

		// Geyer's initial positive sequence: stop pairing once
		// a consecutive pair sums non-positive.
		if len(rho) >= 2 && len(rho)%2 == 0 {
			if rho[len(rho)-2]+rho[len(rho)-1] <= 0 {
				rho = rho[:len(rho)-2]
				break
			}
		}
	}

	tau := 1.0
	for _, r := range rho {
		tau += 2 * r
	}
	if tau < 1 {
		tau = 1
	}
	return tau
}

// ESS returns the effective sample size of a chain of (possibly
// autocorrelated) samples.
func ESS(xs []float64) float64 {
	n := float64(len(xs))
	tau := AutocorrelationTime(xs)
	ess := n / tau
	if ess > n {
		ess = n
	}
	if ess < 1 {
		ess = 1
	}
	return ess
}

// PSRF returns Gelman-Rubin's potential scale reduction factor across
// two or more chains of equal length, each a post-warmup sample of
// the same parameter. A value near 1.0 indicates convergence.
func PSRF(chains [][]float64) float64 {
	m := len(chains)
	if m < 2 {
		return 1
	}
	n := len(chains[0])
	for _, c := range chains {
		if len(c) != n {
			panic("statsutil: PSRF requires equal-length chains")
		}
	}

	chainMeans := make([]float64, m)
	chainVars := make([]float64, m)
	var grandMean float64
	for i, c := range chains {
		mean, v := stat.MeanVariance(c, nil)
		chainMeans[i] = mean
		chainVars[i] = v
		grandMean += mean
	}
	grandMean /= float64(m)

	var b float64
	for _, cm := range chainMeans {
		d := cm - grandMean
		b += d * d
	}
	b *= float64(n) / float64(m-1)

	var w float64
	for _, v := range chainVars {
		w += v
	}
	w /= float64(m)

	if w == 0 {
		return 1
	}

	varPlus := (float64(n-1)/float64(n))*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// Quantile returns the p-quantile (0 <= p <= 1) of xs under gonum's
// stat.Empirical rule: the smallest sample value whose empirical CDF
// is at least p, with no interpolation between order statistics. xs
// is not modified.
func Quantile(xs []float64, p float64) float64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// HPDI returns the highest posterior density interval covering the
// given probability mass (e.g. 0.95) from a sample of draws. The
// sample need not be sorted.
func HPDI(xs []float64, mass float64) (lo, hi float64) {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	includedN := int(math.Ceil(mass * float64(n)))
	if includedN < 1 {
		includedN = 1
	}
	if includedN > n {
		includedN = n
	}

	bestWidth := math.Inf(1)
	bestLo, bestHi := sorted[0], sorted[includedN-1]
	for i := 0; i+includedN-1 < n; i++ {
		width := sorted[i+includedN-1] - sorted[i]
		if width < bestWidth {
			bestWidth = width
			bestLo, bestHi = sorted[i], sorted[i+includedN-1]
		}
	}
	return bestLo, bestHi
}
