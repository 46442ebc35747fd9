// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package distributions implements the continuous probability
// distributions used as priors over model parameters: Uniform (and
// its improper forms), Beta, Gamma, OffsetGamma, Exponential,
// OffsetExponential, and Dirichlet. Each univariate distribution
// exposes LnPDF, RelativeLnPDF (which drops normalization terms that
// do not depend on x, when that is safe), Draw, Mean, and Variance.
//
// Improper priors (unbounded or half-bounded uniforms) are legal as
// priors but fail with InvalidDistributionError when asked for a pdf,
// mean, or variance, mirroring the teacher's "fail fast with context"
// error policy (ecoerr).
package distributions

import (
	"math"

	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/randomsource"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Distribution is a continuous univariate probability distribution
// usable as a parameter prior.
type Distribution interface {
	// LnPDF returns the natural log of the density at x, or an
	// error for improper distributions.
	LnPDF(x float64) (float64, error)

	// RelativeLnPDF returns the log density up to an additive
	// constant that does not depend on x. It never errors for
	// improper distributions that nonetheless define a relative
	// density (e.g. ImproperUniform returns 0 everywhere within
	// its support).
	RelativeLnPDF(x float64) float64

	// Draw returns a random variate.
	Draw(rng *randomsource.Source) float64

	// Mean returns the distribution's mean, or an error if
	// improper.
	Mean() (float64, error)

	// Variance returns the distribution's variance, or an error
	// if improper.
	Variance() (float64, error)
}

// Uniform is a bounded continuous uniform distribution on [Min, Max].
type Uniform struct {
	Min, Max float64
}

func (u Uniform) LnPDF(x float64) (float64, error) {
	if x < u.Min || x > u.Max {
		return math.Inf(-1), nil
	}
	return -math.Log(u.Max - u.Min), nil
}

func (u Uniform) RelativeLnPDF(x float64) float64 {
	if x < u.Min || x > u.Max {
		return math.Inf(-1)
	}
	return 0
}

func (u Uniform) Draw(rng *randomsource.Source) float64 {
	return rng.Uniform(u.Min, u.Max)
}

func (u Uniform) Mean() (float64, error) {
	return (u.Min + u.Max) / 2, nil
}

func (u Uniform) Variance() (float64, error) {
	d := u.Max - u.Min
	return d * d / 12, nil
}

// ImproperUniform is the unbounded uniform "distribution" on
// (-inf, inf); legal only as a prior that is never asked for its pdf
// or moments.
type ImproperUniform struct{}

func (ImproperUniform) LnPDF(x float64) (float64, error) {
	return 0, &ecoerr.InvalidDistributionError{Message: "ImproperUniform has no well-defined pdf"}
}

func (ImproperUniform) RelativeLnPDF(x float64) float64 {
	return 0
}

func (ImproperUniform) Draw(rng *randomsource.Source) float64 {
	panic("distributions: cannot draw from ImproperUniform")
}

func (ImproperUniform) Mean() (float64, error) {
	return 0, &ecoerr.InvalidDistributionError{Message: "ImproperUniform has no mean"}
}

func (ImproperUniform) Variance() (float64, error) {
	return 0, &ecoerr.InvalidDistributionError{Message: "ImproperUniform has no variance"}
}

// ImproperPositiveUniform is the unbounded uniform "distribution" on
// [0, inf); legal only as a prior over positive parameters.
type ImproperPositiveUniform struct{}

func (ImproperPositiveUniform) LnPDF(x float64) (float64, error) {
	if x < 0 {
		return math.Inf(-1), nil
	}
	return 0, &ecoerr.InvalidDistributionError{Message: "ImproperPositiveUniform has no well-defined pdf"}
}

func (ImproperPositiveUniform) RelativeLnPDF(x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	return 0
}

func (ImproperPositiveUniform) Draw(rng *randomsource.Source) float64 {
	panic("distributions: cannot draw from ImproperPositiveUniform")
}

func (ImproperPositiveUniform) Mean() (float64, error) {
	return 0, &ecoerr.InvalidDistributionError{Message: "ImproperPositiveUniform has no mean"}
}

func (ImproperPositiveUniform) Variance() (float64, error) {
	return 0, &ecoerr.InvalidDistributionError{Message: "ImproperPositiveUniform has no variance"}
}

// Beta wraps gonum's Beta(Alpha, Beta) distribution on [0, 1].
type Beta struct {
	Alpha, Beta2 float64
}

func (b Beta) gonum() (distuv.Beta, error) {
	if b.Alpha <= 0 || b.Beta2 <= 0 {
		return distuv.Beta{}, &ecoerr.InvalidDistributionError{Message: "Beta requires positive alpha and beta"}
	}
	return distuv.Beta{Alpha: b.Alpha, Beta: b.Beta2}, nil
}

func (b Beta) LnPDF(x float64) (float64, error) {
	d, err := b.gonum()
	if err != nil {
		return 0, err
	}
	if x < 0 || x > 1 {
		return math.Inf(-1), nil
	}
	return d.LogProb(x), nil
}

func (b Beta) RelativeLnPDF(x float64) float64 {
	p, err := b.LnPDF(x)
	if err != nil {
		return math.Inf(-1)
	}
	return p
}

func (b Beta) Draw(rng *randomsource.Source) float64 {
	return rng.Beta(b.Alpha, b.Beta2)
}

func (b Beta) Mean() (float64, error) {
	d, err := b.gonum()
	if err != nil {
		return 0, err
	}
	return d.Mean(), nil
}

func (b Beta) Variance() (float64, error) {
	d, err := b.gonum()
	if err != nil {
		return 0, err
	}
	return d.Variance(), nil
}

// Gamma wraps gonum's Gamma distribution, parameterized by shape
// (Alpha) and scale (Theta = 1/Rate).
type Gamma struct {
	Alpha, Theta float64
}

func (g Gamma) gonum() (distuv.Gamma, error) {
	if g.Alpha <= 0 || g.Theta <= 0 {
		return distuv.Gamma{}, &ecoerr.InvalidDistributionError{Message: "Gamma requires positive shape and scale"}
	}
	return distuv.Gamma{Alpha: g.Alpha, Beta: 1 / g.Theta}, nil
}

func (g Gamma) LnPDF(x float64) (float64, error) {
	d, err := g.gonum()
	if err != nil {
		return 0, err
	}
	if x < 0 {
		return math.Inf(-1), nil
	}
	return d.LogProb(x), nil
}

func (g Gamma) RelativeLnPDF(x float64) float64 {
	p, err := g.LnPDF(x)
	if err != nil {
		return math.Inf(-1)
	}
	return p
}

func (g Gamma) Draw(rng *randomsource.Source) float64 {
	return rng.Gamma(g.Alpha, g.Theta)
}

func (g Gamma) Mean() (float64, error) {
	if g.Alpha <= 0 || g.Theta <= 0 {
		return 0, &ecoerr.InvalidDistributionError{Message: "Gamma requires positive shape and scale"}
	}
	return g.Alpha * g.Theta, nil
}

func (g Gamma) Variance() (float64, error) {
	if g.Alpha <= 0 || g.Theta <= 0 {
		return 0, &ecoerr.InvalidDistributionError{Message: "Gamma requires positive shape and scale"}
	}
	return g.Alpha * g.Theta * g.Theta, nil
}

// OffsetGamma is a Gamma distribution shifted to start at Offset
// instead of 0: its pdf at x forwards to the base Gamma pdf at
// (x - Offset).
type OffsetGamma struct {
	Alpha, Theta, Offset float64
}

func (g OffsetGamma) base() Gamma {
	return Gamma{Alpha: g.Alpha, Theta: g.Theta}
}

func (g OffsetGamma) LnPDF(x float64) (float64, error) {
	return g.base().LnPDF(x - g.Offset)
}

func (g OffsetGamma) RelativeLnPDF(x float64) float64 {
	return g.base().RelativeLnPDF(x - g.Offset)
}

func (g OffsetGamma) Draw(rng *randomsource.Source) float64 {
	return g.Offset + g.base().Draw(rng)
}

func (g OffsetGamma) Mean() (float64, error) {
	m, err := g.base().Mean()
	if err != nil {
		return 0, err
	}
	return m + g.Offset, nil
}

func (g OffsetGamma) Variance() (float64, error) {
	return g.base().Variance()
}

// Exponential wraps gonum's Exponential distribution with rate
// Lambda.
type Exponential struct {
	Lambda float64
}

func (e Exponential) gonum() (distuv.Exponential, error) {
	if e.Lambda <= 0 {
		return distuv.Exponential{}, &ecoerr.InvalidDistributionError{Message: "Exponential requires a positive rate"}
	}
	return distuv.Exponential{Rate: e.Lambda}, nil
}

func (e Exponential) LnPDF(x float64) (float64, error) {
	d, err := e.gonum()
	if err != nil {
		return 0, err
	}
	if x < 0 {
		return math.Inf(-1), nil
	}
	return d.LogProb(x), nil
}

func (e Exponential) RelativeLnPDF(x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	return -e.Lambda * x
}

func (e Exponential) Draw(rng *randomsource.Source) float64 {
	return -math.Log(1-rng.Float64()) / e.Lambda
}

func (e Exponential) Mean() (float64, error) {
	if e.Lambda <= 0 {
		return 0, &ecoerr.InvalidDistributionError{Message: "Exponential requires a positive rate"}
	}
	return 1 / e.Lambda, nil
}

func (e Exponential) Variance() (float64, error) {
	if e.Lambda <= 0 {
		return 0, &ecoerr.InvalidDistributionError{Message: "Exponential requires a positive rate"}
	}
	return 1 / (e.Lambda * e.Lambda), nil
}

// OffsetExponential is an Exponential distribution shifted to start
// at Offset.
type OffsetExponential struct {
	Lambda, Offset float64
}

func (e OffsetExponential) base() Exponential {
	return Exponential{Lambda: e.Lambda}
}

func (e OffsetExponential) LnPDF(x float64) (float64, error) {
	return e.base().LnPDF(x - e.Offset)
}

func (e OffsetExponential) RelativeLnPDF(x float64) float64 {
	return e.base().RelativeLnPDF(x - e.Offset)
}

func (e OffsetExponential) Draw(rng *randomsource.Source) float64 {
	return e.Offset + e.base().Draw(rng)
}

func (e OffsetExponential) Mean() (float64, error) {
	m, err := e.base().Mean()
	if err != nil {
		return 0, err
	}
	return m + e.Offset, nil
}

func (e OffsetExponential) Variance() (float64, error) {
	return e.base().Variance()
}

// Dirichlet is a multivariate distribution over the open simplex,
// parameterized by concentration vector Alpha. It is used both as a
// prior over state frequencies / proportional mixers and as the
// proposal kernel for the Dirichlet mixer operator.
type Dirichlet struct {
	Alpha []float64
}

// LnPDF returns the log density of the Dirichlet at x, a point on the
// simplex with len(x) == len(Alpha). At a vertex or outside the
// simplex the density is -inf.
func (d Dirichlet) LnPDF(x []float64) float64 {
	var sum float64
	for _, xi := range x {
		if xi <= 0 || xi >= 1 {
			return math.Inf(-1)
		}
		sum += xi
	}
	if math.Abs(sum-1) > 1e-9 {
		return math.Inf(-1)
	}

	lnGammaSumAlpha, _ := math.Lgamma(sumOf(d.Alpha))
	var lnDensity float64
	lnDensity += lnGammaSumAlpha
	for i, a := range d.Alpha {
		lg, _ := math.Lgamma(a)
		lnDensity -= lg
		lnDensity += (a - 1) * math.Log(x[i])
	}
	return lnDensity
}

func sumOf(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Draw returns a random point on the simplex distributed as
// Dirichlet(Alpha).
func (d Dirichlet) Draw(rng *randomsource.Source) []float64 {
	return rng.Dirichlet(d.Alpha, nil)
}

// Mean returns the component-wise mean, Alpha[i] / sum(Alpha).
func (d Dirichlet) Mean() []float64 {
	s := sumOf(d.Alpha)
	m := make([]float64, len(d.Alpha))
	for i, a := range d.Alpha {
		m[i] = a / s
	}
	return m
}

// Variance returns the component-wise variance.
func (d Dirichlet) Variance() []float64 {
	s := sumOf(d.Alpha)
	v := make([]float64, len(d.Alpha))
	for i, a := range d.Alpha {
		mi := a / s
		v[i] = mi * (1 - mi) / (s + 1)
	}
	return v
}
