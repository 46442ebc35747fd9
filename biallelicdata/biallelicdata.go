// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package biallelicdata implements BiallelicData: a column/pattern
// store for biallelic genetic markers, carrying per-population red-
// (derived-) allele and total-allele counts with integer pattern
// weights, folding, and optional locus boundaries.
package biallelicdata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsalarias/ecoevolity/ecoerr"
)

// A Pattern is one distinct (red, total) allele-count column across
// every population.
type Pattern struct {
	Red   []int
	Total []int
}

// IsMissingPopulation reports whether some population has zero total
// alleles sampled in this pattern.
func (p Pattern) IsMissingPopulation() bool {
	for _, a := range p.Total {
		if a == 0 {
			return true
		}
	}
	return false
}

// IsConstant reports whether every population is fixed for the same
// allele (all-ancestral or all-derived).
func (p Pattern) IsConstant() bool {
	allAncestral, allDerived := true, true
	for i, a := range p.Total {
		if a == 0 {
			continue
		}
		if p.Red[i] != 0 {
			allAncestral = false
		}
		if p.Red[i] != a {
			allDerived = false
		}
	}
	return allAncestral || allDerived
}

func (p Pattern) key() string {
	var b strings.Builder
	for i := range p.Red {
		fmt.Fprintf(&b, "%d/%d;", p.Red[i], p.Total[i])
	}
	return b.String()
}

func (p Pattern) complement() Pattern {
	red := make([]int, len(p.Red))
	for i, a := range p.Total {
		red[i] = a - p.Red[i]
	}
	return Pattern{Red: red, Total: append([]int(nil), p.Total...)}
}

func (p Pattern) totalRed() int {
	sum := 0
	for _, r := range p.Red {
		sum += r
	}
	return sum
}

// BiallelicData is a set of distinct patterns with integer weights
// over a fixed, ordered list of populations.
type BiallelicData struct {
	populationLabels []string
	patterns         []Pattern
	weights          []float64
	patternIndex     map[string]int

	locusEnds []int // exclusive end index of each contiguous locus

	folded   bool
	dominant bool
}

// New returns an empty BiallelicData over the given, ordered
// population labels.
func New(populationLabels []string) *BiallelicData {
	return &BiallelicData{
		populationLabels: append([]string(nil), populationLabels...),
		patternIndex:     make(map[string]int),
	}
}

// NumPopulations returns the number of populations.
func (d *BiallelicData) NumPopulations() int { return len(d.populationLabels) }

// PopulationLabel returns the label of population i.
func (d *BiallelicData) PopulationLabel(i int) string { return d.populationLabels[i] }

// NumPatterns returns the number of distinct patterns stored.
func (d *BiallelicData) NumPatterns() int { return len(d.patterns) }

// Pattern returns pattern i.
func (d *BiallelicData) Pattern(i int) Pattern { return d.patterns[i] }

// Weight returns the number of sites collapsed into pattern i.
func (d *BiallelicData) Weight(i int) float64 { return d.weights[i] }

// SetDominant marks the data as dominant-marker (AFLP-style), which
// forbids folding (dominant markers cannot be polarized).
func (d *BiallelicData) SetDominant(v bool) { d.dominant = v }

// IsDominant reports whether the data is dominant-marker.
func (d *BiallelicData) IsDominant() bool { return d.dominant }

// IsFolded reports whether Fold has been applied.
func (d *BiallelicData) IsFolded() bool { return d.folded }

// AddPattern records one observed site with the given per-population
// (red, total) counts, merging into an existing identical pattern's
// weight if one is already present. It returns InvalidDataError if
// any r[i] > a[i], or if the counts do not have one entry per
// population.
func (d *BiallelicData) AddPattern(red, total []int) error {
	if len(red) != len(d.populationLabels) || len(total) != len(d.populationLabels) {
		return &ecoerr.InvalidDataError{Message: "pattern does not have one count pair per population"}
	}
	for i := range red {
		if red[i] < 0 || total[i] < 0 || red[i] > total[i] {
			return &ecoerr.InvalidDataError{Message: fmt.Sprintf("population %q: invalid allele counts (red=%d, total=%d)", d.populationLabels[i], red[i], total[i])}
		}
	}
	p := Pattern{Red: append([]int(nil), red...), Total: append([]int(nil), total...)}
	d.addWeighted(p, 1)
	return nil
}

func (d *BiallelicData) addWeighted(p Pattern, weight float64) {
	k := p.key()
	if i, ok := d.patternIndex[k]; ok {
		d.weights[i] += weight
		return
	}
	d.patternIndex[k] = len(d.patterns)
	d.patterns = append(d.patterns, p)
	d.weights = append(d.weights, weight)
}

// MarkLocusEnd records that the pattern most recently added ends a
// contiguous locus, used to delimit linkage blocks for simulation.
func (d *BiallelicData) MarkLocusEnd() {
	d.locusEnds = append(d.locusEnds, len(d.patterns))
}

// Loci returns the [start, end) pattern-index ranges of every marked
// locus. If no locus boundary was ever recorded, the whole data set
// is treated as a single locus.
func (d *BiallelicData) Loci() [][2]int {
	if len(d.locusEnds) == 0 {
		return [][2]int{{0, len(d.patterns)}}
	}
	var loci [][2]int
	start := 0
	for _, end := range d.locusEnds {
		loci = append(loci, [2]int{start, end})
		start = end
	}
	return loci
}

// Fold maps every pattern to its lower-reds-count canonical form
// (the pattern or its complement, whichever has the smaller total
// red-allele count summed across populations), merging weights of
// any resulting collisions. It returns SettingError if the data is
// dominant-marker, since dominant markers cannot be polarized and
// therefore cannot be folded.
func (d *BiallelicData) Fold() error {
	if d.dominant {
		return &ecoerr.SettingError{Message: "cannot fold dominant-marker data"}
	}
	if d.folded {
		return nil
	}
	old := d.patterns
	oldWeights := d.weights
	d.patterns = nil
	d.weights = nil
	d.patternIndex = make(map[string]int)
	for i, p := range old {
		canonical := p
		if comp := p.complement(); comp.totalRed() < p.totalRed() {
			canonical = comp
		}
		d.addWeighted(canonical, oldWeights[i])
	}
	d.folded = true
	return nil
}

// WattersonsTheta returns Watterson's estimator of theta (4N*mu for a
// diploid population, or 2N*mu haploid) over the pooled sample: the
// weighted count of segregating (non-constant) patterns divided by
// the harmonic-number correction a_n = sum_{i=1}^{n-1} 1/i, where n is
// the largest total allele count observed in any population. This
// mirrors test_wattersons_theta.cpp's summary statistic over already-
// stored pattern counts, pooling across populations for a single
// pan-sample estimate rather than per-population estimates.
func (d *BiallelicData) WattersonsTheta() float64 {
	var segregating float64
	for i, p := range d.patterns {
		if !p.IsConstant() {
			segregating += d.weights[i]
		}
	}
	n := d.maxSampleSize()
	if n < 2 {
		return 0
	}
	var a1 float64
	for i := 1; i < n; i++ {
		a1 += 1.0 / float64(i)
	}
	if a1 == 0 {
		return 0
	}
	return segregating / a1
}

func (d *BiallelicData) maxSampleSize() int {
	max := 0
	for _, p := range d.patterns {
		for _, a := range p.Total {
			if a > max {
				max = a
			}
		}
	}
	return max
}

// SortedPopulationLabels returns the population labels in sorted
// order, used to assign canonical leaf indices when building a tree
// over this data.
func (d *BiallelicData) SortedPopulationLabels() []string {
	out := append([]string(nil), d.populationLabels...)
	sort.Strings(out)
	return out
}
