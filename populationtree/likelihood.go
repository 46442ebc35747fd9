// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package populationtree

import (
	"math"
	"sync"

	"github.com/jsalarias/ecoevolity/biallelicdata"
	"github.com/jsalarias/ecoevolity/tree"
	"gonum.org/v1/gonum/mat"
)

// The partial-likelihood of a subtree rooted below some point in the
// species tree is a function L(n, r): the probability of the data
// observed below that point given that exactly n gene copies survive
// to that point, r of which carry the red (derived) allele. Bryant et
// al. (2012, "Inferring species trees directly from biallelic genetic
// markers...") show this function can be propagated up a branch by a
// matrix exponential of a generator combining coalescence (which can
// only merge two lineages carrying the same allele, since the merged
// lineage must have had one ancestral state) and allele mutation, and
// combined across two children at a node by a direct convolution
// (the two children's lineage pools are independent until they meet).
//
// L is stored as a dense vector over the triangular index space
// {(n, r) : 0 <= r <= n <= maxN}, flattened by triIndex.

func triIndex(n, r int) int { return n*(n+1)/2 + r }
func triSize(maxN int) int  { return (maxN + 1) * (maxN + 2) / 2 }

// buildGenerator returns the (n,r) generator matrix for a population
// of scaled size theta and per-lineage mutation rates u (green->red)
// and v (red->green), over the state space {(n,r): 0<=r<=n<=maxN}.
func buildGenerator(maxN int, theta, u, v float64) *mat.Dense {
	d := triSize(maxN)
	Q := mat.NewDense(d, d, nil)
	for n := 0; n <= maxN; n++ {
		for r := 0; r <= n; r++ {
			i := triIndex(n, r)
			var diag float64
			g := n - r
			if r >= 2 {
				rate := float64(r*(r-1)) / theta
				Q.Set(i, triIndex(n-1, r-1), rate)
				diag -= rate
			}
			if g >= 2 {
				rate := float64(g*(g-1)) / theta
				Q.Set(i, triIndex(n-1, r), rate)
				diag -= rate
			}
			if r >= 1 {
				rate := float64(r) * v
				Q.Set(i, triIndex(n, r-1), rate)
				diag -= rate
			}
			if g >= 1 {
				rate := float64(g) * u
				Q.Set(i, triIndex(n, r+1), rate)
				diag -= rate
			}
			Q.Set(i, i, diag)
		}
	}
	return Q
}

// propagate carries a partial-likelihood vector up a branch of
// length t, under population size theta and mutation rates u, v.
func propagate(L []float64, maxN int, theta, u, v, t float64) []float64 {
	if t <= 0 || len(L) == 0 {
		return L
	}
	Q := buildGenerator(maxN, theta, u, v)
	d := triSize(maxN)
	scaled := mat.NewDense(d, d, nil)
	scaled.Scale(t, Q)
	var P mat.Dense
	P.Exp(scaled)

	old := mat.NewVecDense(d, L)
	var next mat.VecDense
	next.MulVec(P.T(), old)

	out := make([]float64, d)
	for i := 0; i < d; i++ {
		out[i] = next.AtVec(i)
	}
	return out
}

// convolve merges two independent lineage pools (e.g. the partial
// likelihoods arriving from a node's two children) into the pool
// entering their parent.
func convolve(a []float64, maxA int, b []float64, maxB int) ([]float64, int) {
	maxN := maxA + maxB
	out := make([]float64, triSize(maxN))
	for n1 := 0; n1 <= maxA; n1++ {
		for r1 := 0; r1 <= n1; r1++ {
			av := a[triIndex(n1, r1)]
			if av == 0 {
				continue
			}
			for n2 := 0; n2 <= maxB; n2++ {
				for r2 := 0; r2 <= n2; r2++ {
					bv := b[triIndex(n2, r2)]
					if bv == 0 {
						continue
					}
					out[triIndex(n1+n2, r1+r2)] += av * bv
				}
			}
		}
	}
	return out, maxN
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 0; i < k; i++ {
		result *= float64(n-i) / float64(i+1)
	}
	return result
}

// rootContract returns the probability of the data summed over every
// possible number of ancestral lineages surviving to the root, with
// the root's allele state distributed Binomial(n, pi1).
func rootContract(L []float64, maxN int, pi1 float64) float64 {
	var p float64
	for n := 0; n <= maxN; n++ {
		for r := 0; r <= n; r++ {
			lv := L[triIndex(n, r)]
			if lv == 0 {
				continue
			}
			p += lv * binomial(n, r) * math.Pow(pi1, float64(r)) * math.Pow(1-pi1, float64(n-r))
		}
	}
	return p
}

// leafVector returns the bottom-of-branch partial likelihood at leaf
// n for the given pattern: certainty at its observed (a, r) pair, or
// the degenerate empty pool if the population has no alleles sampled
// at this pattern.
func leafVector(n *tree.Node, pt *PopulationTree, p biallelicdata.Pattern) ([]float64, int) {
	idx, err := pt.populationIndex(n.Label())
	if err != nil {
		panic(err)
	}
	a := p.Total[idx]
	r := p.Red[idx]
	L := make([]float64, triSize(a))
	L[triIndex(a, r)] = 1
	return L, a
}

// patternVector computes the partial-likelihood vector entering the
// root given pattern p, via post-order peeling.
func (pt *PopulationTree) patternVector(p biallelicdata.Pattern) ([]float64, int) {
	mu := pt.MutationRate.Value()
	pi1 := pt.FreqR.Value()
	u := mu * pi1
	v := mu * (1 - pi1)

	var peel func(n *tree.Node) ([]float64, int)
	peel = func(n *tree.Node) ([]float64, int) {
		if n.IsLeaf() {
			return leafVector(n, pt, p)
		}
		children := n.Children()
		var acc []float64
		accMax := 0
		for i, c := range children {
			cv, cMax := peel(c)
			theta := payloadOf(c).PopSize.Value()
			t := n.Height() - c.Height()
			cv = propagate(cv, cMax, theta, u, v, t)
			if i == 0 {
				acc, accMax = cv, cMax
				continue
			}
			acc, accMax = convolve(acc, accMax, cv, cMax)
		}
		return acc, accMax
	}
	return peel(pt.Tree.Root())
}

// PatternLikelihood returns the (non-log) probability of pattern p
// under the current tree state.
func (pt *PopulationTree) PatternLikelihood(p biallelicdata.Pattern) float64 {
	vec, maxN := pt.patternVector(p)
	return rootContract(vec, maxN, pt.FreqR.Value())
}

// PatternLogLikelihood returns the log probability of pattern p.
func (pt *PopulationTree) PatternLogLikelihood(p biallelicdata.Pattern) float64 {
	return math.Log(pt.PatternLikelihood(p))
}

// ConstantSiteLogCorrection returns the ascertainment-bias correction
// log(1 - P(all ancestral) - P(all derived)) for a locus whose
// per-population sample sizes (indexed the same as pt.Data's
// populations) are given by sampleSizes. When dominant is true, only
// the all-ancestral pattern is excluded (a dominant marker's
// "all absent" pattern is unobservable, but "all present" is not),
// matching the standard AFLP correction.
func (pt *PopulationTree) ConstantSiteLogCorrection(sampleSizes []int, dominant bool) float64 {
	ancestral := biallelicdata.Pattern{Red: make([]int, len(sampleSizes)), Total: append([]int(nil), sampleSizes...)}
	pAnc := pt.PatternLikelihood(ancestral)
	if dominant {
		return math.Log1p(-pAnc)
	}
	derived := biallelicdata.Pattern{Red: append([]int(nil), sampleSizes...), Total: append([]int(nil), sampleSizes...)}
	pDer := pt.PatternLikelihood(derived)
	return math.Log1p(-(pAnc + pDer))
}

// LogLikelihood returns the total log-likelihood of pt.Data given the
// current tree state, summing per-pattern log-likelihoods (weighted
// by pattern multiplicity, divided across NumThreads() worker
// goroutines) and subtracting each locus's constant-site or
// dominant-marker ascertainment-bias correction.
func (pt *PopulationTree) LogLikelihood() float64 {
	n := pt.Data.NumPatterns()
	if n == 0 {
		return 0
	}
	numWorkers := pt.NumThreads()
	if numWorkers > n {
		numWorkers = n
	}
	contributions := make([]float64, n)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				p := pt.Data.Pattern(idx)
				contributions[idx] = pt.PatternLogLikelihood(p) * pt.Data.Weight(idx)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var sum float64
	for _, c := range contributions {
		sum += c
	}

	for _, locus := range pt.Data.Loci() {
		sizes, numSites := pt.localeSampleSizes(locus)
		if numSites == 0 {
			continue
		}
		corr := pt.ConstantSiteLogCorrection(sizes, pt.Data.IsDominant())
		sum -= numSites * corr
	}
	return sum
}

// localeSampleSizes returns, per population, the largest sample size
// observed within the [start, end) locus range, and the total
// (weighted) number of sites in it.
func (pt *PopulationTree) localeSampleSizes(locus [2]int) ([]int, float64) {
	sizes := make([]int, pt.Data.NumPopulations())
	var numSites float64
	for i := locus[0]; i < locus[1]; i++ {
		p := pt.Data.Pattern(i)
		for pop, a := range p.Total {
			if a > sizes[pop] {
				sizes[pop] = a
			}
		}
		numSites += pt.Data.Weight(i)
	}
	return sizes, numSites
}
