// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Simcoevolity draws "true" population sizes, mutation rate, and
// ancestral allele frequency from a configuration's prior
// distributions (divergence times are taken as given in the
// configuration's tree) and simulates biallelic marker data under them, for calibrating an ecoevolity analysis (does
// inference recover known, simulated values?).
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/jsalarias/ecoevolity/config"
	"github.com/jsalarias/ecoevolity/internal/modelsetup"
	"github.com/jsalarias/ecoevolity/populationtree"
	"github.com/jsalarias/ecoevolity/randomsource"
	"github.com/jsalarias/ecoevolity/tree"
)

var app = &command.Command{
	Usage: "simcoevolity [--seed <int>] <config-file>",
	Short: "simulate biallelic marker data under the prior",
	Long: `
Simcoevolity draws a full set of "true" model parameters (population sizes,
mutation rate, ancestral allele frequency) from the distributions named in a
configuration file's priors, then simulates biallelic marker data at
"sim_num_sites" independent sites under them, sampling "sim_sample_sizes"
gene copies per population.

The argument is the path to the same style of YAML configuration file
ecoevolity reads; sim_num_sites and sim_sample_sizes must be set, and a
"data" block is not required. The true parameter values are written to
standard error; the simulated data matrix is written to standard output, or
to "sim_output_path" if the configuration sets it.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var seedFlag int64

func setFlags(c *command.Command) {
	c.Flags().Int64Var(&seedFlag, "seed", 0, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting a configuration file")
	}
	cfg, err := config.Read(args[0])
	if err != nil {
		return err
	}
	if cfg.SimNumSites <= 0 {
		return c.UsageError("config must set a positive sim_num_sites")
	}
	if len(cfg.SimSampleSizes) == 0 {
		return c.UsageError("config must set sim_sample_sizes")
	}

	popSizePrior, err := cfg.PopulationSizePrior.Distribution()
	if err != nil {
		return err
	}
	tr, err := modelsetup.BuildTree(cfg.TreePath, popSizePrior)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seedFlag != 0 {
		seed = seedFlag
	}
	rng := randomsource.NewFromInt64(seed)

	mu, pi1, err := modelsetup.DrawTrueValues(cfg, tr, rng)
	if err != nil {
		return err
	}

	if err := writeTrueValues(os.Stderr, tr, mu, pi1); err != nil {
		return err
	}

	out := c.Stdout()
	if cfg.SimOutputPath != "" {
		f, ferr := os.Create(cfg.SimOutputPath)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		out = f
	}
	return simulateAndWrite(out, tr, mu, pi1, cfg.SimSampleSizes, cfg.SimNumSites, rng)
}

func writeTrueValues(w io.Writer, tr *tree.Tree, mu, pi1 float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "root_height\t%.6f\n", tr.Root().Height())
	fmt.Fprintf(bw, "mutation_rate\t%.6f\n", mu)
	fmt.Fprintf(bw, "freq_1\t%.6f\n", pi1)
	for _, n := range tr.Nodes() {
		label := n.Label()
		if label == "" {
			label = fmt.Sprintf("node_%d", n.Index())
		}
		fmt.Fprintf(bw, "pop_size[%s]\t%.6f\n", label, popSizeValue(n))
	}
	return bw.Flush()
}

func popSizeValue(n *tree.Node) float64 {
	p, ok := n.Payload().(*populationtree.Payload)
	if !ok || p == nil || p.PopSize == nil {
		return 0
	}
	return p.PopSize.Value()
}

func simulateAndWrite(w io.Writer, tr *tree.Tree, mu, pi1 float64, sampleSizes map[string]int, numSites int, rng *randomsource.Source) error {
	leaves := tr.Leaves()
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "site")
	for _, leaf := range leaves {
		fmt.Fprintf(bw, "\t%s_red\t%s_total", leaf.Label(), leaf.Label())
	}
	fmt.Fprintln(bw)

	for site := 0; site < numSites; site++ {
		p := populationtree.SimulateBiallelicSite(tr, mu, pi1, sampleSizes, rng)
		fmt.Fprint(bw, site)
		for i := range leaves {
			fmt.Fprintf(bw, "\t%d\t%d", p.Red[i], p.Total[i])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func main() {
	app.Main()
}
