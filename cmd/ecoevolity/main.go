// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Ecoevolity estimates shared divergence times and population sizes
// from biallelic genetic marker data under a coalescent model using
// Markov chain Monte Carlo.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/js-arias/command"
	"github.com/jsalarias/ecoevolity/chain"
	"github.com/jsalarias/ecoevolity/config"
	"github.com/jsalarias/ecoevolity/internal/chainlog"
	"github.com/jsalarias/ecoevolity/internal/modelsetup"
	"github.com/jsalarias/ecoevolity/randomsource"
)

var app = &command.Command{
	Usage: "ecoevolity [--seed <int>] [--log <file>] <config-file>",
	Short: "estimate divergence times and population sizes by MCMC",
	Long: `
Ecoevolity runs a Markov chain Monte Carlo analysis that jointly estimates
divergence times, effective population sizes, and mutation parameters from
biallelic genetic marker data under a multi-population coalescent model.

The argument of the command is the path to a YAML configuration file naming
the starting tree, one or more Nexus data files, prior distributions, and the
number of generations to run (see the config package documentation for the
full set of keys).

By default the chain is seeded from the configuration file's "seed" key. Use
--seed to override it. Use --log to direct the state log (one sampled
generation per row) to a file instead of standard output.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var seedFlag int64
var logPathFlag string

func setFlags(c *command.Command) {
	c.Flags().Int64Var(&seedFlag, "seed", 0, "")
	c.Flags().StringVar(&logPathFlag, "log", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting a configuration file")
	}

	cfg, err := config.Read(args[0])
	if err != nil {
		return err
	}

	progress := chainlog.New(os.Stderr)

	tr, pt, ops, concentration, err := modelsetup.BuildModel(cfg)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seedFlag != 0 {
		seed = seedFlag
	}
	rng := randomsource.NewFromInt64(seed)

	ch := chain.New(tr, pt, ops, rng)
	ch.Concentration = concentration

	logPath := cfg.LogPath
	if logPathFlag != "" {
		logPath = logPathFlag
	}
	out := c.Stdout()
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger := chain.NewStateLogWriter(out)

	progress.Info(fmt.Sprintf("starting chain: %d generations, sampling every %d", cfg.NumGenerations, cfg.SampleEvery))
	start := time.Now()
	accepted := 0
	reportEvery := cfg.NumGenerations / 20
	if reportEvery < 1 {
		reportEvery = 1
	}
	for g := 0; g < cfg.NumGenerations; g++ {
		if ch.Step() {
			accepted++
		}
		if cfg.SampleEvery > 0 && (g+1)%cfg.SampleEvery == 0 {
			if err := logger.WriteState(ch); err != nil {
				return err
			}
		}
		if (g+1)%reportEvery == 0 {
			progress.Progress(g+1, cfg.NumGenerations, accepted, time.Since(start))
		}
	}
	progress.Info(fmt.Sprintf("finished %d generations in %s", cfg.NumGenerations, time.Since(start)))
	return nil
}

func main() {
	app.Main()
}
