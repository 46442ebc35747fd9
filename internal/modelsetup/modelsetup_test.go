// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package modelsetup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsalarias/ecoevolity/config"
	"github.com/jsalarias/ecoevolity/internal/modelsetup"
	"github.com/jsalarias/ecoevolity/randomsource"
)

const nexusFixture = `#NEXUS
begin taxa;
	dimensions ntax=4;
	taxlabels popA-1 popA-2 popB-1 popB-2;
end;

begin characters;
	dimensions nchar=3;
	format datatype=standard symbols="01" missing=?;
	matrix
	popA-1 010
	popA-2 000
	popB-1 111
	popB-2 101
	;
end;
`

const treeFixture = "(popA:1,popB:1);"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDataMergesFilesAndMarksLoci(t *testing.T) {
	path := writeFile(t, "data.nex", nexusFixture)
	data, err := modelsetup.LoadData([]config.DataConfig{
		{Path: path, PopulationDelimiter: "-", PopulationIsPrefix: true},
		{Path: path, PopulationDelimiter: "-", PopulationIsPrefix: true},
	})
	if err != nil {
		t.Fatalf("LoadData: %v", err)
	}
	if data.NumPopulations() != 2 {
		t.Fatalf("got %d populations, want 2", data.NumPopulations())
	}
	if len(data.Loci()) != 2 {
		t.Errorf("got %d loci, want 2 (one per merged file)", len(data.Loci()))
	}
}

func TestLoadDataRejectsMismatchedPopulations(t *testing.T) {
	a := writeFile(t, "a.nex", nexusFixture)
	b := writeFile(t, "b.nex", `#NEXUS
begin taxa;
	dimensions ntax=2;
	taxlabels popC-1 popD-1;
end;

begin characters;
	dimensions nchar=1;
	format datatype=standard symbols="01" missing=?;
	matrix
	popC-1 0
	popD-1 1
	;
end;
`)
	_, err := modelsetup.LoadData([]config.DataConfig{
		{Path: a, PopulationDelimiter: "-", PopulationIsPrefix: true},
		{Path: b, PopulationDelimiter: "-", PopulationIsPrefix: true},
	})
	if err == nil {
		t.Fatalf("expected an error merging data files over different populations")
	}
}

func TestBuildModelWiresPriorsAndOperators(t *testing.T) {
	treePath := writeFile(t, "tree.nwk", treeFixture)
	dataPath := writeFile(t, "data.nex", nexusFixture)

	cfg, err := config.Read(writeFile(t, "config.yaml", `
tree: `+treePath+`
data:
  - path: `+dataPath+`
    population_delimiter: "-"
    population_is_prefix: true
num_generations: 10
sample_every: 5
`))
	if err != nil {
		t.Fatalf("config.Read: %v", err)
	}

	tr, pt, ops, concentration, err := modelsetup.BuildModel(cfg)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	if tr.NumLeaves() != 2 {
		t.Fatalf("got %d leaves, want 2", tr.NumLeaves())
	}
	if len(ops) == 0 {
		t.Fatalf("expected a non-empty operator schedule")
	}
	if concentration == nil {
		t.Errorf("expected a concentration parameter for a multi-branch tree")
	}
	if pt.MutationRate.IsFixed() {
		t.Errorf("mutation rate should default to estimated, not fixed")
	}

	ll := pt.LogLikelihood()
	if ll == 0 {
		t.Errorf("got zero log-likelihood, want a finite negative value")
	}
}

func TestDrawTrueValuesRespectsFixedParameters(t *testing.T) {
	treePath := writeFile(t, "tree.nwk", treeFixture)
	fixedMu := 0.5
	fixedFreq := 0.3
	cfg, err := config.Read(writeFile(t, "config.yaml", `
tree: `+treePath+`
sim_num_sites: 10
sim_sample_sizes:
  popA: 2
  popB: 2
fixed_mutation_rate: 0.5
fixed_freq: 0.3
`))
	if err != nil {
		t.Fatalf("config.Read: %v", err)
	}
	popSizePrior, err := cfg.PopulationSizePrior.Distribution()
	if err != nil {
		t.Fatalf("Distribution: %v", err)
	}
	tr, err := modelsetup.BuildTree(cfg.TreePath, popSizePrior)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	rng := randomsource.New(1, 2)
	mu, pi1, err := modelsetup.DrawTrueValues(cfg, tr, rng)
	if err != nil {
		t.Fatalf("DrawTrueValues: %v", err)
	}
	if mu != fixedMu {
		t.Errorf("got mu %v, want fixed %v", mu, fixedMu)
	}
	if pi1 != fixedFreq {
		t.Errorf("got pi1 %v, want fixed %v", pi1, fixedFreq)
	}
}
