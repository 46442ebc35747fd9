// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsalarias/ecoevolity/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
tree: tree.nex
data:
  - path: data.nex
`)
	cfg, err := config.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.NumGenerations != 100000 {
		t.Errorf("got NumGenerations %d, want 100000", cfg.NumGenerations)
	}
	if cfg.SampleEvery != 100 {
		t.Errorf("got SampleEvery %d, want 100", cfg.SampleEvery)
	}
	if cfg.RootHeightPrior.Name != "exponential" {
		t.Errorf("got root height prior %q, want exponential", cfg.RootHeightPrior.Name)
	}
}

func TestReadRejectsMissingTree(t *testing.T) {
	path := writeConfig(t, `
data:
  - path: data.nex
`)
	if _, err := config.Read(path); err == nil {
		t.Fatalf("expected an error for a config with no tree path")
	}
}

func TestReadRejectsNoDataAndNoSimulation(t *testing.T) {
	path := writeConfig(t, `
tree: tree.nex
`)
	if _, err := config.Read(path); err == nil {
		t.Fatalf("expected an error for a config with neither data nor a simulation size")
	}
}

func TestReadAllowsSimulationWithoutData(t *testing.T) {
	path := writeConfig(t, `
tree: tree.nex
sim_num_sites: 100
sim_sample_sizes:
  A: 4
  B: 4
`)
	cfg, err := config.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.SimSampleSizes["A"] != 4 {
		t.Errorf("got sample size %d, want 4", cfg.SimSampleSizes["A"])
	}
}

func TestPriorConfigDistributionBuildsEachKind(t *testing.T) {
	cases := []config.PriorConfig{
		{Name: "uniform", Min: 0, Max: 1},
		{Name: "exponential", Rate: 10},
		{Name: "gamma", Shape: 2, Scale: 0.5},
		{Name: "beta", Alpha: 1, Beta: 1},
	}
	for _, p := range cases {
		if _, err := p.Distribution(); err != nil {
			t.Errorf("%s: Distribution() returned %v", p.Name, err)
		}
	}
}

func TestPriorConfigDistributionRejectsUnknownName(t *testing.T) {
	p := config.PriorConfig{Name: "bogus"}
	if _, err := p.Distribution(); err == nil {
		t.Fatalf("expected an error for an unknown prior name")
	}
}
