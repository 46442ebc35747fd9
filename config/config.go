// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package config loads the YAML configuration file that drives a
// divergence-time inference or simulation run: the input tree and
// data paths, data-parsing options, priors, operator weights, and
// MCMC run length.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jsalarias/ecoevolity/ecoerr"
)

// PriorConfig names a prior distribution and its shape parameters.
// Which shape fields are meaningful depends on Name: min/max for
// "uniform", rate for "exponential", shape/scale for "gamma", and
// alpha/beta for "beta".
type PriorConfig struct {
	Name   string  `yaml:"name"` // "uniform", "exponential", "gamma", "beta"
	Min    float64 `yaml:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty"`
	Rate   float64 `yaml:"rate,omitempty"`
	Shape  float64 `yaml:"shape,omitempty"`
	Scale  float64 `yaml:"scale,omitempty"`
	Alpha  float64 `yaml:"alpha,omitempty"`
	Beta   float64 `yaml:"beta,omitempty"`
}

// DataConfig describes one Nexus data file and how to parse it.
type DataConfig struct {
	Path                string `yaml:"path"`
	PopulationDelimiter string `yaml:"population_delimiter"`
	PopulationIsPrefix  bool   `yaml:"population_is_prefix"`
	GenotypesAreDiploid bool   `yaml:"genotypes_are_diploid"`
	Dominant            bool   `yaml:"dominant"`
	Fold                bool   `yaml:"fold"`
}

// OperatorWeights overrides the default relative operator weights by
// name; any name omitted keeps its built-in default.
type OperatorWeights map[string]float64

// Config is the full contents of an ecoevolity/simcoevolity YAML run
// file.
type Config struct {
	TreePath string       `yaml:"tree"`
	Data     []DataConfig `yaml:"data"`

	RootHeightPrior   PriorConfig `yaml:"root_height_prior"`
	PopulationSizePrior PriorConfig `yaml:"population_size_prior"`
	MutationRatePrior PriorConfig `yaml:"mutation_rate_prior"`
	FreqPrior         PriorConfig `yaml:"freq_prior"`
	ConcentrationPrior PriorConfig `yaml:"concentration_prior"`

	FixedMutationRate *float64 `yaml:"fixed_mutation_rate,omitempty"`
	FixedFreq         *float64 `yaml:"fixed_freq,omitempty"`
	FixRootHeight     bool     `yaml:"fix_root_height"`

	NumGenerations int             `yaml:"num_generations"`
	SampleEvery    int             `yaml:"sample_every"`
	NumThreads     int             `yaml:"num_threads"`
	Seed           int64           `yaml:"seed"`
	OperatorWeights OperatorWeights `yaml:"operator_weights"`

	LogPath     string `yaml:"log_path"`
	OperatorLogPath string `yaml:"operator_log_path"`

	// SimNumSites and SimSampleSizes configure simcoevolity's
	// prior-predictive simulation; unused by ecoevolity/sumcoevolity.
	SimNumSites    int            `yaml:"sim_num_sites"`
	SimSampleSizes map[string]int `yaml:"sim_sample_sizes"`
	SimOutputPath  string         `yaml:"sim_output_path"`
}

// Read loads and validates a Config from the YAML file at path.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ecoerr.ParsingError{Path: path, Message: err.Error()}
	}
	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.NumGenerations == 0 {
		c.NumGenerations = 100000
	}
	if c.SampleEvery == 0 {
		c.SampleEvery = 100
	}
	if c.NumThreads == 0 {
		c.NumThreads = 1
	}
	if c.RootHeightPrior.Name == "" {
		c.RootHeightPrior = PriorConfig{Name: "exponential", Rate: 100}
	}
	if c.PopulationSizePrior.Name == "" {
		c.PopulationSizePrior = PriorConfig{Name: "gamma", Shape: 2, Scale: 0.005}
	}
	if c.MutationRatePrior.Name == "" {
		c.MutationRatePrior = PriorConfig{Name: "gamma", Shape: 100, Scale: 0.01}
	}
	if c.FreqPrior.Name == "" {
		c.FreqPrior = PriorConfig{Name: "beta", Alpha: 1, Beta: 1}
	}
	if c.ConcentrationPrior.Name == "" {
		c.ConcentrationPrior = PriorConfig{Name: "gamma", Shape: 2, Scale: 1}
	}
	return nil
}

func (c *Config) validate() error {
	if c.TreePath == "" {
		return &ecoerr.SettingError{Message: "config is missing a \"tree\" path"}
	}
	if len(c.Data) == 0 && c.SimNumSites == 0 {
		return &ecoerr.SettingError{Message: "config lists no \"data\" files"}
	}
	for _, d := range c.Data {
		if d.Path == "" {
			return &ecoerr.SettingError{Message: "a data entry is missing its \"path\""}
		}
	}
	if c.NumGenerations < 0 {
		return &ecoerr.SettingError{Message: "num_generations must be non-negative"}
	}
	return nil
}

func (p PriorConfig) String() string {
	return fmt.Sprintf("%s(min=%v,max=%v,rate=%v,shape=%v,scale=%v,alpha=%v,beta=%v)", p.Name, p.Min, p.Max, p.Rate, p.Shape, p.Scale, p.Alpha, p.Beta)
}
