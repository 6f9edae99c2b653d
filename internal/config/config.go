package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TargetRatios are the desired shares of each rigor tier across a codebase.
type TargetRatios struct {
	Tier1 float64 `yaml:"tier1,omitempty"`
	Tier2 float64 `yaml:"tier2,omitempty"`
	Tier3 float64 `yaml:"tier3,omitempty"`
}

// ProjectConfig holds project-level settings loaded from typelens.yml.
type ProjectConfig struct {
	// Root is the directory to scan; relative paths resolve against the
	// config file's directory. Defaults to ".".
	Root string `yaml:"root,omitempty"`

	// Exclude holds glob patterns for paths to skip.
	Exclude []string `yaml:"exclude,omitempty"`

	// Workers caps concurrent unit analysis; 0 means one per CPU.
	Workers int `yaml:"workers,omitempty"`

	// StrongThreshold is the edge weight at or above which a dependency
	// counts as strong; 0 means the built-in default.
	StrongThreshold float64 `yaml:"strongThreshold,omitempty"`

	// TargetRatios tunes the tier distribution the report compares against.
	TargetRatios TargetRatios `yaml:"targetRatios,omitempty"`

	// GraphDB is the path of the persistent graph database directory; empty
	// disables persistence.
	GraphDB string `yaml:"graphDb,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *ProjectConfig {
	return &ProjectConfig{
		Root: ".",
		TargetRatios: TargetRatios{
			Tier1: 0.55,
			Tier2: 0.30,
			Tier3: 0.175,
		},
	}
}

// Load attempts to read typelens.yml or typelens.yaml from the given
// directory. Returns the defaults (not an error) if no config file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"typelens.yml", "typelens.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Defaults()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return cfg, nil
	}
	return Defaults(), nil
}

func (c *ProjectConfig) validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.StrongThreshold < 0 || c.StrongThreshold > 1 {
		return fmt.Errorf("strongThreshold must be within [0, 1], got %v", c.StrongThreshold)
	}
	for _, r := range []float64{c.TargetRatios.Tier1, c.TargetRatios.Tier2, c.TargetRatios.Tier3} {
		if r < 0 || r > 1 {
			return fmt.Errorf("target ratios must be within [0, 1], got %v", r)
		}
	}
	return nil
}
