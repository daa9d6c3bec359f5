// Package config loads run configuration from YAML files and provides
// named presets. CLI flags override file values; file values override
// defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/utflab/utfsim/internal/superop"
)

// Config mirrors the simulation parameters plus the logistic gain.
type Config struct {
	Omega      float64 `yaml:"omega"`
	Gamma      float64 `yaml:"gamma"`
	Lam        float64 `yaml:"lam"`
	Eta        float64 `yaml:"eta"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Seed       int64   `yaml:"seed"`
	NoiseSigma float64 `yaml:"noise_sigma"`
	R          float64 `yaml:"r"`
}

// DefaultConfig returns the documented CLI defaults.
func DefaultConfig() *Config {
	return &Config{
		Omega:      1.0,
		Gamma:      0.6,
		Lam:        0.1,
		Eta:        0.1,
		Dt:         0.01,
		Steps:      4000,
		Seed:       0,
		NoiseSigma: 1e-3,
		R:          superop.DefaultR,
	}
}

// Load reads a YAML config; absent fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Params converts the config into simulation parameters; validation
// happens when the simulator is constructed.
func (c *Config) Params() superop.Params {
	return superop.Params{
		Omega:      c.Omega,
		Gamma:      c.Gamma,
		Lambda:     c.Lam,
		Eta:        c.Eta,
		Dt:         c.Dt,
		Steps:      c.Steps,
		Seed:       c.Seed,
		NoiseSigma: c.NoiseSigma,
	}
}
