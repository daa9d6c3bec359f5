package config

import "sort"

// presets are named starting points for common experiments.
var presets = map[string]func() *Config{
	"default": DefaultConfig,
	"decoupled": func() *Config {
		c := DefaultConfig()
		c.Eta = 0
		c.NoiseSigma = 0
		return c
	},
	"noisy": func() *Config {
		c := DefaultConfig()
		c.NoiseSigma = 5e-3
		return c
	},
	"strong-coupling": func() *Config {
		c := DefaultConfig()
		c.Eta = 0.2
		c.Lam = 0.12
		return c
	},
	"quiet": func() *Config {
		c := DefaultConfig()
		c.Lam = 0
		c.Eta = 0
		c.NoiseSigma = 0
		return c
	},
}

// GetPreset returns a copy of the named preset, or nil if unknown.
func GetPreset(name string) *Config {
	fn, ok := presets[name]
	if !ok {
		return nil
	}
	return fn()
}

// ListPresets returns the preset names sorted for stable display.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
