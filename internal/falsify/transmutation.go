package falsify

import (
	"fmt"
	"math/rand"
)

// SpeedOfLight in m/s.
const SpeedOfLight = 2.99792458e8

// TransmutationConfig parameterizes the energy non-conservation check:
// random rest masses converted at a fixed efficiency must never yield
// more energy than m*c^2 beyond the tolerance margin.
type TransmutationConfig struct {
	Trials     int
	Efficiency float64
	MassMin    float64 // kg
	MassMax    float64 // kg
	Margin     float64 // multiplicative tolerance on m*c^2
	Seed       int64
}

func DefaultTransmutationConfig() TransmutationConfig {
	return TransmutationConfig{
		Trials:     10,
		Efficiency: 1.0,
		MassMin:    1e-5,
		MassMax:    1e-1,
		Margin:     1.0001,
		Seed:       1,
	}
}

// Transmutation samples random rest masses and fails on any over-unity
// conversion: E = efficiency*m*c^2 exceeding the rest-mass energy by
// more than the margin.
func Transmutation(cfg TransmutationConfig) Result {
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < cfg.Trials; i++ {
		m := cfg.MassMin + rng.Float64()*(cfg.MassMax-cfg.MassMin)
		e := cfg.Efficiency * m * SpeedOfLight * SpeedOfLight
		bound := m * SpeedOfLight * SpeedOfLight * cfg.Margin
		if e > bound {
			return Result{
				Name:      "T",
				Passed:    false,
				Detail:    fmt.Sprintf("energy violation at trial %d: m=%.3e kg, E=%.3e J exceeds %.3e J", i, m, e, bound),
				Violation: e - bound,
			}
		}
	}
	return Result{
		Name:   "T",
		Passed: true,
		Detail: fmt.Sprintf("energy conservation held over %d random masses", cfg.Trials),
	}
}
