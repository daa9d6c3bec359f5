package falsify

import (
	"fmt"
	"math"

	"github.com/utflab/utfsim/internal/quantum"
)

// DecoherenceConfig parameterizes the irreversibility check: a qubit
// with an initial coherence decays under an exponential dephasing
// channel, and its purity Tr(rho^2) must never increase.
type DecoherenceConfig struct {
	Steps      int
	Gamma      float64
	Dt         float64
	Population float64 // initial excited-state population
	Coherence  float64 // initial off-diagonal magnitude
	Tolerance  float64 // numerical slack on monotonicity
}

func DefaultDecoherenceConfig() DecoherenceConfig {
	return DecoherenceConfig{
		Steps:      10,
		Gamma:      0.2,
		Dt:         0.5,
		Population: 0.9,
		Coherence:  0.25,
		Tolerance:  1e-8,
	}
}

// Decoherence applies the exponential dephasing channel repeatedly and
// fails if purity increases beyond the tolerance between consecutive
// steps. Decoherence must be monotone in the absence of re-driving.
func Decoherence(cfg DecoherenceConfig) Result {
	rho := quantum.MixedState(cfg.Population, cfg.Coherence)
	last := quantum.Purity(rho)

	decay := math.Exp(-cfg.Gamma * cfg.Dt)
	for t := 0; t < cfg.Steps; t++ {
		rho[0][1] *= complex(decay, 0)
		rho[1][0] *= complex(decay, 0)

		now := quantum.Purity(rho)
		if now > last+cfg.Tolerance {
			return Result{
				Name:      "D",
				Passed:    false,
				Detail:    fmt.Sprintf("purity increased at step %d: %.6f > %.6f", t, now, last),
				Violation: now - last,
			}
		}
		last = now
	}
	return Result{
		Name:   "D",
		Passed: true,
		Detail: fmt.Sprintf("purity monotone over %d dephasing steps (final %.6f)", cfg.Steps, last),
	}
}
