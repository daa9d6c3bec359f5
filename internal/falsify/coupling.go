package falsify

import (
	"fmt"
	"math"

	"github.com/utflab/utfsim/internal/stats"
)

// CouplingConfig parameterizes the quantum-to-classical energy
// transfer chain: a coherence amplitude decays exponentially, a
// coupling fraction of the released energy diffuses into a classical
// field, and the remainder is booked against an environment sink so
// total energy is accounted for exactly.
type CouplingConfig struct {
	Steps     int
	Gamma     float64
	Dt        float64
	Coupling  float64
	Diffusion float64
	EnergyTol float64 // absolute conservation bound
	MinCorr   float64 // required loss/gain Pearson correlation
}

func DefaultCouplingConfig() CouplingConfig {
	return CouplingConfig{
		Steps:     50,
		Gamma:     0.05,
		Dt:        1.0,
		Coupling:  0.2,
		Diffusion: 0.01,
		EnergyTol: 1e-3,
		MinCorr:   0.8,
	}
}

// Coupling runs the decoherence-to-diffusion chain and fails if the
// total energy (quantum + classical + sink) drifts from its initial
// value beyond EnergyTol, or if the Pearson correlation between
// quantum energy loss and classical energy gain falls below MinCorr.
// The first failure mode is a conservation check against floating
// error, the second a causal-coupling-strength check.
func Coupling(cfg CouplingConfig) Result {
	amp := 1.0
	eClassical := 0.0
	eSink := 0.0
	initial := amp * amp

	amps := make([]float64, 0, cfg.Steps)
	classical := make([]float64, 0, cfg.Steps)
	maxDelta := 0.0

	decay := math.Exp(-cfg.Gamma * cfg.Dt)
	for t := 0; t < cfg.Steps; t++ {
		ampNext := amp * decay
		loss := amp*amp - ampNext*ampNext
		injection := loss * cfg.Coupling

		next := eClassical + cfg.Diffusion*(injection-eClassical)
		eSink += loss - (next - eClassical)
		eClassical = next
		amp = ampNext

		total := amp*amp + eClassical + eSink
		if d := math.Abs(total - initial); d > maxDelta {
			maxDelta = d
		}

		amps = append(amps, amp)
		classical = append(classical, eClassical)
	}

	if maxDelta > cfg.EnergyTol {
		return Result{
			Name:      "DF",
			Passed:    false,
			Detail:    fmt.Sprintf("energy conservation failed: max deviation %.3e > %.3e", maxDelta, cfg.EnergyTol),
			Violation: maxDelta,
		}
	}

	quantumLoss := stats.Gradient(amps)
	for i := range quantumLoss {
		quantumLoss[i] = -quantumLoss[i]
	}
	classicalGain := stats.Gradient(classical)

	corr := stats.Correlation(quantumLoss, classicalGain)
	if corr < cfg.MinCorr {
		return Result{
			Name:      "DF",
			Passed:    false,
			Detail:    fmt.Sprintf("weak coupling correlation: %.3f < %.3f", corr, cfg.MinCorr),
			Violation: corr,
		}
	}

	return Result{
		Name:   "DF",
		Passed: true,
		Detail: fmt.Sprintf("conservation within %.1e, loss/gain correlation %.3f", maxDelta, corr),
	}
}
