package chaos

import (
	"math"
	"math/rand"

	"github.com/utflab/utfsim/internal/stats"
)

// KernelConfig parameterizes one Monte-Carlo chaos kernel run: two
// logistic trajectories from random initial conditions with adaptive
// gain damping whenever their energy separation exceeds the tolerance.
type KernelConfig struct {
	R         float64 // initial logistic gain
	Tolerance float64 // acceptable |E0-E1| separation and drift bound
	Adapt     float64 // damping rate applied to r on violation
	Steps     int
	Seed      int64
	Lambda0   float64 // base Lyapunov scale for the derived lambda
}

// DefaultKernelConfig mirrors the reference kernel defaults.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{
		R:         3.78,
		Tolerance: 0.12,
		Adapt:     0.001,
		Steps:     1000,
		Seed:      1,
		Lambda0:   0.1,
	}
}

// KernelResult carries the derived alpha/beta/lambda metrics, the two
// energy traces, and the stability verdict.
type KernelResult struct {
	Alpha      float64
	Beta       float64
	Lambda     float64
	Trace0     []float64
	Trace1     []float64
	Passed     bool
	MeanEnergy float64
	RelDrift   float64
	FinalR     float64
}

// RunKernel evolves two logistic trajectories under adaptive damping
// and reports whether the relative energy drift of the second half of
// the run stays within tolerance. Identical seeds reproduce identical
// results; each call owns its RNG.
func RunKernel(cfg KernelConfig) KernelResult {
	rng := rand.New(rand.NewSource(cfg.Seed))
	x0, x1 := rng.Float64(), rng.Float64()
	r := cfg.R

	trace0 := make([]float64, 0, cfg.Steps)
	trace1 := make([]float64, 0, cfg.Steps)
	meanE := 0.0

	for i := 0; i < cfg.Steps; i++ {
		x0 = Step(x0, r)
		x1 = Step(x1, r)
		e0, e1 := x0*x0, x1*x1

		// Slow damping correction keeps the pair bounded.
		if math.Abs(e0-e1) > cfg.Tolerance {
			r *= 1 - cfg.Adapt
		}

		meanE = (1-cfg.Adapt)*meanE + cfg.Adapt*(e0+e1)/2
		trace0 = append(trace0, e0)
		trace1 = append(trace1, e1)
	}

	half := trace0[cfg.Steps/2:]
	halfMean := stats.Mean(half)
	relDrift := stats.StdDev(half) / (halfMean + 1e-8)

	all := make([]float64, 0, 2*cfg.Steps)
	all = append(all, trace0...)
	all = append(all, trace1...)

	alpha := stats.Mean(trace0[:cfg.Steps/3]) * 1e-3
	beta := 0.6 + 0.1*math.Sin(stats.Mean(all)*math.Pi)
	lambda := cfg.Lambda0 * (1 + 0.1*(beta/0.6))

	return KernelResult{
		Alpha:      alpha,
		Beta:       beta,
		Lambda:     lambda,
		Trace0:     trace0,
		Trace1:     trace1,
		Passed:     relDrift < cfg.Tolerance,
		MeanEnergy: halfMean,
		RelDrift:   relDrift,
		FinalR:     r,
	}
}
