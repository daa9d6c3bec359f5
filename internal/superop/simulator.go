package superop

import (
	"context"
	"math"

	"github.com/utflab/utfsim/internal/chaos"
	"github.com/utflab/utfsim/internal/quantum"
	"github.com/utflab/utfsim/internal/stats"
)

const (
	// warmupSteps decouples the map from its transient before the
	// quantum state sees it.
	warmupSteps = 100

	// driftWindow is the trailing sample count for the windowed mean.
	driftWindow = 200

	// driftMinSteps is the step count before drift is recorded.
	driftMinSteps = 10

	// traceFloor below which renormalization is considered divergent.
	traceFloor = 1e-12
)

// DefaultR is the logistic gain used when the caller does not sweep it.
const DefaultR = 3.80

// Simulator integrates a 2x2 density matrix under the combined
// generator L_T + L_D + L_F + eta*[L_D, L_F] with a first-order Euler
// step, re-Hermitizing and renormalizing after every update. The
// simulator owns the evolving quantum and classical state for exactly
// one run; nothing survives across calls to Run.
type Simulator struct {
	p Params
}

// RunResult carries the per-step energy proxy E(t) = Re Tr(rho*H_base),
// the drift samples relative to the trailing windowed mean, and their
// summary statistics.
type RunResult struct {
	Energy []float64
	Drift  []float64

	EnergyMean float64
	EnergyStd  float64
	DriftMean  float64
	DriftMax   float64
}

// New validates the parameters eagerly, before any stepping.
func New(p Params) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{p: p}, nil
}

// Params returns the validated run configuration.
func (s *Simulator) Params() Params {
	return s.p
}

// Run integrates one full trajectory with logistic gain r, starting
// from rho0 (the |+><+| state when nil). Euler integration is explicit
// and first-order; dt must be small relative to 1/omega and 1/gamma,
// which is a caller responsibility. A non-finite or zero-trace density
// matrix aborts the run with ErrNumericalInstability wrapped in a
// StepError; partial statistics are not returned in that case.
func (s *Simulator) Run(ctx context.Context, rho0 *quantum.Mat2, r float64) (*RunResult, error) {
	p := s.p

	rho := quantum.PlusState()
	if rho0 != nil {
		rho = *rho0
	}

	// Seed slightly off the map midpoint and warm up past the
	// transient before coupling to the quantum state.
	m := chaos.NewMap(r, 0.5+1e-6, p.NoiseSigma, p.Seed)
	m.Warmup(warmupSteps)

	hBase := quantum.SigmaX.Scale(complex(0.5*p.Omega, 0))

	res := &RunResult{
		Energy: make([]float64, 0, p.Steps),
		Drift:  make([]float64, 0, p.Steps),
	}

	x := m.X()
	for n := 0; n < p.Steps; n++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		xPrev := x
		x = m.Next()
		xdot := (x - xPrev) / p.Dt

		h := Hamiltonian(p.Omega, p.Lambda, x)
		lt := Unitary(rho, h)
		ld := Dephasing(rho, p.Gamma)
		lf := ChaosKick(rho, p.Lambda, xdot)
		lc := CrossTerm(ld, lf, p.Gamma, p.Lambda, p.Eta)

		drho := lt.Add(ld).Add(lf).Add(lc).Scale(complex(p.Dt, 0))
		rho = quantum.Hermitize(rho.Add(drho))

		tr := real(rho.Trace())
		if !rho.IsFinite() || math.Abs(tr) < traceFloor {
			return nil, &StepError{
				Step:    n,
				Time:    float64(n) * p.Dt,
				Wrapped: ErrNumericalInstability,
			}
		}
		rho = rho.Scale(complex(1/tr, 0))

		e := quantum.ExpectationReal(rho, hBase)
		res.Energy = append(res.Energy, e)

		if n > driftMinSteps {
			lo := n - driftWindow
			if lo < 0 {
				lo = 0
			}
			mu := stats.Mean(res.Energy[lo:n])
			res.Drift = append(res.Drift, math.Abs(e-mu))
		}
	}

	res.EnergyMean = stats.Mean(res.Energy)
	res.EnergyStd = stats.StdDev(res.Energy)
	res.DriftMean = stats.Mean(res.Drift)
	res.DriftMax = stats.Max(res.Drift)

	return res, nil
}
