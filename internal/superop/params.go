package superop

import (
	"fmt"
	"math"
)

// Params holds the immutable configuration for one coupled run. All
// rate and strength parameters must be finite; negative rates are
// rejected at validation time rather than clamped mid-run.
type Params struct {
	Omega      float64 // unitary drive frequency
	Gamma      float64 // dephasing rate
	Lambda     float64 // chaos sensitivity
	Eta        float64 // commutator coupling strength
	Dt         float64 // time step
	Steps      int     // iteration count
	Seed       int64   // RNG seed for the noise stream
	NoiseSigma float64 // stochastic perturbation magnitude on the map
}

// DefaultParams mirrors the reference configuration: a unit drive, a
// strong dephasing channel and weak chaos/commutator coupling.
func DefaultParams() Params {
	return Params{
		Omega:      1.0,
		Gamma:      0.6,
		Lambda:     0.10,
		Eta:        0.10,
		Dt:         0.01,
		Steps:      5000,
		Seed:       0,
		NoiseSigma: 0,
	}
}

// Validate checks the construction invariants. Step size stability
// relative to 1/Omega and 1/Gamma is the caller's responsibility and
// is deliberately not enforced here.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"omega", p.Omega},
		{"gamma", p.Gamma},
		{"lambda", p.Lambda},
		{"eta", p.Eta},
		{"dt", p.Dt},
		{"noise_sigma", p.NoiseSigma},
	} {
		if math.IsNaN(f.val) || math.IsInf(f.val, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, f.name)
		}
	}
	if p.Omega <= 0 {
		return fmt.Errorf("%w: omega must be positive, got %g", ErrInvalidParams, p.Omega)
	}
	if p.Gamma < 0 {
		return fmt.Errorf("%w: gamma must be non-negative, got %g", ErrInvalidParams, p.Gamma)
	}
	if p.Lambda < 0 {
		return fmt.Errorf("%w: lambda must be non-negative, got %g", ErrInvalidParams, p.Lambda)
	}
	if p.Eta < 0 {
		return fmt.Errorf("%w: eta must be non-negative, got %g", ErrInvalidParams, p.Eta)
	}
	if p.NoiseSigma < 0 {
		return fmt.Errorf("%w: noise_sigma must be non-negative, got %g", ErrInvalidParams, p.NoiseSigma)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidParams, p.Dt)
	}
	if p.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidParams, p.Steps)
	}
	return nil
}

// TotalTime returns dt*steps, the total simulated time.
func (p Params) TotalTime() float64 {
	return p.Dt * float64(p.Steps)
}
