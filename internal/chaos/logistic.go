// Package chaos implements the classical side of the model: the
// logistic map, its Lyapunov exponent, and the Monte-Carlo chaos
// kernel used by the tuning sweep.
package chaos

import "math/rand"

// Step applies one logistic iteration x <- r*x*(1-x), clipped back
// into [0,1]. Clipping matters for r > 4 and for noisy trajectories.
func Step(x, r float64) float64 {
	return Clip01(r * x * (1 - x))
}

// Clip01 clamps v into the unit interval.
func Clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Map is a logistic-map trajectory with optional additive Gaussian
// noise. Each Map owns its RNG, so concurrent trajectories with
// distinct seeds are reproducible and independent.
type Map struct {
	R     float64
	Sigma float64
	x     float64
	rng   *rand.Rand
}

// NewMap starts a trajectory at x0 with gain r and noise magnitude
// sigma, seeded for reproducibility.
func NewMap(r, x0, sigma float64, seed int64) *Map {
	return &Map{
		R:     r,
		Sigma: sigma,
		x:     Clip01(x0),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Warmup advances the map n iterations without noise to escape the
// initial transient.
func (m *Map) Warmup(n int) {
	for i := 0; i < n; i++ {
		m.x = Step(m.x, m.R)
	}
}

// Next advances one step, applies the noise perturbation, and returns
// the new value.
func (m *Map) Next() float64 {
	m.x = Step(m.x, m.R)
	if m.Sigma > 0 {
		m.x = Clip01(m.x + m.rng.NormFloat64()*m.Sigma)
	}
	return m.x
}

// X returns the current value without advancing.
func (m *Map) X() float64 {
	return m.x
}
