// Package operators implements the analytic tri-operator formalism:
// mass-energy transmutation (alpha), thermodynamic transduction (beta)
// and chaotic transfusion (lambda), plus the combined benchmark
// pipeline producing a normalized total-energy curve.
package operators

import (
	"math"

	"github.com/utflab/utfsim/internal/stats"
)

// Transmutor models mass-energy conversion with efficiency
// alpha = E_out / (dm * c^2).
type Transmutor struct {
	MassDefect float64 // kg
	C          float64 // m/s
}

func NewTransmutor(massDefect float64) Transmutor {
	return Transmutor{MassDefect: massDefect, C: 3e8}
}

// Alpha returns E_out / (dm c^2), NaN when the rest-mass energy is zero.
func (t Transmutor) Alpha(energyOut float64) float64 {
	denom := t.MassDefect * t.C * t.C
	if denom == 0 {
		return math.NaN()
	}
	return energyOut / denom
}

// Simulate is the toy alpha(t) dynamic.
func (t Transmutor) Simulate(time float64) float64 {
	return 0.001 * (1 + 0.1*math.Sin(2*math.Pi*time/5))
}

// Transducer models energy downconversion efficiency beta = E_out / E_in.
type Transducer struct {
	EIn float64
}

func NewTransducer(eIn float64) Transducer {
	return Transducer{EIn: eIn}
}

// Beta returns E_out / E_in, NaN when no energy enters.
func (d Transducer) Beta(eOut float64) float64 {
	if d.EIn == 0 {
		return math.NaN()
	}
	return eOut / d.EIn
}

// Simulate is the toy beta(t) dynamic.
func (d Transducer) Simulate(time float64) float64 {
	return 0.6 * (1 - 0.05*math.Cos(2*math.Pi*time/10))
}

// Transfuser models chaotic amplification; lambda scales nonlinearly
// with the transduction ratio beta.
type Transfuser struct {
	Lambda0 float64
}

func NewTransfuser(lambda0 float64) Transfuser {
	return Transfuser{Lambda0: lambda0}
}

// Lambda returns lambda0 * (1 + 0.1*beta/beta0) with beta0 = 0.6.
func (f Transfuser) Lambda(beta float64) float64 {
	return f.Lambda0 * (1 + 0.1*(beta/0.6))
}

// Amplify returns the exponential amplification curve exp(lambda*t)
// normalized to peak 1.
func (f Transfuser) Amplify(ts []float64, lambda float64) []float64 {
	amp := make([]float64, len(ts))
	maxAmp := 0.0
	for i, t := range ts {
		amp[i] = math.Exp(lambda * t)
		if amp[i] > maxAmp {
			maxAmp = amp[i]
		}
	}
	if maxAmp > 0 {
		for i := range amp {
			amp[i] /= maxAmp
		}
	}
	return amp
}

// PipelineResult holds the sampled operator curves and the normalized
// total energy of the combined benchmark.
type PipelineResult struct {
	Time   []float64
	Alpha  []float64
	Beta   []float64
	Lambda []float64
	ETotal []float64
}

// RunPipeline couples the three operators over timesteps*dt and
// normalizes the summed energy to [0, 1].
func RunPipeline(timesteps int, dt float64) PipelineResult {
	t := NewTransmutor(1e-6)
	d := NewTransducer(1.0)
	f := NewTransfuser(0.1)

	res := PipelineResult{
		Time:   make([]float64, timesteps),
		Alpha:  make([]float64, timesteps),
		Beta:   make([]float64, timesteps),
		Lambda: make([]float64, timesteps),
	}
	for i := 0; i < timesteps; i++ {
		ti := float64(i) * dt
		res.Time[i] = ti
		res.Alpha[i] = t.Simulate(ti)
		res.Beta[i] = d.Simulate(ti)
		res.Lambda[i] = f.Lambda(res.Beta[i])
	}

	amp := f.Amplify(res.Time, stats.Mean(res.Lambda))
	total := make([]float64, timesteps)
	maxTotal := 0.0
	for i := 0; i < timesteps; i++ {
		total[i] = res.Alpha[i] + res.Beta[i] + amp[i]
		if total[i] > maxTotal {
			maxTotal = total[i]
		}
	}
	if maxTotal > 0 {
		for i := range total {
			total[i] /= maxTotal
		}
	}
	res.ETotal = total
	return res
}
