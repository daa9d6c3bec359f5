package operators

import (
	"math"
	"testing"
)

func TestAlphaUnity(t *testing.T) {
	// E = dm*c^2 converts with alpha exactly 1.
	tr := NewTransmutor(2e-3)
	e := 2e-3 * tr.C * tr.C
	if a := tr.Alpha(e); math.Abs(a-1) > 1e-12 {
		t.Errorf("alpha = %g, want 1", a)
	}
}

func TestAlphaZeroMass(t *testing.T) {
	tr := NewTransmutor(0)
	if a := tr.Alpha(1.0); !math.IsNaN(a) {
		t.Errorf("alpha with zero mass defect = %g, want NaN", a)
	}
}

func TestBeta(t *testing.T) {
	d := NewTransducer(10)
	if b := d.Beta(6); math.Abs(b-0.6) > 1e-12 {
		t.Errorf("beta = %g, want 0.6", b)
	}
	if b := NewTransducer(0).Beta(1); !math.IsNaN(b) {
		t.Errorf("beta with zero input = %g, want NaN", b)
	}
}

func TestLambdaMonotoneInBeta(t *testing.T) {
	f := NewTransfuser(0.1)
	if f.Lambda(0.7) <= f.Lambda(0.5) {
		t.Error("lambda should grow with beta")
	}
	// At the reference transduction ratio the scaling is exactly 1.1.
	if l := f.Lambda(0.6); math.Abs(l-0.11) > 1e-12 {
		t.Errorf("lambda(0.6) = %g, want 0.11", l)
	}
}

func TestAmplifyNormalized(t *testing.T) {
	f := NewTransfuser(0.1)
	ts := []float64{0, 1, 2, 3, 4}
	amp := f.Amplify(ts, 0.5)

	peak := 0.0
	for i, a := range amp {
		if a < 0 || a > 1 {
			t.Fatalf("amplification[%d] = %g outside [0,1]", i, a)
		}
		if a > peak {
			peak = a
		}
		if i > 0 && amp[i] <= amp[i-1] {
			t.Errorf("amplification not increasing at %d", i)
		}
	}
	if math.Abs(peak-1) > 1e-12 {
		t.Errorf("peak = %g, want 1", peak)
	}
}

func TestRunPipeline(t *testing.T) {
	const n = 500
	res := RunPipeline(n, 0.01)

	for _, trace := range [][]float64{res.Time, res.Alpha, res.Beta, res.Lambda, res.ETotal} {
		if len(trace) != n {
			t.Fatalf("trace length %d, want %d", len(trace), n)
		}
	}

	peak := 0.0
	for i, e := range res.ETotal {
		if e < 0 || e > 1 {
			t.Fatalf("E_total[%d] = %g outside [0,1]", i, e)
		}
		if e > peak {
			peak = e
		}
	}
	if math.Abs(peak-1) > 1e-12 {
		t.Errorf("E_total peak = %g, want 1", peak)
	}

	for i, b := range res.Beta {
		if b < 0.5 || b > 0.7 {
			t.Errorf("beta[%d] = %g outside the transduction band", i, b)
		}
	}
}
