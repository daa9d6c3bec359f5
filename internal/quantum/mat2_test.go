package quantum

import (
	"math"
	"math/cmplx"
	"testing"
)

const tol = 1e-12

func approxMat(t *testing.T, got, want Mat2, label string) {
	t.Helper()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(got[i][j]-want[i][j]) > tol {
				t.Errorf("%s: entry (%d,%d) = %v, want %v", label, i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestPauliAlgebra(t *testing.T) {
	approxMat(t, SigmaX.Mul(SigmaX), I2, "sigma_x^2")
	approxMat(t, SigmaY.Mul(SigmaY), I2, "sigma_y^2")
	approxMat(t, SigmaZ.Mul(SigmaZ), I2, "sigma_z^2")

	// [sigma_x, sigma_y] = 2i sigma_z
	want := SigmaZ.Scale(complex(0, 2))
	approxMat(t, Commutator(SigmaX, SigmaY), want, "commutator")

	// {sigma_x, sigma_y} = 0
	approxMat(t, AntiCommutator(SigmaX, SigmaY), Mat2{}, "anticommutator")
}

func TestDaggerAndTrace(t *testing.T) {
	m := Mat2{{complex(1, 2), complex(3, -4)}, {complex(5, 6), complex(7, 8)}}
	d := m.Dagger()
	if d[0][1] != cmplx.Conj(m[1][0]) {
		t.Errorf("dagger (0,1) = %v, want conj of (1,0)", d[0][1])
	}
	if m.Trace() != complex(8, 10) {
		t.Errorf("trace = %v, want (8+10i)", m.Trace())
	}
}

func TestDissipatorTraceless(t *testing.T) {
	rho := PlusState()
	d := Dissipator(rho, SigmaZ)
	if cmplx.Abs(d.Trace()) > tol {
		t.Errorf("dissipator trace = %v, want 0", d.Trace())
	}
}

func TestDissipatorDampsCoherence(t *testing.T) {
	// For L = sigma_z the dissipator is gamma*(sigma_z rho sigma_z - rho),
	// which kills off-diagonal terms: D(rho)[0][1] = -2*rho[0][1].
	rho := PlusState()
	d := Dissipator(rho, SigmaZ)
	if cmplx.Abs(d[0][1]-complex(-1, 0)) > tol {
		t.Errorf("dissipator off-diagonal = %v, want -1", d[0][1])
	}
}

func TestPurity(t *testing.T) {
	if p := Purity(PlusState()); math.Abs(p-1) > tol {
		t.Errorf("pure state purity = %g, want 1", p)
	}
	if p := Purity(MixedState(0.5, 0)); math.Abs(p-0.5) > tol {
		t.Errorf("maximally mixed purity = %g, want 0.5", p)
	}
}

func TestHermitize(t *testing.T) {
	m := Mat2{{complex(1, 0.5), complex(2, 3)}, {complex(4, -1), complex(5, -0.5)}}
	h := Hermitize(m)
	approxMat(t, h, h.Dagger(), "hermitized")
}

func TestExpectationReal(t *testing.T) {
	// |+> is the +1 eigenstate of sigma_x and unbiased in sigma_z.
	if e := ExpectationReal(PlusState(), SigmaX); math.Abs(e-1) > tol {
		t.Errorf("<sigma_x> on |+> = %g, want 1", e)
	}
	if e := ExpectationReal(PlusState(), SigmaZ); math.Abs(e) > tol {
		t.Errorf("<sigma_z> on |+> = %g, want 0", e)
	}
}

func TestIsFinite(t *testing.T) {
	if !PlusState().IsFinite() {
		t.Error("plus state reported non-finite")
	}
	bad := Mat2{{complex(math.NaN(), 0), 0}, {0, 1}}
	if bad.IsFinite() {
		t.Error("NaN entry reported finite")
	}
	inf := Mat2{{0, complex(0, math.Inf(1))}, {0, 1}}
	if inf.IsFinite() {
		t.Error("Inf entry reported finite")
	}
}

func TestMixedStateUnitTrace(t *testing.T) {
	rho := MixedState(0.9, 0.25)
	if cmplx.Abs(rho.Trace()-1) > tol {
		t.Errorf("trace = %v, want 1", rho.Trace())
	}
}
