package quantum

import (
	"math"
	"math/cmplx"
)

// Mat2 is a 2x2 complex matrix, the natural state space for a single
// qubit density matrix. It is a value type; all operations return new
// matrices.
type Mat2 [2][2]complex128

// Pauli matrices and the identity.
var (
	SigmaX = Mat2{{0, 1}, {1, 0}}
	SigmaY = Mat2{{0, complex(0, -1)}, {complex(0, 1), 0}}
	SigmaZ = Mat2{{1, 0}, {0, -1}}
	I2     = Mat2{{1, 0}, {0, 1}}
)

func (m Mat2) Add(o Mat2) Mat2 {
	return Mat2{
		{m[0][0] + o[0][0], m[0][1] + o[0][1]},
		{m[1][0] + o[1][0], m[1][1] + o[1][1]},
	}
}

func (m Mat2) Sub(o Mat2) Mat2 {
	return Mat2{
		{m[0][0] - o[0][0], m[0][1] - o[0][1]},
		{m[1][0] - o[1][0], m[1][1] - o[1][1]},
	}
}

func (m Mat2) Scale(z complex128) Mat2 {
	return Mat2{
		{z * m[0][0], z * m[0][1]},
		{z * m[1][0], z * m[1][1]},
	}
}

func (m Mat2) Mul(o Mat2) Mat2 {
	return Mat2{
		{
			m[0][0]*o[0][0] + m[0][1]*o[1][0],
			m[0][0]*o[0][1] + m[0][1]*o[1][1],
		},
		{
			m[1][0]*o[0][0] + m[1][1]*o[1][0],
			m[1][0]*o[0][1] + m[1][1]*o[1][1],
		},
	}
}

// Dagger returns the conjugate transpose.
func (m Mat2) Dagger() Mat2 {
	return Mat2{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

func (m Mat2) Trace() complex128 {
	return m[0][0] + m[1][1]
}

// IsFinite reports whether every entry is free of NaN and Inf.
func (m Mat2) IsFinite() bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			re, im := real(m[i][j]), imag(m[i][j])
			if math.IsNaN(re) || math.IsInf(re, 0) || math.IsNaN(im) || math.IsInf(im, 0) {
				return false
			}
		}
	}
	return true
}

// Commutator returns [a, b] = ab - ba.
func Commutator(a, b Mat2) Mat2 {
	return a.Mul(b).Sub(b.Mul(a))
}

// AntiCommutator returns {a, b} = ab + ba.
func AntiCommutator(a, b Mat2) Mat2 {
	return a.Mul(b).Add(b.Mul(a))
}

// Dissipator applies the standard Lindblad dissipator for jump operator L:
//
//	D(rho) = L rho L† - 1/2 {L†L, rho}
//
// The result is traceless, so the channel preserves Tr(rho).
func Dissipator(rho, L Mat2) Mat2 {
	ld := L.Dagger()
	ldl := ld.Mul(L)
	return L.Mul(rho).Mul(ld).Sub(AntiCommutator(ldl, rho).Scale(0.5))
}

// Purity returns Tr(rho^2), 1 for pure states and 1/2 for the maximally
// mixed qubit state.
func Purity(rho Mat2) float64 {
	return real(rho.Mul(rho).Trace())
}

// Hermitize projects onto the Hermitian part, (rho + rho†)/2.
func Hermitize(rho Mat2) Mat2 {
	return rho.Add(rho.Dagger()).Scale(0.5)
}

// ExpectationReal returns Re Tr(rho A), the real expectation value of
// observable A in state rho.
func ExpectationReal(rho, A Mat2) float64 {
	return real(rho.Mul(A).Trace())
}

// PlusState returns |+><+|, the sigma_x eigenstate density matrix.
func PlusState() Mat2 {
	return Mat2{{0.5, 0.5}, {0.5, 0.5}}
}

// MixedState builds a qubit density matrix with populations p and 1-p
// and real coherence c on the off-diagonal. The caller is responsible
// for choosing c small enough that the matrix stays positive.
func MixedState(p, c float64) Mat2 {
	return Mat2{
		{complex(p, 0), complex(c, 0)},
		{complex(c, 0), complex(1-p, 0)},
	}
}
