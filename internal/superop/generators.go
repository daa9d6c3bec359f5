package superop

import (
	"math"

	"github.com/utflab/utfsim/internal/quantum"
)

// The density matrix rate of change is the sum of four generator
// terms: a unitary von Neumann part, a sigma_z dephasing dissipator, an
// anti-Hermitian chaos kicker driven by the classical map's rate of
// change, and a commutator-like cross term coupling the last two.

// Hamiltonian returns H(x) = 0.5*omega*sigma_x + eps(x)*sigma_y with
// eps(x) = 0.15*lambda*(x - 0.5). The classical variable perturbs the
// drive symmetrically about its midpoint; lambda = 0 removes the
// perturbation entirely.
func Hamiltonian(omega, lambda, x float64) quantum.Mat2 {
	eps := 0.15 * lambda * (x - 0.5)
	return quantum.SigmaX.Scale(complex(0.5*omega, 0)).
		Add(quantum.SigmaY.Scale(complex(eps, 0)))
}

// Unitary returns the von Neumann term -i[H, rho].
func Unitary(rho, H quantum.Mat2) quantum.Mat2 {
	return quantum.Commutator(H, rho).Scale(complex(0, -1))
}

// Dephasing returns the Lindblad dissipator for L = sqrt(gamma)*sigma_z.
// gamma = 0 disables the channel (zero matrix).
func Dephasing(rho quantum.Mat2, gamma float64) quantum.Mat2 {
	if gamma <= 0 {
		return quantum.Mat2{}
	}
	L := quantum.SigmaZ.Scale(complex(math.Sqrt(gamma), 0))
	return quantum.Dissipator(rho, L)
}

// ChaosKick couples the classical rate xdot into an anti-Hermitian
// kicker K = i*k*sigma_y with k = 0.1*lambda*xdot, returning K rho - rho K.
// The 0.1 scale keeps the toy system numerically bounded.
func ChaosKick(rho quantum.Mat2, lambda, xdot float64) quantum.Mat2 {
	k := 0.1 * lambda * xdot
	K := quantum.SigmaY.Scale(complex(0, k))
	return K.Mul(rho).Sub(rho.Mul(K))
}

// CrossTerm approximates the superoperator commutator eta*[L_D, L_F]
// applied to rho as eta*(L_D(L_F(rho)) - L_F(L_D(rho), xdot=0)). It is
// the only point where the dephasing and chaos dynamics interact;
// eta = 0 decouples them exactly.
func CrossTerm(ld, lf quantum.Mat2, gamma, lambda, eta float64) quantum.Mat2 {
	if eta == 0 {
		return quantum.Mat2{}
	}
	return Dephasing(lf, gamma).
		Sub(ChaosKick(ld, lambda, 0)).
		Scale(complex(eta, 0))
}
