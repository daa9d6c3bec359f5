package superop

import "math"

// lambdaFloor prevents division by zero for non-chaotic regimes.
const lambdaFloor = 1e-8

// TauCrit is the closed-form drift tolerance bound tau_crit ~
// 1/(2*lambda_max). It decreases strictly monotonically with the chaos
// sensitivity: faster trajectory divergence leaves less room for
// energy drift before a run is considered unbounded.
func TauCrit(lamMax float64) float64 {
	return 1.0 / (2.0 * math.Max(lamMax, lambdaFloor))
}
