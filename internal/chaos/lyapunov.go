package chaos

import "math"

// Lyapunov estimates the Lyapunov exponent of the logistic map at
// gain r by averaging ln|f'(x)| = ln|r*(1-2x)| along the orbit from
// x0, after discarding warmup iterations. Positive values indicate
// chaos; the accumulation phase uses the derivative directly rather
// than trajectory separation, which for a scalar map is exact.
func Lyapunov(r, x0 float64, warmup, steps int) float64 {
	x := Clip01(x0)
	for i := 0; i < warmup; i++ {
		x = Step(x, r)
	}

	sum := 0.0
	count := 0
	for i := 0; i < steps; i++ {
		d := math.Abs(r * (1 - 2*x))
		if d > 0 {
			sum += math.Log(d)
			count++
		}
		x = Step(x, r)
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
