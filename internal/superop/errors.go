package superop

import (
	"errors"
	"fmt"
)

// Domain errors for the coupled integrator.
var (
	// ErrInvalidParams indicates a parameter outside its valid range.
	ErrInvalidParams = errors.New("superop: parameter out of valid bounds")

	// ErrNumericalInstability indicates the density matrix left the
	// physical manifold (non-finite entries or vanishing trace).
	ErrNumericalInstability = errors.New("superop: numerical instability (non-finite or zero-trace density matrix)")
)

// StepError wraps an error with the step and simulated time at which
// the integrator failed.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
