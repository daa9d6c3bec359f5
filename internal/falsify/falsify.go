// Package falsify implements the four falsification predicates. Each
// predicate is a self-contained minimal model, deliberately simpler
// than the coupled integrator, returning a structured pass/fail result
// rather than an error: a violated invariant is a legitimate negative
// outcome, not a crash.
package falsify

import (
	"time"
)

// Result is the outcome of one predicate run. Violation carries the
// specific offending quantity (measured drift, correlation, excess
// energy) when the check fails.
type Result struct {
	Name      string
	Passed    bool
	Detail    string
	Violation float64
	Elapsed   time.Duration
}

// Check pairs a predicate label with its runner.
type Check struct {
	Name string
	Run  func() Result
}

// Checks returns the full battery in canonical order, each with its
// default configuration.
func Checks() []Check {
	return []Check{
		{Name: "T", Run: func() Result { return Transmutation(DefaultTransmutationConfig()) }},
		{Name: "D", Run: func() Result { return Decoherence(DefaultDecoherenceConfig()) }},
		{Name: "F", Run: func() Result { return ChaosAmplification(DefaultChaosConfig()) }},
		{Name: "DF", Run: func() Result { return Coupling(DefaultCouplingConfig()) }},
	}
}

// RunBattery executes every check, timing each independently.
func RunBattery() []Result {
	checks := Checks()
	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		start := time.Now()
		r := c.Run()
		r.Elapsed = time.Since(start)
		results = append(results, r)
	}
	return results
}

// AllPassed reports the aggregate outcome.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
