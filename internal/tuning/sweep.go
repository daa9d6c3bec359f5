// Package tuning searches the chaos-kernel parameter space for stable
// configurations and records results in append-only logs with
// provenance metadata.
package tuning

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/utflab/utfsim/internal/falsify"
)

// ErrNoStableConfig is returned when no grid point passes; it is a
// legitimate negative result, distinct from a computational error.
var ErrNoStableConfig = errors.New("tuning: no stable configuration found")

// Point is one evaluated grid configuration.
type Point struct {
	R         float64
	Tolerance float64
	Adapt     float64
	Passed    bool
}

// SweepConfig defines the 3-D search grid over the logistic gain r,
// the drift tolerance, and the feedback-adaptation rate.
type SweepConfig struct {
	RValues     []float64
	TolValues   []float64
	AdaptValues []float64
	Steps       int
	Workers     int
}

// DefaultSweepConfig mirrors the reference sweep ranges.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		RValues:     Linspace(3.6, 3.8, 25),
		TolValues:   Linspace(0.06, 0.10, 10),
		AdaptValues: Linspace(0.003, 0.006, 5),
		Steps:       1000,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 1 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	return out
}

// size returns the total grid point count.
func (c SweepConfig) size() int {
	return len(c.RValues) * len(c.TolValues) * len(c.AdaptValues)
}

// point maps a flat grid index back to its (r, tol, adapt) triple,
// iterating r outermost to match the reference sweep order.
func (c SweepConfig) point(idx int) Point {
	na, nt := len(c.AdaptValues), len(c.TolValues)
	return Point{
		R:         c.RValues[idx/(nt*na)],
		Tolerance: c.TolValues[(idx/na)%nt],
		Adapt:     c.AdaptValues[idx%na],
	}
}

// RunSweep evaluates the chaos-amplification predicate at every grid
// point. Evaluations are independent and run across a worker pool;
// results are stored by grid index, so worker completion order cannot
// affect the outcome. Each evaluation uses its own predicate state, so
// parallel runs stay reproducible.
func RunSweep(ctx context.Context, cfg SweepConfig, log zerolog.Logger) ([]Point, error) {
	n := cfg.size()
	if n == 0 {
		return nil, ErrNoStableConfig
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	log.Info().
		Int("grid_points", n).
		Int("workers", workers).
		Msg("starting chaos kernel sweep")

	results := make([]Point, n)
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				p := cfg.point(idx)
				fc := falsify.DefaultChaosConfig()
				fc.R = p.R
				fc.Tolerance = p.Tolerance
				fc.Adapt = p.Adapt
				if cfg.Steps > 0 {
					fc.Steps = cfg.Steps
				}
				p.Passed = falsify.ChaosAmplification(fc).Passed
				results[idx] = p
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if err != nil {
		return nil, err
	}

	passed := 0
	for _, p := range results {
		if p.Passed {
			passed++
		}
	}
	log.Info().
		Int("passed", passed).
		Int("evaluated", n).
		Msg("sweep complete")

	return results, nil
}

// SelectBest picks the passing configuration with the smallest adapt
// value, interpreted as the most conservative stable fit. Ties resolve
// to the earliest grid point. Returns ErrNoStableConfig when nothing
// passed.
func SelectBest(points []Point) (Point, error) {
	var best Point
	found := false
	for _, p := range points {
		if !p.Passed {
			continue
		}
		if !found || p.Adapt < best.Adapt {
			best = p
			found = true
		}
	}
	if !found {
		return Point{}, ErrNoStableConfig
	}
	return best, nil
}
