package tuning

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/utflab/utfsim/internal/superop"
)

// RobustnessConfig defines the (eta, lambda, sigma) grid for the
// coupled-integrator noise robustness map. Base supplies the fixed
// parameters (omega, gamma, dt, steps, seed); the grid values override
// the swept fields per evaluation.
type RobustnessConfig struct {
	Etas    []float64
	Lams    []float64
	Sigmas  []float64
	Base    superop.Params
	R       float64
	Workers int
}

// DefaultRobustnessConfig mirrors the reference grid.
func DefaultRobustnessConfig() RobustnessConfig {
	base := superop.DefaultParams()
	base.Steps = 4000
	return RobustnessConfig{
		Etas:    []float64{0.0, 0.05, 0.1, 0.2},
		Lams:    []float64{0.08, 0.10, 0.12},
		Sigmas:  []float64{0.0, 1e-3, 2e-3, 5e-3},
		Base:    base,
		R:       superop.DefaultR,
		Workers: 4,
	}
}

// RobustnessRow is one evaluated grid point; Bounded applies the
// drift_mean < tau_crit(lambda) criterion.
type RobustnessRow struct {
	Eta       float64
	Lam       float64
	Sigma     float64
	EMean     float64
	EStd      float64
	DriftMean float64
	DriftMax  float64
	TauCrit   float64
	Bounded   bool
}

// RunRobustness evaluates the full grid, parallel across points with
// results merged by grid index. A numerically unstable run aborts the
// whole map: its statistics would be meaningless.
func RunRobustness(ctx context.Context, cfg RobustnessConfig, log zerolog.Logger) ([]RobustnessRow, error) {
	n := len(cfg.Etas) * len(cfg.Lams) * len(cfg.Sigmas)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty robustness grid", superop.ErrInvalidParams)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	log.Info().
		Int("grid_points", n).
		Int("steps", cfg.Base.Steps).
		Msg("starting noise robustness map")

	ns, nl := len(cfg.Sigmas), len(cfg.Lams)
	rows := make([]RobustnessRow, n)
	errs := make([]error, n)
	indices := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				p := cfg.Base
				p.Eta = cfg.Etas[idx/(nl*ns)]
				p.Lambda = cfg.Lams[(idx/ns)%nl]
				p.NoiseSigma = cfg.Sigmas[idx%ns]

				sim, err := superop.New(p)
				if err != nil {
					errs[idx] = err
					continue
				}
				res, err := sim.Run(ctx, nil, cfg.R)
				if err != nil {
					errs[idx] = err
					continue
				}

				tc := superop.TauCrit(p.Lambda)
				rows[idx] = RobustnessRow{
					Eta:       p.Eta,
					Lam:       p.Lambda,
					Sigma:     p.NoiseSigma,
					EMean:     res.EnergyMean,
					EStd:      res.EnergyStd,
					DriftMean: res.DriftMean,
					DriftMax:  res.DriftMax,
					TauCrit:   tc,
					Bounded:   res.DriftMean < tc,
				}
			}
		}()
	}

	var feedErr error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			feedErr = ctx.Err()
			break feed
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()

	if feedErr != nil {
		return nil, feedErr
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// WriteRobustnessCSV writes the map with a header row.
func WriteRobustnessCSV(path string, rows []RobustnessRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tuning: create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tuning: create robustness file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"eta", "lam", "sigma", "E_mean", "E_std", "drift_mean", "drift_max", "tau_crit", "bounded"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("tuning: write header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			strconv.FormatFloat(r.Eta, 'g', -1, 64),
			strconv.FormatFloat(r.Lam, 'g', -1, 64),
			strconv.FormatFloat(r.Sigma, 'g', -1, 64),
			strconv.FormatFloat(r.EMean, 'f', 6, 64),
			strconv.FormatFloat(r.EStd, 'f', 6, 64),
			strconv.FormatFloat(r.DriftMean, 'f', 6, 64),
			strconv.FormatFloat(r.DriftMax, 'f', 6, 64),
			strconv.FormatFloat(r.TauCrit, 'f', 6, 64),
			strconv.FormatBool(r.Bounded),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("tuning: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
