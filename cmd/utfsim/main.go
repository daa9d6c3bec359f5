package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/utflab/utfsim/internal/chaos"
	"github.com/utflab/utfsim/internal/config"
	"github.com/utflab/utfsim/internal/falsify"
	"github.com/utflab/utfsim/internal/operators"
	"github.com/utflab/utfsim/internal/storage"
	"github.com/utflab/utfsim/internal/superop"
	"github.com/utflab/utfsim/internal/tuning"
)

var (
	dataDir string
	verbose bool

	// run parameters
	omega      float64
	gamma      float64
	lam        float64
	eta        float64
	sigma      float64
	dt         float64
	steps      int
	seed       int64
	rGain      float64
	configFile string
	preset     string
	plotTrace  bool

	// tuning
	sweepCSV    string
	historyCSV  string
	tuneSteps   int
	tuneWorkers int
	resweep     bool

	// robustness
	etasArg   string
	lamsArg   string
	sigmasArg string
	robustOut string

	// pipeline
	timesteps int
)

func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "utfsim",
		Short:         "coupled quantum-classical toy model lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".utfsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "integrate the coupled superoperator model",
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&omega, "omega", 1.0, "unitary drive frequency")
	runCmd.Flags().Float64Var(&gamma, "gamma", 0.6, "dephasing rate")
	runCmd.Flags().Float64Var(&lam, "lam", 0.1, "chaos sensitivity")
	runCmd.Flags().Float64Var(&eta, "eta", 0.1, "commutator coupling strength")
	runCmd.Flags().Float64Var(&sigma, "sigma", 1e-3, "noise magnitude on the classical map")
	runCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", 4000, "iteration count")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	runCmd.Flags().Float64Var(&rGain, "r", superop.DefaultR, "logistic map gain")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&plotTrace, "plot", false, "print an ascii sketch of E(t)")

	falsifyCmd := &cobra.Command{
		Use:   "falsify [check...]",
		Short: "run falsification checks (T, D, F, DF); all when none named",
		RunE:  runFalsify,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "Monte-Carlo sweep of the chaos kernel and best-fit logging",
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&sweepCSV, "sweep-csv", "data/f_sweep_results.csv", "sweep results file")
	tuneCmd.Flags().StringVar(&historyCSV, "history", "data/f_tuning_history.csv", "append-only tuning log")
	tuneCmd.Flags().IntVar(&tuneSteps, "steps", 1000, "kernel steps per grid point")
	tuneCmd.Flags().IntVar(&tuneWorkers, "workers", 0, "parallel workers (0 = all cpus)")
	tuneCmd.Flags().BoolVar(&resweep, "resweep", false, "re-evaluate the grid even if sweep results exist")

	robustnessCmd := &cobra.Command{
		Use:   "robustness",
		Short: "noise robustness map over (eta, lam, sigma)",
		RunE:  runRobustness,
	}
	robustnessCmd.Flags().StringVar(&etasArg, "etas", "0.0,0.05,0.1,0.2", "comma-separated eta values")
	robustnessCmd.Flags().StringVar(&lamsArg, "lams", "0.08,0.10,0.12", "comma-separated lambda values")
	robustnessCmd.Flags().StringVar(&sigmasArg, "sigmas", "0.0,1e-3,2e-3,5e-3", "comma-separated sigma values")
	robustnessCmd.Flags().Float64Var(&omega, "omega", 1.0, "unitary drive frequency")
	robustnessCmd.Flags().Float64Var(&gamma, "gamma", 0.6, "dephasing rate")
	robustnessCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	robustnessCmd.Flags().IntVar(&steps, "steps", 4000, "iteration count")
	robustnessCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	robustnessCmd.Flags().Float64Var(&rGain, "r", superop.DefaultR, "logistic map gain")
	robustnessCmd.Flags().StringVar(&robustOut, "out", "data/noise_robustness.csv", "output csv")

	pipelineCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "run the analytic tri-operator benchmark",
		RunE:  runPipeline,
	}
	pipelineCmd.Flags().IntVar(&timesteps, "timesteps", 1000, "sample count")
	pipelineCmd.Flags().Float64Var(&dt, "dt", 0.01, "sample spacing")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "show the tuning history log",
		RunE:  showHistory,
	}
	historyCmd.Flags().StringVar(&historyCSV, "history", "data/f_tuning_history.csv", "append-only tuning log")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, falsifyCmd, tuneCmd, robustnessCmd, pipelineCmd, listCmd, historyCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// CLI flags override preset and file values.
	applyIfChanged := map[string]func(){
		"omega": func() { cfg.Omega = omega },
		"gamma": func() { cfg.Gamma = gamma },
		"lam":   func() { cfg.Lam = lam },
		"eta":   func() { cfg.Eta = eta },
		"sigma": func() { cfg.NoiseSigma = sigma },
		"dt":    func() { cfg.Dt = dt },
		"steps": func() { cfg.Steps = steps },
		"seed":  func() { cfg.Seed = seed },
		"r":     func() { cfg.R = rGain },
	}
	for name, apply := range applyIfChanged {
		if cmd.Flags().Changed(name) || (preset == "" && configFile == "") {
			apply()
		}
	}

	log := logger()
	sim, err := superop.New(cfg.Params())
	if err != nil {
		return err
	}

	log.Debug().
		Float64("eta", cfg.Eta).
		Float64("lam", cfg.Lam).
		Float64("sigma", cfg.NoiseSigma).
		Int("steps", cfg.Steps).
		Msg("starting run")

	start := time.Now()
	res, err := sim.Run(context.Background(), nil, cfg.R)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Params(), cfg.R, res)
	if err != nil {
		return err
	}

	tc := superop.TauCrit(cfg.Lam)
	bounded := res.DriftMean < tc

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run id\t%s\n", runID)
	fmt.Fprintf(w, "steps\t%d (%.2fs simulated, %v wall)\n", len(res.Energy), cfg.Dt*float64(cfg.Steps), elapsed)
	fmt.Fprintf(w, "E_mean\t%.6f\n", res.EnergyMean)
	fmt.Fprintf(w, "E_std\t%.6f\n", res.EnergyStd)
	fmt.Fprintf(w, "drift_mean\t%.6f\n", res.DriftMean)
	fmt.Fprintf(w, "drift_max\t%.6f\n", res.DriftMax)
	fmt.Fprintf(w, "tau_crit\t%.6f\n", tc)
	fmt.Fprintf(w, "bounded\t%s\n", statusMark(bounded))
	if err := w.Flush(); err != nil {
		return err
	}

	if plotTrace && len(res.Energy) > 0 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(res.Energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("E(t)"),
		))
	}
	return nil
}

func statusMark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func runFalsify(cmd *cobra.Command, args []string) error {
	checks := falsify.Checks()
	if len(args) > 0 {
		wanted := make(map[string]bool, len(args))
		for _, a := range args {
			wanted[strings.ToUpper(a)] = true
		}
		filtered := checks[:0]
		for _, c := range checks {
			if wanted[c.Name] {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) == 0 {
			return fmt.Errorf("no matching checks (available: T, D, F, DF)")
		}
		checks = filtered
	}

	results := make([]falsify.Result, 0, len(checks))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tTIME\tDETAIL")
	for _, c := range checks {
		start := time.Now()
		r := c.Run()
		r.Elapsed = time.Since(start)
		results = append(results, r)
		fmt.Fprintf(w, "%s\t%s\t%.3fs\t%s\n", r.Name, statusMark(r.Passed), r.Elapsed.Seconds(), r.Detail)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	if passed == len(results) {
		fmt.Printf("\n%s all %d checks passed\n", statusMark(true), len(results))
		return nil
	}
	fmt.Printf("\n%s %d/%d checks passed\n", statusMark(false), passed, len(results))
	return fmt.Errorf("falsification: %d check(s) failed", len(results)-passed)
}

func runTune(cmd *cobra.Command, args []string) error {
	log := logger()

	var points []tuning.Point
	if _, err := os.Stat(sweepCSV); err == nil && !resweep {
		points, err = tuning.ReadSweepCSV(sweepCSV)
		if err != nil {
			return err
		}
		log.Info().Int("points", len(points)).Str("path", sweepCSV).Msg("loaded existing sweep results")
	} else {
		cfg := tuning.DefaultSweepConfig()
		cfg.Steps = tuneSteps
		if tuneWorkers > 0 {
			cfg.Workers = tuneWorkers
		}
		points, err = tuning.RunSweep(context.Background(), cfg, log)
		if err != nil {
			return err
		}
		if err := tuning.WriteSweepCSV(sweepCSV, points); err != nil {
			return err
		}
		log.Info().Str("path", sweepCSV).Msg("sweep results saved")
	}

	best, err := tuning.SelectBest(points)
	if err != nil {
		return err
	}

	entry := tuning.NewHistoryEntry(best, len(points), tuning.CaptureProvenance())
	if err := tuning.AppendHistory(historyCSV, entry); err != nil {
		return err
	}
	log.Info().Str("path", historyCSV).Msg("tuning iteration logged")

	// Characterize the winning configuration.
	kc := chaos.DefaultKernelConfig()
	kc.R = best.R
	kc.Tolerance = best.Tolerance
	kc.Adapt = best.Adapt
	kr := chaos.RunKernel(kc)
	lyap := chaos.Lyapunov(best.R, 0.2, 100, 2000)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "r_best\t%.6f\n", best.R)
	fmt.Fprintf(w, "tolerance_best\t%.6f\n", best.Tolerance)
	fmt.Fprintf(w, "adapt_best\t%.6f\n", best.Adapt)
	fmt.Fprintf(w, "num_samples\t%d\n", len(points))
	fmt.Fprintf(w, "kernel alpha/beta/lambda\t%.6f / %.4f / %.4f\n", kr.Alpha, kr.Beta, kr.Lambda)
	fmt.Fprintf(w, "kernel rel_drift\t%.4f (final r %.4f)\n", kr.RelDrift, kr.FinalR)
	fmt.Fprintf(w, "lyapunov(r_best)\t%.4f\n", lyap)
	if lyap > 0 {
		fmt.Fprintf(w, "tau_crit\t%.4f\n", superop.TauCrit(lyap))
	}
	return w.Flush()
}

func runRobustness(cmd *cobra.Command, args []string) error {
	etas, err := parseFloats(etasArg)
	if err != nil {
		return fmt.Errorf("invalid --etas: %w", err)
	}
	lams, err := parseFloats(lamsArg)
	if err != nil {
		return fmt.Errorf("invalid --lams: %w", err)
	}
	sigmas, err := parseFloats(sigmasArg)
	if err != nil {
		return fmt.Errorf("invalid --sigmas: %w", err)
	}

	cfg := tuning.DefaultRobustnessConfig()
	cfg.Etas = etas
	cfg.Lams = lams
	cfg.Sigmas = sigmas
	cfg.R = rGain
	cfg.Base.Omega = omega
	cfg.Base.Gamma = gamma
	cfg.Base.Dt = dt
	cfg.Base.Steps = steps
	cfg.Base.Seed = seed

	log := logger()
	rows, err := tuning.RunRobustness(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	if err := tuning.WriteRobustnessCSV(robustOut, rows); err != nil {
		return err
	}

	boundedCount := 0
	for _, r := range rows {
		if r.Bounded {
			boundedCount++
		}
	}
	fmt.Printf("wrote %s with %d rows (%d bounded)\n", robustOut, len(rows), boundedCount)
	return nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	res := operators.RunPipeline(timesteps, dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "alpha range\t%.4f - %.4f\n", minOf(res.Alpha), maxOf(res.Alpha))
	fmt.Fprintf(w, "beta range\t%.4f - %.4f\n", minOf(res.Beta), maxOf(res.Beta))
	fmt.Fprintf(w, "lambda range\t%.4f - %.4f\n", minOf(res.Lambda), maxOf(res.Lambda))
	fmt.Fprintf(w, "E_total peak\t%.4f\n", maxOf(res.ETotal))
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tETA\tLAM\tSIGMA\tSTEPS\tDRIFT_MEAN\tBOUNDED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.0e\t%d\t%.6f\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Eta,
			run.Lam,
			run.NoiseSigma,
			run.Steps,
			run.DriftMean,
			statusMark(run.Bounded),
		)
	}
	return w.Flush()
}

func showHistory(cmd *cobra.Command, args []string) error {
	entries, err := tuning.ReadHistory(historyCSV)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no tuning history found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCOMMIT\tDOI\tARXIV\tR\tTOL\tADAPT\tSAMPLES")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%d\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.GitCommit,
			e.ZenodoDOI,
			e.ArxivVersion,
			e.RBest,
			e.ToleranceBest,
			e.AdaptBest,
			e.NumSamples,
		)
	}
	return w.Flush()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func minOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
