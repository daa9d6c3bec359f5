package tuning

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utflab/utfsim/internal/superop"
)

func TestLinspace(t *testing.T) {
	vals := Linspace(3.6, 3.8, 25)
	require.Len(t, vals, 25)
	assert.InDelta(t, 3.6, vals[0], 1e-12)
	assert.InDelta(t, 3.8, vals[24], 1e-12)

	assert.Equal(t, []float64{1.0}, Linspace(1.0, 2.0, 1))
}

func TestSelectBest(t *testing.T) {
	points := []Point{
		{R: 3.6, Tolerance: 0.06, Adapt: 0.006, Passed: true},
		{R: 3.7, Tolerance: 0.08, Adapt: 0.003, Passed: true},
		{R: 3.8, Tolerance: 0.10, Adapt: 0.001, Passed: false},
		{R: 3.7, Tolerance: 0.06, Adapt: 0.003, Passed: true},
	}
	best, err := SelectBest(points)
	require.NoError(t, err)
	assert.Equal(t, 0.003, best.Adapt)
	// Tie on adapt resolves to the earliest grid point.
	assert.Equal(t, 0.08, best.Tolerance)
}

func TestSelectBestNoneStable(t *testing.T) {
	_, err := SelectBest([]Point{{Passed: false}, {Passed: false}})
	assert.ErrorIs(t, err, ErrNoStableConfig)

	_, err = SelectBest(nil)
	assert.ErrorIs(t, err, ErrNoStableConfig)
}

func smallSweepConfig() SweepConfig {
	return SweepConfig{
		RValues:     []float64{2.5, 2.8, 3.2},
		TolValues:   []float64{0.05, 0.08},
		AdaptValues: []float64{0.003, 0.005},
		Steps:       300,
		Workers:     4,
	}
}

func TestRunSweepDeterministic(t *testing.T) {
	cfg := smallSweepConfig()
	log := zerolog.Nop()

	a, err := RunSweep(context.Background(), cfg, log)
	require.NoError(t, err)
	b, err := RunSweep(context.Background(), cfg, log)
	require.NoError(t, err)

	require.Len(t, a, cfg.size())
	assert.Equal(t, a, b, "parallel sweeps must merge deterministically")
}

func TestRunSweepGridOrder(t *testing.T) {
	cfg := smallSweepConfig()
	points, err := RunSweep(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	// r iterates outermost, adapt innermost.
	assert.Equal(t, 2.5, points[0].R)
	assert.Equal(t, 0.003, points[0].Adapt)
	assert.Equal(t, 0.005, points[1].Adapt)
	assert.Equal(t, 2.8, points[4].R)
}

func TestRunSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := DefaultSweepConfig()
	_, err := RunSweep(ctx, cfg, zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweepCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	points := []Point{
		{R: 3.6, Tolerance: 0.06, Adapt: 0.003, Passed: true},
		{R: 3.7, Tolerance: 0.08, Adapt: 0.005, Passed: false},
	}
	require.NoError(t, WriteSweepCSV(path, points))

	got, err := ReadSweepCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 3.6, got[0].R, 1e-9)
	assert.True(t, got[0].Passed)
	assert.False(t, got[1].Passed)
}

func TestReadSweepCSVSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.csv")
	content := "3.600000,0.060000,0.003000,true\nnot,a,row\n3.700000,garbage,0.005000,false\n3.800000,0.100000,0.006000,true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadSweepCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 3.6, got[0].R, 1e-9)
	assert.InDelta(t, 3.8, got[1].R, 1e-9)
}

func TestAppendHistoryHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	entry := HistoryEntry{
		Timestamp:     time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		GitCommit:     "abc1234",
		ZenodoDOI:     "pending-doi",
		ArxivVersion:  "v1",
		RBest:         3.75,
		ToleranceBest: 0.08,
		AdaptBest:     0.003,
		NumSamples:    1250,
	}
	require.NoError(t, AppendHistory(path, entry))
	entry.RBest = 3.76
	require.NoError(t, AppendHistory(path, entry))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3, "header plus two entries")
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,git_commit"))
	assert.Equal(t, 1, strings.Count(string(raw), "timestamp,git_commit"))
}

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	best := Point{R: 3.72, Tolerance: 0.07, Adapt: 0.004}
	prov := Provenance{GitCommit: "deadbee", ZenodoDOI: "no-zenodo-file", ArxivVersion: "v2"}
	require.NoError(t, AppendHistory(path, NewHistoryEntry(best, 1250, prov)))

	entries, err := ReadHistory(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "deadbee", e.GitCommit)
	assert.Equal(t, "v2", e.ArxivVersion)
	assert.InDelta(t, 3.72, e.RBest, 1e-9)
	assert.Equal(t, 1250, e.NumSamples)
}

func TestReadHistoryTolerant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := strings.Join([]string{
		"timestamp,git_commit,zenodo_doi,arxiv_version,r_best,tolerance_best,adapt_best,num_samples",
		"2026-08-01T09:00:00,abc,doi,v1,3.700000,0.080000,0.003000,1250",
		"corrupted line without enough fields",
		"not-a-date,abc,doi,v1,3.700000,0.080000,0.003000,1250",
		"2026-08-02T09:00:00,def,doi,v1,3.710000,0.080000,0.004000,1250",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := ReadHistory(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0].GitCommit)
	assert.Equal(t, "def", entries[1].GitCommit)
}

func TestReadHistoryMissingFile(t *testing.T) {
	entries, err := ReadHistory(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProvenanceFallbacks(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "no-zenodo-file", ZenodoDOI(filepath.Join(dir, "zenodo.json")))
	assert.Equal(t, "v0", ArxivVersion(filepath.Join(dir, "arxiv.json")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "zenodo.json"), []byte("{not json"), 0o644))
	assert.Equal(t, "invalid-json", ZenodoDOI(filepath.Join(dir, "zenodo.json")))
}

func TestRunRobustnessGrid(t *testing.T) {
	cfg := DefaultRobustnessConfig()
	cfg.Etas = []float64{0.0, 0.1}
	cfg.Lams = []float64{0.10}
	cfg.Sigmas = []float64{0.0, 1e-3}
	cfg.Base.Steps = 500
	cfg.Workers = 2

	rows, err := RunRobustness(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Grid order: eta outermost, sigma innermost.
	assert.Equal(t, 0.0, rows[0].Eta)
	assert.Equal(t, 1e-3, rows[1].Sigma)
	assert.Equal(t, 0.1, rows[2].Eta)
	for _, r := range rows {
		assert.Greater(t, r.TauCrit, 0.0)
	}
}

func TestRunRobustnessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunRobustness(ctx, DefaultRobustnessConfig(), zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRobustnessRejectsBadParams(t *testing.T) {
	cfg := DefaultRobustnessConfig()
	cfg.Etas = []float64{-1}
	cfg.Lams = []float64{0.1}
	cfg.Sigmas = []float64{0}
	cfg.Base.Steps = 100

	_, err := RunRobustness(context.Background(), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, superop.ErrInvalidParams)
}

func TestWriteRobustnessCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "robustness.csv")
	rows := []RobustnessRow{
		{Eta: 0.1, Lam: 0.1, Sigma: 1e-3, EMean: 0.01, TauCrit: 5, Bounded: true},
	}
	require.NoError(t, WriteRobustnessCSV(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "eta,lam,sigma,E_mean,E_std,drift_mean,drift_max,tau_crit,bounded", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], "true"))
}
