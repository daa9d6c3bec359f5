package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/utflab/utfsim/internal/superop"
)

func sampleResult() *superop.RunResult {
	return &superop.RunResult{
		Energy:     []float64{0.01, 0.012, 0.009, 0.011},
		Drift:      []float64{0.001, 0.002},
		EnergyMean: 0.0105,
		EnergyStd:  0.0011,
		DriftMean:  0.0015,
		DriftMax:   0.002,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	p := superop.DefaultParams()
	runID, err := st.Save(p, superop.DefaultR, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != runID {
		t.Errorf("metadata ID = %s, want %s", meta.ID, runID)
	}
	if meta.Lam != p.Lambda || meta.Eta != p.Eta || meta.Steps != p.Steps {
		t.Error("metadata parameters do not round-trip")
	}
	if meta.R != superop.DefaultR {
		t.Errorf("metadata r = %g, want %g", meta.R, superop.DefaultR)
	}
	if !meta.Bounded {
		t.Error("drift well below tau_crit should be marked bounded")
	}

	energy, err := st.LoadEnergy(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(energy) != 4 {
		t.Fatalf("energy trace length %d, want 4", len(energy))
	}
	if energy[1] != 0.012 {
		t.Errorf("energy[1] = %g, want 0.012", energy[1])
	}
}

func TestListSkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Save(superop.DefaultParams(), superop.DefaultR, sampleResult()); err != nil {
		t.Fatal(err)
	}
	// A stray directory without metadata must not break listing.
	if err := os.MkdirAll(filepath.Join(dir, "utf_bogus"), 0o755); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("listed %d runs, want 1", len(runs))
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatalf("listed %d runs from a missing dir, want 0", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	runID, err := st.Save(superop.DefaultParams(), superop.DefaultR, sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatal(err)
	}

	var out struct {
		ID     string    `json:"id"`
		Energy []float64 `json:"energy"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if out.ID != runID {
		t.Errorf("exported ID = %s, want %s", out.ID, runID)
	}
	if len(out.Energy) != 4 {
		t.Errorf("exported trace length %d, want 4", len(out.Energy))
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("utf_missing"); err == nil {
		t.Error("loading a missing run should fail")
	}
}
