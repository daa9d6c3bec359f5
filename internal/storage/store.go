// Package storage persists completed runs: a metadata.json with the
// parameters and summary statistics, and an energy.csv with the E(t)
// trace, both under a per-run directory.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/utflab/utfsim/internal/superop"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0o755)
}

// RunMetadata describes one stored run.
type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Omega      float64 `json:"omega"`
	Gamma      float64 `json:"gamma"`
	Lam        float64 `json:"lam"`
	Eta        float64 `json:"eta"`
	Dt         float64 `json:"dt"`
	Steps      int     `json:"steps"`
	Seed       int64   `json:"seed"`
	NoiseSigma float64 `json:"noise_sigma"`
	R          float64 `json:"r"`

	EnergyMean float64 `json:"energy_mean"`
	EnergyStd  float64 `json:"energy_std"`
	DriftMean  float64 `json:"drift_mean"`
	DriftMax   float64 `json:"drift_max"`
	TauCrit    float64 `json:"tau_crit"`
	Bounded    bool    `json:"bounded"`
}

// Save writes a completed run and returns its generated ID.
func (s *Store) Save(p superop.Params, r float64, res *superop.RunResult) (string, error) {
	runID := fmt.Sprintf("utf_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create run dir: %w", err)
	}

	tc := superop.TauCrit(p.Lambda)
	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Omega:      p.Omega,
		Gamma:      p.Gamma,
		Lam:        p.Lambda,
		Eta:        p.Eta,
		Dt:         p.Dt,
		Steps:      p.Steps,
		Seed:       p.Seed,
		NoiseSigma: p.NoiseSigma,
		R:          r,
		EnergyMean: res.EnergyMean,
		EnergyStd:  res.EnergyStd,
		DriftMean:  res.DriftMean,
		DriftMax:   res.DriftMax,
		TauCrit:    tc,
		Bounded:    res.DriftMean < tc,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", fmt.Errorf("storage: create metadata: %w", err)
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("storage: encode metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(runDir, "energy.csv"))
	if err != nil {
		return "", fmt.Errorf("storage: create energy trace: %w", err)
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"step", "energy"}); err != nil {
		return "", fmt.Errorf("storage: write header: %w", err)
	}
	for i, e := range res.Energy {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(e, 'f', 9, 64),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("storage: write trace row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("storage: flush trace: %w", err)
	}

	return runID, nil
}

// List returns metadata for every stored run, skipping unreadable
// entries.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, fmt.Errorf("storage: read data dir: %w", err)
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", runID, err)
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadEnergy reads one run's E(t) trace.
func (s *Store) LoadEnergy(runID string) ([]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "energy.csv"))
	if err != nil {
		return nil, fmt.Errorf("storage: open trace: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: read trace: %w", err)
	}

	energy := make([]float64, 0, len(records))
	for _, rec := range records {
		if len(rec) != 2 {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		energy = append(energy, v)
	}
	return energy, nil
}

// exportData is the JSON export shape consumed by downstream plotting
// tools.
type exportData struct {
	RunMetadata
	Energy []float64 `json:"energy"`
}

// ExportJSON writes one run's metadata and trace as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	energy, err := s.LoadEnergy(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{RunMetadata: *meta, Energy: energy})
}
