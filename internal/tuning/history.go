package tuning

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// historyHeader is the append-only tuning log schema. Existing files
// are only ever extended, never rewritten.
var historyHeader = []string{
	"timestamp", "git_commit", "zenodo_doi", "arxiv_version",
	"r_best", "tolerance_best", "adapt_best", "num_samples",
}

// HistoryEntry is one provenance-tagged tuning result row.
type HistoryEntry struct {
	Timestamp     time.Time
	GitCommit     string
	ZenodoDOI     string
	ArxivVersion  string
	RBest         float64
	ToleranceBest float64
	AdaptBest     float64
	NumSamples    int
}

// NewHistoryEntry stamps a winning grid point with the current time
// and provenance metadata.
func NewHistoryEntry(best Point, numSamples int, prov Provenance) HistoryEntry {
	return HistoryEntry{
		Timestamp:     time.Now(),
		GitCommit:     prov.GitCommit,
		ZenodoDOI:     prov.ZenodoDOI,
		ArxivVersion:  prov.ArxivVersion,
		RBest:         best.R,
		ToleranceBest: best.Tolerance,
		AdaptBest:     best.Adapt,
		NumSamples:    numSamples,
	}
}

// AppendHistory appends one entry, writing the header only when the
// file is newly created. Writers must follow single-writer discipline;
// the row itself is written in a single append so concurrent readers
// never see a torn record.
func AppendHistory(path string, e HistoryEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tuning: create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("tuning: open history log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("tuning: stat history log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(historyHeader); err != nil {
			return fmt.Errorf("tuning: write header: %w", err)
		}
	}
	row := []string{
		e.Timestamp.Format("2006-01-02T15:04:05"),
		e.GitCommit,
		e.ZenodoDOI,
		e.ArxivVersion,
		strconv.FormatFloat(e.RBest, 'f', 6, 64),
		strconv.FormatFloat(e.ToleranceBest, 'f', 6, 64),
		strconv.FormatFloat(e.AdaptBest, 'f', 6, 64),
		strconv.Itoa(e.NumSamples),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("tuning: append entry: %w", err)
	}
	w.Flush()
	return w.Error()
}

// ReadHistory parses the log, skipping the header and any malformed
// historical rows rather than aborting; the log may contain entries
// written by older tool versions.
func ReadHistory(path string) ([]HistoryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []HistoryEntry{}, nil
		}
		return nil, fmt.Errorf("tuning: open history log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tuning: read history log: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		if len(rec) != len(historyHeader) || rec[0] == historyHeader[0] {
			continue
		}
		ts, err := time.Parse("2006-01-02T15:04:05", rec[0])
		if err != nil {
			continue
		}
		rBest, err1 := strconv.ParseFloat(rec[4], 64)
		tolBest, err2 := strconv.ParseFloat(rec[5], 64)
		adaptBest, err3 := strconv.ParseFloat(rec[6], 64)
		samples, err4 := strconv.Atoi(rec[7])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		entries = append(entries, HistoryEntry{
			Timestamp:     ts,
			GitCommit:     rec[1],
			ZenodoDOI:     rec[2],
			ArxivVersion:  rec[3],
			RBest:         rBest,
			ToleranceBest: tolBest,
			AdaptBest:     adaptBest,
			NumSamples:    samples,
		})
	}
	return entries, nil
}

// WriteSweepCSV writes every evaluated grid point as bare
// (r, tolerance, adapt, passed) rows in grid iteration order.
func WriteSweepCSV(path string, points []Point) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("tuning: create sweep dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tuning: create sweep file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, p := range points {
		row := []string{
			strconv.FormatFloat(p.R, 'f', 6, 64),
			strconv.FormatFloat(p.Tolerance, 'f', 6, 64),
			strconv.FormatFloat(p.Adapt, 'f', 6, 64),
			strconv.FormatBool(p.Passed),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("tuning: write sweep row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSweepCSV loads sweep rows, skipping malformed lines.
func ReadSweepCSV(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tuning: open sweep file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tuning: read sweep file: %w", err)
	}

	points := make([]Point, 0, len(records))
	for _, rec := range records {
		if len(rec) != 4 {
			continue
		}
		rv, err1 := strconv.ParseFloat(rec[0], 64)
		tol, err2 := strconv.ParseFloat(rec[1], 64)
		adapt, err3 := strconv.ParseFloat(rec[2], 64)
		passed, err4 := strconv.ParseBool(rec[3])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		points = append(points, Point{R: rv, Tolerance: tol, Adapt: adapt, Passed: passed})
	}
	return points, nil
}
