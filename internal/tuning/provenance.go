package tuning

import (
	"encoding/json"
	"os"
	"os/exec"
	"strings"
)

// Provenance identifies the code and publication state a tuning result
// was produced under. The DOI and arXiv metadata files are maintained
// by external release tooling; this package only reads them.
type Provenance struct {
	GitCommit    string
	ZenodoDOI    string
	ArxivVersion string
}

// CaptureProvenance collects all provenance fields using the default
// metadata file locations.
func CaptureProvenance() Provenance {
	return Provenance{
		GitCommit:    GitCommit(),
		ZenodoDOI:    ZenodoDOI("zenodo.json"),
		ArxivVersion: ArxivVersion("arxiv_metadata.json"),
	}
}

// GitCommit returns the short HEAD hash, or "no-git" outside a
// repository.
func GitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "no-git"
	}
	return strings.TrimSpace(string(out))
}

// ZenodoDOI reads the published DOI from the Zenodo metadata file.
func ZenodoDOI(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "no-zenodo-file"
	}
	var meta struct {
		DOI string `json:"doi"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "invalid-json"
	}
	if meta.DOI == "" {
		return "pending-doi"
	}
	return meta.DOI
}

// ArxivVersion reads the preprint version from the arXiv metadata
// file, defaulting to "v0".
func ArxivVersion(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "v0"
	}
	var meta struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "invalid-arxiv-meta"
	}
	if meta.Version == "" {
		return "v0"
	}
	return meta.Version
}
