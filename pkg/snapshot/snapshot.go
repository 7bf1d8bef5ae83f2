// Package snapshot writes per-performer run artifacts: one folder per
// performer, fixed file names, overwritten on every run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/stash"
	"github.com/stashkit/scenematch/pkg/stashdb"
)

// Artifact file names inside a performer's run directory.
const (
	LocalScenesFile     = "01_stash_scenes.json"
	ReferenceScenesFile = "02_stashdb_performer.json"
	MissingReportFile   = "03_missing_report.json"
	DuplicateReportFile = "duplicate_report.json"
)

// LocalSnapshot is the step-1 artifact: the local catalog for one performer.
type LocalSnapshot struct {
	InputPerformerID string        `json:"inputPerformerId"`
	LocalPerformerID string        `json:"localPerformerId"`
	PerformerName    string        `json:"performerName,omitempty"`
	Scenes           []stash.Scene `json:"scenes"`
}

// ReferenceSnapshot is the step-2 artifact: the reference catalog.
type ReferenceSnapshot struct {
	Performer stashdb.Performer `json:"performer"`
	Scenes    []match.Scene     `json:"scenes"`
}

// MissingReport is the step-3 artifact consumed by the queue workflow.
type MissingReport struct {
	Performer stashdb.Performer `json:"performer"`
	Missing   []match.Scene     `json:"missingScenes"`
	Stats     match.Stats       `json:"stats"`
}

// DuplicateReport is the duplicate-detection artifact.
type DuplicateReport struct {
	PerformerID string                 `json:"performerId,omitempty"`
	Groups      []match.DuplicateGroup `json:"groups"`
}

// Dir returns (and creates) the run directory for one performer.
func Dir(root, performerID string) (string, error) {
	dir := filepath.Join(root, performerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, nil
}

// WriteJSON overwrites the named artifact with an indented JSON rendering.
func WriteJSON(dir, name string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0o644)
}

// ReadJSON loads an artifact into out.
func ReadJSON(dir, name string, out interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
