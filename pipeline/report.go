package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alDuncanson/latentpca/projection"
	"github.com/alDuncanson/latentpca/table"

	json "github.com/goccy/go-json"
)

// Report summarizes a finished run.
type Report struct {
	RunID                       string        `json:"run_id"`
	Source                      string        `json:"source"`
	Output                      string        `json:"output"`
	Samples                     int           `json:"samples"`
	Features                    int           `json:"features"`
	Threshold                   float64       `json:"threshold"`
	Components                  int           `json:"components"`
	ComponentColumns            []string      `json:"component_columns"`
	ExplainedVarianceRatio      []float64     `json:"explained_variance_ratio"`
	CumulativeExplainedVariance []float64     `json:"cumulative_explained_variance"`
	StartedAt                   time.Time     `json:"started_at"`
	Duration                    time.Duration `json:"duration_ns"`
}

func newReport(runID string, options Options, selection *projection.Selection, samples, features int, startedAt time.Time) *Report {
	return &Report{
		RunID:                       runID,
		Source:                      options.Source.Describe(),
		Output:                      options.OutputPath,
		Samples:                     samples,
		Features:                    features,
		Threshold:                   options.Threshold,
		Components:                  selection.Components,
		ComponentColumns:            table.ComponentColumnNames(options.ComponentPrefix, selection.Components),
		ExplainedVarianceRatio:      selection.Full.ExplainedVarianceRatio,
		CumulativeExplainedVariance: selection.Cumulative,
		StartedAt:                   startedAt.UTC(),
		Duration:                    time.Since(startedAt),
	}
}

// Save writes the report as indented JSON, creating the parent directory if needed.
func (report *Report) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
