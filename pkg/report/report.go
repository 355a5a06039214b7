// Package report contains the provisioning run report written to
// data/reports after a fully successful run. It is a plain JSON surface
// shared with operators and external tooling.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StepOutcome is one step's result inside a run report.
type StepOutcome struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunReport summarizes a single provisioning run.
type RunReport struct {
	RunID       string        `json:"run_id"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Success     bool          `json:"success"`
	Steps       []StepOutcome `json:"steps"`
}

// Filename returns the report file name for a run completed at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("setup_%s.json", t.Format("20060102_150405"))
}

// Write stores the report as indented JSON under dir and returns the
// full path of the written file.
func (r *RunReport) Write(dir string) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run report: %w", err)
	}
	path := filepath.Join(dir, Filename(r.CompletedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing run report: %w", err)
	}
	return path, nil
}
