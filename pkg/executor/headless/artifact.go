package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/trainer/pkg/workout"
)

// ArtifactWriter handles writing execution artifacts
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes result.json and, when a plan was generated, plan.md.
func (w *ArtifactWriter) WriteAll(summary *ExecutionSummary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteResultJSON(summary); err != nil {
		return err
	}

	if summary.Record == nil {
		return nil
	}
	return w.WritePlanMarkdown(*summary.Record)
}

// WriteResultJSON writes the full execution summary as JSON
func (w *ArtifactWriter) WriteResultJSON(summary *ExecutionSummary) error {
	path := filepath.Join(w.outputDir, "result.json")

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write result JSON: %w", writeErr)
	}

	return nil
}

// WritePlanMarkdown writes the plan as a markdown document.
func (w *ArtifactWriter) WritePlanMarkdown(p workout.Plan) error {
	path := filepath.Join(w.outputDir, "plan.md")

	if writeErr := os.WriteFile(path, []byte(PlanMarkdown(p)), 0600); writeErr != nil {
		return fmt.Errorf("failed to write plan markdown: %w", writeErr)
	}

	return nil
}

// PlanMarkdown formats a plan with its summary fields above the plan text.
func PlanMarkdown(p workout.Plan) string {
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", p.Label()))
	md.WriteString(fmt.Sprintf("**Type:** %s\n\n", p.ActivityType))
	md.WriteString(fmt.Sprintf("**Duration:** %d minutes\n\n", p.DurationMinutes))
	md.WriteString(fmt.Sprintf("**Goal:** %s\n\n", p.Goal))
	if !p.CreatedAt.IsZero() {
		md.WriteString(fmt.Sprintf("**Created:** %s\n\n", p.CreatedAt.Format(time.RFC3339)))
	}
	md.WriteString("---\n\n")
	md.WriteString(p.PlanText)
	md.WriteString("\n")

	return md.String()
}

// ExecutionSummary contains a complete summary of one headless generation
type ExecutionSummary struct {
	Identity  string        `json:"identity"`
	Status    string        `json:"status"`
	State     workout.State `json:"state"`
	Error     string        `json:"error,omitempty"`
	Saved     bool          `json:"saved"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Record    *workout.Plan `json:"record,omitempty"`
}
