// Package report writes markdown transcripts of workflow runs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type Generator struct {
	outputDir string
}

func NewGenerator(outputDir string) *Generator {
	return &Generator{
		outputDir: outputDir,
	}
}

// Run is one complete workflow run as rendered in a report.
type Run struct {
	ID        string
	Flow      string
	Input     string
	Model     string
	StartedAt time.Time
	Steps     []Step
	Outcome   string
	Message   string
}

// Step is one stage of the run.
type Step struct {
	Stage  string
	Status string
	Detail string
}

// Write renders the run as markdown and writes it into the output
// directory, returning the written file path.
func (g *Generator) Write(run *Run) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	shortID := run.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	filename := filepath.Join(g.outputDir, fmt.Sprintf("%s-%s.md", sanitizeFilename(run.Flow), shortID))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Run: %s\n\n", run.Flow))
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("**Model:** %s\n", run.Model))
	sb.WriteString(fmt.Sprintf("**Started:** %s\n", run.StartedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("**Outcome:** %s\n\n", run.Outcome))

	sb.WriteString("## Input\n\n")
	sb.WriteString(truncate(run.Input, 500))
	sb.WriteString("\n\n")

	if len(run.Steps) > 0 {
		sb.WriteString("## Steps\n\n")
		for i, step := range run.Steps {
			sb.WriteString(fmt.Sprintf("%d. **%s** — %s", i+1, step.Stage, step.Status))
			if step.Detail != "" {
				sb.WriteString(": " + truncate(step.Detail, 200))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if run.Message != "" {
		sb.WriteString("## Result\n\n")
		sb.WriteString(run.Message)
		sb.WriteString("\n")
	}

	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return filename, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9-]+`)

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "run"
	}
	return name
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
