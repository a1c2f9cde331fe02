package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteRendersRun(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir)

	path, err := gen.Write(&Run{
		ID:        "3f2a1b9c-0000-0000-0000-000000000000",
		Flow:      "calendar",
		Input:     "Let's schedule a 1h team meeting next Tuesday at 2pm.",
		Model:     "test-model",
		StartedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Steps: []Step{
			{Stage: "event_validation", Status: "ok", Detail: "confidence 0.95"},
			{Stage: "event_extraction", Status: "ok"},
			{Stage: "event_confirmation", Status: "ok"},
		},
		Outcome: "done",
		Message: "Your team meeting is scheduled.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(path) != "calendar-3f2a1b9c.md" {
		t.Fatalf("unexpected file name: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	text := string(content)

	for _, want := range []string{"# Run: calendar", "**Outcome:** done", "event_validation", "## Result", "Your team meeting is scheduled."} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"calendar":     "calendar",
		"Smart Home!!": "smart-home",
		"":             "run",
	}
	for input, want := range cases {
		if got := sanitizeFilename(input); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}
