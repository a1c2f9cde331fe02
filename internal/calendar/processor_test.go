package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/promptgate/promptgate/internal/gate"
	"github.com/promptgate/promptgate/internal/llm"
)

// fakeEndpoint serves canned structured outputs keyed by the requested
// json_schema name and counts calls per stage.
func fakeEndpoint(t *testing.T, outputs map[string]string, counts map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req struct {
			ResponseFormat struct {
				JSONSchema struct {
					Name string `json:"name"`
				} `json:"json_schema"`
			} `json:"response_format"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		name := req.ResponseFormat.JSONSchema.Name
		counts[name]++

		content, ok := outputs[name]
		if !ok {
			http.Error(w, "unexpected schema "+name, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func newProcessor(t *testing.T, url string) *Processor {
	t.Helper()
	client, err := llm.NewClient(llm.Config{BaseURL: url, Model: "test-model"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewProcessor(client, gate.DefaultPolicy(), nil)
}

func TestProcessSchedulesValidRequest(t *testing.T) {
	counts := map[string]int{}
	srv := fakeEndpoint(t, map[string]string{
		"event_validation":   `{"description":"team meeting about the project roadmap","is_calendar_event":true,"confidence_score":0.95}`,
		"event_details":      `{"name":"Team Meeting","description":"Discuss the project roadmap","date":"2026-08-25T14:00:00","duration_minutes":60,"participants":["Alice","Bob"]}`,
		"event_confirmation": `{"confirmation_message":"Your team meeting with Alice and Bob is scheduled for Tuesday at 2pm."}`,
	}, counts)
	defer srv.Close()

	processor := newProcessor(t, srv.URL)
	input := "Let's schedule a 1h team meeting next Tuesday at 2pm with Alice and Bob to discuss the project roadmap."

	result, err := processor.Process(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Rejected {
		t.Fatalf("expected accepted request, got rejection: %s", result.Reason)
	}
	if !result.Validation.IsCalendarEvent || result.Validation.ConfidenceScore < 0.7 {
		t.Fatalf("unexpected validation: %+v", result.Validation)
	}
	if result.Details == nil || result.Details.DurationMinutes != 60 {
		t.Fatalf("unexpected details: %+v", result.Details)
	}
	if got := result.Details.Participants; len(got) != 2 || got[0] != "Alice" || got[1] != "Bob" {
		t.Fatalf("unexpected participants: %v", got)
	}
	if result.Confirmation == nil || result.Confirmation.ConfirmationMessage == "" {
		t.Fatal("expected a non-empty confirmation message")
	}
	if counts["event_validation"] != 1 || counts["event_details"] != 1 || counts["event_confirmation"] != 1 {
		t.Fatalf("unexpected call counts: %v", counts)
	}
}

func TestProcessRejectsNonCalendarRequest(t *testing.T) {
	counts := map[string]int{}
	srv := fakeEndpoint(t, map[string]string{
		"event_validation": `{"description":"a poem about roses","is_calendar_event":false,"confidence_score":0.9}`,
	}, counts)
	defer srv.Close()

	processor := newProcessor(t, srv.URL)
	result, err := processor.Process(context.Background(), "Generate a poem about roses")
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if !result.Rejected || result.Reason == "" {
		t.Fatalf("expected rejected result with reason, got %+v", result)
	}
	if result.Details != nil || result.Confirmation != nil {
		t.Fatal("rejected result must not carry downstream outputs")
	}
	if counts["event_details"] != 0 || counts["event_confirmation"] != 0 {
		t.Fatalf("no extraction call may be made after rejection: %v", counts)
	}
}

func TestProcessRejectsLowConfidenceValidation(t *testing.T) {
	counts := map[string]int{}
	srv := fakeEndpoint(t, map[string]string{
		"event_validation": `{"description":"maybe a meeting","is_calendar_event":true,"confidence_score":0.5}`,
	}, counts)
	defer srv.Close()

	processor := newProcessor(t, srv.URL)
	result, err := processor.Process(context.Background(), "something about meeting up sometime maybe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Rejected {
		t.Fatal("expected rejection below the confidence threshold")
	}
	if counts["event_details"] != 0 {
		t.Fatalf("no extraction call may be made after rejection: %v", counts)
	}
}

func TestProcessSurfacesSchemaViolationWithStage(t *testing.T) {
	counts := map[string]int{}
	srv := fakeEndpoint(t, map[string]string{
		"event_validation": `{"description":"x","is_calendar_event":true,"confidence_score":1.4}`,
	}, counts)
	defer srv.Close()

	processor := newProcessor(t, srv.URL)
	_, err := processor.Process(context.Background(), "schedule a sync tomorrow")
	if err == nil {
		t.Fatal("expected schema violation for out-of-range confidence")
	}
	if llm.KindOf(err) != llm.KindSchemaViolation {
		t.Fatalf("expected schema violation, got %v", err)
	}
	if !strings.Contains(err.Error(), "event_validation") {
		t.Fatalf("error must name the offending stage: %v", err)
	}
}

func TestProcessRejectsEmptyInput(t *testing.T) {
	processor := newProcessor(t, "http://localhost:0")
	if _, err := processor.Process(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty request text")
	}
}
