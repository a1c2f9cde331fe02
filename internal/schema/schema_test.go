package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

func validationSpec() *Spec {
	return &Spec{
		Name:        "event_validation",
		Description: "Validation of a calendar event request",
		Fields: []Field{
			{Name: "is_calendar_event", Type: TypeBool, Description: "Whether the text describes a calendar event"},
			{Name: "confidence_score", Type: TypeUnit, Description: "Confidence score between 0 and 1"},
			{Name: "description", Type: TypeString, Description: "Cleaned request text"},
		},
	}
}

func TestValidateRejectsIncompleteSpecs(t *testing.T) {
	cases := []struct {
		name string
		spec Spec
	}{
		{"no name", Spec{Fields: []Field{{Name: "a", Type: TypeString, Description: "x"}}}},
		{"no fields", Spec{Name: "empty"}},
		{"missing description", Spec{Name: "s", Fields: []Field{{Name: "a", Type: TypeString}}}},
		{"empty enum", Spec{Name: "s", Fields: []Field{{Name: "a", Type: TypeEnum, Description: "x"}}}},
		{"duplicate field", Spec{Name: "s", Fields: []Field{
			{Name: "a", Type: TypeString, Description: "x"},
			{Name: "a", Type: TypeBool, Description: "y"},
		}}},
	}

	for _, tc := range cases {
		if err := tc.spec.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	spec := validationSpec()
	if err := spec.Validate(); err != nil {
		t.Fatalf("unexpected error for complete spec: %v", err)
	}
}

func TestJSONSchemaRendering(t *testing.T) {
	spec := validationSpec()
	rendered := spec.JSONSchema()

	if rendered["type"] != "object" {
		t.Fatalf("expected object schema, got %v", rendered["type"])
	}
	if rendered["additionalProperties"] != false {
		t.Fatalf("expected additionalProperties false")
	}

	required, ok := rendered["required"].([]string)
	if !ok || len(required) != 3 {
		t.Fatalf("expected 3 required fields, got %v", rendered["required"])
	}

	properties := rendered["properties"].(map[string]any)
	unit := properties["confidence_score"].(map[string]any)
	if unit["minimum"] != 0 || unit["maximum"] != 1 {
		t.Fatalf("unit field missing range bounds: %v", unit)
	}
}

func TestCheckAcceptsConformingPayload(t *testing.T) {
	spec := validationSpec()
	payload := []byte(`{"is_calendar_event": true, "confidence_score": 0.85, "description": "team meeting"}`)

	if err := spec.Check(payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckRejectsViolations(t *testing.T) {
	spec := validationSpec()

	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{"missing required", `{"is_calendar_event": true, "confidence_score": 0.8}`, "missing required field"},
		{"unknown field", `{"is_calendar_event": true, "confidence_score": 0.8, "description": "x", "extra": 1}`, "unknown field"},
		{"wrong type", `{"is_calendar_event": "yes", "confidence_score": 0.8, "description": "x"}`, "expected boolean"},
		{"score above one", `{"is_calendar_event": true, "confidence_score": 1.2, "description": "x"}`, "outside [0, 1]"},
		{"score below zero", `{"is_calendar_event": true, "confidence_score": -0.1, "description": "x"}`, "outside [0, 1]"},
		{"not an object", `[1, 2]`, "not a JSON object"},
		{"null required", `{"is_calendar_event": null, "confidence_score": 0.8, "description": "x"}`, "is null"},
	}

	for _, tc := range cases {
		err := spec.Check([]byte(tc.payload))
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestCheckEnumAndListAndNested(t *testing.T) {
	spec := &Spec{
		Name:        "light_config",
		Description: "Light configuration change",
		Fields: []Field{
			{Name: "light_type", Type: TypeEnum, Description: "Type of light", Enum: []string{"warm", "cool"}},
			{Name: "rooms", Type: TypeStringList, Description: "Affected rooms"},
			{Name: "schedule", Type: TypeObject, Description: "Optional schedule", Optional: true, Fields: []Field{
				{Name: "minutes", Type: TypeInteger, Description: "Delay in minutes"},
			}},
		},
	}

	good := []byte(`{"light_type": "cool", "rooms": ["bedroom"], "schedule": {"minutes": 10}}`)
	if err := spec.Check(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noSchedule := []byte(`{"light_type": "warm", "rooms": []}`)
	if err := spec.Check(noSchedule); err != nil {
		t.Fatalf("optional object should be skippable: %v", err)
	}

	badEnum := []byte(`{"light_type": "neon", "rooms": []}`)
	if err := spec.Check(badEnum); err == nil {
		t.Fatal("expected enum membership error")
	}

	badList := []byte(`{"light_type": "warm", "rooms": [1]}`)
	if err := spec.Check(badList); err == nil {
		t.Fatal("expected string list item error")
	}

	fractional := []byte(`{"light_type": "warm", "rooms": [], "schedule": {"minutes": 1.5}}`)
	if err := spec.Check(fractional); err == nil {
		t.Fatal("expected integer error for fractional value")
	}
}

// A payload that passed Check must still pass after a decode/encode round
// trip through the target struct.
func TestCheckRoundTrip(t *testing.T) {
	spec := validationSpec()
	payload := []byte(`{"is_calendar_event": true, "confidence_score": 0.9, "description": "standup"}`)

	if err := spec.Check(payload); err != nil {
		t.Fatalf("first check failed: %v", err)
	}

	var decoded struct {
		IsCalendarEvent bool    `json:"is_calendar_event"`
		ConfidenceScore float64 `json:"confidence_score"`
		Description     string  `json:"description"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := spec.Check(encoded); err != nil {
		t.Fatalf("round-trip check failed: %v", err)
	}
}
