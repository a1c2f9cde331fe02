package calendar

import "github.com/promptgate/promptgate/internal/schema"

// Validation is the first stage's output: whether the input describes a
// calendar event at all, and how confident the model is.
type Validation struct {
	Description     string  `json:"description"`
	IsCalendarEvent bool    `json:"is_calendar_event"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Details is the second stage's output.
type Details struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	Participants    []string `json:"participants"`
}

// Confirmation is the final stage's output.
type Confirmation struct {
	ConfirmationMessage string `json:"confirmation_message"`
}

var validationSpec = &schema.Spec{
	Name:        "event_validation",
	Description: "Validation of a calendar event request",
	Fields: []schema.Field{
		{Name: "description", Type: schema.TypeString, Description: "Basic description of the event"},
		{Name: "is_calendar_event", Type: schema.TypeBool, Description: "Whether the text describes a calendar event"},
		{Name: "confidence_score", Type: schema.TypeUnit, Description: "Confidence score between 0 and 1"},
	},
}

var detailsSpec = &schema.Spec{
	Name:        "event_details",
	Description: "Parsed event details",
	Fields: []schema.Field{
		{Name: "name", Type: schema.TypeString, Description: "Name of the event"},
		{Name: "description", Type: schema.TypeString, Description: "Description of the purpose of the event"},
		{Name: "date", Type: schema.TypeString, Description: "Date and time of the event in ISO 8601 format"},
		{Name: "duration_minutes", Type: schema.TypeInteger, Description: "Expected duration in minutes"},
		{Name: "participants", Type: schema.TypeStringList, Description: "List of participants"},
	},
}

var confirmationSpec = &schema.Spec{
	Name:        "event_confirmation",
	Description: "Event creation confirmation message",
	Fields: []schema.Field{
		{Name: "confirmation_message", Type: schema.TypeString, Description: "Natural language confirmation message"},
	},
}
