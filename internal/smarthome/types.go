package smarthome

import "github.com/promptgate/promptgate/internal/schema"

// Category is the closed set of request types the assistant understands.
// CategoryOther is the mandatory fallback for inputs matching none of them.
type Category string

const (
	CategoryLight         Category = "light_config"
	CategoryDoor          Category = "door_config"
	CategoryEntertainment Category = "entertainment_config"
	CategoryOther         Category = "other"
)

// Categories lists every category the router must cover.
var Categories = []Category{
	CategoryLight,
	CategoryDoor,
	CategoryEntertainment,
	CategoryOther,
}

type requestType struct {
	RequestType     string  `json:"request_type"`
	ConfidenceScore float64 `json:"confidence_score"`
	Description     string  `json:"description"`
}

type lightConfig struct {
	Place     string `json:"place"`
	LightType string `json:"light_type"`
}

type doorConfig struct {
	Place  string `json:"place"`
	Action string `json:"action"`
}

type entertainmentConfig struct {
	Action string `json:"action"`
	Genre  string `json:"genre,omitempty"`
}

var requestTypeSpec = &schema.Spec{
	Name:        "assistant_request_type",
	Description: "Type of assistant request",
	Fields: []schema.Field{
		{
			Name:        "request_type",
			Type:        schema.TypeEnum,
			Description: "Type of assistant request",
			Enum:        []string{string(CategoryLight), string(CategoryDoor), string(CategoryEntertainment), string(CategoryOther)},
		},
		{Name: "confidence_score", Type: schema.TypeUnit, Description: "Confidence in the request type selection between 0 and 1"},
		{Name: "description", Type: schema.TypeString, Description: "Cleaned request text"},
	},
}

var lightConfigSpec = &schema.Spec{
	Name:        "light_config",
	Description: "Details of a light configuration change",
	Fields: []schema.Field{
		{Name: "place", Type: schema.TypeString, Description: "Place of the house where the light change should happen"},
		{Name: "light_type", Type: schema.TypeEnum, Description: "Type of the light", Enum: []string{"warm", "cool"}},
	},
}

var doorConfigSpec = &schema.Spec{
	Name:        "door_config",
	Description: "Details of a door configuration change",
	Fields: []schema.Field{
		{Name: "place", Type: schema.TypeString, Description: "Place of the house where the door change should happen"},
		{Name: "action", Type: schema.TypeEnum, Description: "Action to perform on the door lock", Enum: []string{"lock", "unlock"}},
	},
}

var entertainmentConfigSpec = &schema.Spec{
	Name:        "entertainment_config",
	Description: "Details of an entertainment system configuration change",
	Fields: []schema.Field{
		{Name: "action", Type: schema.TypeEnum, Description: "Action to perform on the entertainment system", Enum: []string{"play", "stop", "pause"}},
		{Name: "genre", Type: schema.TypeString, Description: "Requested genre to play", Optional: true},
	},
}
