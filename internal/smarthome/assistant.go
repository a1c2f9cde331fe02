// Package smarthome implements the home assistant: a routed dispatcher over
// light, door, and entertainment requests, plus the parallel request guard.
package smarthome

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promptgate/promptgate/internal/gate"
	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/workflow"
)

type Assistant struct {
	client *llm.Client
	router *workflow.Router[Category]
	logger *zap.Logger
}

func NewAssistant(client *llm.Client, policy gate.Policy, logger *zap.Logger) (*Assistant, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Assistant{client: client, logger: logger}

	router, err := workflow.NewRouter(workflow.RouterConfig[Category]{
		Name:       "smarthome",
		Categories: Categories,
		Fallback:   CategoryOther,
		Classify:   a.classify,
		Handlers: map[Category]workflow.Handler{
			CategoryLight:         a.handleLight,
			CategoryDoor:          a.handleDoor,
			CategoryEntertainment: a.handleEntertainment,
			CategoryOther:         handleUnsupported,
		},
		Policy: policy,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	a.router = router
	return a, nil
}

// Handle classifies the request and dispatches it to the matching handler.
func (a *Assistant) Handle(ctx context.Context, input string) (workflow.Response, error) {
	return a.router.Route(ctx, input)
}

func (a *Assistant) classify(ctx context.Context, input string) (workflow.Classification[Category], error) {
	a.logger.Info("routing request")

	system := "Determine whether this request relates to light configuration, door configuration, " +
		"entertainment configuration, or some other request. Return the cleaned request text as the description."

	result, err := llm.Parse[requestType](ctx, a.client, "request_classification", requestTypeSpec, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: input},
	})
	if err != nil {
		return workflow.Classification[Category]{}, err
	}

	a.logger.Info("request routed",
		zap.String("request_type", result.RequestType),
		zap.Float64("confidence", result.ConfidenceScore),
	)

	return workflow.Classification[Category]{
		Category:    Category(result.RequestType),
		Confidence:  result.ConfidenceScore,
		Description: result.Description,
	}, nil
}

func (a *Assistant) handleLight(ctx context.Context, description string) (workflow.Response, error) {
	cfg, err := llm.Parse[lightConfig](ctx, a.client, "light_config", lightConfigSpec, []llm.Message{
		{Role: "system", Content: "Extract the details of the requested light configuration change."},
		{Role: "user", Content: description},
	})
	if err != nil {
		return workflow.Response{}, err
	}

	return workflow.Response{
		Status:  workflow.StatusSuccess,
		Message: fmt.Sprintf("Setting the light in the %s to %s.", cfg.Place, cfg.LightType),
	}, nil
}

func (a *Assistant) handleDoor(ctx context.Context, description string) (workflow.Response, error) {
	cfg, err := llm.Parse[doorConfig](ctx, a.client, "door_config", doorConfigSpec, []llm.Message{
		{Role: "system", Content: "Extract the details of the requested door lock change."},
		{Role: "user", Content: description},
	})
	if err != nil {
		return workflow.Response{}, err
	}

	state := "locked"
	if cfg.Action == "unlock" {
		state = "unlocked"
	}
	return workflow.Response{
		Status:  workflow.StatusSuccess,
		Message: fmt.Sprintf("The %s door is now %s.", cfg.Place, state),
	}, nil
}

func (a *Assistant) handleEntertainment(ctx context.Context, description string) (workflow.Response, error) {
	cfg, err := llm.Parse[entertainmentConfig](ctx, a.client, "entertainment_config", entertainmentConfigSpec, []llm.Message{
		{Role: "system", Content: "Extract the details of the requested entertainment system change."},
		{Role: "user", Content: description},
	})
	if err != nil {
		return workflow.Response{}, err
	}

	message := fmt.Sprintf("Entertainment system will %s.", cfg.Action)
	if cfg.Genre != "" {
		message = fmt.Sprintf("Entertainment system will %s %s.", cfg.Action, cfg.Genre)
	}
	return workflow.Response{Status: workflow.StatusSuccess, Message: message}, nil
}

func handleUnsupported(ctx context.Context, description string) (workflow.Response, error) {
	return workflow.Response{
		Status:  workflow.StatusUnsupported,
		Message: "unsupported request type",
	}, nil
}
