package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promptgate/promptgate/internal/gate"
)

// Status is the uniform outcome shape handlers normalize to. Handlers never
// leak their internal schema types to the caller.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusUnsupported Status = "unsupported"
	StatusRejected    Status = "rejected"
)

// Response is the common assistant response produced by every handler.
type Response struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Classification is the side output of the routing call: the chosen
// category, the model's confidence in it, and the cleaned request text that
// handlers receive instead of the raw input.
type Classification[C ~string] struct {
	Category    C
	Confidence  float64
	Description string
}

// Handler performs one category's extraction-and-response cycle.
type Handler func(ctx context.Context, description string) (Response, error)

// UnroutableError reports a classification result whose category has no
// registered handler. This is distinct from the fallback path, which is
// itself a registered handler.
type UnroutableError struct {
	Category string
}

func (e *UnroutableError) Error() string {
	return fmt.Sprintf("no handler registered for category %q", e.Category)
}

// RouterConfig declares the closed category set up front so that a category
// without a handler is a construction error rather than a silent fallback.
type RouterConfig[C ~string] struct {
	Name       string
	Categories []C
	Fallback   C
	Classify   func(ctx context.Context, input string) (Classification[C], error)
	Handlers   map[C]Handler
	Policy     gate.Policy
	Logger     *zap.Logger
}

// Router runs one classification call and dispatches to the handler
// registered for the returned category.
type Router[C ~string] struct {
	name     string
	classify func(ctx context.Context, input string) (Classification[C], error)
	handlers map[C]Handler
	policy   gate.Policy
	logger   *zap.Logger
}

func NewRouter[C ~string](cfg RouterConfig[C]) (*Router[C], error) {
	if cfg.Classify == nil {
		return nil, fmt.Errorf("router %q: classify function is required", cfg.Name)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("router %q: category set is empty", cfg.Name)
	}

	fallbackKnown := false
	for _, category := range cfg.Categories {
		if _, ok := cfg.Handlers[category]; !ok {
			return nil, fmt.Errorf("router %q: category %q has no handler", cfg.Name, category)
		}
		if category == cfg.Fallback {
			fallbackKnown = true
		}
	}
	if !fallbackKnown {
		return nil, fmt.Errorf("router %q: fallback category %q is not in the category set", cfg.Name, cfg.Fallback)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Router[C]{
		name:     cfg.Name,
		classify: cfg.Classify,
		handlers: cfg.Handlers,
		policy:   cfg.Policy,
		logger:   logger.With(zap.String("router", cfg.Name)),
	}, nil
}

// Route classifies the input and dispatches to exactly one handler. A
// classification below the confidence threshold yields a rejected response
// without invoking any handler; it is a normal outcome, not an error.
func (r *Router[C]) Route(ctx context.Context, input string) (Response, error) {
	classification, err := r.classify(ctx, input)
	if err != nil {
		return Response{}, fmt.Errorf("classification: %w", err)
	}

	r.logger.Info("request classified",
		zap.String("category", string(classification.Category)),
		zap.Float64("confidence", classification.Confidence),
	)

	decision, err := r.policy.Evaluate(classification.Confidence, true)
	if err != nil {
		return Response{}, fmt.Errorf("classification: %w", err)
	}
	if !decision.Pass {
		r.logger.Warn("routing rejected", zap.String("reason", decision.Reason))
		return Response{
			Status:  StatusRejected,
			Message: "request not applicable: " + decision.Reason,
		}, nil
	}

	handler, ok := r.handlers[classification.Category]
	if !ok {
		return Response{}, &UnroutableError{Category: string(classification.Category)}
	}

	response, err := handler(ctx, classification.Description)
	if err != nil {
		return Response{}, fmt.Errorf("handler for %q: %w", classification.Category, err)
	}
	return response, nil
}
