// Package calendar processes natural-language scheduling requests through a
// gated chain: validate the request, extract event details, generate a
// confirmation message.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/promptgate/promptgate/internal/gate"
	"github.com/promptgate/promptgate/internal/llm"
	"github.com/promptgate/promptgate/internal/workflow"
)

type Processor struct {
	client *llm.Client
	policy gate.Policy
	logger *zap.Logger
	now    func() time.Time
}

func NewProcessor(client *llm.Client, policy gate.Policy, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		client: client,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Result is the terminal outcome of one calendar request. A rejected result
// is a normal outcome: Validation is populated, the rest is nil.
type Result struct {
	Rejected     bool
	Reason       string
	Validation   Validation
	Details      *Details
	Confirmation *Confirmation
}

// Process runs the validate, extract, confirm chain over one request.
func (p *Processor) Process(ctx context.Context, input string) (*Result, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("request text is empty")
	}

	result := &Result{}

	chain := &workflow.Chain[Validation, Details, Confirmation]{
		Name: "calendar",
		Validate: func(ctx context.Context) (Validation, error) {
			validation, err := p.validate(ctx, input)
			if err == nil {
				result.Validation = validation
			}
			return validation, err
		},
		Gate: func(v Validation) (gate.Decision, error) {
			return p.policy.Evaluate(v.ConfidenceScore, v.IsCalendarEvent)
		},
		Extract: func(ctx context.Context, v Validation) (Details, error) {
			details, err := p.extract(ctx, input)
			if err == nil {
				result.Details = &details
			}
			return details, err
		},
		Confirm: func(ctx context.Context, v Validation, d Details) (Confirmation, error) {
			confirmation, err := p.confirm(ctx, d)
			if err == nil {
				result.Confirmation = &confirmation
			}
			return confirmation, err
		},
		Logger: p.logger,
	}

	outcome, err := chain.Run(ctx)
	if err != nil {
		return nil, err
	}

	result.Rejected = outcome.Rejected
	result.Reason = outcome.Reason
	return result, nil
}

// dateContext disambiguates relative references like "next Tuesday" against
// the reference timestamp.
func (p *Processor) dateContext() string {
	return fmt.Sprintf("Today is %s.", p.now().Format("Monday, January 2, 2006"))
}

func (p *Processor) validate(ctx context.Context, input string) (Validation, error) {
	p.logger.Info("starting event validation")

	system := p.dateContext() +
		" Analyze whether the text describes a calendar event and provide a confidence score between 0 and 1."

	validation, err := llm.Parse[Validation](ctx, p.client, "event_validation", validationSpec, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: input},
	})
	if err != nil {
		return Validation{}, err
	}

	p.logger.Info("validation complete",
		zap.Bool("is_calendar_event", validation.IsCalendarEvent),
		zap.Float64("confidence", validation.ConfidenceScore),
	)
	return validation, nil
}

func (p *Processor) extract(ctx context.Context, input string) (Details, error) {
	p.logger.Info("starting event details parsing")

	system := "Extract detailed event information. When dates reference 'next Tuesday' or similar relative dates, " +
		"use today to calculate the date in ISO 8601 format. " + p.dateContext()

	return llm.Parse[Details](ctx, p.client, "event_extraction", detailsSpec, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: input},
	})
}

func (p *Processor) confirm(ctx context.Context, details Details) (Confirmation, error) {
	p.logger.Info("generating confirmation message")

	encoded, err := json.Marshal(details)
	if err != nil {
		return Confirmation{}, fmt.Errorf("marshal event details: %w", err)
	}

	system := "Generate a natural language confirmation message for the event. " +
		"Include the name, description, date, duration and the participants."

	return llm.Parse[Confirmation](ctx, p.client, "event_confirmation", confirmationSpec, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: string(encoded)},
	})
}
