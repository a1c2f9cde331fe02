// Package llm talks to an OpenAI-compatible chat-completions endpoint and
// returns responses validated against a declared output schema.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/promptgate/promptgate/internal/schema"
)

const (
	defaultBaseURL = "http://localhost:11434/v1"
	defaultAPIKey  = "ollama"
	defaultTimeout = 45 * time.Second
)

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      *zap.Logger
	recorder    Recorder
	flow        string
	runID       string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = defaultAPIKey
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// SetRecorder attaches a call recorder. Recording failures are logged and
// never fail the call itself.
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// WithRun returns a client that tags every recorded call with the given flow
// name and run ID.
func (c *Client) WithRun(flow, runID string) *Client {
	clone := *c
	clone.flow = flow
	clone.runID = runID
	return &clone
}

// ChatStructured issues one chat-completions request constrained to the
// given output schema and returns the validated JSON payload. The stage name
// identifies the call in errors, logs, and call records.
func (c *Client) ChatStructured(ctx context.Context, stage string, messages []Message, spec *schema.Spec) ([]byte, error) {
	if err := spec.Validate(); err != nil {
		return nil, &Error{Kind: KindSchemaViolation, Stage: stage, Err: err}
	}
	if len(messages) == 0 {
		return nil, &Error{Kind: KindSchemaViolation, Stage: stage, Err: fmt.Errorf("no messages")}
	}

	started := time.Now()
	payload, err := c.complete(ctx, stage, messages, spec)
	elapsed := time.Since(started)

	status := "ok"
	if err != nil {
		status = string(KindServiceUnavailable)
		if kind := KindOf(err); kind != "" {
			status = string(kind)
		}
	}
	c.record(ctx, stage, started, elapsed, status, payload)

	if err != nil {
		return nil, err
	}

	c.logger.Debug("structured call completed",
		zap.String("stage", stage),
		zap.String("model", c.model),
		zap.Duration("elapsed", elapsed),
	)
	return payload, nil
}

func (c *Client) complete(ctx context.Context, stage string, messages []Message, spec *schema.Spec) ([]byte, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   spec.Name,
				Strict: true,
				Schema: spec.JSONSchema(),
			},
		},
	})
	if err != nil {
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, Stage: stage, Err: err}
		}
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:  KindServiceUnavailable,
			Stage: stage,
			Err:   fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: fmt.Errorf("parse response envelope: %w", err)}
	}
	if parsed.Error != nil {
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: fmt.Errorf("endpoint error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &Error{Kind: KindServiceUnavailable, Stage: stage, Err: fmt.Errorf("endpoint returned no choices")}
	}

	content := extractJSON(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, &Error{Kind: KindSchemaViolation, Stage: stage, Err: fmt.Errorf("no JSON object found in model output")}
	}

	if err := spec.Check([]byte(content)); err != nil {
		return nil, &Error{Kind: KindSchemaViolation, Stage: stage, Err: err}
	}

	return []byte(content), nil
}

func (c *Client) record(ctx context.Context, stage string, started time.Time, elapsed time.Duration, status string, payload []byte) {
	if c.recorder == nil {
		return
	}
	err := c.recorder.Record(ctx, CallRecord{
		RunID:     c.runID,
		Flow:      c.flow,
		Stage:     stage,
		Model:     c.model,
		StartedAt: started,
		Duration:  elapsed,
		Status:    status,
		Payload:   payload,
	})
	if err != nil {
		c.logger.Warn("failed to record call", zap.String("stage", stage), zap.Error(err))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
