package llm

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/promptgate/promptgate/internal/schema"
)

// Parse issues one structured inference call and decodes the validated
// payload into T. The decode is strict: a payload field without a matching
// struct field is a schema violation.
func Parse[T any](ctx context.Context, c *Client, stage string, spec *schema.Spec, messages []Message) (T, error) {
	var out T

	raw, err := c.ChatStructured(ctx, stage, messages, spec)
	if err != nil {
		return out, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, &Error{Kind: KindSchemaViolation, Stage: stage, Err: err}
	}

	return out, nil
}
