// Package workflow provides the composition patterns for structured
// inference calls: the gated linear chain, the classify-then-dispatch
// router, and two-way parallel validation.
package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/promptgate/promptgate/internal/gate"
)

// ChainState names the chain orchestrator's states. Rejected is terminal
// and reachable only from the validating state.
type ChainState string

const (
	StateValidating ChainState = "validating"
	StateExtracting ChainState = "extracting"
	StateConfirming ChainState = "confirming"
	StateDone       ChainState = "done"
	StateRejected   ChainState = "rejected"
)

// Chain sequences three dependent structured inference calls, threading each
// stage's output into the next and short-circuiting when the gate on the
// validation result fails. A hard error at any stage aborts the whole chain;
// no partial result is returned and no retries are attempted. Callers that
// need retries wrap the stage functions with their own policy.
type Chain[V, E, C any] struct {
	Name     string
	Validate func(ctx context.Context) (V, error)
	Gate     func(v V) (gate.Decision, error)
	Extract  func(ctx context.Context, v V) (E, error)
	Confirm  func(ctx context.Context, v V, e E) (C, error)
	Logger   *zap.Logger
}

// ChainResult carries the terminal state. Output is meaningful only when
// State is done; Reason is set only when the chain was rejected.
type ChainResult[C any] struct {
	State    ChainState
	Rejected bool
	Reason   string
	Output   C
}

func (c *Chain[V, E, C]) Run(ctx context.Context) (*ChainResult[C], error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("chain", c.Name))

	logger.Info("chain started", zap.String("state", string(StateValidating)))
	validated, err := c.Validate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", StateValidating, err)
	}

	decision, err := c.Gate(validated)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", StateValidating, err)
	}
	if !decision.Pass {
		logger.Warn("gate check failed", zap.String("reason", decision.Reason))
		return &ChainResult[C]{State: StateRejected, Rejected: true, Reason: decision.Reason}, nil
	}
	logger.Info("gate check passed", zap.String("reason", decision.Reason))

	logger.Info("chain advanced", zap.String("state", string(StateExtracting)))
	extracted, err := c.Extract(ctx, validated)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", StateExtracting, err)
	}

	logger.Info("chain advanced", zap.String("state", string(StateConfirming)))
	confirmed, err := c.Confirm(ctx, validated, extracted)
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", StateConfirming, err)
	}

	logger.Info("chain completed", zap.String("state", string(StateDone)))
	return &ChainResult[C]{State: StateDone, Output: confirmed}, nil
}
