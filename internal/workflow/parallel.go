package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// FailurePolicy selects what happens when one of two parallel calls fails.
type FailurePolicy string

const (
	// FailFast propagates the first failure immediately; the sibling call
	// is cancelled and its result discarded.
	FailFast FailurePolicy = "failfast"
	// WaitAll awaits both calls and reports a combined error.
	WaitAll FailurePolicy = "waitall"
)

func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch FailurePolicy(value) {
	case FailFast, WaitAll:
		return FailurePolicy(value), nil
	case "":
		return FailFast, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want %q or %q)", value, FailFast, WaitAll)
	}
}

// Both runs two independent calls concurrently and waits for both results.
// This is the only fan-out in scope: exactly two calls, no ordering
// dependency between them.
func Both[A, B any](ctx context.Context, policy FailurePolicy, first func(context.Context) (A, error), second func(context.Context) (B, error)) (A, B, error) {
	var a A
	var b B

	if policy == WaitAll {
		var wg sync.WaitGroup
		var errA, errB error

		wg.Add(2)
		go func() {
			defer wg.Done()
			a, errA = first(ctx)
		}()
		go func() {
			defer wg.Done()
			b, errB = second(ctx)
		}()
		wg.Wait()

		return a, b, errors.Join(errA, errB)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = first(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = second(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return a, b, err
	}
	return a, b, nil
}
