package gate

import (
	"math"
	"testing"
)

func TestEvaluateThresholdBoundary(t *testing.T) {
	policy := DefaultPolicy()

	atThreshold, err := policy.Evaluate(0.7, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !atThreshold.Pass {
		t.Fatal("score equal to threshold must pass with gte comparison")
	}

	justBelow, err := policy.Evaluate(math.Nextafter(0.7, 0), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if justBelow.Pass {
		t.Fatal("score just below threshold must fail")
	}
}

func TestEvaluateStrictComparison(t *testing.T) {
	policy := Policy{Threshold: 0.7, Comparison: CompareGT}

	decision, err := policy.Evaluate(0.7, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Pass {
		t.Fatal("score equal to threshold must fail with gt comparison")
	}

	decision, err = policy.Evaluate(0.71, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Pass {
		t.Fatal("score above threshold must pass with gt comparison")
	}
}

func TestEvaluateFlagsGateTheDecision(t *testing.T) {
	policy := DefaultPolicy()

	decision, err := policy.Evaluate(0.99, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Pass {
		t.Fatal("a false flag must fail the gate regardless of score")
	}
	if decision.Reason == "" {
		t.Fatal("failed decision must carry a reason")
	}

	if _, err := policy.Evaluate(0.99); err == nil {
		t.Fatal("expected error when no flags are provided")
	}
}

func TestEvaluateRejectsOutOfRangeScores(t *testing.T) {
	policy := DefaultPolicy()

	for _, score := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := policy.Evaluate(score, true); err == nil {
			t.Errorf("score %v: expected out-of-range error", score)
		}
	}
}

func TestParseComparison(t *testing.T) {
	if cmp, err := ParseComparison(""); err != nil || cmp != CompareGTE {
		t.Fatalf("empty comparison should default to gte, got %q, %v", cmp, err)
	}
	if cmp, err := ParseComparison("gt"); err != nil || cmp != CompareGT {
		t.Fatalf("unexpected result: %q, %v", cmp, err)
	}
	if _, err := ParseComparison("above"); err == nil {
		t.Fatal("expected error for unknown comparison")
	}
}
