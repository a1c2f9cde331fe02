// Package gate implements the confidence gate that decides whether a
// workflow may proceed past a validation stage.
package gate

import (
	"fmt"
	"math"
)

// Comparison selects how a confidence score is compared to the threshold.
type Comparison string

const (
	CompareGTE Comparison = "gte"
	CompareGT  Comparison = "gt"
)

func ParseComparison(value string) (Comparison, error) {
	switch Comparison(value) {
	case CompareGTE, CompareGT:
		return Comparison(value), nil
	case "":
		return CompareGTE, nil
	default:
		return "", fmt.Errorf("unknown comparison %q (want %q or %q)", value, CompareGTE, CompareGT)
	}
}

type Policy struct {
	Threshold  float64
	Comparison Comparison
}

func DefaultPolicy() Policy {
	return Policy{Threshold: 0.7, Comparison: CompareGTE}
}

// Decision is the outcome of a gate check. A false Pass is a normal
// terminal outcome, not an error.
type Decision struct {
	Pass   bool
	Reason string
}

// Evaluate combines one or more boolean flags with a confidence score.
// The decision passes only when every flag is true and the score clears the
// threshold. A score outside [0, 1] is a validation failure of the upstream
// call and returns an error instead of being clamped.
func (p Policy) Evaluate(score float64, flags ...bool) (Decision, error) {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return Decision{}, fmt.Errorf("confidence score %v outside [0, 1]", score)
	}
	if len(flags) == 0 {
		return Decision{}, fmt.Errorf("at least one flag is required")
	}

	for i, flag := range flags {
		if !flag {
			return Decision{
				Pass:   false,
				Reason: fmt.Sprintf("check %d of %d failed", i+1, len(flags)),
			}, nil
		}
	}

	pass := score >= p.Threshold
	if p.Comparison == CompareGT {
		pass = score > p.Threshold
	}
	if !pass {
		return Decision{
			Pass:   false,
			Reason: fmt.Sprintf("confidence %.2f below threshold %.2f", score, p.Threshold),
		}, nil
	}

	return Decision{
		Pass:   true,
		Reason: fmt.Sprintf("confidence %.2f meets threshold %.2f", score, p.Threshold),
	}, nil
}
