package decision

import (
	"context"
	"fmt"
	"time"

	"bre-gateway/internal/facts"
	"bre-gateway/internal/rules"
)

// Evaluator executes a decision-table definition against canonical facts.
// Implementations must be referentially transparent with respect to the facts
// (no external state mutation) and report the execution duration measured from
// just before to just after the evaluation call. Which implementation is
// active is fixed at construction time; the orchestrator never inspects it.
type Evaluator interface {
	Evaluate(ctx context.Context, def *rules.Definition, f *facts.Facts) (Output, time.Duration, error)
}

// EvaluationError wraps a fault reported by the rule execution engine. Engine
// faults are system faults: they are surfaced as-is upward, never suppressed
// and never retried at this layer.
type EvaluationError struct {
	RulePath string
	cause    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate rule %s: %v", e.RulePath, e.cause)
}

func (e *EvaluationError) Unwrap() error { return e.cause }
