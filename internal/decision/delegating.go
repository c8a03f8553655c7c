package decision

import (
	"context"
	"fmt"
	"time"

	"bre-gateway/internal/facts"
	"bre-gateway/internal/rules"
)

// Engine is the black-box decision-table execution backend. It receives the
// definition and the facts as a mapping of canonical field names to values
// and returns a structured result keyed by output field names.
type Engine interface {
	Evaluate(ctx context.Context, def *rules.Definition, input map[string]any) (map[string]any, error)
}

// DelegatingEvaluator hands evaluation to an external engine and interprets
// its result into a decision Output. Engine faults are wrapped as
// *EvaluationError and reported upward verbatim; this layer never retries.
type DelegatingEvaluator struct {
	engine Engine
	now    func() time.Time
}

// NewDelegatingEvaluator constructs an evaluator over the given engine.
func NewDelegatingEvaluator(engine Engine) *DelegatingEvaluator {
	return &DelegatingEvaluator{
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate runs the engine and interprets its result. The duration covers the
// engine call only, measured immediately around it.
func (e *DelegatingEvaluator) Evaluate(ctx context.Context, def *rules.Definition, f *facts.Facts) (Output, time.Duration, error) {
	input := f.AsMap()

	start := time.Now()
	result, err := e.engine.Evaluate(ctx, def, input)
	elapsed := time.Since(start)
	if err != nil {
		return Output{}, elapsed, &EvaluationError{RulePath: def.Path, cause: err}
	}

	out, err := interpretResult(def, result)
	if err != nil {
		return Output{}, elapsed, &EvaluationError{RulePath: def.Path, cause: err}
	}
	out.EvaluatedAt = e.now()
	return out, elapsed, nil
}

// interpretResult converts an engine result map into a typed Output,
// enforcing the closed output enumerations.
func interpretResult(def *rules.Definition, result map[string]any) (Output, error) {
	rawStatus, ok := result["status"].(string)
	if !ok {
		return Output{}, fmt.Errorf("engine result missing status field: %v", result)
	}
	status, err := ParseEligibilityStatus(rawStatus)
	if err != nil {
		return Output{}, err
	}

	var reason RejectionReason
	if rawReason, ok := result["reason"].(string); ok {
		reason, err = ParseRejectionReason(rawReason)
		if err != nil {
			return Output{}, err
		}
	}

	return Output{
		Status:          status,
		RejectionReason: reason,
		RuleVersion:     def.Version,
	}, nil
}
