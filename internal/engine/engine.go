// Package engine executes decision-table definitions against canonical fact
// maps. Conditions are boolean expressions over canonical field names,
// compiled with expr; rows are evaluated in order and the first match wins,
// falling through to the table's default outcome.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"bre-gateway/internal/rules"
)

// Output field names in evaluation results.
const (
	FieldStatus = "status"
	FieldReason = "reason"
)

// TableEngine evaluates decision tables. Compiled condition programs are
// cached per definition version, so a re-loaded (edited) definition compiles
// fresh programs while the cached ones age out with their definition.
type TableEngine struct {
	logger   *slog.Logger
	programs sync.Map // "path@version#row" -> *vm.Program
}

// New constructs a TableEngine.
func New(logger *slog.Logger) *TableEngine {
	return &TableEngine{logger: logger}
}

// Evaluate runs the definition against the input facts and returns the
// outcome keyed by output field names. Compile and runtime faults surface as
// errors; the caller decides how to classify them.
func (e *TableEngine) Evaluate(ctx context.Context, def *rules.Definition, input map[string]any) (map[string]any, error) {
	for i, row := range def.Rows {
		program, err := e.compile(def, i, row.When)
		if err != nil {
			return nil, fmt.Errorf("rule %s row %d: compile %q: %w", def.Path, i, row.When, err)
		}
		matched, err := runBool(program, input)
		if err != nil {
			return nil, fmt.Errorf("rule %s row %d: evaluate %q: %w", def.Path, i, row.When, err)
		}
		if matched {
			e.logger.DebugContext(ctx, "decision table row matched",
				"path", def.Path, "row", i, "when", row.When)
			return outcomeMap(row.Then), nil
		}
	}
	if def.Default != nil {
		return outcomeMap(*def.Default), nil
	}
	return nil, fmt.Errorf("rule %s: no row matched and no default outcome", def.Path)
}

func (e *TableEngine) compile(def *rules.Definition, row int, condition string) (*vm.Program, error) {
	key := fmt.Sprintf("%s@%s#%d", def.Path, def.Version, row)
	if cached, ok := e.programs.Load(key); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(condition, expr.Env(map[string]any{}), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	e.programs.Store(key, program)
	return program, nil
}

func runBool(program *vm.Program, input map[string]any) (bool, error) {
	out, err := expr.Run(program, input)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition returned %T, want bool", out)
	}
	return b, nil
}

func outcomeMap(o rules.Outcome) map[string]any {
	result := map[string]any{FieldStatus: o.Status}
	if o.Reason != "" {
		result[FieldReason] = o.Reason
	}
	return result
}
