// Package rules loads, parses, and caches versioned decision-table
// definitions. Definitions are immutable values once loaded: a rule edit
// produces a logically new definition, never a mutation of a cached one.
package rules

import (
	"encoding/json"
	"errors"
	"fmt"

	"bre-gateway/pkg/platform/sentinel"
)

// ErrNotFound reports that no definition exists at the requested logical
// path. It wraps sentinel.ErrNotFound so transport layers can classify it.
var ErrNotFound = fmt.Errorf("rule definition: %w", sentinel.ErrNotFound)

// FormatError reports that stored content could not be parsed into a
// definition. This is a configuration fault, not a caller fault.
type FormatError struct {
	Path  string
	cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("rule definition %s: invalid format: %v", e.Path, e.cause)
}

func (e *FormatError) Unwrap() error { return e.cause }

// Outcome is what a matched row yields: a decision status and an optional
// rejection reason code.
type Outcome struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Row is one decision-table row: a boolean condition over canonical fact
// fields and the outcome when it matches. Rows are evaluated in order and
// the first match wins.
type Row struct {
	When string  `json:"when"`
	Then Outcome `json:"then"`
}

// Definition is a versioned decision-table document identified by its logical
// path. Treat loaded definitions as read-only; the repository shares one
// instance across concurrent requests.
type Definition struct {
	Path    string   `json:"-"`
	Version string   `json:"version"`
	Name    string   `json:"name"`
	Rows    []Row    `json:"rules"`
	Default *Outcome `json:"default,omitempty"`
	Raw     []byte   `json:"-"`
}

// Parse decodes raw document bytes into a Definition, enforcing the envelope
// the engine relies on.
func Parse(path string, raw []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, &FormatError{Path: path, cause: err}
	}
	if def.Version == "" {
		return nil, &FormatError{Path: path, cause: errors.New("missing version")}
	}
	if len(def.Rows) == 0 && def.Default == nil {
		return nil, &FormatError{Path: path, cause: errors.New("no rules and no default outcome")}
	}
	for i, row := range def.Rows {
		if row.When == "" {
			return nil, &FormatError{Path: path, cause: fmt.Errorf("rule %d: empty condition", i)}
		}
		if row.Then.Status == "" {
			return nil, &FormatError{Path: path, cause: fmt.Errorf("rule %d: empty outcome status", i)}
		}
	}
	def.Path = path
	def.Raw = raw
	return &def, nil
}
