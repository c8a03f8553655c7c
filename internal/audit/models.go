// Package audit captures decision audit records and fans them out to
// pluggable sinks. Records are append-only and written once per decision;
// nothing in this package ever updates one.
package audit

import "time"

// Record is the complete audit trail for one decision: the full canonical
// fact snapshot, which rule version ran, what it decided, and how long it
// took. Everything a regulator needs to replay the decision.
type Record struct {
	CorrelationID     string         `json:"correlation_id"`
	RequestTimestamp  time.Time      `json:"request_timestamp"`
	RulePath          string         `json:"rule_path"`
	RuleVersion       string         `json:"rule_version"`
	FactSnapshot      map[string]any `json:"fact_snapshot"`
	FactSchemaVersion string         `json:"fact_schema_version"`
	Status            string         `json:"status"`
	RejectionReason   string         `json:"rejection_reason,omitempty"`
	ExecutionMicros   int64          `json:"execution_micros"`
	EvaluatedAt       time.Time      `json:"evaluated_at"`
}
