package handler

import (
	"time"

	"bre-gateway/internal/decision"
)

// EligibilityResponse is the HTTP response for
// POST /api/v1/decisions/kyc/eligibility.
type EligibilityResponse struct {
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CorrelationID   string    `json:"correlation_id"`
	RuleVersion     string    `json:"rule_version"`
	ExecutionTimeMs float64   `json:"execution_time_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

// FromDecision converts a domain Decision to an HTTP response.
func FromDecision(d *decision.Decision) *EligibilityResponse {
	return &EligibilityResponse{
		Status:          string(d.Output.Status),
		RejectionReason: string(d.Output.RejectionReason),
		CorrelationID:   d.CorrelationID,
		RuleVersion:     d.Output.RuleVersion,
		ExecutionTimeMs: float64(d.Duration.Microseconds()) / 1000.0,
		Timestamp:       d.Output.EvaluatedAt,
	}
}
