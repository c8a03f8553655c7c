// Package decision evaluates canonical KYC facts against versioned decision
// tables and produces auditable decision outcomes. Rule logic is pluggable;
// the orchestration, metadata, and audit semantics live here.
package decision

import (
	"fmt"
	"time"

	"bre-gateway/internal/facts"
)

// EligibilityStatus is the final KYC decision.
type EligibilityStatus string

const (
	StatusApproved         EligibilityStatus = "APPROVED"
	StatusRejected         EligibilityStatus = "REJECTED"
	StatusManualReview     EligibilityStatus = "MANUAL_REVIEW"
	StatusPendingDocuments EligibilityStatus = "PENDING_DOCUMENTS"
)

// RejectionReason explains a REJECTED decision.
type RejectionReason string

const (
	ReasonPANInvalid          RejectionReason = "PAN_INVALID"
	ReasonPANNameMismatch     RejectionReason = "PAN_NAME_MISMATCH"
	ReasonAgeBelowThreshold   RejectionReason = "AGE_BELOW_THRESHOLD"
	ReasonCIBILScoreLow       RejectionReason = "CIBIL_SCORE_LOW"
	ReasonDuplicateCustomer   RejectionReason = "DUPLICATE_CUSTOMER"
	ReasonRestrictedState     RejectionReason = "RESTRICTED_STATE"
	ReasonIncompleteDocuments RejectionReason = "INCOMPLETE_DOCUMENTS"
)

// ParseEligibilityStatus validates an engine-reported status against the
// closed enumeration.
func ParseEligibilityStatus(s string) (EligibilityStatus, error) {
	switch EligibilityStatus(s) {
	case StatusApproved, StatusRejected, StatusManualReview, StatusPendingDocuments:
		return EligibilityStatus(s), nil
	}
	return "", fmt.Errorf("unknown eligibility status %q", s)
}

// ParseRejectionReason validates an engine-reported reason against the closed
// enumeration. Empty input is valid and means no reason.
func ParseRejectionReason(s string) (RejectionReason, error) {
	if s == "" {
		return "", nil
	}
	switch RejectionReason(s) {
	case ReasonPANInvalid, ReasonPANNameMismatch, ReasonAgeBelowThreshold,
		ReasonCIBILScoreLow, ReasonDuplicateCustomer, ReasonRestrictedState,
		ReasonIncompleteDocuments:
		return RejectionReason(s), nil
	}
	return "", fmt.Errorf("unknown rejection reason %q", s)
}

// Output is what evaluation yields: an eligibility status, an optional
// rejection reason, and execution metadata.
type Output struct {
	Status          EligibilityStatus
	RejectionReason RejectionReason // empty when not rejected
	RuleVersion     string
	EvaluatedAt     time.Time
}

// DecideRequest carries one decision request through the orchestrator.
// CorrelationID may be empty; the fact adapter then generates one.
type DecideRequest struct {
	Source        facts.SourceRecords
	RulePath      string
	CorrelationID string
}

// Decision is the orchestrator's response: the evaluation output plus the
// request-level metadata callers and audit records need.
type Decision struct {
	Output        Output
	CorrelationID string
	RulePath      string
	Duration      time.Duration // evaluator execution time
}

// Stage tracks a request through the orchestrator. Each stage either advances
// to the next or terminates the request with a failure classified by the
// stage it died in. Audit emission is the exception: its failures are logged
// and swallowed, never returned.
type Stage string

const (
	StageAdapting   Stage = "adapting"
	StageLoading    Stage = "loading"
	StageEvaluating Stage = "evaluating"
	StageAuditing   Stage = "auditing"
	StageComplete   Stage = "complete"
)
