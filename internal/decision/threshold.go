package decision

import (
	"context"
	"time"

	"bre-gateway/internal/facts"
	"bre-gateway/internal/rules"
)

// ThresholdEvaluator is the deterministic reference evaluator, used where no
// external engine is deployed and as the conformance baseline in tests. It
// applies a fixed, ordered policy over canonical fields; the ordering is
// significant and the first failing check determines the reported reason.
type ThresholdEvaluator struct {
	minAge        int
	minCIBILScore int
	now           func() time.Time
}

// NewThresholdEvaluator constructs the reference evaluator with configured
// minimum age and CIBIL score.
func NewThresholdEvaluator(minAge, minCIBILScore int) *ThresholdEvaluator {
	return &ThresholdEvaluator{
		minAge:        minAge,
		minCIBILScore: minCIBILScore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate applies the threshold policy in fixed order:
//  1. PAN verification status must be VERIFIED, else PAN_INVALID.
//  2. Age must meet the configured minimum, else AGE_BELOW_THRESHOLD.
//  3. No duplicate customer record, else DUPLICATE_CUSTOMER.
//  4. CIBIL score, when present, must meet the configured minimum,
//     else CIBIL_SCORE_LOW.
//
// Everything passing yields APPROVED with no rejection reason.
func (e *ThresholdEvaluator) Evaluate(_ context.Context, def *rules.Definition, f *facts.Facts) (Output, time.Duration, error) {
	start := time.Now()
	out := Output{
		Status:      StatusApproved,
		RuleVersion: def.Version,
	}

	switch {
	case f.PANVerificationStatus != facts.VerificationVerified:
		out.Status = StatusRejected
		out.RejectionReason = ReasonPANInvalid
	case f.CustomerAge < e.minAge:
		out.Status = StatusRejected
		out.RejectionReason = ReasonAgeBelowThreshold
	case f.DedupeMatchFound:
		out.Status = StatusRejected
		out.RejectionReason = ReasonDuplicateCustomer
	case f.CIBILScore != nil && *f.CIBILScore < e.minCIBILScore:
		out.Status = StatusRejected
		out.RejectionReason = ReasonCIBILScoreLow
	}

	out.EvaluatedAt = e.now()
	return out, time.Since(start), nil
}
