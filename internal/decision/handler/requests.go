package handler

import (
	"strings"

	"bre-gateway/internal/facts"
	dErrors "bre-gateway/pkg/domain-errors"
)

// EligibilityRequest is the HTTP request body for
// POST /api/v1/decisions/kyc/eligibility. Each block carries one upstream
// integration's response in that integration's own vocabulary; the fact
// adapter owns all normalization.
type EligibilityRequest struct {
	PANVerification PANBlock      `json:"pan_verification"`
	Customer        CustomerBlock `json:"customer"`
	CreditBureau    CreditBlock   `json:"credit_bureau"`
	Dedupe          DedupeBlock   `json:"dedupe"`

	RulePath      string `json:"rule_path,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// PANBlock is the PAN verification vendor response.
type PANBlock struct {
	PAN                 string  `json:"pan"`
	Status              string  `json:"status"`
	NameOnPAN           string  `json:"name_on_pan"`
	NameMatchPercentage float64 `json:"name_match_percentage"`
}

// CustomerBlock is the customer service response.
type CustomerBlock struct {
	CustomerID  string `json:"customer_id"`
	DateOfBirth string `json:"date_of_birth"`
	StateCode   string `json:"state_code"`
	Segment     string `json:"segment"`
}

// CreditBlock is the credit bureau response.
type CreditBlock struct {
	Score      *int   `json:"score"`
	StatusCode string `json:"status_code"`
}

// DedupeBlock is the duplicate-check response.
type DedupeBlock struct {
	IsDuplicate bool     `json:"is_duplicate"`
	MatchScore  *float64 `json:"match_score"`
}

// Validate checks required fields and size limits. Deep normalization and
// schema validation belong to the fact adapter; this only rejects requests
// that cannot possibly be adapted.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EligibilityRequest) Validate() error {
	r.PANVerification.PAN = strings.TrimSpace(r.PANVerification.PAN)
	if r.PANVerification.PAN == "" {
		return dErrors.New(dErrors.CodeValidation, "pan_verification.pan is required")
	}
	if len(r.PANVerification.PAN) > 20 {
		return dErrors.New(dErrors.CodeValidation, "pan_verification.pan must be at most 20 characters")
	}
	r.Customer.DateOfBirth = strings.TrimSpace(r.Customer.DateOfBirth)
	if r.Customer.DateOfBirth == "" {
		return dErrors.New(dErrors.CodeValidation, "customer.date_of_birth is required")
	}
	if r.CreditBureau.StatusCode == "" {
		return dErrors.New(dErrors.CodeValidation, "credit_bureau.status_code is required")
	}
	r.CorrelationID = strings.TrimSpace(r.CorrelationID)
	if len(r.CorrelationID) > 64 {
		return dErrors.New(dErrors.CodeValidation, "correlation_id must be at most 64 characters")
	}
	r.RulePath = strings.TrimSpace(r.RulePath)
	return nil
}

// SourceRecords converts the request blocks into adapter inputs.
func (r *EligibilityRequest) SourceRecords() facts.SourceRecords {
	return facts.SourceRecords{
		PAN: facts.PANRecord{
			PAN:                 r.PANVerification.PAN,
			Status:              r.PANVerification.Status,
			NameOnPAN:           r.PANVerification.NameOnPAN,
			NameMatchPercentage: r.PANVerification.NameMatchPercentage,
		},
		Customer: facts.CustomerRecord{
			CustomerID:  r.Customer.CustomerID,
			DateOfBirth: r.Customer.DateOfBirth,
			StateCode:   r.Customer.StateCode,
			Segment:     r.Customer.Segment,
		},
		Credit: facts.CreditRecord{
			Score:      r.CreditBureau.Score,
			StatusCode: r.CreditBureau.StatusCode,
		},
		Dedupe: facts.DedupeRecord{
			IsDuplicate: r.Dedupe.IsDuplicate,
			MatchScore:  r.Dedupe.MatchScore,
		},
	}
}
