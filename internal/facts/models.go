// Package facts defines the canonical fact schema for KYC decisioning and the
// adapter that maps upstream vendor records onto it. The canonical record is
// the only legal input to rule evaluation: every enum field holds a member of
// its closed set, every numeric field sits inside its declared range, and a
// record is never partially constructed.
package facts

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion identifies the canonical fact schema revision carried in
// audit records. Bump when fields or constraints change shape.
const SchemaVersion = "v1"

// VerificationStatus is the canonical PAN verification outcome.
type VerificationStatus string

const (
	VerificationVerified    VerificationStatus = "VERIFIED"
	VerificationNotVerified VerificationStatus = "NOT_VERIFIED"
	VerificationInvalid     VerificationStatus = "INVALID"
	VerificationPending     VerificationStatus = "PENDING"
	VerificationError       VerificationStatus = "ERROR"
)

// State is the canonical customer jurisdiction.
type State string

const (
	StateAndhraPradesh State = "ANDHRA_PRADESH"
	StateKarnataka     State = "KARNATAKA"
	StateMaharashtra   State = "MAHARASHTRA"
	StateTamilNadu     State = "TAMIL_NADU"
	StateDelhi         State = "DELHI"
	StateWestBengal    State = "WEST_BENGAL"
	StateGujarat       State = "GUJARAT"
	StateRajasthan     State = "RAJASTHAN"
	StateUttarPradesh  State = "UTTAR_PRADESH"
	StateTelangana     State = "TELANGANA"
	StateOther         State = "OTHER"
)

// CustomerType is the canonical customer classification.
type CustomerType string

const (
	CustomerRetail     CustomerType = "RETAIL"
	CustomerPremium    CustomerType = "PREMIUM"
	CustomerCorporate  CustomerType = "CORPORATE"
	CustomerGovernment CustomerType = "GOVERNMENT"
)

// FetchStatus is the canonical CIBIL fetch outcome.
type FetchStatus string

const (
	FetchSuccess   FetchStatus = "SUCCESS"
	FetchFailure   FetchStatus = "FAILURE"
	FetchNoHistory FetchStatus = "NO_HISTORY"
	FetchTimeout   FetchStatus = "TIMEOUT"
)

// Facts is the canonical fact record (schema v1). Constructed once per
// decision request by the Adapter, immutable thereafter, and discarded after
// the audit record is emitted.
type Facts struct {
	// PAN
	PANNumber             string
	PANVerificationStatus VerificationStatus
	PANNameMatchScore     float64

	// Demographics
	CustomerAge   int
	CustomerState State
	CustomerType  CustomerType

	// Credit bureau
	CIBILScore       *int
	CIBILFetchStatus FetchStatus

	// Dedupe / fraud
	DedupeMatchFound      bool
	DedupeMatchConfidence *float64

	// Audit metadata
	CorrelationID    string
	RequestTimestamp time.Time
}

// FieldNames is the canonical field order. Engine inputs and audit snapshots
// are built in this order.
var FieldNames = []string{
	"pan_number",
	"pan_verification_status",
	"pan_name_match_score",
	"customer_age",
	"customer_state",
	"customer_type",
	"cibil_score",
	"cibil_fetch_status",
	"dedupe_match_found",
	"dedupe_match_confidence",
	"correlation_id",
	"request_timestamp",
}

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// Age bounds for canonical facts, inclusive.
const (
	AgeMin = 18
	AgeMax = 120
)

// CIBIL score bounds, inclusive.
const (
	CIBILScoreMin = 300
	CIBILScoreMax = 900
)

// Validate checks every schema constraint and returns an *AdaptationError for
// the first violated field. A nil return means the whole record is valid;
// callers never receive a partially valid record because Adapt refuses to
// return one.
func (f *Facts) Validate() error {
	if !panPattern.MatchString(f.PANNumber) {
		return &AdaptationError{Field: "pan_number", Constraint: "must match ^[A-Z]{5}[0-9]{4}[A-Z]$"}
	}
	if !f.PANVerificationStatus.valid() {
		return &AdaptationError{Field: "pan_verification_status", Constraint: fmt.Sprintf("unknown enum value %q", f.PANVerificationStatus)}
	}
	if f.PANNameMatchScore < 0.0 || f.PANNameMatchScore > 1.0 {
		return &AdaptationError{Field: "pan_name_match_score", Constraint: "must be within [0.0, 1.0]"}
	}
	if f.CustomerAge < AgeMin || f.CustomerAge > AgeMax {
		return &AdaptationError{Field: "customer_age", Constraint: fmt.Sprintf("must be within [%d, %d]", AgeMin, AgeMax)}
	}
	if !f.CustomerState.valid() {
		return &AdaptationError{Field: "customer_state", Constraint: fmt.Sprintf("unknown enum value %q", f.CustomerState)}
	}
	if !f.CustomerType.valid() {
		return &AdaptationError{Field: "customer_type", Constraint: fmt.Sprintf("unknown enum value %q", f.CustomerType)}
	}
	if f.CIBILScore != nil && (*f.CIBILScore < CIBILScoreMin || *f.CIBILScore > CIBILScoreMax) {
		return &AdaptationError{Field: "cibil_score", Constraint: fmt.Sprintf("must be within [%d, %d] when present", CIBILScoreMin, CIBILScoreMax)}
	}
	if !f.CIBILFetchStatus.valid() {
		return &AdaptationError{Field: "cibil_fetch_status", Constraint: fmt.Sprintf("unknown enum value %q", f.CIBILFetchStatus)}
	}
	if f.DedupeMatchConfidence != nil && (*f.DedupeMatchConfidence < 0.0 || *f.DedupeMatchConfidence > 1.0) {
		return &AdaptationError{Field: "dedupe_match_confidence", Constraint: "must be within [0.0, 1.0] when present"}
	}
	if err := validateCorrelationID(f.CorrelationID); err != nil {
		return &AdaptationError{Field: "correlation_id", Constraint: "must be a canonical lowercase UUID", cause: err}
	}
	if f.RequestTimestamp.IsZero() {
		return &AdaptationError{Field: "request_timestamp", Constraint: "must be set"}
	}
	return nil
}

// AsMap renders the record as a mapping of canonical field names to values,
// the shape handed to decision-table engines. Optional fields absent from the
// record map to nil.
func (f *Facts) AsMap() map[string]any {
	m := map[string]any{
		"pan_number":              f.PANNumber,
		"pan_verification_status": string(f.PANVerificationStatus),
		"pan_name_match_score":    f.PANNameMatchScore,
		"customer_age":            f.CustomerAge,
		"customer_state":          string(f.CustomerState),
		"customer_type":           string(f.CustomerType),
		"cibil_score":             nil,
		"cibil_fetch_status":      string(f.CIBILFetchStatus),
		"dedupe_match_found":      f.DedupeMatchFound,
		"dedupe_match_confidence": nil,
		"correlation_id":          f.CorrelationID,
		"request_timestamp":       f.RequestTimestamp.Format(time.RFC3339),
	}
	if f.CIBILScore != nil {
		m["cibil_score"] = *f.CIBILScore
	}
	if f.DedupeMatchConfidence != nil {
		m["dedupe_match_confidence"] = *f.DedupeMatchConfidence
	}
	return m
}

// validateCorrelationID enforces canonical UUID textual form:
// 8-4-4-4-12 lowercase hex. Braced, URN, and uppercase forms are rejected;
// the adapter normalizes casing before validation.
func validateCorrelationID(s string) error {
	if len(s) != 36 {
		return fmt.Errorf("correlation id %q is not canonical UUID form", s)
	}
	if s != strings.ToLower(s) {
		return fmt.Errorf("correlation id %q must be lowercase", s)
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("correlation id %q: %w", s, err)
	}
	return nil
}

func (v VerificationStatus) valid() bool {
	switch v {
	case VerificationVerified, VerificationNotVerified, VerificationInvalid, VerificationPending, VerificationError:
		return true
	}
	return false
}

func (s State) valid() bool {
	switch s {
	case StateAndhraPradesh, StateKarnataka, StateMaharashtra, StateTamilNadu, StateDelhi,
		StateWestBengal, StateGujarat, StateRajasthan, StateUttarPradesh, StateTelangana, StateOther:
		return true
	}
	return false
}

func (c CustomerType) valid() bool {
	switch c {
	case CustomerRetail, CustomerPremium, CustomerCorporate, CustomerGovernment:
		return true
	}
	return false
}

func (s FetchStatus) valid() bool {
	switch s {
	case FetchSuccess, FetchFailure, FetchNoHistory, FetchTimeout:
		return true
	}
	return false
}
