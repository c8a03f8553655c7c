package facts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AdaptationError reports that upstream source data could not be adapted into
// a schema-valid canonical record. It carries the offending field and the
// violated constraint so integrations can fix their payloads.
type AdaptationError struct {
	Field      string
	Constraint string
	cause      error
}

func (e *AdaptationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("adapt field %s: %s: %v", e.Field, e.Constraint, e.cause)
	}
	return fmt.Sprintf("adapt field %s: %s", e.Field, e.Constraint)
}

func (e *AdaptationError) Unwrap() error { return e.cause }

// FactValidationError reports a registry-level policy violation on an already
// schema-valid record. Kept distinct from AdaptationError so registry policy
// can evolve without touching the schema.
type FactValidationError struct {
	Field  string
	Reason string
}

func (e *FactValidationError) Error() string {
	return fmt.Sprintf("fact registry violation on %s: %s", e.Field, e.Reason)
}

// Source record shapes. Each belongs to a distinct upstream integration and
// uses that integration's own vocabulary; the adapter owns translating them.

// PANRecord is the PAN verification vendor response.
type PANRecord struct {
	PAN                 string  `json:"pan"`
	Status              string  `json:"status"` // vendor tokens: "valid", "invalid", ...
	NameOnPAN           string  `json:"name_on_pan"`
	NameMatchPercentage float64 `json:"name_match_percentage"` // 0-100 scale
}

// CustomerRecord is the internal customer service response.
type CustomerRecord struct {
	CustomerID  string `json:"customer_id"`
	DateOfBirth string `json:"date_of_birth"` // "YYYY-MM-DD"
	StateCode   string `json:"state_code"`
	Segment     string `json:"segment"`
}

// CreditRecord is the CIBIL bureau response.
type CreditRecord struct {
	Score      *int   `json:"score"`
	StatusCode string `json:"status_code"` // "200", "404", "500", "timeout"
}

// DedupeRecord is the duplicate-check service response.
type DedupeRecord struct {
	IsDuplicate bool     `json:"is_duplicate"`
	MatchScore  *float64 `json:"match_score"` // 0-100 scale, nil when no check ran
}

// SourceRecords bundles the per-integration inputs for one decision request.
type SourceRecords struct {
	PAN      PANRecord
	Customer CustomerRecord
	Credit   CreditRecord
	Dedupe   DedupeRecord
}

const dateOfBirthLayout = "2006-01-02"

// Adapter is the anti-corruption boundary between upstream records and the
// canonical fact schema. It is referentially transparent given its inputs;
// the clock and ID generator are the only non-deterministic inputs and are
// injectable for tests.
type Adapter struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithIDGenerator overrides the correlation ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(a *Adapter) { a.newID = newID }
}

// NewAdapter constructs an Adapter with real time and UUID sources.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Adapt normalizes, defaults, and validates the source records into a
// canonical Facts record. correlationID may be empty, in which case a fresh
// identifier is generated; a supplied identifier must be canonical UUID form
// and is case-normalized to lowercase. Failures are always *AdaptationError;
// a record is either fully valid or not returned at all.
func (a *Adapter) Adapt(src SourceRecords, correlationID string) (*Facts, error) {
	if correlationID == "" {
		correlationID = a.newID()
	} else {
		correlationID = strings.ToLower(strings.TrimSpace(correlationID))
		if err := validateCorrelationID(correlationID); err != nil {
			return nil, &AdaptationError{Field: "correlation_id", Constraint: "must be a canonical UUID", cause: err}
		}
	}

	dob, err := time.Parse(dateOfBirthLayout, src.Customer.DateOfBirth)
	if err != nil {
		return nil, &AdaptationError{Field: "customer_age", Constraint: "date_of_birth must be YYYY-MM-DD", cause: err}
	}
	now := a.now()

	var dedupeConfidence *float64
	if src.Dedupe.MatchScore != nil {
		scaled := ScalePercentage(*src.Dedupe.MatchScore)
		dedupeConfidence = &scaled
	}

	f := &Facts{
		PANNumber:             strings.ToUpper(strings.TrimSpace(src.PAN.PAN)),
		PANVerificationStatus: NormalizeVerificationStatus(src.PAN.Status),
		PANNameMatchScore:     ScalePercentage(src.PAN.NameMatchPercentage),
		CustomerAge:           AgeAt(dob, now),
		CustomerState:         NormalizeState(src.Customer.StateCode),
		CustomerType:          NormalizeCustomerType(src.Customer.Segment),
		CIBILScore:            src.Credit.Score,
		CIBILFetchStatus:      NormalizeFetchStatus(src.Credit.StatusCode),
		DedupeMatchFound:      src.Dedupe.IsDuplicate,
		DedupeMatchConfidence: dedupeConfidence,
		CorrelationID:         correlationID,
		RequestTimestamp:      now,
	}

	// Final gate: schema validation over the whole record.
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ValidateAgainstRegistry re-checks record-level business constraints that are
// independent of per-field schema validation. Registry policy can tighten
// without a schema version bump.
func ValidateAgainstRegistry(f *Facts) error {
	for _, r := range f.PANNumber {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return &FactValidationError{Field: "pan_number", Reason: fmt.Sprintf("non-alphanumeric PAN %q", f.PANNumber)}
		}
	}
	if f.CustomerAge < AgeMin {
		return &FactValidationError{Field: "customer_age", Reason: fmt.Sprintf("age %d below registry minimum %d", f.CustomerAge, AgeMin)}
	}
	return nil
}
