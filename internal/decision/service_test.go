package decision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bre-gateway/internal/audit"
	"bre-gateway/internal/engine"
	"bre-gateway/internal/facts"
	"bre-gateway/internal/rules"
	dErrors "bre-gateway/pkg/domain-errors"
	"bre-gateway/pkg/requestcontext"
)

const serviceTable = `{
	"version": "v2",
	"name": "kyc-eligibility",
	"rules": [
		{"when": "pan_verification_status != \"VERIFIED\"", "then": {"status": "REJECTED", "reason": "PAN_INVALID"}},
		{"when": "customer_age < 18", "then": {"status": "REJECTED", "reason": "AGE_BELOW_THRESHOLD"}},
		{"when": "dedupe_match_found", "then": {"status": "REJECTED", "reason": "DUPLICATE_CUSTOMER"}},
		{"when": "cibil_score != nil && cibil_score < 650", "then": {"status": "REJECTED", "reason": "CIBIL_SCORE_LOW"}}
	],
	"default": {"status": "APPROVED"}
}`

// recordingSink captures emitted audit records and signals each arrival so
// tests can wait for the fire-and-forget goroutine.
type recordingSink struct {
	mu      sync.Mutex
	records []audit.Record
	arrived chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{arrived: make(chan struct{}, 16)}
}

func (s *recordingSink) Emit(_ context.Context, rec audit.Record) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	s.arrived <- struct{}{}
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *recordingSink) wait(t *testing.T) audit.Record {
	t.Helper()
	select {
	case <-s.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("no audit record emitted")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[len(s.records)-1]
}

type failingSink struct{ arrived chan struct{} }

func (s *failingSink) Emit(context.Context, audit.Record) error {
	s.arrived <- struct{}{}
	return errors.New("audit backend down")
}

type panickingSink struct{ arrived chan struct{} }

func (s *panickingSink) Emit(context.Context, audit.Record) error {
	defer func() { s.arrived <- struct{}{} }()
	panic("sink exploded")
}

func serviceSource() facts.SourceRecords {
	score := 750
	return facts.SourceRecords{
		PAN:      facts.PANRecord{PAN: "ABCDE1234F", Status: "valid", NameMatchPercentage: 95},
		Customer: facts.CustomerRecord{DateOfBirth: "1992-01-20", StateCode: "KA", Segment: "retail"},
		Credit:   facts.CreditRecord{Score: &score, StatusCode: "200"},
		Dedupe:   facts.DedupeRecord{IsDuplicate: false},
	}
}

func newTestService(t *testing.T, sink audit.Sink) *Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage := rules.NewMemoryStorage()
	require.NoError(t, storage.WriteRaw(context.Background(), "kyc/eligibility.json", []byte(serviceTable)))
	repo := rules.NewRepository(storage, log)

	evaluator := NewDelegatingEvaluator(engine.New(log))
	return NewService(facts.NewAdapter(), repo, evaluator, sink, log, nil)
}

func TestDecideApproves(t *testing.T) {
	sink := newRecordingSink()
	svc := newTestService(t, sink)

	d, err := svc.Decide(context.Background(), DecideRequest{
		Source:   serviceSource(),
		RulePath: "kyc/eligibility.json",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, d.Output.Status)
	assert.Empty(t, d.Output.RejectionReason)
	assert.Equal(t, "v2", d.Output.RuleVersion)
	assert.Equal(t, "kyc/eligibility.json", d.RulePath)

	rec := sink.wait(t)
	assert.Equal(t, d.CorrelationID, rec.CorrelationID)
	assert.Equal(t, "APPROVED", rec.Status)
	assert.Empty(t, rec.RejectionReason)
	assert.Equal(t, "v2", rec.RuleVersion)
	assert.Equal(t, facts.SchemaVersion, rec.FactSchemaVersion)
	assert.Equal(t, "ABCDE1234F", rec.FactSnapshot["pan_number"])
	assert.Equal(t, 750, rec.FactSnapshot["cibil_score"])
}

func TestDecideRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*facts.SourceRecords)
		want   RejectionReason
	}{
		{"invalid pan", func(s *facts.SourceRecords) { s.PAN.Status = "invalid" }, ReasonPANInvalid},
		{"duplicate", func(s *facts.SourceRecords) { s.Dedupe.IsDuplicate = true }, ReasonDuplicateCustomer},
		{"low cibil", func(s *facts.SourceRecords) { low := 580; s.Credit.Score = &low }, ReasonCIBILScoreLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newRecordingSink()
			svc := newTestService(t, sink)

			src := serviceSource()
			tt.mutate(&src)

			d, err := svc.Decide(context.Background(), DecideRequest{Source: src, RulePath: "kyc/eligibility.json"})
			require.NoError(t, err)
			assert.Equal(t, StatusRejected, d.Output.Status)
			assert.Equal(t, tt.want, d.Output.RejectionReason)

			rec := sink.wait(t)
			assert.Equal(t, string(tt.want), rec.RejectionReason)
		})
	}
}

func TestDecideGeneratesCorrelationID(t *testing.T) {
	sink := newRecordingSink()
	svc := newTestService(t, sink)

	d, err := svc.Decide(context.Background(), DecideRequest{Source: serviceSource(), RulePath: "kyc/eligibility.json"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(d.CorrelationID)
	require.NoError(t, err)
	assert.Equal(t, parsed.String(), d.CorrelationID)

	rec := sink.wait(t)
	assert.Equal(t, d.CorrelationID, rec.CorrelationID)
}

func TestDecideReusesTransportRequestID(t *testing.T) {
	sink := newRecordingSink()
	svc := newTestService(t, sink)

	reqID := "A1B2C3D4-E5F6-4789-8ABC-DEF012345678"
	ctx := requestcontext.WithRequestID(context.Background(), reqID)

	d, err := svc.Decide(ctx, DecideRequest{Source: serviceSource(), RulePath: "kyc/eligibility.json"})
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4-e5f6-4789-8abc-def012345678", d.CorrelationID)
}

func TestDecideAdaptationFailure(t *testing.T) {
	sink := newRecordingSink()
	svc := newTestService(t, sink)

	src := serviceSource()
	src.Customer.DateOfBirth = "not-a-date"

	_, err := svc.Decide(context.Background(), DecideRequest{Source: src, RulePath: "kyc/eligibility.json"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "correlation_id=")

	// Failed requests never reach the audit sink.
	assert.Zero(t, sink.count())
}

func TestDecideSuppliedCorrelationIDOnErrors(t *testing.T) {
	svc := newTestService(t, newRecordingSink())

	src := serviceSource()
	src.Customer.DateOfBirth = "bad"

	_, err := svc.Decide(context.Background(), DecideRequest{
		Source:        src,
		RulePath:      "kyc/eligibility.json",
		CorrelationID: "a1b2c3d4-e5f6-4789-8abc-def012345678",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "correlation_id=a1b2c3d4-e5f6-4789-8abc-def012345678")
}

func TestDecideRuleNotFound(t *testing.T) {
	svc := newTestService(t, newRecordingSink())

	_, err := svc.Decide(context.Background(), DecideRequest{Source: serviceSource(), RulePath: "missing.json"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDecideCorruptRule(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage := rules.NewMemoryStorage()
	require.NoError(t, storage.WriteRaw(context.Background(), "corrupt.json", []byte(`{"version":""}`)))
	repo := rules.NewRepository(storage, log)
	svc := NewService(facts.NewAdapter(), repo, NewDelegatingEvaluator(engine.New(log)), newRecordingSink(), log, nil)

	_, err := svc.Decide(context.Background(), DecideRequest{Source: serviceSource(), RulePath: "corrupt.json"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestDecideSurvivesAuditFailure(t *testing.T) {
	sink := &failingSink{arrived: make(chan struct{}, 1)}
	svc := newTestService(t, sink)

	d, err := svc.Decide(context.Background(), DecideRequest{Source: serviceSource(), RulePath: "kyc/eligibility.json"})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, d.Output.Status)

	select {
	case <-sink.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("audit sink never invoked")
	}
}

func TestDecideSurvivesAuditPanic(t *testing.T) {
	sink := &panickingSink{arrived: make(chan struct{}, 1)}
	svc := newTestService(t, sink)

	d, err := svc.Decide(context.Background(), DecideRequest{Source: serviceSource(), RulePath: "kyc/eligibility.json"})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, d.Output.Status)

	select {
	case <-sink.arrived:
	case <-time.After(2 * time.Second):
		t.Fatal("audit sink never invoked")
	}
}
