package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bre-gateway/internal/decision"
	dErrors "bre-gateway/pkg/domain-errors"
)

// fakeService returns a canned decision or error and records the last request.
type fakeService struct {
	decision *decision.Decision
	err      error
	lastReq  decision.DecideRequest
}

func (s *fakeService) Decide(_ context.Context, req decision.DecideRequest) (*decision.Decision, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.decision, nil
}

func approvedDecision() *decision.Decision {
	return &decision.Decision{
		Output: decision.Output{
			Status:      decision.StatusApproved,
			RuleVersion: "v2",
			EvaluatedAt: time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		},
		CorrelationID: "a1b2c3d4-e5f6-4789-8abc-def012345678",
		RulePath:      "kyc/eligibility.json",
		Duration:      1500 * time.Microsecond,
	}
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), "kyc/eligibility.json")
	h.Register(r)
	return r
}

func validBody() map[string]any {
	return map[string]any{
		"pan_verification": map[string]any{
			"pan":                   "ABCDE1234F",
			"status":                "valid",
			"name_match_percentage": 95,
		},
		"customer": map[string]any{
			"customer_id":   "CUST-001",
			"date_of_birth": "1992-01-20",
			"state_code":    "KA",
			"segment":       "retail",
		},
		"credit_bureau": map[string]any{
			"score":       750,
			"status_code": "200",
		},
		"dedupe": map[string]any{
			"is_duplicate": false,
		},
	}
}

func post(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/decisions/kyc/eligibility", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEligibilityApproved(t *testing.T) {
	svc := &fakeService{decision: approvedDecision()}
	rec := post(t, newRouter(svc), validBody())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp EligibilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "APPROVED", resp.Status)
	assert.Empty(t, resp.RejectionReason)
	assert.Equal(t, "a1b2c3d4-e5f6-4789-8abc-def012345678", resp.CorrelationID)
	assert.Equal(t, "v2", resp.RuleVersion)
	assert.InDelta(t, 1.5, resp.ExecutionTimeMs, 1e-9)
}

func TestEligibilityDefaultsRulePath(t *testing.T) {
	svc := &fakeService{decision: approvedDecision()}
	rec := post(t, newRouter(svc), validBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kyc/eligibility.json", svc.lastReq.RulePath)
}

func TestEligibilityExplicitRulePathWins(t *testing.T) {
	svc := &fakeService{decision: approvedDecision()}
	body := validBody()
	body["rule_path"] = "loans/personal.json"

	rec := post(t, newRouter(svc), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "loans/personal.json", svc.lastReq.RulePath)
}

func TestEligibilityMalformedJSON(t *testing.T) {
	svc := &fakeService{decision: approvedDecision()}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/decisions/kyc/eligibility", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEligibilityValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing pan", func(b map[string]any) { b["pan_verification"] = map[string]any{"status": "valid"} }},
		{"missing dob", func(b map[string]any) {
			b["customer"] = map[string]any{"customer_id": "CUST-001", "state_code": "KA"}
		}},
		{"missing bureau status", func(b map[string]any) { b["credit_bureau"] = map[string]any{"score": 750} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{decision: approvedDecision()}
			body := validBody()
			tt.mutate(body)

			rec := post(t, newRouter(svc), body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestEligibilityServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "adapt field customer_age"), http.StatusUnprocessableEntity},
		{"rule not found", dErrors.New(dErrors.CodeNotFound, "rule not found"), http.StatusNotFound},
		{"engine fault", dErrors.New(dErrors.CodeInternal, "rule evaluation failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			rec := post(t, newRouter(svc), validBody())
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestEligibilityInternalErrorHidesDetail(t *testing.T) {
	svc := &fakeService{err: dErrors.New(dErrors.CodeInternal, "pq: connection refused")}
	rec := post(t, newRouter(svc), validBody())

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, body, "error_description")
}

func TestEligibilityForwardsCorrelationID(t *testing.T) {
	svc := &fakeService{decision: approvedDecision()}
	body := validBody()
	body["correlation_id"] = "a1b2c3d4-e5f6-4789-8abc-def012345678"

	rec := post(t, newRouter(svc), body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a1b2c3d4-e5f6-4789-8abc-def012345678", svc.lastReq.CorrelationID)
}
