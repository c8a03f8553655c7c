package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bre-gateway/internal/decision"
	dErrors "bre-gateway/pkg/domain-errors"
	"bre-gateway/pkg/platform/httputil"
	"bre-gateway/pkg/requestcontext"
)

// Service defines the interface for decision operations.
type Service interface {
	Decide(ctx context.Context, req decision.DecideRequest) (*decision.Decision, error)
}

// Handler wires decision endpoints to the decision service.
type Handler struct {
	service         Service
	logger          *slog.Logger
	defaultRulePath string
}

// New constructs a decision handler. defaultRulePath is used when the request
// names no rule; deployments pin it to the active eligibility table.
func New(service Service, logger *slog.Logger, defaultRulePath string) *Handler {
	return &Handler{
		service:         service,
		logger:          logger,
		defaultRulePath: defaultRulePath,
	}
}

// Register mounts decision endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/decisions/kyc/eligibility", h.HandleEligibility)
}

// HandleEligibility handles POST /decisions/kyc/eligibility requests.
func (h *Handler) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EligibilityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rulePath := req.RulePath
	if rulePath == "" {
		rulePath = h.defaultRulePath
	}
	if rulePath == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "rule_path is required"))
		return
	}

	result, err := h.service.Decide(ctx, decision.DecideRequest{
		Source:        req.SourceRecords(),
		RulePath:      rulePath,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		// The service already logged the failure with its stage.
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "eligibility decided",
		"request_id", requestID,
		"correlation_id", result.CorrelationID,
		"status", result.Output.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromDecision(result))
}
