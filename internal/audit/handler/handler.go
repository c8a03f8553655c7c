// Package handler exposes the audit record query endpoint used by compliance
// reviews: every decision is traceable back through its correlation ID.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bre-gateway/internal/audit"
	dErrors "bre-gateway/pkg/domain-errors"
	"bre-gateway/pkg/platform/httputil"
)

// Lister looks up audit records by correlation identifier.
type Lister interface {
	List(ctx context.Context, correlationID string) ([]audit.Record, error)
}

type Handler struct {
	lister Lister
	logger *slog.Logger
}

func New(lister Lister, logger *slog.Logger) *Handler {
	return &Handler{lister: lister, logger: logger}
}

// Register mounts audit query endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/decisions/{correlationID}", h.HandleListByCorrelation)
}

// HandleListByCorrelation handles GET /audit/decisions/{correlationID}.
func (h *Handler) HandleListByCorrelation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "correlationID")))
	if correlationID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "correlation id is required"))
		return
	}

	records, err := h.lister.List(ctx, correlationID)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit lookup failed", "correlation_id", correlationID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "audit lookup failed", err))
		return
	}
	if len(records) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no audit records for correlation id: "+correlationID))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"correlation_id": correlationID,
		"records":        records,
	})
}
