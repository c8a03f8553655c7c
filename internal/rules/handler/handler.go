// Package handler exposes the rule management endpoints used by the external
// rule-editing collaborator: listing, reading, and writing decision-table
// documents, plus a dry-run evaluation of a stored rule against raw facts.
// A successful write invalidates the repository's whole cache so the next
// decision sees the new definition without a redeploy.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"bre-gateway/internal/rules"
	dErrors "bre-gateway/pkg/domain-errors"
	"bre-gateway/pkg/platform/httputil"
	"bre-gateway/pkg/platform/sentinel"
	"bre-gateway/pkg/requestcontext"
)

// maxDocumentBytes bounds rule uploads; decision tables are small documents.
const maxDocumentBytes = 1 << 20

// Engine evaluates a definition against raw facts for the dry-run endpoint.
type Engine interface {
	Evaluate(ctx context.Context, def *rules.Definition, input map[string]any) (map[string]any, error)
}

// Invalidator clears the rule cache after an edit.
type Invalidator interface {
	Invalidate()
	Load(ctx context.Context, path string) (*rules.Definition, error)
}

// Handler wires rule management endpoints to storage and the repository.
type Handler struct {
	storage rules.ManagedStorage
	repo    Invalidator
	engine  Engine
	logger  *slog.Logger
	onEdit  func() // optional hook, e.g. a cache-invalidation metric
}

// New constructs a rule management handler. onEdit may be nil.
func New(storage rules.ManagedStorage, repo Invalidator, engine Engine, logger *slog.Logger, onEdit func()) *Handler {
	return &Handler{
		storage: storage,
		repo:    repo,
		engine:  engine,
		logger:  logger,
		onEdit:  onEdit,
	}
}

// Register mounts rule management endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/rules", h.HandleList)
	r.Post("/rules/test", h.HandleTest)
	r.Get("/rules/*", h.HandleGet)
	r.Put("/rules/*", h.HandlePut)
}

// HandleList handles GET /rules.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	paths, err := h.storage.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "rule list failed", "error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "rule list failed", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rules": paths})
}

// HandleGet handles GET /rules/{path}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	raw, err := h.storage.ReadRaw(r.Context(), path)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "rule not found: "+path))
			return
		}
		h.logger.ErrorContext(r.Context(), "rule read failed", "path", path, "error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "rule read failed", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// HandlePut handles PUT /rules/{path}. The document must parse as a
// definition before it is stored; a malformed table never reaches storage.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := chi.URLParam(r, "*")
	if strings.TrimSpace(path) == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "rule path is required"))
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeBadRequest, "read body failed", err))
		return
	}
	if _, err := rules.Parse(path, raw); err != nil {
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeValidation, err.Error(), err))
		return
	}

	if err := h.storage.WriteRaw(ctx, path, raw); err != nil {
		h.logger.ErrorContext(ctx, "rule write failed", "path", path, "error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "rule write failed", err))
		return
	}

	// Coarse invalidation: every cached definition is dropped, not just this
	// path. Rule edits are rare; correctness beats precision.
	h.repo.Invalidate()
	if h.onEdit != nil {
		h.onEdit()
	}

	h.logger.InfoContext(ctx, "rule updated",
		"request_id", requestcontext.RequestID(ctx),
		"path", path,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated", "path": path})
}

// TestRequest is the body for POST /rules/test: a stored rule path and raw
// facts to evaluate it against.
type TestRequest struct {
	Path  string         `json:"path"`
	Facts map[string]any `json:"facts"`
}

// Validate implements httputil.Validatable.
func (t *TestRequest) Validate() error {
	t.Path = strings.TrimSpace(t.Path)
	if t.Path == "" {
		return dErrors.New(dErrors.CodeValidation, "path is required")
	}
	if t.Facts == nil {
		return dErrors.New(dErrors.CodeValidation, "facts are required")
	}
	return nil
}

// HandleTest handles POST /rules/test.
func (h *Handler) HandleTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	def, err := h.repo.Load(ctx, req.Path)
	if err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "rule not found: "+req.Path))
			return
		}
		h.logger.ErrorContext(ctx, "rule load failed", "path", req.Path, "error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "rule load failed", err))
		return
	}

	result, err := h.engine.Evaluate(ctx, def, req.Facts)
	if err != nil {
		h.logger.ErrorContext(ctx, "rule test evaluation failed", "path", req.Path, "error", err)
		httputil.WriteError(w, dErrors.Wrap(dErrors.CodeInternal, "rule evaluation failed", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"path":    req.Path,
		"version": def.Version,
		"result":  result,
	})
}
