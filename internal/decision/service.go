package decision

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bre-gateway/internal/audit"
	"bre-gateway/internal/decision/metrics"
	"bre-gateway/internal/facts"
	"bre-gateway/internal/rules"
	dErrors "bre-gateway/pkg/domain-errors"
	"bre-gateway/pkg/requestcontext"
)

const auditEmitTimeout = 5 * time.Second

// Service orchestrates one decision request: fact adaptation, rule loading,
// evaluation, and audit emission. It owns the canonical fact record and the
// audit record for the duration of the request and holds no per-request state
// of its own, so it is safe for concurrent use.
type Service struct {
	adapter   *facts.Adapter
	repo      *rules.Repository
	evaluator Evaluator
	sink      audit.Sink
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewService wires the orchestrator. The evaluator variant (delegating or
// threshold) is fixed here at construction; Decide never inspects it.
func NewService(adapter *facts.Adapter, repo *rules.Repository, evaluator Evaluator, sink audit.Sink, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		adapter:   adapter,
		repo:      repo,
		evaluator: evaluator,
		sink:      sink,
		logger:    logger,
		metrics:   m,
		tracer:    otel.Tracer("bre-gateway/decision"),
	}
}

// Decide runs the request through Adapting -> Loading -> Evaluating ->
// Auditing -> Complete. A component failure terminates the request in that
// stage; nothing is retried here. Audit emission is the one exception: it is
// fire-and-forget, and its failure can never fail a decision already made.
func (s *Service) Decide(ctx context.Context, req DecideRequest) (*Decision, error) {
	start := time.Now()
	correlationID := s.resolveCorrelationID(ctx, req.CorrelationID)

	ctx, span := s.tracer.Start(ctx, "decision.Decide",
		trace.WithAttributes(
			attribute.String("rule.path", req.RulePath),
			attribute.String("correlation.id", correlationID),
		))
	defer span.End()

	// Adapting
	f, err := s.adapter.Adapt(req.Source, correlationID)
	if err != nil {
		return nil, s.fail(ctx, StageAdapting, correlationID, dErrors.CodeValidation, err.Error(), err)
	}
	if err := facts.ValidateAgainstRegistry(f); err != nil {
		return nil, s.fail(ctx, StageAdapting, correlationID, dErrors.CodeValidation, err.Error(), err)
	}

	// Loading
	def, err := s.repo.Load(ctx, req.RulePath)
	if err != nil {
		code, msg := classifyRuleError(req.RulePath, err)
		return nil, s.fail(ctx, StageLoading, correlationID, code, msg, err)
	}

	// Evaluating
	out, elapsed, err := s.evaluator.Evaluate(ctx, def, f)
	if err != nil {
		return nil, s.fail(ctx, StageEvaluating, correlationID, dErrors.CodeInternal, "rule evaluation failed", err)
	}
	span.SetAttributes(
		attribute.String("decision.status", string(out.Status)),
		attribute.String("rule.version", out.RuleVersion),
	)

	decision := &Decision{
		Output:        out,
		CorrelationID: f.CorrelationID,
		RulePath:      req.RulePath,
		Duration:      elapsed,
	}

	// Auditing: best-effort, isolated, never awaited by the caller.
	s.emitAudit(ctx, f, decision)

	s.metrics.IncrementOutcome(string(out.Status), string(out.RejectionReason))
	s.metrics.ObserveDecideLatency(time.Since(start))
	s.logger.InfoContext(ctx, "decision complete",
		"correlation_id", f.CorrelationID,
		"rule_path", req.RulePath,
		"rule_version", out.RuleVersion,
		"status", out.Status,
		"reason", out.RejectionReason,
		"stage", StageComplete,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return decision, nil
}

// emitAudit builds the audit record and emits it in an isolated goroutine.
// The guard is strict: a panicking or failing sink produces a log line and a
// metric, nothing else. The context is detached so the caller returning does
// not cancel an in-flight emission.
func (s *Service) emitAudit(ctx context.Context, f *facts.Facts, d *Decision) {
	rec := audit.Record{
		CorrelationID:     f.CorrelationID,
		RequestTimestamp:  f.RequestTimestamp,
		RulePath:          d.RulePath,
		RuleVersion:       d.Output.RuleVersion,
		FactSnapshot:      f.AsMap(),
		FactSchemaVersion: facts.SchemaVersion,
		Status:            string(d.Output.Status),
		RejectionReason:   string(d.Output.RejectionReason),
		ExecutionMicros:   d.Duration.Microseconds(),
		EvaluatedAt:       d.Output.EvaluatedAt,
	}

	emitCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.metrics.IncrementAuditFailure()
				s.logger.Error("audit sink panicked",
					"correlation_id", rec.CorrelationID,
					"panic", r,
				)
			}
		}()
		emitCtx, cancel := context.WithTimeout(emitCtx, auditEmitTimeout)
		defer cancel()
		if err := s.sink.Emit(emitCtx, rec); err != nil {
			s.metrics.IncrementAuditFailure()
			s.logger.Error("audit emission failed",
				"correlation_id", rec.CorrelationID,
				"error", err,
			)
		}
	}()
}

// fail records and classifies a stage failure. Every returned error carries
// the correlation identifier, even when it was generated mid-request.
func (s *Service) fail(ctx context.Context, stage Stage, correlationID string, code dErrors.Code, message string, cause error) error {
	s.metrics.IncrementStageFailure(string(stage))
	s.logger.ErrorContext(ctx, "decision request failed",
		"correlation_id", correlationID,
		"stage", stage,
		"error", cause,
	)
	return dErrors.Wrap(code, message+" (correlation_id="+correlationID+")", cause)
}

// resolveCorrelationID picks the request's correlation identifier before any
// stage runs so that failures in every stage are traceable. A caller-supplied
// identifier wins; otherwise the transport request ID is reused when it is
// already a canonical UUID; otherwise a fresh one is generated.
func (s *Service) resolveCorrelationID(ctx context.Context, supplied string) string {
	if supplied != "" {
		return supplied
	}
	if reqID := requestcontext.RequestID(ctx); len(reqID) == 36 {
		if _, err := uuid.Parse(reqID); err == nil {
			return strings.ToLower(reqID)
		}
	}
	return uuid.NewString()
}

func classifyRuleError(path string, err error) (dErrors.Code, string) {
	if errors.Is(err, rules.ErrNotFound) {
		return dErrors.CodeNotFound, "rule not found: " + path
	}
	var formatErr *rules.FormatError
	if errors.As(err, &formatErr) {
		return dErrors.CodeInternal, "rule definition is corrupt"
	}
	return dErrors.CodeInternal, "rule load failed"
}
