package audit

import (
	"context"
	"time"
)

// Publisher captures structured audit records. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

// NewPublisher creates a store-backed audit sink.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit appends the record, stamping the evaluation time if unset.
func (p *Publisher) Emit(ctx context.Context, rec Record) error {
	if rec.EvaluatedAt.IsZero() {
		rec.EvaluatedAt = time.Now().UTC()
	}
	return p.store.Append(ctx, rec)
}

// List returns the records for a correlation identifier.
func (p *Publisher) List(ctx context.Context, correlationID string) ([]Record, error) {
	return p.store.ListByCorrelation(ctx, correlationID)
}
