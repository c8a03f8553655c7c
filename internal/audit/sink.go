package audit

import (
	"context"
	"errors"
)

// Sink receives decision audit records. The orchestrator invokes it
// fire-and-forget: implementations may persist, publish, or buffer, but their
// failures must never reach the decision path.
type Sink interface {
	Emit(ctx context.Context, rec Record) error
}

// Store persists audit records and supports the decision history query.
// Implementations are append-only.
type Store interface {
	Append(ctx context.Context, rec Record) error
	ListByCorrelation(ctx context.Context, correlationID string) ([]Record, error)
}

// Fanout emits each record to every sink. All sinks are attempted even when
// an earlier one fails; the errors are joined.
type Fanout []Sink

func (f Fanout) Emit(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range f {
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
