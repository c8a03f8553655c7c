package audit

import (
	"context"
	"log/slog"
)

// Buffer is a Sink that decouples emitters from the persistence path through
// a bounded channel. Emit never blocks: when the buffer is full the record is
// dropped and counted, because audit must never stall a decision.
type Buffer struct {
	inbox  chan Record
	logger *slog.Logger
}

// NewBuffer creates a buffered sink with the given capacity.
func NewBuffer(capacity int, logger *slog.Logger) *Buffer {
	return &Buffer{
		inbox:  make(chan Record, capacity),
		logger: logger,
	}
}

func (b *Buffer) Emit(ctx context.Context, rec Record) error {
	select {
	case b.inbox <- rec:
		return nil
	default:
		b.logger.WarnContext(ctx, "audit buffer full, record dropped",
			"correlation_id", rec.CorrelationID,
		)
		return nil
	}
}

// Inbox exposes the channel for a Worker to drain.
func (b *Buffer) Inbox() <-chan Record {
	return b.inbox
}

// Worker consumes audit records from a channel and hands them to a sink. It
// keeps background processing testable without wiring queue implementations.
type Worker struct {
	sink   Sink
	inbox  <-chan Record
	logger *slog.Logger
}

// NewWorker creates a worker draining inbox into sink.
func NewWorker(sink Sink, inbox <-chan Record, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is canceled. Sink failures are
// logged and do not stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec := <-w.inbox:
			if err := w.sink.Emit(ctx, rec); err != nil {
				w.logger.ErrorContext(ctx, "audit record emission failed",
					"correlation_id", rec.CorrelationID,
					"error", err,
				)
			}
		}
	}
}
