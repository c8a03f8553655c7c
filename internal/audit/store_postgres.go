package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists audit records to the audit_decisions table. Rows are
// insert-only; there is no update path by design.
//
// Expected schema:
//
//	CREATE TABLE audit_decisions (
//	    id               UUID PRIMARY KEY,
//	    correlation_id   UUID NOT NULL,
//	    rule_path        TEXT NOT NULL,
//	    rule_version     TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    rejection_reason TEXT,
//	    schema_version   TEXT NOT NULL,
//	    execution_micros BIGINT NOT NULL,
//	    fact_snapshot    JSONB NOT NULL,
//	    evaluated_at     TIMESTAMPTZ NOT NULL,
//	    created_at       TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX audit_decisions_correlation_idx ON audit_decisions (correlation_id);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	snapshot, err := json.Marshal(rec.FactSnapshot)
	if err != nil {
		return fmt.Errorf("marshal fact snapshot: %w", err)
	}

	const query = `
		INSERT INTO audit_decisions (
			id, correlation_id, rule_path, rule_version, status,
			rejection_reason, schema_version, execution_micros,
			fact_snapshot, evaluated_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		rec.CorrelationID,
		rec.RulePath,
		rec.RuleVersion,
		rec.Status,
		nullIfEmpty(rec.RejectionReason),
		rec.FactSchemaVersion,
		rec.ExecutionMicros,
		snapshot,
		rec.EvaluatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit decision: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCorrelation(ctx context.Context, correlationID string) ([]Record, error) {
	const query = `
		SELECT correlation_id, rule_path, rule_version, status,
		       COALESCE(rejection_reason, ''), schema_version,
		       execution_micros, fact_snapshot, evaluated_at
		FROM audit_decisions
		WHERE correlation_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, correlationID)
	if err != nil {
		return nil, fmt.Errorf("query audit decisions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var snapshot []byte
		if err := rows.Scan(
			&rec.CorrelationID, &rec.RulePath, &rec.RuleVersion, &rec.Status,
			&rec.RejectionReason, &rec.FactSchemaVersion,
			&rec.ExecutionMicros, &snapshot, &rec.EvaluatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit decision: %w", err)
		}
		if err := json.Unmarshal(snapshot, &rec.FactSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshal fact snapshot: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
