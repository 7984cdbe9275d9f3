package events

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/mergington/activities/internal/domain"
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresAuditSink records roster events in an append-only audit table.
// Rows are never read by the service.
type PostgresAuditSink struct {
	db    *sql.DB
	table string
}

// NewPostgresAuditSink creates an audit sink writing to table. The table
// name is interpolated into SQL, so it must be a plain identifier.
func NewPostgresAuditSink(db *sql.DB, table string) (*PostgresAuditSink, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid audit table name %q", table)
	}
	return &PostgresAuditSink{db: db, table: table}, nil
}

// Name implements Sink.
func (s *PostgresAuditSink) Name() string { return "postgres" }

// EnsureSchema creates the audit table when it does not exist.
func (s *PostgresAuditSink) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                UUID PRIMARY KEY,
			event_type        TEXT NOT NULL,
			activity          TEXT NOT NULL,
			email             TEXT NOT NULL,
			participant_count INTEGER NOT NULL,
			occurred_at       TIMESTAMPTZ NOT NULL
		)`, s.table))
	if err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

// Write implements Sink. Replaying an event with the same ID is a no-op.
func (s *PostgresAuditSink) Write(ctx context.Context, evt domain.RosterEvent) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, event_type, activity, email, participant_count, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, s.table), evt.ID, string(evt.Type), evt.Activity, evt.Email, evt.ParticipantCount, evt.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert roster event: %w", err)
	}
	return nil
}
