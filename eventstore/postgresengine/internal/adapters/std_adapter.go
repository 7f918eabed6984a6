package adapters

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

// stdConn is what *sql.DB and *sqlx.DB have in common.
type stdConn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StdAdapter implements DBAdapter for database/sql handles, typically opened with lib/pq.
type StdAdapter struct {
	primary stdConn
	replica stdConn
}

// NewSQLAdapter wraps a *sql.DB.
func NewSQLAdapter(db *sql.DB) *StdAdapter {
	return &StdAdapter{primary: db}
}

// NewSQLXAdapter wraps a *sqlx.DB.
func NewSQLXAdapter(db *sqlx.DB) *StdAdapter {
	return &StdAdapter{primary: db}
}

// WithReplica returns a copy that sends eventually consistent queries to replica.
func (a *StdAdapter) WithReplica(replica *sql.DB) *StdAdapter {
	return &StdAdapter{primary: a.primary, replica: replica}
}

// Query picks the replica only for eventually consistent reads.
func (a *StdAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	conn := a.primary
	if a.replica != nil && eventstore.GetConsistencyLevel(ctx) == eventstore.EventualConsistency {
		conn = a.replica
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Exec always hits the primary.
func (a *StdAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	return a.primary.ExecContext(ctx, query, args...)
}
