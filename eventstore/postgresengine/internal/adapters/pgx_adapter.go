package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	primary *pgxpool.Pool
	replica *pgxpool.Pool
}

// NewPGXAdapter wraps a single pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{primary: pool}
}

// NewPGXAdapterWithReplica sends eventually consistent queries to replica.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{primary: pool, replica: replica}
}

func (a *PGXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	pool := a.primary
	if a.replica != nil && eventstore.GetConsistencyLevel(ctx) == eventstore.EventualConsistency {
		pool = a.replica
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgxRows{Rows: rows}, nil
}

// Exec always hits the primary.
func (a *PGXAdapter) Exec(ctx context.Context, query string, args ...any) (DBResult, error) {
	tag, err := a.primary.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgxResult(tag), nil
}

// pgxRows adapts pgx.Rows, whose Close has no error result.
type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()

	return nil
}

type pgxResult pgconn.CommandTag

func (r pgxResult) RowsAffected() (int64, error) {
	return pgconn.CommandTag(r).RowsAffected(), nil
}
