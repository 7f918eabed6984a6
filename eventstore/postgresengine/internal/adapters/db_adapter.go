package adapters

import "context"

// DBAdapter is the slice of a database handle the event store runs on. Queries carry positional
// placeholders ($1, $2, ...) as goqu renders them in prepared mode.
type DBAdapter interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
	Exec(ctx context.Context, query string, args ...any) (DBResult, error)
}

// DBRows is a result set; Close must be called.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult reports the rows an insert wrote. Zero rows on a conditional append means a conflict.
type DBResult interface {
	RowsAffected() (int64, error)
}
