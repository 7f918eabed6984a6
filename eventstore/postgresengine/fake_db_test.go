package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/reviewfeed/eventstore/postgresengine/internal/adapters"
)

type fakeDB struct {
	queries      []string
	args         [][]any
	rows         [][]any
	queryErr     error
	execErr      error
	rowsAffected int64
}

func (db *fakeDB) Query(_ context.Context, query string, args ...any) (adapters.DBRows, error) {
	db.queries = append(db.queries, query)
	db.args = append(db.args, args)

	if db.queryErr != nil {
		return nil, db.queryErr
	}

	return &fakeRows{rows: db.rows, pos: -1}, nil
}

func (db *fakeDB) Exec(_ context.Context, query string, args ...any) (adapters.DBResult, error) {
	db.queries = append(db.queries, query)
	db.args = append(db.args, args)

	if db.execErr != nil {
		return nil, db.execErr
	}

	return fakeResult(db.rowsAffected), nil
}

func (db *fakeDB) lastQuery() string {
	return db.queries[len(db.queries)-1]
}

func (db *fakeDB) lastArgs() []any {
	return db.args[len(db.args)-1]
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++

	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}

	for i, d := range dest {
		switch target := d.(type) {
		case *string:
			*target = row[i].(string)
		case *time.Time:
			*target = row[i].(time.Time)
		case *[]byte:
			*target = row[i].([]byte)
		case *int64:
			*target = row[i].(int64)
		default:
			return errors.New("unsupported scan target")
		}
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}
