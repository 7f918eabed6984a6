// Package adapters provides the database adapters of the PostgreSQL event store.
//
// pgxpool.Pool, sql.DB and sqlx.DB are wrapped behind the common DBAdapter interface.
// The pgx adapter can additionally route eventually consistent reads to a replica pool.
package adapters
