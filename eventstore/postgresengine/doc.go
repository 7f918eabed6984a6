// Package postgresengine stores events in one PostgreSQL table with a jsonb payload column.
//
// The store runs on a pgxpool.Pool, a *sql.DB (lib/pq) or a *sqlx.DB; pgx and sql.DB handles can
// carry a replica for eventually consistent queries. Append inserts only if the filtered stream
// has not grown past the expected sequence number. EnsureSchema creates the table, the indexes and
// a trigger that sends NOTIFY on every append, which PGXListener and PQListener turn into signals.
//
//	pool, _ := pgxpool.NewWithConfig(ctx, poolConfig)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(pool,
//		postgresengine.WithTableName("events"),
//		postgresengine.WithNotifyChannel("events_appended"))
//	_ = store.EnsureSchema(ctx)
//	listener, _ := postgresengine.NewPGXListener(pool, store.NotifyChannel(), nil)
package postgresengine
