//go:build integration

package postgresengine_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/eventstore/postgresengine"
	"github.com/AntonStoeckl/reviewfeed/testutil/containers"
)

func givenPostgres(t *testing.T) string {
	t.Helper()
	containers.SkipIfNoDocker(t)

	container, err := containers.NewPostgresContainer(context.Background())
	require.NoError(t, err)
	containers.Cleanup(t, container)

	return container.DSN
}

func givenEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now().UTC().Truncate(time.Microsecond), []byte(payload))
	require.NoError(t, err)

	return event
}

func Test_Integration_AllAdapters_AppendQueryAndConflict(t *testing.T) {
	// setup
	dsn := givenPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	factories := map[string]func(table string) (*postgresengine.EventStore, error){
		"pgx": func(table string) (*postgresengine.EventStore, error) {
			return postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithTableName(table))
		},
		"sql": func(table string) (*postgresengine.EventStore, error) {
			return postgresengine.NewEventStoreFromSQLDB(sqlDB, postgresengine.WithTableName(table))
		},
		"sqlx": func(table string) (*postgresengine.EventStore, error) {
			return postgresengine.NewEventStoreFromSQLX(sqlxDB, postgresengine.WithTableName(table))
		},
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			es, createErr := factory("events_" + name)
			require.NoError(t, createErr)
			require.NoError(t, es.EnsureSchema(ctx))
			require.NoError(t, es.EnsureSchema(ctx), "schema creation must be idempotent")

			filter := eventstore.BuildEventFilter().
				Matching().
				AnyEventTypeOf("MovieAddedToWatchlist", "MovieRemovedFromWatchlist").
				AndAllPredicatesOf(eventstore.P("UserID", "u-1"), eventstore.PInt("MovieID", 603)).
				Finalize()

			// arrange
			require.NoError(t, es.AppendUnconditionally(ctx, givenEvent(t, "MovieAddedToWatchlist", `{"UserID":"u-2","MovieID":603}`)))
			_, maxSeq, queryErr := es.Query(ctx, filter)
			require.NoError(t, queryErr)
			assert.Equal(t, uint(0), maxSeq)

			// act
			appendErr := es.Append(ctx, filter, maxSeq, givenEvent(t, "MovieAddedToWatchlist", `{"UserID":"u-1","MovieID":603}`))
			conflictErr := es.Append(ctx, filter, maxSeq, givenEvent(t, "MovieRemovedFromWatchlist", `{"UserID":"u-1","MovieID":603}`))

			// assert
			require.NoError(t, appendErr)
			assert.ErrorIs(t, conflictErr, eventstore.ErrConcurrencyConflict)

			events, newMaxSeq, queryErr := es.Query(ctx, filter)
			require.NoError(t, queryErr)
			require.Len(t, events, 1)
			assert.Equal(t, events[0].SequenceNumber, newMaxSeq)
			assert.JSONEq(t, `{"UserID":"u-1","MovieID":603}`, string(events[0].PayloadJSON))

			latest, latestErr := es.LatestSequenceNumber(ctx)
			require.NoError(t, latestErr)
			assert.Equal(t, uint(2), latest)

			tail, _, tailErr := es.Query(ctx, eventstore.BuildEventFilter().MatchingAnyEvent().WithSequenceNumberHigherThan(1))
			require.NoError(t, tailErr)
			assert.Len(t, tail, 1)
		})
	}
}

func Test_Integration_Listeners_SignalOnAppend(t *testing.T) {
	// setup
	dsn := givenPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	es, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithNotifyChannel("reviewfeed_appended"))
	require.NoError(t, err)
	require.NoError(t, es.EnsureSchema(ctx))

	pgxListener, err := postgresengine.NewPGXListener(pool, es.NotifyChannel(), nil)
	require.NoError(t, err)
	pqListener, err := postgresengine.NewPQListener(dsn, es.NotifyChannel(), nil)
	require.NoError(t, err)

	for name, listener := range map[string]eventstore.AppendListener{"pgx": pgxListener, "pq": pqListener} {
		t.Run(name, func(t *testing.T) {
			listenCtx, stopListening := context.WithCancel(ctx)
			defer stopListening()

			signals, listenErr := listener.Listen(listenCtx)
			require.NoError(t, listenErr)

			// act
			require.NoError(t, es.AppendUnconditionally(ctx, givenEvent(t, "ReviewWritten", `{"MovieID":1}`)))

			// assert
			select {
			case <-signals:
			case <-time.After(10 * time.Second):
				t.Fatal("no signal received")
			}
		})
	}
}
