package memoryengine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/eventstore/memoryengine"
	"github.com/AntonStoeckl/reviewfeed/testutil/helper"
)

func givenEvent(t *testing.T, eventType string, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Unix(0, 0).UTC(), []byte(payload))
	require.NoError(t, err)

	return event
}

func givenEventsWereAppended(t *testing.T, es *memoryengine.EventStore, events ...eventstore.StorableEvent) {
	t.Helper()

	for _, event := range events {
		require.NoError(t, es.AppendUnconditionally(context.Background(), event))
	}
}

func Test_Query_MatchesEventTypesAndPredicates(t *testing.T) {
	// setup
	es := memoryengine.NewEventStore()

	// arrange
	givenEventsWereAppended(t, es,
		givenEvent(t, "ReviewWritten", `{"MovieID":603,"ReviewID":"r-1"}`),
		givenEvent(t, "ReviewWritten", `{"MovieID":604,"ReviewID":"r-2"}`),
		givenEvent(t, "ReactionSet", `{"MovieID":603,"ReviewID":"r-1","UserID":"u-1"}`),
		givenEvent(t, "ReactionSet", `{"MovieID":"603","ReviewID":"r-9","UserID":"u-1"}`),
	)

	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("ReviewWritten", "ReactionSet").
		AndAnyPredicateOf(eventstore.PInt("MovieID", 603)).
		Finalize()

	// act
	events, maxSeq, err := es.Query(context.Background(), filter)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2, "a string 603 must not match a number predicate")
	assert.Equal(t, uint(1), events[0].SequenceNumber)
	assert.Equal(t, uint(3), events[1].SequenceNumber)
	assert.Equal(t, uint(3), maxSeq)
}

func Test_Query_AllPredicatesMustMatch(t *testing.T) {
	// setup
	es := memoryengine.NewEventStore()

	// arrange
	givenEventsWereAppended(t, es,
		givenEvent(t, "ReactionSet", `{"ReviewID":"r-1","UserID":"u-1"}`),
		givenEvent(t, "ReactionSet", `{"ReviewID":"r-1","UserID":"u-2"}`),
		givenEvent(t, "ReactionSet", `{"ReviewID":"r-2","UserID":"u-1"}`),
	)

	filter := eventstore.BuildEventFilter().
		Matching().
		AllPredicatesOf(eventstore.P("ReviewID", "r-1"), eventstore.P("UserID", "u-1")).
		Finalize()

	// act
	events, _, err := es.Query(context.Background(), filter)

	// assert
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint(1), events[0].SequenceNumber)
}

func Test_Query_WithSequenceLowerBound_ReturnsOnlyNewerEvents(t *testing.T) {
	// setup
	es := memoryengine.NewEventStore()

	// arrange
	givenEventsWereAppended(t, es,
		givenEvent(t, "ReviewWritten", `{"MovieID":1}`),
		givenEvent(t, "ReviewWritten", `{"MovieID":2}`),
		givenEvent(t, "ReviewWritten", `{"MovieID":3}`),
	)

	// act
	events, maxSeq, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent().WithSequenceNumberHigherThan(2))

	// assert
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint(3), maxSeq)
}

func Test_Append_DetectsConcurrencyConflicts(t *testing.T) {
	// setup
	logger, logSpy := helper.NewSpyLogger()
	es := memoryengine.NewEventStore(memoryengine.WithContextualLogger(logger))
	ctx := context.Background()
	filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("UserID", "u-1")).Finalize()

	// arrange
	_, maxSeq, err := es.Query(ctx, filter)
	require.NoError(t, err)
	givenEventsWereAppended(t, es, givenEvent(t, "MovieAddedToWatchlist", `{"UserID":"u-2"}`))

	// act
	firstErr := es.Append(ctx, filter, maxSeq, givenEvent(t, "MovieAddedToWatchlist", `{"UserID":"u-1"}`))
	secondErr := es.Append(ctx, filter, maxSeq, givenEvent(t, "MovieAddedToWatchlist", `{"UserID":"u-1"}`))

	// assert
	assert.NoError(t, firstErr, "appends outside the stream must not conflict")
	assert.ErrorIs(t, secondErr, eventstore.ErrConcurrencyConflict)
	assert.True(t, logSpy.HasInfoLog("eventstore operation: concurrency conflict detected"))
}

func Test_Append_OnlyOneOfConcurrentWritersWins(t *testing.T) {
	// setup
	es := memoryengine.NewEventStore()
	ctx := context.Background()
	filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.PInt("MovieID", 7)).Finalize()

	// act
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := es.Append(ctx, filter, 0, givenEvent(t, "MovieAddedToWatchlist", `{"MovieID":7}`)); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// assert
	assert.Equal(t, 1, successes)
	latest, err := es.LatestSequenceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(1), latest)
}

func Test_Listen_SignalsAppendsAndClosesOnCancel(t *testing.T) {
	// setup
	es := memoryengine.NewEventStore()
	ctx, cancel := context.WithCancel(context.Background())

	signals, err := es.Listen(ctx)
	require.NoError(t, err)

	// act
	givenEventsWereAppended(t, es, givenEvent(t, "ReviewWritten", `{}`), givenEvent(t, "ReviewWritten", `{}`))

	// assert
	select {
	case <-signals:
	case <-time.After(time.Second):
		t.Fatal("expected a signal")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-signals:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func Test_Query_FailsOnCanceledContext(t *testing.T) {
	// setup
	es := memoryengine.NewEventStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, _, err := es.Query(ctx, eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	assert.ErrorIs(t, err, eventstore.ErrQueryingEventsFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
