//go:build integration

package redisbackend_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore/redisbackend"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/testutil/containers"
)

const movieID = core.MovieID(603)

func Test_Redis_Adapter_Roundtrip(t *testing.T) {
	// setup
	containers.SkipIfNoDocker(t)
	ctx := context.Background()
	client := givenRedisClient(t)

	backend, err := redisbackend.New(client, redisbackend.WithKeyPrefix("it"), redisbackend.WithChannel("it:changes"))
	require.NoError(t, err)
	adapter, err := reviewstore.NewAdapter(backend)
	require.NoError(t, err)

	// arrange
	movie := core.MovieSnapshot{ID: movieID, Title: "The Matrix"}
	author := core.Viewer{ID: "author-1", DisplayName: "neo"}
	reviewIDs := make([]core.ReviewID, 0, 3)
	for _, createdAt := range []int64{100, 300, 200} {
		id, pushErr := adapter.PushReview(ctx, core.BuildReviewDraft(movie, author, "Whoa.", 8, createdAt))
		require.NoError(t, pushErr)
		reviewIDs = append(reviewIDs, id)
	}

	var mu sync.Mutex
	var latest []core.Review

	// act
	sub, err := adapter.Subscribe(ctx, movieID, func(reviews []core.Review) {
		mu.Lock()
		defer mu.Unlock()
		latest = reviews
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, adapter.WriteReaction(ctx, movieID, reviewIDs[0], "u-2", core.Surprised))
	require.NoError(t, adapter.WriteReaction(ctx, movieID, reviewIDs[0], "u-2", core.Heart))

	// assert
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(latest) == 3 && latest[0].ReactionOf("u-2") == core.Heart && len(latest[0].Reactions) == 1
	}, 5*time.Second, 10*time.Millisecond)

	symbol, err := adapter.ReadReaction(ctx, movieID, reviewIDs[0], "u-2")
	require.NoError(t, err)
	assert.Equal(t, core.Heart, symbol)
}

func Test_Redis_Run_Relays_Changes_From_Other_Writers(t *testing.T) {
	// setup
	containers.SkipIfNoDocker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := givenRedisClient(t)

	reader, err := redisbackend.New(client, redisbackend.WithKeyPrefix("relay"), redisbackend.WithChannel("relay:changes"))
	require.NoError(t, err)
	writer, err := redisbackend.New(client, redisbackend.WithKeyPrefix("relay"), redisbackend.WithChannel("relay:changes"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- reader.Run(ctx) }()

	var mu sync.Mutex
	var latest []reviewstore.RawRecord
	unsubscribe, err := reader.SubscribeReviews(ctx, movieID, func(records []reviewstore.RawRecord) {
		mu.Lock()
		defer mu.Unlock()
		latest = records
	})
	require.NoError(t, err)
	defer unsubscribe()

	// act
	assert.Eventually(t, func() bool {
		// Retried until the relay subscription is confirmed.
		_, pushErr := writer.PushReview(ctx, movieID, reviewstore.Document{
			UserID: "author-1", Content: "relayed", Rating: 6, CreatedAt: 1,
		})
		require.NoError(t, pushErr)

		mu.Lock()
		defer mu.Unlock()

		return len(latest) > 0
	}, 5*time.Second, 100*time.Millisecond)

	// assert
	cancel()
	assert.NoError(t, <-done)
}

func Test_Redis_Run_Reloads_Subscribers_Once_Subscribed(t *testing.T) {
	// setup
	containers.SkipIfNoDocker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := givenRedisClient(t)

	backend, err := redisbackend.New(client, redisbackend.WithKeyPrefix("missed"), redisbackend.WithChannel("missed:changes"))
	require.NoError(t, err)

	var mu sync.Mutex
	var latest []reviewstore.RawRecord
	unsubscribe, err := backend.SubscribeReviews(ctx, movieID, func(records []reviewstore.RawRecord) {
		mu.Lock()
		defer mu.Unlock()
		latest = records
	})
	require.NoError(t, err)
	defer unsubscribe()

	// arrange
	document, err := reviewstore.MarshalDocument(reviewstore.Document{UserID: "author-1", Content: "unannounced", Rating: 5, CreatedAt: 1})
	require.NoError(t, err)
	require.NoError(t, client.HSet(ctx, "missed:movie:603:reviews", "0001", string(document)).Err())

	// act
	done := make(chan error, 1)
	go func() { done <- backend.Run(ctx) }()

	// assert
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(latest) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func Test_Redis_Subscribe_Reads_Reviews_And_Reactions_Together(t *testing.T) {
	// setup
	containers.SkipIfNoDocker(t)
	ctx := context.Background()
	client := givenRedisClient(t)

	backend, err := redisbackend.New(client, redisbackend.WithKeyPrefix("snap"))
	require.NoError(t, err)

	// arrange
	quietID, err := backend.PushReview(ctx, movieID, reviewstore.Document{UserID: "author-1", Content: "quiet", Rating: 7, CreatedAt: 1})
	require.NoError(t, err)
	loudID, err := backend.PushReview(ctx, movieID, reviewstore.Document{UserID: "author-2", Content: "loud", Rating: 9, CreatedAt: 2})
	require.NoError(t, err)
	require.NoError(t, backend.WriteReaction(ctx, movieID, loudID, "u-3", core.Heart.Emoji()))
	require.NoError(t, backend.WriteReaction(ctx, movieID, loudID, "u-4", core.Smile.Emoji()))

	var first []reviewstore.RawRecord

	// act
	unsubscribe, err := backend.SubscribeReviews(ctx, movieID, func(records []reviewstore.RawRecord) {
		if first == nil {
			first = records
		}
	})
	require.NoError(t, err)
	defer unsubscribe()

	// assert
	require.Len(t, first, 2)
	assert.Equal(t, quietID, first[0].ID)
	assert.Equal(t, loudID, first[1].ID)

	quiet, err := reviewstore.UnmarshalDocument(first[0].Data)
	require.NoError(t, err)
	assert.Empty(t, quiet.Reactions)

	loud, err := reviewstore.UnmarshalDocument(first[1].Data)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u-3": core.Heart.Emoji(), "u-4": core.Smile.Emoji()}, loud.Reactions)
}

func givenRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	container, err := containers.NewRedisContainer(context.Background())
	require.NoError(t, err)
	containers.Cleanup(t, container)

	client := redis.NewClient(&redis.Options{Addr: container.Addr})
	t.Cleanup(func() { _ = client.Close() })

	return client
}
