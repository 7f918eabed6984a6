package publicreviews_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/eventstore/memoryengine"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/publicreviews"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore/esbackend"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
	"github.com/AntonStoeckl/reviewfeed/testutil/helper"
)

func Test_QueryHandler_Handle_Orders_Across_Movies_Newest_First(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	handler := publicreviews.NewQueryHandler(store)

	// arrange
	givenEvents(ctx, t, store,
		givenReviewWritten(t, "r1", 603, 100),
		givenReviewWritten(t, "r2", 604, 300),
		givenReviewWritten(t, "r3", 603, 200),
	)

	// act
	result, err := handler.Handle(ctx, publicreviews.BuildQuery(core.Anonymous(), 0))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, []int64{300, 200, 100}, createdAts(result))
	assert.Equal(t, core.MovieID(604), result.Entries[0].Review.MovieID)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, uint(3), result.GetSequenceNumber())
}

func Test_QueryHandler_Handle_Applies_Limit(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	handler := publicreviews.NewQueryHandler(store)

	// arrange
	givenEvents(ctx, t, store,
		givenReviewWritten(t, "r1", 603, 100),
		givenReviewWritten(t, "r2", 604, 300),
		givenReviewWritten(t, "r3", 603, 200),
	)

	// act
	result, err := handler.Handle(ctx, publicreviews.BuildQuery(core.Anonymous(), 2))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []int64{300, 200}, createdAts(result))
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 3, result.Total)
}

func Test_QueryHandler_Handle_Summarizes_Reactions_For_Viewer(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	handler := publicreviews.NewQueryHandler(store)
	now := time.Now()

	// arrange
	givenEvents(ctx, t, store,
		givenReviewWritten(t, "r1", 603, 100),
		core.BuildReactionSet(603, "r1", "viewer-1", core.Surprised, now),
		core.BuildReactionSet(603, "r1", "viewer-2", core.Heart, now),
		core.BuildReactionSet(603, "r1", "viewer-1", core.Heart, now),
		core.BuildReactionSet(603, "r1", "viewer-3", core.Smile, now),
		core.BuildReactionCleared(603, "r1", "viewer-3", now),
		core.BuildReactionSet(603, "unknown-review", "viewer-3", core.Smile, now),
	)

	// act
	result, err := handler.Handle(ctx, publicreviews.BuildQuery(core.Viewer{ID: "viewer-1"}, 0))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	summary := result.Entries[0].Summary
	assert.Equal(t, 2, summary.CountOf(core.Heart))
	assert.Equal(t, 0, summary.CountOf(core.Surprised))
	assert.Equal(t, 0, summary.CountOf(core.Smile))
	assert.Equal(t, 2, summary.Total())
	assert.Equal(t, core.Heart, summary.ViewerReaction)
}

func Test_QueryHandler_Handle_Rejects_Negative_Limit(t *testing.T) {
	// setup
	handler := publicreviews.NewQueryHandler(memoryengine.NewEventStore())

	// act
	_, err := handler.Handle(context.Background(), publicreviews.BuildQuery(core.Anonymous(), -1))

	// assert
	validationErr, ok := core.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, core.FieldLimit, validationErr.Field)
}

func Test_QueryHandler_Handle_Empty_Store(t *testing.T) {
	// setup
	handler := publicreviews.NewQueryHandler(memoryengine.NewEventStore())

	// act
	result, err := handler.Handle(context.Background(), publicreviews.BuildQuery(core.Anonymous(), 10))

	// assert
	require.NoError(t, err)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
}

func Test_QueryHandler_Handle_Skips_Records_The_Movie_Feed_Skips(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	logger, logSpy := helper.NewSpyLogger()
	handler := publicreviews.NewQueryHandler(store, publicreviews.WithContextualLogger(logger))

	// arrange
	valid := givenReviewWritten(t, "r-valid", 603, 100)
	outOfRange := givenReviewWritten(t, "r-rating", 603, 200)
	outOfRange.Rating = 42
	blank := givenReviewWritten(t, "r-blank", 603, 300)
	blank.Content = "   "
	givenEvents(ctx, t, store, valid, outOfRange, blank)
	givenRawEvent(ctx, t, store, core.ReviewWrittenEventType, `{"MovieID":603,"ReviewID":"r-broken","Rating":"ten"}`)
	givenEvents(ctx, t, store,
		core.BuildReactionSet(603, "r-valid", "viewer-1", core.Heart, time.Now()),
		core.BuildReactionSet(603, "r-rating", "viewer-1", core.Smile, time.Now()),
	)

	// act
	result, err := handler.Handle(ctx, publicreviews.BuildQuery(core.Viewer{ID: "viewer-1"}, 0))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "r-valid", result.Entries[0].Review.ID)
	assert.Equal(t, core.Heart, result.Entries[0].Summary.ViewerReaction)
	assert.Equal(t, 1, result.Total)
	assert.ErrorIs(t, result.Skipped["r-rating"], core.ErrReviewRatingOutOfRange)
	assert.ErrorIs(t, result.Skipped["r-blank"], core.ErrReviewWithoutContent)

	assert.True(t, logSpy.HasLogWithMessage(slog.LevelWarn, "publicreviews: skipped undecodable event").
		WithAttrValue("event_type", core.ReviewWrittenEventType).Assert())
	assert.True(t, logSpy.HasLogWithMessage(slog.LevelWarn, "publicreviews: skipped malformed review").
		WithAttr("review_id").Assert())

	movieFeed := givenMovieFeedReviews(ctx, t, store, 603)
	require.Len(t, movieFeed, 1)
	assert.Equal(t, movieFeed[0].ID, result.Entries[0].Review.ID)
}

func Test_QueryHandler_Handle_Shows_Anonymous_Author_Name(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	handler := publicreviews.NewQueryHandler(store)

	// arrange
	unnamed := givenReviewWritten(t, "r1", 603, 100)
	unnamed.AuthorDisplayName = ""
	givenEvents(ctx, t, store, unnamed)

	// act
	result, err := handler.Handle(ctx, publicreviews.BuildQuery(core.Anonymous(), 0))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, core.AnonymousDisplayName, result.Entries[0].Review.AuthorDisplayName)
}

func givenRawEvent(ctx context.Context, t *testing.T, store *memoryengine.EventStore, eventType string, payload string) {
	t.Helper()

	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, time.Now(), []byte(payload))
	require.NoError(t, err)
	require.NoError(t, store.AppendUnconditionally(ctx, storableEvent))
}

func givenMovieFeedReviews(ctx context.Context, t *testing.T, store *memoryengine.EventStore, movieID core.MovieID) []core.Review {
	t.Helper()

	backend, err := esbackend.New(store, store)
	require.NoError(t, err)
	adapter, err := reviewstore.NewAdapter(backend)
	require.NoError(t, err)

	var reviews []core.Review
	sub, err := adapter.Subscribe(ctx, movieID, func(current []core.Review) {
		if reviews == nil {
			reviews = current
		}
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	return reviews
}

func givenReviewWritten(t *testing.T, reviewID core.ReviewID, movieID core.MovieID, createdAt int64) core.ReviewWritten {
	t.Helper()

	draft := core.BuildReviewDraft(
		core.MovieSnapshot{ID: movieID, Title: "movie " + movieID.String()},
		core.Viewer{ID: "author-1", DisplayName: "morpheus"},
		"There is no spoon.",
		8,
		createdAt,
	)

	return core.BuildReviewWritten(reviewID, draft, time.Now())
}

func givenEvents(ctx context.Context, t *testing.T, store *memoryengine.EventStore, events ...core.DomainEvent) {
	t.Helper()

	for _, event := range events {
		storableEvent, err := shell.StorableEventFrom(event, shell.NewEventMetadataFor("test"))
		require.NoError(t, err)
		require.NoError(t, store.AppendUnconditionally(ctx, storableEvent))
	}
}

func createdAts(result publicreviews.PublicReviews) []int64 {
	out := make([]int64, 0, len(result.Entries))
	for _, entry := range result.Entries {
		out = append(out, entry.Review.CreatedAt)
	}

	return out
}
