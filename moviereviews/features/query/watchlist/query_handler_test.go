package watchlist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore/memoryengine"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/addtowatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removefromwatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/watchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_QueryHandler_Handle_Returns_Current_Watchlist_Newest_First(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	add := addtowatchlist.NewCommandHandler(store)
	remove := removefromwatchlist.NewCommandHandler(store)
	handler := watchlist.NewQueryHandler(store)
	viewer := givenViewer(t, "viewer-1")
	fakeClock := time.Unix(1700000000, 0).UTC()

	// arrange
	givenAdded(ctx, t, add, viewer, core.MovieSnapshot{ID: 603, Title: "The Matrix"}, fakeClock)
	givenAdded(ctx, t, add, viewer, core.MovieSnapshot{ID: 604, Title: "The Matrix Reloaded"}, fakeClock.Add(time.Minute))
	givenAdded(ctx, t, add, viewer, core.MovieSnapshot{ID: 605, Title: "The Matrix Revolutions"}, fakeClock.Add(2*time.Minute))
	givenAdded(ctx, t, add, givenViewer(t, "viewer-2"), core.MovieSnapshot{ID: 606, Title: "Other"}, fakeClock)

	_, err := remove.Handle(ctx, removefromwatchlist.BuildCommand(viewer, 604, fakeClock.Add(3*time.Minute)))
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, watchlist.BuildQuery(viewer))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Movies, 2)
	assert.Equal(t, core.MovieID(605), result.Movies[0].MovieID)
	assert.Equal(t, "The Matrix Revolutions", result.Movies[0].Title)
	assert.Equal(t, core.MovieID(603), result.Movies[1].MovieID)
	assert.Equal(t, uint(5), result.GetSequenceNumber())
}

func Test_QueryHandler_Handle_Readding_Moves_Movie_To_Front(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	add := addtowatchlist.NewCommandHandler(store)
	remove := removefromwatchlist.NewCommandHandler(store)
	handler := watchlist.NewQueryHandler(store)
	viewer := givenViewer(t, "viewer-1")
	fakeClock := time.Unix(1700000000, 0).UTC()
	matrix := core.MovieSnapshot{ID: 603, Title: "The Matrix"}

	// arrange
	givenAdded(ctx, t, add, viewer, matrix, fakeClock)
	givenAdded(ctx, t, add, viewer, core.MovieSnapshot{ID: 604, Title: "The Matrix Reloaded"}, fakeClock.Add(time.Minute))
	_, err := remove.Handle(ctx, removefromwatchlist.BuildCommand(viewer, 603, fakeClock.Add(2*time.Minute)))
	require.NoError(t, err)
	givenAdded(ctx, t, add, viewer, matrix, fakeClock.Add(3*time.Minute))

	// act
	result, err := handler.Handle(ctx, watchlist.BuildQuery(viewer))

	// assert
	require.NoError(t, err)
	require.Len(t, result.Movies, 2)
	assert.Equal(t, core.MovieID(603), result.Movies[0].MovieID)
	assert.Equal(t, fakeClock.Add(3*time.Minute), result.Movies[0].AddedAt)
}

func Test_QueryHandler_Handle_Empty_Watchlist(t *testing.T) {
	// setup
	handler := watchlist.NewQueryHandler(memoryengine.NewEventStore())

	// act
	result, err := handler.Handle(context.Background(), watchlist.BuildQuery(givenViewer(t, "viewer-1")))

	// assert
	require.NoError(t, err)
	assert.NotNil(t, result.Movies)
	assert.Empty(t, result.Movies)
	assert.Equal(t, 0, result.Count)
}

func Test_QueryHandler_Handle_Rejects_Anonymous_Viewer(t *testing.T) {
	// setup
	handler := watchlist.NewQueryHandler(memoryengine.NewEventStore())

	// act
	_, err := handler.Handle(context.Background(), watchlist.BuildQuery(core.Anonymous()))

	// assert
	assert.ErrorIs(t, err, core.ErrAuthenticationRequired)
}

func givenViewer(t *testing.T, id core.UserID) core.Viewer {
	t.Helper()

	return core.Viewer{ID: id, DisplayName: "viewer " + id}
}

func givenAdded(
	ctx context.Context,
	t *testing.T,
	handler addtowatchlist.CommandHandler,
	viewer core.Viewer,
	movie core.MovieSnapshot,
	at time.Time,
) {

	t.Helper()

	_, err := handler.Handle(ctx, addtowatchlist.BuildCommand(viewer, movie, at))
	require.NoError(t, err)
}
