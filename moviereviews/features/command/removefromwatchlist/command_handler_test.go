package removefromwatchlist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore/memoryengine"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/addtowatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/removefromwatchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_CommandHandler_Handle_Removes_Movie_Then_Is_Idempotent(t *testing.T) {
	// setup
	ctx := context.Background()
	store := memoryengine.NewEventStore()
	viewer := core.Viewer{ID: "viewer-1"}
	movie := core.MovieSnapshot{ID: 603, Title: "The Matrix"}
	handler := removefromwatchlist.NewCommandHandler(store)

	// arrange
	_, err := addtowatchlist.NewCommandHandler(store).Handle(ctx, addtowatchlist.BuildCommand(viewer, movie, time.Now()))
	require.NoError(t, err)

	// act
	first, firstErr := handler.Handle(ctx, removefromwatchlist.BuildCommand(viewer, movie.ID, time.Now()))
	second, secondErr := handler.Handle(ctx, removefromwatchlist.BuildCommand(viewer, movie.ID, time.Now()))

	// assert
	require.NoError(t, firstErr)
	require.NoError(t, secondErr)
	assert.False(t, first.Idempotent)
	assert.True(t, second.Idempotent)

	events, _, err := store.Query(ctx, removefromwatchlist.BuildEventFilter(viewer.ID, movie.ID))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, core.MovieRemovedFromWatchlistEventType, events[1].EventType)
}

func Test_CommandHandler_Handle_Idempotent_When_Never_Added(t *testing.T) {
	// setup
	handler := removefromwatchlist.NewCommandHandler(memoryengine.NewEventStore())

	// act
	result, err := handler.Handle(context.Background(), removefromwatchlist.BuildCommand(core.Viewer{ID: "viewer-1"}, 603, time.Now()))

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
}

func Test_CommandHandler_Handle_Rejects(t *testing.T) {
	// setup
	handler := removefromwatchlist.NewCommandHandler(memoryengine.NewEventStore())

	// act
	_, anonymousErr := handler.Handle(context.Background(), removefromwatchlist.BuildCommand(core.Anonymous(), 603, time.Now()))
	_, movieErr := handler.Handle(context.Background(), removefromwatchlist.BuildCommand(core.Viewer{ID: "viewer-1"}, 0, time.Now()))

	// assert
	assert.ErrorIs(t, anonymousErr, core.ErrAuthenticationRequired)
	assert.ErrorIs(t, movieErr, core.ErrValidationFailed)
}
