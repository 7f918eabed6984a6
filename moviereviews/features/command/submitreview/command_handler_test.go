package submitreview_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/submitreview"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

type reviewWriterSpy struct {
	drafts []core.ReviewDraft
	err    error
}

func (s *reviewWriterSpy) PushReview(_ context.Context, draft core.ReviewDraft) (core.ReviewID, error) {
	if s.err != nil {
		return "", s.err
	}

	s.drafts = append(s.drafts, draft)

	return "review-1", nil
}

func Test_CommandHandler_Handle_Success_Returns_Review_ID(t *testing.T) {
	// setup
	writer := &reviewWriterSpy{}
	handler := submitreview.NewCommandHandler(writer)
	createdAt := time.UnixMilli(1700000000000)

	// act
	result, err := handler.Handle(context.Background(),
		submitreview.BuildCommand(givenMovie(t), givenViewer(t), "  Mind-bending.  ", 9, createdAt))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "review-1", result.ResourceID)
	require.Len(t, writer.drafts, 1)

	draft := writer.drafts[0]
	assert.Equal(t, "Mind-bending.", draft.Content)
	assert.Equal(t, core.Rating(9), draft.Rating)
	assert.Equal(t, int64(1700000000000), draft.CreatedAt)
	assert.Equal(t, core.MovieID(603), draft.MovieID)
	assert.Equal(t, "The Matrix", draft.MovieTitle)
	assert.Equal(t, core.UserID("viewer-1"), draft.AuthorID)
	assert.Equal(t, "trinity", draft.AuthorDisplayName)
	assert.Equal(t, "https://img/trinity.png", draft.AuthorAvatarURL)
}

func Test_CommandHandler_Handle_Validation(t *testing.T) {
	testCases := []struct {
		description string
		content     string
		rating      int
		movieID     core.MovieID
		movieTitle  string
		wantField   string
	}{
		{description: "empty content", content: "", rating: 5, movieID: 603, movieTitle: "The Matrix", wantField: core.FieldContent},
		{description: "whitespace content", content: " \n\t ", rating: 5, movieID: 603, movieTitle: "The Matrix", wantField: core.FieldContent},
		{description: "rating zero", content: "ok", rating: 0, movieID: 603, movieTitle: "The Matrix", wantField: core.FieldRating},
		{description: "rating eleven", content: "ok", rating: 11, movieID: 603, movieTitle: "The Matrix", wantField: core.FieldRating},
		{description: "content reported before rating", content: "", rating: 0, movieID: 603, movieTitle: "The Matrix", wantField: core.FieldContent},
		{description: "missing movie", content: "ok", rating: 5, movieID: 0, movieTitle: "The Matrix", wantField: core.FieldMovieID},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// setup
			writer := &reviewWriterSpy{}
			handler := submitreview.NewCommandHandler(writer)
			movie := givenMovie(t)
			movie.ID = tc.movieID
			movie.Title = tc.movieTitle

			// act
			_, err := handler.Handle(context.Background(),
				submitreview.BuildCommand(movie, givenViewer(t), tc.content, tc.rating, time.Now()))

			// assert
			assert.ErrorIs(t, err, core.ErrValidationFailed)
			validationErr, ok := core.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantField, validationErr.Field)
			assert.Empty(t, writer.drafts)
		})
	}
}

func Test_CommandHandler_Handle_Boundary_Ratings_Are_Accepted(t *testing.T) {
	for _, rating := range []int{core.MinRating, core.MaxRating} {
		// setup
		handler := submitreview.NewCommandHandler(&reviewWriterSpy{})

		// act
		_, err := handler.Handle(context.Background(),
			submitreview.BuildCommand(givenMovie(t), givenViewer(t), "ok", rating, time.Now()))

		// assert
		assert.NoError(t, err, "rating %d", rating)
	}
}

func Test_CommandHandler_Handle_Movie_Without_Title_Is_Accepted(t *testing.T) {
	// setup
	writer := &reviewWriterSpy{}
	handler := submitreview.NewCommandHandler(writer)
	movie := givenMovie(t)
	movie.Title = ""

	// act
	_, err := handler.Handle(context.Background(),
		submitreview.BuildCommand(movie, givenViewer(t), "ok", 5, time.Now()))

	// assert
	require.NoError(t, err)
	require.Len(t, writer.drafts, 1)
	assert.Empty(t, writer.drafts[0].MovieTitle)
}

func Test_CommandHandler_Handle_Validation_Precedes_Authentication(t *testing.T) {
	// setup
	writer := &reviewWriterSpy{}
	handler := submitreview.NewCommandHandler(writer)

	// act
	_, invalidErr := handler.Handle(context.Background(),
		submitreview.BuildCommand(givenMovie(t), core.Anonymous(), "", 5, time.Now()))
	_, anonymousErr := handler.Handle(context.Background(),
		submitreview.BuildCommand(givenMovie(t), core.Anonymous(), "ok", 5, time.Now()))

	// assert
	assert.ErrorIs(t, invalidErr, core.ErrValidationFailed)
	assert.ErrorIs(t, anonymousErr, core.ErrAuthenticationRequired)
	assert.Empty(t, writer.drafts)
}

func Test_CommandHandler_Handle_Surfaces_Store_Failure(t *testing.T) {
	// setup
	storeErr := errors.Join(core.ErrStoreUnavailable, errors.New("connection refused"))
	handler := submitreview.NewCommandHandler(&reviewWriterSpy{err: storeErr})

	// act
	result, err := handler.Handle(context.Background(),
		submitreview.BuildCommand(givenMovie(t), givenViewer(t), "ok", 5, time.Now()))

	// assert
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
	assert.Empty(t, result.ResourceID)
}

func Test_Command_Anonymous_Display_Name_Fallback(t *testing.T) {
	// arrange
	viewer := core.Viewer{ID: "viewer-2"}

	// act
	draft := submitreview.BuildCommand(givenMovie(t), viewer, "ok", 5, time.Now()).Draft()

	// assert
	assert.Equal(t, core.AnonymousDisplayName, draft.AuthorDisplayName)
}

func givenMovie(t *testing.T) core.MovieSnapshot {
	t.Helper()

	return core.MovieSnapshot{ID: 603, Title: "The Matrix"}
}

func givenViewer(t *testing.T) core.Viewer {
	t.Helper()

	return core.Viewer{ID: "viewer-1", DisplayName: "trinity", AvatarURL: "https://img/trinity.png"}
}
