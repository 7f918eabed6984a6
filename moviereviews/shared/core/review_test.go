package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_SortReviewsByRecency_NewestFirst(t *testing.T) {
	// arrange
	reviews := []core.Review{
		{ID: "a", CreatedAt: 100},
		{ID: "b", CreatedAt: 300},
		{ID: "c", CreatedAt: 200},
	}

	// act
	core.SortReviewsByRecency(reviews)

	// assert
	assert.Equal(t, []int64{300, 200, 100}, createdAts(reviews))
}

func Test_SortReviewsByRecency_TiesBrokenByIDDescending(t *testing.T) {
	// arrange
	reviews := []core.Review{
		{ID: "0190a", CreatedAt: 500},
		{ID: "0190c", CreatedAt: 500},
		{ID: "0190b", CreatedAt: 500},
		{ID: "0190z", CreatedAt: 400},
	}

	// act
	core.SortReviewsByRecency(reviews)

	// assert
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"0190c", "0190b", "0190a", "0190z"}, ids)
}

func Test_BuildReviewDraft_CapturesSnapshots(t *testing.T) {
	// arrange
	movie := core.MovieSnapshot{ID: 603, Title: "The Matrix"}
	author := core.Viewer{ID: "user-1", AvatarURL: "https://img/1.png"}

	// act
	draft := core.BuildReviewDraft(movie, author, "  Great film \n", 8, 1_700_000_000_000)
	review := draft.ToReview("r-1")

	// assert
	assert.Equal(t, "Great film", draft.Content)
	assert.Equal(t, core.AnonymousDisplayName, draft.AuthorDisplayName)
	assert.Equal(t, "The Matrix", review.MovieTitle)
	assert.Equal(t, core.MovieID(603), review.MovieID)
	assert.Equal(t, "r-1", review.ID)
	assert.Empty(t, review.Reactions)
	assert.True(t, review.ReactionOf("user-2").IsNone())
}

func Test_ParseMovieID(t *testing.T) {
	// act
	id, err := core.ParseMovieID("603")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "603", id.String())

	for _, input := range []string{"", "0", "-1", "abc"} {
		_, err = core.ParseMovieID(input)
		assert.ErrorIs(t, err, core.ErrValidationFailed)
	}
}

func Test_Viewer_RequireAuthenticated(t *testing.T) {
	assert.ErrorIs(t, core.Anonymous().RequireAuthenticated(), core.ErrAuthenticationRequired)
	assert.NoError(t, core.Viewer{ID: "user-1"}.RequireAuthenticated())
}

func Test_DecisionResult(t *testing.T) {
	idempotent := core.IdempotentDecision()
	success := core.SuccessDecision(core.BuildReactionCleared(603, "r-1", "user-1", fixedTime()))

	assert.True(t, idempotent.IsIdempotent())
	assert.False(t, idempotent.HasEventToAppend())
	assert.False(t, success.IsIdempotent())
	assert.True(t, success.HasEventToAppend())
	assert.Equal(t, core.ReactionClearedEventType, success.Event.IsEventType())
}

func createdAts(reviews []core.Review) []int64 {
	out := make([]int64, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.CreatedAt)
	}

	return out
}

func Test_Review_Validate(t *testing.T) {
	valid := core.Review{ID: "r-1", AuthorID: "u-1", Content: "Whoa.", Rating: 8, CreatedAt: 1}

	testCases := []struct {
		description string
		mutate      func(r *core.Review)
		expected    error
	}{
		{description: "valid", mutate: func(*core.Review) {}},
		{description: "no author", mutate: func(r *core.Review) { r.AuthorID = "" }, expected: core.ErrReviewWithoutAuthor},
		{description: "blank content", mutate: func(r *core.Review) { r.Content = " \n " }, expected: core.ErrReviewWithoutContent},
		{description: "rating zero", mutate: func(r *core.Review) { r.Rating = 0 }, expected: core.ErrReviewRatingOutOfRange},
		{description: "rating eleven", mutate: func(r *core.Review) { r.Rating = 11 }, expected: core.ErrReviewRatingOutOfRange},
		{description: "no createdAt", mutate: func(r *core.Review) { r.CreatedAt = 0 }, expected: core.ErrReviewWithoutCreatedAt},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			review := valid
			tc.mutate(&review)

			// act
			err := review.Validate()

			// assert
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func Test_ReviewWritten_Draft_Restores_The_Written_Review(t *testing.T) {
	// arrange
	draft := core.BuildReviewDraft(
		core.MovieSnapshot{ID: 603, Title: "The Matrix"},
		core.Viewer{ID: "u-1", DisplayName: "neo", AvatarURL: "https://img/neo.png"},
		"  Whoa.  ",
		9,
		100,
	)
	written := core.BuildReviewWritten("r-1", draft, time.Now())
	unnamed := written
	unnamed.AuthorDisplayName = ""
	unnamed.Content = " Still whoa. "

	// act
	restored := written.Draft()
	restoredUnnamed := unnamed.Draft()

	// assert
	assert.Equal(t, draft, restored)
	assert.Equal(t, core.AnonymousDisplayName, restoredUnnamed.AuthorDisplayName)
	assert.Equal(t, "Still whoa.", restoredUnnamed.Content)
	assert.Equal(t, "r-1", restored.ToReview("r-1").ID)
}
