package togglereaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/command/togglereaction"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_Decide(t *testing.T) {
	testCases := []struct {
		description string
		current     core.ReactionSymbol
		symbol      core.ReactionSymbol
		wantType    string
		wantResult  core.ReactionSymbol
	}{
		{description: "no reaction yet sets", current: core.NoReaction, symbol: core.Heart, wantType: core.ReactionSetEventType, wantResult: core.Heart},
		{description: "same symbol clears", current: core.Heart, symbol: core.Heart, wantType: core.ReactionClearedEventType, wantResult: core.NoReaction},
		{description: "other symbol replaces", current: core.Surprised, symbol: core.Heart, wantType: core.ReactionSetEventType, wantResult: core.Heart},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			command := togglereaction.BuildCommand(givenViewer(t), 603, "review-1", tc.symbol, time.Now())

			// act
			result := togglereaction.Decide(tc.current, command)

			// assert
			require.True(t, result.HasEventToAppend())
			assert.False(t, result.IsIdempotent())
			assert.Equal(t, tc.wantType, result.Event.IsEventType())
			assert.Equal(t, tc.wantResult, togglereaction.ResultingReaction(result))
		})
	}
}

func Test_Decide_Replacement_Is_A_Single_Set(t *testing.T) {
	// arrange
	command := togglereaction.BuildCommand(givenViewer(t), 603, "review-1", core.Heart, time.Now())

	// act
	result := togglereaction.Decide(core.Surprised, command)

	// assert
	set, ok := result.Event.(core.ReactionSet)
	require.True(t, ok)
	assert.Equal(t, core.Heart, set.Symbol)
	assert.Equal(t, core.UserID("viewer-1"), set.UserID)
	assert.Equal(t, core.ReviewID("review-1"), set.ReviewID)
	assert.Equal(t, core.MovieID(603), set.MovieID)
}

func givenViewer(t *testing.T) core.Viewer {
	t.Helper()

	return core.Viewer{ID: "viewer-1", DisplayName: "neo"}
}
