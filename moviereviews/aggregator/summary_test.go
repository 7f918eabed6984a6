package aggregator_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/aggregator"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

func Test_Summarize_Empty_And_Nil_Input(t *testing.T) {
	for _, reactions := range []map[core.UserID]core.ReactionSymbol{nil, {}} {
		// act
		summary := aggregator.Summarize(reactions, "viewer")

		// assert
		assert.Empty(t, summary.CountsByType)
		assert.Equal(t, core.NoReaction, summary.ViewerReaction)
		assert.Equal(t, 0, summary.Total())
		assert.Empty(t, summary.Ordered())
		assert.False(t, summary.HasViewerReacted())
	}
}

func Test_Summarize_Counts_And_Viewer_Reaction(t *testing.T) {
	// arrange
	reactions := map[core.UserID]core.ReactionSymbol{
		"u-1": core.Heart,
		"u-2": core.Heart,
		"u-3": core.ThumbsUp,
		"u-4": core.CatFrown,
	}

	// act
	summary := aggregator.Summarize(reactions, "u-3")

	// assert
	assert.Equal(t, map[core.ReactionSymbol]int{core.Heart: 2, core.ThumbsUp: 1, core.CatFrown: 1}, summary.CountsByType)
	assert.Equal(t, core.ThumbsUp, summary.ViewerReaction)
	assert.True(t, summary.HasViewerReacted())
	assert.Equal(t, 0, summary.CountOf(core.Smile))
	assert.Equal(t, []aggregator.ReactionCount{
		{Symbol: core.ThumbsUp, Count: 1},
		{Symbol: core.Heart, Count: 2},
		{Symbol: core.CatFrown, Count: 1},
	}, summary.Ordered())
}

func Test_Summarize_Anonymous_Viewer_Has_No_Reaction(t *testing.T) {
	// arrange
	reactions := map[core.UserID]core.ReactionSymbol{"u-1": core.Smile}

	// act
	summary := aggregator.SummarizeReview(core.Review{Reactions: reactions}, core.Anonymous())

	// assert
	assert.Equal(t, core.NoReaction, summary.ViewerReaction)
	assert.Equal(t, 1, summary.Total())
}

func Test_Summarize_Ignores_Invalid_Symbols(t *testing.T) {
	// arrange
	reactions := map[core.UserID]core.ReactionSymbol{
		"u-1": core.Smile,
		"u-2": core.NoReaction,
		"u-3": core.ReactionSymbol("UNICORN"),
	}

	// act
	summary := aggregator.Summarize(reactions, "u-3")

	// assert
	assert.Equal(t, map[core.ReactionSymbol]int{core.Smile: 1}, summary.CountsByType)
	assert.Equal(t, core.NoReaction, summary.ViewerReaction)
}

func Test_Summarize_Counts_Sum_To_Number_Of_Reactions(t *testing.T) {
	// setup
	rng := rand.New(rand.NewPCG(42, 7))
	symbols := core.ReactionSymbols()

	for round := range 200 {
		// arrange
		reactions := make(map[core.UserID]core.ReactionSymbol)
		for i := range rng.IntN(50) {
			reactions[fmt.Sprintf("u-%d", i)] = symbols[rng.IntN(len(symbols))]
		}

		// act
		summary := aggregator.Summarize(reactions, "u-0")

		// assert
		assert.Equal(t, len(reactions), summary.Total(), "round %d", round)
		assert.Equal(t, reactions["u-0"], summary.ViewerReaction, "round %d", round)
		for _, entry := range summary.Ordered() {
			assert.Positive(t, entry.Count)
		}
	}
}
