package togglereaction

import (
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Decide implements the toggle: the same symbol clears the slot, any other symbol replaces it.
// It never decides idempotently, every react changes the slot.
func Decide(current core.ReactionSymbol, command Command) core.DecisionResult {
	if current == command.Symbol {
		return core.SuccessDecision(
			core.BuildReactionCleared(command.MovieID, command.ReviewID, command.ViewerID, command.OccurredAt),
		)
	}

	return core.SuccessDecision(
		core.BuildReactionSet(command.MovieID, command.ReviewID, command.ViewerID, command.Symbol, command.OccurredAt),
	)
}

// ResultingReaction is the slot value after the decided event was written.
func ResultingReaction(result core.DecisionResult) core.ReactionSymbol {
	if set, ok := result.Event.(core.ReactionSet); ok {
		return set.Symbol
	}

	return core.NoReaction
}
