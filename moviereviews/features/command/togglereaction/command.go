package togglereaction

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Command represents the intent of a viewer to toggle a reaction on a review.
type Command struct {
	ViewerID   core.UserID
	MovieID    core.MovieID
	ReviewID   core.ReviewID
	Symbol     core.ReactionSymbol
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "ToggleReaction"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	viewer core.Viewer,
	movieID core.MovieID,
	reviewID core.ReviewID,
	symbol core.ReactionSymbol,
	occurredAt time.Time,
) Command {

	return Command{
		ViewerID:   viewer.ID,
		MovieID:    movieID,
		ReviewID:   reviewID,
		Symbol:     symbol,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

func (c Command) validate() error {
	if !c.Symbol.IsValid() {
		return core.NewValidationError(core.FieldReaction, "is not a known reaction symbol")
	}

	if c.ReviewID == "" {
		return core.NewValidationError(core.FieldReviewID, "must not be empty")
	}

	if c.MovieID <= 0 {
		return core.NewValidationError(core.FieldMovieID, "must be a positive integer")
	}

	return nil
}
