package markmovieasviewed

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Command represents the intent of a viewer to record that they have seen a movie.
type Command struct {
	ViewerID    core.UserID
	MovieID     core.MovieID
	QuickRating core.QuickRating
	OccurredAt  core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "MarkMovieAsViewed"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(viewer core.Viewer, movieID core.MovieID, quickRating core.QuickRating, occurredAt time.Time) Command {
	return Command{
		ViewerID:    viewer.ID,
		MovieID:     movieID,
		QuickRating: quickRating,
		OccurredAt:  core.ToOccurredAt(occurredAt),
	}
}

func (c Command) validate() error {
	if c.MovieID <= 0 {
		return core.NewValidationError(core.FieldMovieID, "must be a positive integer")
	}

	if _, err := core.NewQuickRating(int(c.QuickRating)); err != nil {
		return err
	}

	return nil
}
