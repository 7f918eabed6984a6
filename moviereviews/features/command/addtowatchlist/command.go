package addtowatchlist

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Command represents the intent of a viewer to put a movie on their watchlist.
type Command struct {
	ViewerID   core.UserID
	Movie      core.MovieSnapshot
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "AddToWatchlist"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(viewer core.Viewer, movie core.MovieSnapshot, occurredAt time.Time) Command {
	return Command{
		ViewerID:   viewer.ID,
		Movie:      movie,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}

func (c Command) validate() error {
	if c.Movie.ID <= 0 {
		return core.NewValidationError(core.FieldMovieID, "must be a positive integer")
	}

	if c.Movie.Title == "" {
		return core.NewValidationError(core.FieldMovieTitle, "must not be empty")
	}

	return nil
}
