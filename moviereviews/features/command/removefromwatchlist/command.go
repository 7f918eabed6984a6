package removefromwatchlist

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Command represents the intent of a viewer to take a movie off their watchlist.
type Command struct {
	ViewerID   core.UserID
	MovieID    core.MovieID
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "RemoveFromWatchlist"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(viewer core.Viewer, movieID core.MovieID, occurredAt time.Time) Command {
	return Command{
		ViewerID:   viewer.ID,
		MovieID:    movieID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
