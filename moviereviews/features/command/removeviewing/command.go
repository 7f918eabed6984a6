package removeviewing

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Command represents the intent of a viewer to forget that they have seen a movie.
type Command struct {
	ViewerID   core.UserID
	MovieID    core.MovieID
	OccurredAt core.OccurredAt
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "RemoveViewing"
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(viewer core.Viewer, movieID core.MovieID, occurredAt time.Time) Command {
	return Command{
		ViewerID:   viewer.ID,
		MovieID:    movieID,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
