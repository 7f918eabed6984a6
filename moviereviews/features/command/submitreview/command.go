package submitreview

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Command represents the intent of a viewer to publish a review of a movie.
type Command struct {
	Movie     core.MovieSnapshot
	Viewer    core.Viewer
	Content   string
	Rating    int
	CreatedAt int64 // epoch milliseconds
}

// CommandType returns the type identifier for this command.
func (c Command) CommandType() string {
	return "SubmitReview"
}

// BuildCommand creates a new Command. createdAt becomes the review's client-assigned timestamp.
func BuildCommand(
	movie core.MovieSnapshot,
	viewer core.Viewer,
	content string,
	rating int,
	createdAt time.Time,
) Command {

	return Command{
		Movie:     movie,
		Viewer:    viewer,
		Content:   content,
		Rating:    rating,
		CreatedAt: core.ToEpochMillis(createdAt),
	}
}

// Draft is the review the command writes, valid only after validate succeeded.
func (c Command) Draft() core.ReviewDraft {
	return core.BuildReviewDraft(c.Movie, c.Viewer, c.Content, core.Rating(c.Rating), c.CreatedAt)
}
