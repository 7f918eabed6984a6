package viewedmovies

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Entry is one viewed movie. QuickRating is core.NoQuickRating when the viewer gave none.
type Entry struct {
	MovieID     core.MovieID
	QuickRating core.QuickRating
	ViewedAt    time.Time
}

// ViewedMovies is the query result.
type ViewedMovies struct {
	ViewerID       core.UserID
	Movies         []Entry
	Count          int
	SequenceNumber uint
}

// GetSequenceNumber returns the highest sequence number included in the projection.
func (v ViewedMovies) GetSequenceNumber() uint {
	return v.SequenceNumber
}
