package watchlist

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Entry is one movie on the watchlist with the snapshot taken when it was added.
type Entry struct {
	MovieID     core.MovieID
	Title       string
	PosterPath  string
	ReleaseDate string
	VoteAverage float64
	AddedAt     time.Time
}

// Watchlist is the query result.
type Watchlist struct {
	ViewerID       core.UserID
	Movies         []Entry
	Count          int
	SequenceNumber uint
}

// GetSequenceNumber returns the highest sequence number included in the projection.
func (w Watchlist) GetSequenceNumber() uint {
	return w.SequenceNumber
}
