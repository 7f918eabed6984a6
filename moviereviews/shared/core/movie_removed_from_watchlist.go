package core

import (
	"time"
)

// MovieRemovedFromWatchlistEventType is the event type identifier.
const MovieRemovedFromWatchlistEventType = "MovieRemovedFromWatchlist"

// MovieRemovedFromWatchlist represents a viewer taking a movie off their watchlist.
type MovieRemovedFromWatchlist struct {
	ViewerID   UserID
	MovieID    MovieID
	OccurredAt OccurredAt
}

// BuildMovieRemovedFromWatchlist creates a new MovieRemovedFromWatchlist event.
func BuildMovieRemovedFromWatchlist(viewerID UserID, movieID MovieID, occurredAt time.Time) MovieRemovedFromWatchlist {
	return MovieRemovedFromWatchlist{
		ViewerID:   viewerID,
		MovieID:    movieID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e MovieRemovedFromWatchlist) IsEventType() string {
	return MovieRemovedFromWatchlistEventType
}

// HasOccurredAt returns when this event occurred.
func (e MovieRemovedFromWatchlist) HasOccurredAt() time.Time {
	return e.OccurredAt
}
