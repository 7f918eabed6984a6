package core

import (
	"time"
)

// MovieAddedToWatchlistEventType is the event type identifier.
const MovieAddedToWatchlistEventType = "MovieAddedToWatchlist"

// MovieAddedToWatchlist represents a viewer putting a movie on their watchlist.
type MovieAddedToWatchlist struct {
	ViewerID    UserID
	MovieID     MovieID
	Title       string
	PosterPath  string
	ReleaseDate string
	VoteAverage float64
	OccurredAt  OccurredAt
}

// BuildMovieAddedToWatchlist creates a new MovieAddedToWatchlist event.
func BuildMovieAddedToWatchlist(viewerID UserID, movie MovieSnapshot, occurredAt time.Time) MovieAddedToWatchlist {
	return MovieAddedToWatchlist{
		ViewerID:    viewerID,
		MovieID:     movie.ID,
		Title:       movie.Title,
		PosterPath:  movie.PosterPath,
		ReleaseDate: movie.ReleaseDate,
		VoteAverage: movie.VoteAverage,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e MovieAddedToWatchlist) IsEventType() string {
	return MovieAddedToWatchlistEventType
}

// HasOccurredAt returns when this event occurred.
func (e MovieAddedToWatchlist) HasOccurredAt() time.Time {
	return e.OccurredAt
}
