package core

import (
	"time"
)

// MovieMarkedAsViewedEventType is the event type identifier.
const MovieMarkedAsViewedEventType = "MovieMarkedAsViewed"

// MovieMarkedAsViewed represents a viewer marking a movie as seen, optionally with a quick rating.
// Marking again with another quick rating replaces the previous one.
type MovieMarkedAsViewed struct {
	ViewerID    UserID
	MovieID     MovieID
	QuickRating int
	OccurredAt  OccurredAt
}

// BuildMovieMarkedAsViewed creates a new MovieMarkedAsViewed event.
func BuildMovieMarkedAsViewed(
	viewerID UserID,
	movieID MovieID,
	quickRating QuickRating,
	occurredAt time.Time,
) MovieMarkedAsViewed {

	return MovieMarkedAsViewed{
		ViewerID:    viewerID,
		MovieID:     movieID,
		QuickRating: int(quickRating),
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e MovieMarkedAsViewed) IsEventType() string {
	return MovieMarkedAsViewedEventType
}

// HasOccurredAt returns when this event occurred.
func (e MovieMarkedAsViewed) HasOccurredAt() time.Time {
	return e.OccurredAt
}
