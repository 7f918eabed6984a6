package core

import (
	"time"
)

// MovieViewingRemovedEventType is the event type identifier.
const MovieViewingRemovedEventType = "MovieViewingRemoved"

// MovieViewingRemoved clears the viewed flag and the quick rating together.
type MovieViewingRemoved struct {
	ViewerID   UserID
	MovieID    MovieID
	OccurredAt OccurredAt
}

// BuildMovieViewingRemoved creates a new MovieViewingRemoved event.
func BuildMovieViewingRemoved(viewerID UserID, movieID MovieID, occurredAt time.Time) MovieViewingRemoved {
	return MovieViewingRemoved{
		ViewerID:   viewerID,
		MovieID:    movieID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e MovieViewingRemoved) IsEventType() string {
	return MovieViewingRemovedEventType
}

// HasOccurredAt returns when this event occurred.
func (e MovieViewingRemoved) HasOccurredAt() time.Time {
	return e.OccurredAt
}
