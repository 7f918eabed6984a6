package core

import (
	"time"
)

// ReactionClearedEventType is the event type identifier.
const ReactionClearedEventType = "ReactionCleared"

// ReactionCleared represents a user taking back their reaction to a review.
type ReactionCleared struct {
	MovieID    MovieID
	ReviewID   ReviewID
	UserID     UserID
	OccurredAt OccurredAt
}

// BuildReactionCleared creates a new ReactionCleared event.
func BuildReactionCleared(movieID MovieID, reviewID ReviewID, userID UserID, occurredAt time.Time) ReactionCleared {
	return ReactionCleared{
		MovieID:    movieID,
		ReviewID:   reviewID,
		UserID:     userID,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReactionCleared) IsEventType() string {
	return ReactionClearedEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReactionCleared) HasOccurredAt() time.Time {
	return e.OccurredAt
}
