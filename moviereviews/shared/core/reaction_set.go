package core

import (
	"time"
)

// ReactionSetEventType is the event type identifier.
const ReactionSetEventType = "ReactionSet"

// ReactionSet represents a user reacting to a review. Switching from one symbol to another is
// a single ReactionSet, never a clear followed by a set.
type ReactionSet struct {
	MovieID    MovieID
	ReviewID   ReviewID
	UserID     UserID
	Symbol     ReactionSymbol
	OccurredAt OccurredAt
}

// BuildReactionSet creates a new ReactionSet event.
func BuildReactionSet(
	movieID MovieID,
	reviewID ReviewID,
	userID UserID,
	symbol ReactionSymbol,
	occurredAt time.Time,
) ReactionSet {

	return ReactionSet{
		MovieID:    movieID,
		ReviewID:   reviewID,
		UserID:     userID,
		Symbol:     symbol,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e ReactionSet) IsEventType() string {
	return ReactionSetEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReactionSet) HasOccurredAt() time.Time {
	return e.OccurredAt
}
