package core

import (
	"strings"
	"time"
)

// ReviewWrittenEventType is the event type identifier.
const ReviewWrittenEventType = "ReviewWritten"

// ReviewWritten represents a review being written. The author and movie fields are snapshots.
type ReviewWritten struct {
	ReviewID          ReviewID
	MovieID           MovieID
	MovieTitle        string
	AuthorID          UserID
	AuthorDisplayName string
	AuthorAvatarURL   string
	Content           string
	Rating            int
	CreatedAt         int64
	OccurredAt        OccurredAt
}

// BuildReviewWritten creates a new ReviewWritten event.
func BuildReviewWritten(reviewID ReviewID, draft ReviewDraft, occurredAt time.Time) ReviewWritten {
	return ReviewWritten{
		ReviewID:          reviewID,
		MovieID:           draft.MovieID,
		MovieTitle:        draft.MovieTitle,
		AuthorID:          draft.AuthorID,
		AuthorDisplayName: draft.AuthorDisplayName,
		AuthorAvatarURL:   draft.AuthorAvatarURL,
		Content:           draft.Content,
		Rating:            int(draft.Rating),
		CreatedAt:         draft.CreatedAt,
		OccurredAt:        ToOccurredAt(occurredAt),
	}
}

// Draft restores the review as it was written. Content is trimmed and a missing author name reads
// as AnonymousDisplayName, the same as for a new draft.
func (e ReviewWritten) Draft() ReviewDraft {
	displayName := e.AuthorDisplayName
	if displayName == "" {
		displayName = AnonymousDisplayName
	}

	return ReviewDraft{
		MovieID:           e.MovieID,
		MovieTitle:        e.MovieTitle,
		AuthorID:          e.AuthorID,
		AuthorDisplayName: displayName,
		AuthorAvatarURL:   e.AuthorAvatarURL,
		Content:           strings.TrimSpace(e.Content),
		Rating:            Rating(e.Rating),
		CreatedAt:         e.CreatedAt,
	}
}

// IsEventType returns the event type identifier.
func (e ReviewWritten) IsEventType() string {
	return ReviewWrittenEventType
}

// HasOccurredAt returns when this event occurred.
func (e ReviewWritten) HasOccurredAt() time.Time {
	return e.OccurredAt
}
