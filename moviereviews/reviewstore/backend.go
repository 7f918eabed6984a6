package reviewstore

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// RawRecord is one review as the backend holds it.
type RawRecord struct {
	ID   core.ReviewID
	Data []byte
}

// Backend is the collaborator contract of the store. Raw reaction symbols are emojis, "" means none.
type Backend interface {
	// SubscribeReviews calls onChange with every record under movieID, once before it returns and
	// then after every change. The returned func stops the deliveries.
	SubscribeReviews(ctx context.Context, movieID core.MovieID, onChange func([]RawRecord)) (func(), error)

	// PushReview appends a new record; the backend assigns the id.
	PushReview(ctx context.Context, movieID core.MovieID, document Document) (core.ReviewID, error)

	ReadReaction(ctx context.Context, movieID core.MovieID, reviewID core.ReviewID, userID core.UserID) (string, error)

	// WriteReaction sets userID's reaction slot, an empty symbol clears it.
	WriteReaction(ctx context.Context, movieID core.MovieID, reviewID core.ReviewID, userID core.UserID, symbol string) error
}

// Document is the JSON shape of a review record.
type Document struct {
	MovieID    int64             `json:"movieId"`
	MovieTitle string            `json:"movieTitle"`
	Content    string            `json:"content"`
	Rating     int               `json:"rating"`
	Username   string            `json:"username"`
	UserID     string            `json:"userId"`
	UserAvatar string            `json:"userAvatar"`
	CreatedAt  int64             `json:"createdAt"`
	Reactions  map[string]string `json:"reactions,omitempty"`
}

// DocumentFromDraft builds the record written for a new review.
func DocumentFromDraft(draft core.ReviewDraft) Document {
	return Document{
		MovieID:    int64(draft.MovieID),
		MovieTitle: draft.MovieTitle,
		Content:    draft.Content,
		Rating:     int(draft.Rating),
		Username:   draft.AuthorDisplayName,
		UserID:     draft.AuthorID,
		UserAvatar: draft.AuthorAvatarURL,
		CreatedAt:  draft.CreatedAt,
	}
}

// Draft reads a document written by DocumentFromDraft back into a draft of movieID.
func (d Document) Draft(movieID core.MovieID) core.ReviewDraft {
	return core.ReviewDraft{
		MovieID:           movieID,
		MovieTitle:        d.MovieTitle,
		AuthorID:          d.UserID,
		AuthorDisplayName: d.Username,
		AuthorAvatarURL:   d.UserAvatar,
		Content:           d.Content,
		Rating:            core.Rating(d.Rating),
		CreatedAt:         d.CreatedAt,
	}
}

// MarshalDocument encodes a document the way backends store it.
func MarshalDocument(document Document) ([]byte, error) {
	return documentJSON.Marshal(document)
}

// UnmarshalDocument decodes a stored document.
func UnmarshalDocument(data []byte) (Document, error) {
	var document Document
	err := documentJSON.Unmarshal(data, &document)

	return document, err
}
