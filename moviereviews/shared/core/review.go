package core

import (
	"cmp"
	"errors"
	"slices"
	"strings"
)

// Reasons returned by Review.Validate.
var (
	ErrReviewWithoutAuthor    = errors.New("review has no author id")
	ErrReviewWithoutContent   = errors.New("review has no content")
	ErrReviewRatingOutOfRange = errors.New("review rating is out of range")
	ErrReviewWithoutCreatedAt = errors.New("review has no createdAt")
)

// MovieSnapshot is the movie metadata the caller passes in at write time. It is denormalized into
// what is written and never kept in sync with the catalog afterward.
type MovieSnapshot struct {
	ID          MovieID
	Title       string
	PosterPath  string
	ReleaseDate string
	VoteAverage float64
}

// Review is one user's critique of one movie. Only Reactions changes after creation.
type Review struct {
	ID                ReviewID
	MovieID           MovieID
	MovieTitle        string
	AuthorID          UserID
	AuthorDisplayName string
	AuthorAvatarURL   string
	Content           string
	Rating            Rating
	CreatedAt         int64 // epoch milliseconds, assigned by the writing client
	Reactions         map[UserID]ReactionSymbol
}

// ReviewDraft is a review before the store assigned its id.
type ReviewDraft struct {
	MovieID           MovieID
	MovieTitle        string
	AuthorID          UserID
	AuthorDisplayName string
	AuthorAvatarURL   string
	Content           string
	Rating            Rating
	CreatedAt         int64
}

// BuildReviewDraft captures the movie and author snapshots. Content is trimmed.
func BuildReviewDraft(movie MovieSnapshot, author Viewer, content string, rating Rating, createdAt int64) ReviewDraft {
	return ReviewDraft{
		MovieID:           movie.ID,
		MovieTitle:        movie.Title,
		AuthorID:          author.ID,
		AuthorDisplayName: author.AuthorName(),
		AuthorAvatarURL:   author.AvatarURL,
		Content:           strings.TrimSpace(content),
		Rating:            rating,
		CreatedAt:         createdAt,
	}
}

// ToReview assigns the store id. The new review has no reactions.
func (d ReviewDraft) ToReview(id ReviewID) Review {
	return Review{
		ID:                id,
		MovieID:           d.MovieID,
		MovieTitle:        d.MovieTitle,
		AuthorID:          d.AuthorID,
		AuthorDisplayName: d.AuthorDisplayName,
		AuthorAvatarURL:   d.AuthorAvatarURL,
		Content:           d.Content,
		Rating:            d.Rating,
		CreatedAt:         d.CreatedAt,
		Reactions:         map[UserID]ReactionSymbol{},
	}
}

// Validate reports why a stored review cannot be shown. Reviews failing it are skipped by readers.
func (r Review) Validate() error {
	switch {
	case r.AuthorID == "":
		return ErrReviewWithoutAuthor
	case strings.TrimSpace(r.Content) == "":
		return ErrReviewWithoutContent
	case !r.Rating.IsValid():
		return ErrReviewRatingOutOfRange
	case r.CreatedAt <= 0:
		return ErrReviewWithoutCreatedAt
	default:
		return nil
	}
}

// ReactionOf returns the reaction held by userID, or NoReaction.
func (r Review) ReactionOf(userID UserID) ReactionSymbol {
	return r.Reactions[userID]
}

// CompareByRecency orders newer reviews first: createdAt descending, then id descending.
// The id tie-break is best effort, store ids are only monotonic per writer.
func CompareByRecency(a, b Review) int {
	if c := cmp.Compare(b.CreatedAt, a.CreatedAt); c != 0 {
		return c
	}

	return cmp.Compare(b.ID, a.ID)
}

// SortReviewsByRecency sorts in place, newest first.
func SortReviewsByRecency(reviews []Review) {
	slices.SortStableFunc(reviews, CompareByRecency)
}
