package httpapi

import (
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/aggregator"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/feed"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/publicreviews"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/viewedmovies"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/features/query/watchlist"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

/*** requests ***/

// Content and rating are checked by the use case, so their errors keep the use case's field order.
type submitReviewRequest struct {
	MovieTitle  string  `json:"movieTitle"  validate:"max=500"`
	PosterPath  string  `json:"posterPath"  validate:"max=500"`
	ReleaseDate string  `json:"releaseDate" validate:"max=32"`
	VoteAverage float64 `json:"voteAverage" validate:"gte=0,lte=10"`
	Content     string  `json:"content"`
	Rating      int     `json:"rating"`
}

type reactRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

type watchlistRequest struct {
	MovieTitle  string  `json:"movieTitle"  validate:"required,max=500"`
	PosterPath  string  `json:"posterPath"  validate:"max=500"`
	ReleaseDate string  `json:"releaseDate" validate:"max=32"`
	VoteAverage float64 `json:"voteAverage" validate:"gte=0,lte=10"`
}

type markViewedRequest struct {
	QuickRating int `json:"quickRating"`
}

type createdResponse struct {
	ID string `json:"id"`
}

/*** responses ***/

type snapshotResponse struct {
	MovieID core.MovieID     `json:"movieId"`
	Reviews []reviewResponse `json:"reviews"`
}

type reviewResponse struct {
	ID         string            `json:"id"`
	MovieID    core.MovieID      `json:"movieId"`
	MovieTitle string            `json:"movieTitle"`
	Author     authorResponse    `json:"author"`
	Content    string            `json:"content"`
	Rating     int               `json:"rating"`
	CreatedAt  int64             `json:"createdAt"`
	Reactions  reactionsResponse `json:"reactions"`
}

type authorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type reactionsResponse struct {
	Counts         []reactionCountResponse `json:"counts"`
	Total          int                     `json:"total"`
	ViewerReaction string                  `json:"viewerReaction,omitempty"`
}

type reactionCountResponse struct {
	Symbol string `json:"symbol"`
	Emoji  string `json:"emoji"`
	Count  int    `json:"count"`
}

type publicReviewsResponse struct {
	Reviews []reviewResponse `json:"reviews"`
	Count   int              `json:"count"`
	Total   int              `json:"total"`
}

type watchlistResponse struct {
	Movies []watchlistMovieResponse `json:"movies"`
	Count  int                      `json:"count"`
}

type watchlistMovieResponse struct {
	MovieID     core.MovieID `json:"movieId"`
	Title       string       `json:"title"`
	PosterPath  string       `json:"posterPath,omitempty"`
	ReleaseDate string       `json:"releaseDate,omitempty"`
	VoteAverage float64      `json:"voteAverage"`
	AddedAt     time.Time    `json:"addedAt"`
}

type viewedResponse struct {
	Movies []viewedMovieResponse `json:"movies"`
	Count  int                   `json:"count"`
}

type viewedMovieResponse struct {
	MovieID     core.MovieID `json:"movieId"`
	QuickRating int          `json:"quickRating,omitempty"`
	ViewedAt    time.Time    `json:"viewedAt"`
}

func snapshotResponseFrom(snapshot feed.Snapshot) snapshotResponse {
	reviews := make([]reviewResponse, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		reviews = append(reviews, reviewResponseFrom(entry.Review, entry.Summary))
	}

	return snapshotResponse{
		MovieID: snapshot.MovieID,
		Reviews: reviews,
	}
}

func publicReviewsResponseFrom(result publicreviews.PublicReviews) publicReviewsResponse {
	reviews := make([]reviewResponse, 0, len(result.Entries))
	for _, entry := range result.Entries {
		reviews = append(reviews, reviewResponseFrom(entry.Review, entry.Summary))
	}

	return publicReviewsResponse{
		Reviews: reviews,
		Count:   result.Count,
		Total:   result.Total,
	}
}

func reviewResponseFrom(review core.Review, summary aggregator.ReactionSummary) reviewResponse {
	counts := make([]reactionCountResponse, 0, len(summary.CountsByType))
	for _, count := range summary.Ordered() {
		counts = append(counts, reactionCountResponse{
			Symbol: count.Symbol.String(),
			Emoji:  count.Symbol.Emoji(),
			Count:  count.Count,
		})
	}

	return reviewResponse{
		ID:         review.ID,
		MovieID:    review.MovieID,
		MovieTitle: review.MovieTitle,
		Author: authorResponse{
			ID:        review.AuthorID,
			Name:      review.AuthorDisplayName,
			AvatarURL: review.AuthorAvatarURL,
		},
		Content:   review.Content,
		Rating:    int(review.Rating),
		CreatedAt: review.CreatedAt,
		Reactions: reactionsResponse{
			Counts:         counts,
			Total:          summary.Total(),
			ViewerReaction: summary.ViewerReaction.String(),
		},
	}
}

func watchlistResponseFrom(result watchlist.Watchlist) watchlistResponse {
	movies := make([]watchlistMovieResponse, 0, len(result.Movies))
	for _, entry := range result.Movies {
		movies = append(movies, watchlistMovieResponse{
			MovieID:     entry.MovieID,
			Title:       entry.Title,
			PosterPath:  entry.PosterPath,
			ReleaseDate: entry.ReleaseDate,
			VoteAverage: entry.VoteAverage,
			AddedAt:     entry.AddedAt,
		})
	}

	return watchlistResponse{Movies: movies, Count: result.Count}
}

func viewedResponseFrom(result viewedmovies.ViewedMovies) viewedResponse {
	movies := make([]viewedMovieResponse, 0, len(result.Movies))
	for _, entry := range result.Movies {
		movies = append(movies, viewedMovieResponse{
			MovieID:     entry.MovieID,
			QuickRating: int(entry.QuickRating),
			ViewedAt:    entry.ViewedAt,
		})
	}

	return viewedResponse{Movies: movies, Count: result.Count}
}
