package feed

import (
	"slices"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/aggregator"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Entry pairs a review with its reaction summary for the feed's viewer.
type Entry struct {
	Review  core.Review
	Summary aggregator.ReactionSummary
}

// Snapshot is the complete state of a feed at one point in time, newest review first.
type Snapshot struct {
	MovieID core.MovieID
	Entries []Entry
}

// BuildSnapshot sorts a copy of reviews by recency and summarizes every review for viewer.
func BuildSnapshot(movieID core.MovieID, reviews []core.Review, viewer core.Viewer) Snapshot {
	sorted := slices.Clone(reviews)
	core.SortReviewsByRecency(sorted)

	entries := make([]Entry, 0, len(sorted))
	for _, review := range sorted {
		entries = append(entries, Entry{
			Review:  review,
			Summary: aggregator.SummarizeReview(review, viewer),
		})
	}

	return Snapshot{
		MovieID: movieID,
		Entries: entries,
	}
}

// Find returns the entry of reviewID.
func (s Snapshot) Find(reviewID core.ReviewID) (Entry, bool) {
	for _, entry := range s.Entries {
		if entry.Review.ID == reviewID {
			return entry, true
		}
	}

	return Entry{}, false
}
