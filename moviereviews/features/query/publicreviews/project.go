package publicreviews

import (
	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/aggregator"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Project folds all review events into reviews with their current reactions.
//
//	ORDER: createdAt descending, then id descending
//	LIMIT: the first query.Limit reviews, all if 0
//	EXCLUDES: reviews failing core.Review.Validate (listed in Skipped) and reactions on reviews
//	          the history does not contain
func Project(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) PublicReviews {
	reviews := make(map[core.ReviewID]*core.Review)
	skipped := make(map[core.ReviewID]error)

	for _, event := range history {
		switch e := event.(type) {
		case core.ReviewWritten:
			if _, exists := reviews[e.ReviewID]; exists {
				continue
			}

			if _, exists := skipped[e.ReviewID]; exists {
				continue
			}

			review := e.Draft().ToReview(e.ReviewID)
			if err := review.Validate(); err != nil {
				skipped[e.ReviewID] = err
				continue
			}

			reviews[e.ReviewID] = &review

		case core.ReactionSet:
			if review, ok := reviews[e.ReviewID]; ok {
				review.Reactions[e.UserID] = e.Symbol
			}

		case core.ReactionCleared:
			if review, ok := reviews[e.ReviewID]; ok {
				delete(review.Reactions, e.UserID)
			}
		}
	}

	sorted := make([]core.Review, 0, len(reviews))
	for _, review := range reviews {
		sorted = append(sorted, *review)
	}

	core.SortReviewsByRecency(sorted)

	if query.Limit > 0 && len(sorted) > query.Limit {
		sorted = sorted[:query.Limit]
	}

	entries := make([]Entry, 0, len(sorted))
	for _, review := range sorted {
		entries = append(entries, Entry{
			Review:  review,
			Summary: aggregator.SummarizeReview(review, query.Viewer),
		})
	}

	return PublicReviews{
		Entries:        entries,
		Count:          len(entries),
		Total:          len(reviews),
		Skipped:        skipped,
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter selects every review and reaction event.
func BuildEventFilter() eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.ReviewWrittenEventType,
			core.ReactionSetEventType,
			core.ReactionClearedEventType,
		).
		Finalize()
}
