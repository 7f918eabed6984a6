package viewedmovies

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Project folds the viewer's viewing events. Marking again replaces the quick rating and the
// viewing time, removing a viewing drops both.
func Project(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) ViewedMovies {
	entries := make(map[core.MovieID]Entry)

	for _, event := range history {
		switch e := event.(type) {
		case core.MovieMarkedAsViewed:
			if e.ViewerID != query.ViewerID {
				continue
			}

			entries[e.MovieID] = Entry{
				MovieID:     e.MovieID,
				QuickRating: core.QuickRating(e.QuickRating),
				ViewedAt:    e.OccurredAt,
			}

		case core.MovieViewingRemoved:
			if e.ViewerID == query.ViewerID {
				delete(entries, e.MovieID)
			}
		}
	}

	movies := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		movies = append(movies, entry)
	}

	slices.SortFunc(movies, func(a, b Entry) int {
		if c := b.ViewedAt.Compare(a.ViewedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.MovieID, a.MovieID)
	})

	return ViewedMovies{
		ViewerID:       query.ViewerID,
		Movies:         movies,
		Count:          len(movies),
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter selects all viewing events of one viewer.
func BuildEventFilter(viewerID core.UserID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.MovieMarkedAsViewedEventType,
			core.MovieViewingRemovedEventType,
		).
		AndAnyPredicateOf(
			eventstore.P("ViewerID", viewerID),
		).
		Finalize()
}
