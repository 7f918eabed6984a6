package watchlist

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

// Project folds the viewer's watchlist events into the current watchlist.
//
//	INCLUDES: movies added and not removed since, with the snapshot of the latest add
//	ORDER: newest addition first, ties by movie id descending
func Project(history core.DomainEvents, query Query, maxSequenceNumber eventstore.MaxSequenceNumberUint) Watchlist {
	entries := make(map[core.MovieID]Entry)

	for _, event := range history {
		switch e := event.(type) {
		case core.MovieAddedToWatchlist:
			if e.ViewerID != query.ViewerID {
				continue
			}

			entries[e.MovieID] = Entry{
				MovieID:     e.MovieID,
				Title:       e.Title,
				PosterPath:  e.PosterPath,
				ReleaseDate: e.ReleaseDate,
				VoteAverage: e.VoteAverage,
				AddedAt:     e.OccurredAt,
			}

		case core.MovieRemovedFromWatchlist:
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
		if c := b.AddedAt.Compare(a.AddedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.MovieID, a.MovieID)
	})

	return Watchlist{
		ViewerID:       query.ViewerID,
		Movies:         movies,
		Count:          len(movies),
		SequenceNumber: maxSequenceNumber,
	}
}

// BuildEventFilter selects all watchlist events of one viewer.
func BuildEventFilter(viewerID core.UserID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.MovieAddedToWatchlistEventType,
			core.MovieRemovedFromWatchlistEventType,
		).
		AndAnyPredicateOf(
			eventstore.P("ViewerID", viewerID),
		).
		Finalize()
}
