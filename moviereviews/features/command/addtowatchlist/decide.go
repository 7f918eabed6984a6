package addtowatchlist

import (
	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

type state struct {
	onWatchlist bool
}

// Decide implements the business logic for adding a movie to a watchlist.
//
// Business Rules:
//
//	GIVEN: A viewer and a movie
//	WHEN: AddToWatchlist command is received
//	THEN: MovieAddedToWatchlist event is generated
//	IDEMPOTENCY: If the movie already is on the watchlist, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command.ViewerID, command.Movie.ID)

	if s.onWatchlist {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildMovieAddedToWatchlist(command.ViewerID, command.Movie, command.OccurredAt),
	)
}

func project(history core.DomainEvents, viewerID core.UserID, movieID core.MovieID) state {
	s := state{}

	for _, event := range history {
		switch e := event.(type) {
		case core.MovieAddedToWatchlist:
			if e.ViewerID == viewerID && e.MovieID == movieID {
				s.onWatchlist = true
			}

		case core.MovieRemovedFromWatchlist:
			if e.ViewerID == viewerID && e.MovieID == movieID {
				s.onWatchlist = false
			}
		}
	}

	return s
}

// BuildEventFilter selects the watchlist events of one viewer for one movie.
func BuildEventFilter(viewerID core.UserID, movieID core.MovieID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.MovieAddedToWatchlistEventType,
			core.MovieRemovedFromWatchlistEventType,
		).
		AndAllPredicatesOf(
			eventstore.P("ViewerID", viewerID),
			eventstore.PInt("MovieID", int64(movieID)),
		).
		Finalize()
}
