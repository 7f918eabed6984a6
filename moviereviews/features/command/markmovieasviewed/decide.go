package markmovieasviewed

import (
	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

type state struct {
	viewed      bool
	quickRating core.QuickRating
}

// Decide implements the business logic for marking a movie as viewed.
//
// Business Rules:
//
//	GIVEN: A viewer and a movie
//	WHEN: MarkMovieAsViewed command is received
//	THEN: MovieMarkedAsViewed event is generated, replacing an earlier quick rating
//	IDEMPOTENCY: If the movie already is viewed with the same quick rating, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command.ViewerID, command.MovieID)

	if s.viewed && s.quickRating == command.QuickRating {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildMovieMarkedAsViewed(command.ViewerID, command.MovieID, command.QuickRating, command.OccurredAt),
	)
}

func project(history core.DomainEvents, viewerID core.UserID, movieID core.MovieID) state {
	s := state{}

	for _, event := range history {
		switch e := event.(type) {
		case core.MovieMarkedAsViewed:
			if e.ViewerID == viewerID && e.MovieID == movieID {
				s.viewed = true
				s.quickRating = core.QuickRating(e.QuickRating)
			}

		case core.MovieViewingRemoved:
			if e.ViewerID == viewerID && e.MovieID == movieID {
				s = state{}
			}
		}
	}

	return s
}

// BuildEventFilter selects the viewing events of one viewer for one movie.
func BuildEventFilter(viewerID core.UserID, movieID core.MovieID) eventstore.Filter {
	return eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(
			core.MovieMarkedAsViewedEventType,
			core.MovieViewingRemovedEventType,
		).
		AndAllPredicatesOf(
			eventstore.P("ViewerID", viewerID),
			eventstore.PInt("MovieID", int64(movieID)),
		).
		Finalize()
}
