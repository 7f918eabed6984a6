package removeviewing

import (
	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

type state struct {
	viewed bool
}

// Decide implements the business logic for removing a viewing.
//
// Business Rules:
//
//	GIVEN: A movie the viewer marked as viewed
//	WHEN: RemoveViewing command is received
//	THEN: MovieViewingRemoved event is generated
//	IDEMPOTENCY: If nothing is recorded, no event is generated
func Decide(history core.DomainEvents, command Command) core.DecisionResult {
	s := project(history, command.ViewerID, command.MovieID)

	if !s.viewed {
		return core.IdempotentDecision()
	}

	return core.SuccessDecision(
		core.BuildMovieViewingRemoved(command.ViewerID, command.MovieID, command.OccurredAt),
	)
}

func project(history core.DomainEvents, viewerID core.UserID, movieID core.MovieID) state {
	s := state{}

	for _, event := range history {
		switch e := event.(type) {
		case core.MovieMarkedAsViewed:
			if e.ViewerID == viewerID && e.MovieID == movieID {
				s.viewed = true
			}

		case core.MovieViewingRemoved:
			if e.ViewerID == viewerID && e.MovieID == movieID {
				s.viewed = false
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
