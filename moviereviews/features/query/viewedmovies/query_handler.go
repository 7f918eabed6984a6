package viewedmovies

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

// QueryHandler handles only business logic: Query → Unmarshal → Project.
type QueryHandler struct {
	eventStore shell.QueriesEvents
}

// NewQueryHandler creates a new QueryHandler with the provided event store dependency.
func NewQueryHandler(eventStore shell.QueriesEvents) QueryHandler {
	return QueryHandler{
		eventStore: eventStore,
	}
}

// Handle executes the query. Viewings are private, the viewer must be authenticated.
func (h QueryHandler) Handle(ctx context.Context, query Query) (ViewedMovies, error) {
	if query.ViewerID == "" {
		return ViewedMovies{}, core.ErrAuthenticationRequired
	}

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(
		eventstore.WithStrongConsistency(ctx),
		BuildEventFilter(query.ViewerID),
	)
	if err != nil {
		return ViewedMovies{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return ViewedMovies{}, err
	}

	return Project(history, query, maxSequenceNumber), nil
}
