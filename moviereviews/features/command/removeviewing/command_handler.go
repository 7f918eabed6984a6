package removeviewing

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

// EventStore defines the interface needed by the CommandHandler for event store operations.
type EventStore interface {
	shell.QueriesEvents
	shell.AppendsEvents
}

// CommandHandler handles only business logic: Query → Unmarshal → Decide → Append.
type CommandHandler struct {
	eventStore EventStore
}

// NewCommandHandler creates a new CommandHandler with the provided EventStore dependency.
func NewCommandHandler(eventStore EventStore) CommandHandler {
	return CommandHandler{
		eventStore: eventStore,
	}
}

// Handle executes the command.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if command.MovieID <= 0 {
		return shell.HandlerResult{}, core.NewValidationError(core.FieldMovieID, "must be a positive integer")
	}

	if command.ViewerID == "" {
		return shell.HandlerResult{}, core.ErrAuthenticationRequired
	}

	filter := BuildEventFilter(command.ViewerID, command.MovieID)
	ctx = eventstore.WithStrongConsistency(ctx)

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, filter)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	result := Decide(history, command)

	if !result.HasEventToAppend() {
		return shell.NewIdempotentResult(), nil
	}

	storableEvent, err := shell.StorableEventFrom(result.Event, shell.NewEventMetadataFor(command.ViewerID))
	if err != nil {
		return shell.HandlerResult{}, err
	}

	if err = h.eventStore.Append(ctx, filter, maxSequenceNumber, storableEvent); err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.NewSuccessResult(), nil
}
