package togglereaction

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

// ReactionStore reads and writes single reaction slots.
type ReactionStore interface {
	ReadReaction(ctx context.Context, movieID core.MovieID, reviewID core.ReviewID, userID core.UserID) (core.ReactionSymbol, error)
	WriteReaction(ctx context.Context, movieID core.MovieID, reviewID core.ReviewID, userID core.UserID, symbol core.ReactionSymbol) error
}

// CommandHandler handles only business logic: Validate → Authenticate → Read → Decide → Write.
// Two concurrent toggles by the same user may both read the same slot, the last write wins.
type CommandHandler struct {
	store ReactionStore
}

// NewCommandHandler creates a new CommandHandler with the provided ReactionStore dependency.
func NewCommandHandler(store ReactionStore) CommandHandler {
	return CommandHandler{
		store: store,
	}
}

// Handle executes the command. The result carries the reviewed id.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := command.validate(); err != nil {
		return shell.HandlerResult{}, err
	}

	if command.ViewerID == "" {
		return shell.HandlerResult{}, core.ErrAuthenticationRequired
	}

	current, err := h.store.ReadReaction(ctx, command.MovieID, command.ReviewID, command.ViewerID)
	if err != nil {
		return shell.HandlerResult{}, err
	}

	result := Decide(current, command)

	err = h.store.WriteReaction(ctx, command.MovieID, command.ReviewID, command.ViewerID, ResultingReaction(result))
	if err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.NewCreatedResult(command.ReviewID), nil
}
