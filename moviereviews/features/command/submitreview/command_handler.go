package submitreview

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

// ReviewWriter is the write side of the review store needed by the CommandHandler.
type ReviewWriter interface {
	PushReview(ctx context.Context, draft core.ReviewDraft) (core.ReviewID, error)
}

// CommandHandler handles only business logic: Validate → Authenticate → Write.
type CommandHandler struct {
	writer ReviewWriter
}

// NewCommandHandler creates a new CommandHandler with the provided ReviewWriter dependency.
func NewCommandHandler(writer ReviewWriter) CommandHandler {
	return CommandHandler{
		writer: writer,
	}
}

// Handle executes the command. On success the result carries the store-assigned review id.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	if err := command.validate(); err != nil {
		return shell.HandlerResult{}, err
	}

	if err := command.Viewer.RequireAuthenticated(); err != nil {
		return shell.HandlerResult{}, err
	}

	reviewID, err := h.writer.PushReview(ctx, command.Draft())
	if err != nil {
		return shell.HandlerResult{}, err
	}

	return shell.NewCreatedResult(reviewID), nil
}
