package shell

// HandlerResult is the outcome of a successful or failed command handler execution.
type HandlerResult struct {
	// Idempotent means nothing had to change. It is a business outcome, not an error.
	Idempotent bool

	// ResourceID is the id of what the command created, e.g. the id of a submitted review.
	ResourceID string
}

// NewSuccessResult creates a HandlerResult for a command that changed state.
func NewSuccessResult() HandlerResult {
	return HandlerResult{}
}

// NewCreatedResult creates a HandlerResult carrying the id of a created resource.
func NewCreatedResult(resourceID string) HandlerResult {
	return HandlerResult{ResourceID: resourceID}
}

// NewIdempotentResult creates a HandlerResult for a command that needed no state change.
func NewIdempotentResult() HandlerResult {
	return HandlerResult{Idempotent: true}
}
