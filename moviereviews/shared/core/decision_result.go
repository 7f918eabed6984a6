package core

// DecisionResult is the outcome of a Decide function: either nothing to do, or one event to append.
// Construct it with IdempotentDecision or SuccessDecision only.
type DecisionResult struct {
	Outcome string
	Event   DomainEvent // nil for idempotent decisions
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
)

// IdempotentDecision means the state already is what the command asks for.
func IdempotentDecision() DecisionResult {
	return DecisionResult{Outcome: idempotentOutcome}
}

// SuccessDecision carries the event to append.
func SuccessDecision(event DomainEvent) DecisionResult {
	return DecisionResult{Outcome: successOutcome, Event: event}
}

// HasEventToAppend returns true if there is an event to append to the event store.
func (r DecisionResult) HasEventToAppend() bool {
	return r.Outcome == successOutcome && r.Event != nil
}

// IsIdempotent reports whether no state change is needed.
func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}
