package shell

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

// QueriesEvents is the read side of an event store engine.
type QueriesEvents interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
}

// AppendsEvents is the conditional write side of an event store engine.
type AppendsEvents interface {
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// AppendsEventsUnconditionally is used for append-only facts that no decision depends on.
type AppendsEventsUnconditionally interface {
	AppendUnconditionally(
		ctx context.Context,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

// EventStore is implemented by memoryengine.EventStore and postgresengine.EventStore.
type EventStore interface {
	QueriesEvents
	AppendsEvents
	AppendsEventsUnconditionally
}

// Command is implemented by every command of a feature slice.
type Command interface {
	CommandType() string
}

// CommandHandler processes one command type. Implementations contain business logic only,
// observability is added by observable.CommandWrapper.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// Query is implemented by every query of a feature slice.
type Query interface {
	QueryType() string
}

// QueryResult is a projection. GetSequenceNumber returns the highest sequence number it includes.
type QueryResult interface {
	GetSequenceNumber() uint
}

// QueryHandler processes one query type.
type QueryHandler[Q Query, R QueryResult] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
