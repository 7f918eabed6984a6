package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DecodableDomainEventsFrom converts the StorableEvents that map to a DomainEvent and hands every
// other one with its error to onSkip, which may be nil.
func DecodableDomainEventsFrom(
	storableEvents eventstore.StorableEvents,
	onSkip func(eventstore.StorableEvent, error),
) core.DomainEvents {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			if onSkip != nil {
				onSkip(storableEvent, err)
			}

			continue
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.ReviewWrittenEventType:
		return unmarshal[core.ReviewWritten](storableEvent.PayloadJSON)

	case core.ReactionSetEventType:
		return unmarshal[core.ReactionSet](storableEvent.PayloadJSON)

	case core.ReactionClearedEventType:
		return unmarshal[core.ReactionCleared](storableEvent.PayloadJSON)

	case core.MovieAddedToWatchlistEventType:
		return unmarshal[core.MovieAddedToWatchlist](storableEvent.PayloadJSON)

	case core.MovieRemovedFromWatchlistEventType:
		return unmarshal[core.MovieRemovedFromWatchlist](storableEvent.PayloadJSON)

	case core.MovieMarkedAsViewedEventType:
		return unmarshal[core.MovieMarkedAsViewed](storableEvent.PayloadJSON)

	case core.MovieViewingRemovedEventType:
		return unmarshal[core.MovieViewingRemoved](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshal[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var payload E

	err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payloadJSON, &payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return payload, nil
}
