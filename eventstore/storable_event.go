package eventstore

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrEmptyEventType      = errors.New("event type must not be empty")
	ErrInvalidPayloadJSON  = errors.New("payload json is not valid")
	ErrInvalidMetadataJSON = errors.New("metadata json is not valid")
)

var emptyMetadataJSON = []byte("{}")

// StorableEvents is an alias type for a slice of StorableEvent.
type StorableEvents = []StorableEvent

// StorableEvent is what the engines append and return. It only carries scalars and raw JSON, so
// the engines never see the domain event types. Build it with BuildStorableEvent or
// BuildStorableEventWithEmptyMetadata.
//
// SequenceNumber is assigned by the engine; it is zero for events that were not yet appended.
type StorableEvent struct {
	EventType      string
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
	SequenceNumber MaxSequenceNumberUint
}

// BuildStorableEvent checks that payload and metadata are JSON and stores occurredAt in UTC.
func BuildStorableEvent(eventType string, occurredAt time.Time, payloadJSON []byte, metadataJSON []byte) (StorableEvent, error) {
	switch {
	case eventType == "":
		return StorableEvent{}, ErrEmptyEventType
	case !jsoniter.ConfigFastest.Valid(payloadJSON):
		return StorableEvent{}, ErrInvalidPayloadJSON
	case !jsoniter.ConfigFastest.Valid(metadataJSON):
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:    eventType,
		OccurredAt:   occurredAt.UTC(),
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata is BuildStorableEvent with {} as metadata.
func BuildStorableEventWithEmptyMetadata(eventType string, occurredAt time.Time, payloadJSON []byte) (StorableEvent, error) {
	return BuildStorableEvent(eventType, occurredAt, payloadJSON, emptyMetadataJSON)
}
