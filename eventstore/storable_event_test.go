package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

const reviewWrittenPayload = `{"MovieID":603,"ReviewID":"r-1","AuthorID":"u-1","Rating":8}`

func Test_BuildStorableEvent_Rejects_Invalid_Input(t *testing.T) {
	testCases := []struct {
		description string
		eventType   string
		payload     []byte
		metadata    []byte
		wantErr     error
	}{
		{description: "empty event type", eventType: "", payload: []byte(reviewWrittenPayload), metadata: []byte(`{}`), wantErr: eventstore.ErrEmptyEventType},
		{description: "broken payload", eventType: "ReviewWritten", payload: []byte(`{"MovieID": }`), metadata: []byte(`{}`), wantErr: eventstore.ErrInvalidPayloadJSON},
		{description: "empty payload", eventType: "ReviewWritten", payload: []byte(``), metadata: []byte(`{}`), wantErr: eventstore.ErrInvalidPayloadJSON},
		{description: "nil payload", eventType: "ReviewWritten", payload: nil, metadata: []byte(`{}`), wantErr: eventstore.ErrInvalidPayloadJSON},
		{description: "broken metadata", eventType: "ReviewWritten", payload: []byte(reviewWrittenPayload), metadata: []byte(`{"ActorID"`), wantErr: eventstore.ErrInvalidMetadataJSON},
		{description: "nil metadata", eventType: "ReviewWritten", payload: []byte(reviewWrittenPayload), metadata: nil, wantErr: eventstore.ErrInvalidMetadataJSON},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// act
			_, err := eventstore.BuildStorableEvent(tc.eventType, time.Now(), tc.payload, tc.metadata)

			// assert
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func Test_BuildStorableEvent_Normalizes_OccurredAt_To_UTC(t *testing.T) {
	// arrange
	berlin := time.FixedZone("CET", 60*60)
	occurredAt := time.Date(2026, 3, 1, 13, 0, 0, 0, berlin)
	metadata := []byte(`{"ActorID":"u-1"}`)

	// act
	storableEvent, err := eventstore.BuildStorableEvent("ReviewWritten", occurredAt, []byte(reviewWrittenPayload), metadata)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "ReviewWritten", storableEvent.EventType)
	assert.Equal(t, time.UTC, storableEvent.OccurredAt.Location())
	assert.True(t, occurredAt.Equal(storableEvent.OccurredAt))
	assert.JSONEq(t, reviewWrittenPayload, string(storableEvent.PayloadJSON))
	assert.Equal(t, metadata, storableEvent.MetadataJSON)
	assert.Zero(t, storableEvent.SequenceNumber)
}

func Test_BuildStorableEventWithEmptyMetadata(t *testing.T) {
	// act
	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata("ReactionCleared", time.Now(), []byte(`{"ReviewID":"r-1"}`))
	_, emptyTypeErr := eventstore.BuildStorableEventWithEmptyMetadata("", time.Now(), []byte(`{}`))

	// assert
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), storableEvent.MetadataJSON)
	assert.ErrorIs(t, emptyTypeErr, eventstore.ErrEmptyEventType)
}
