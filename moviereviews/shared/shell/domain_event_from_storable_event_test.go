package shell_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

func Test_StorableEventFrom_ThenDomainEventFrom_ReactionSet(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 3, 14, 12, 0, 0, 123456789, time.UTC)
	event := core.BuildReactionSet(603, "r-1", "user-1", core.Heart, occurredAt)
	metadata := shell.NewEventMetadataFor("user-1")

	// act
	storableEvent, err := shell.StorableEventFrom(event, metadata)
	require.NoError(t, err)
	domainEvent, err := shell.DomainEventFrom(storableEvent)
	require.NoError(t, err)
	readMetadata, err := shell.EventMetadataFrom(storableEvent)
	require.NoError(t, err)

	// assert
	assert.Equal(t, core.ReactionSetEventType, storableEvent.EventType)
	assert.JSONEq(t,
		`{"MovieID":603,"ReviewID":"r-1","UserID":"user-1","Symbol":"HEART","OccurredAt":"2025-03-14T12:00:00.123456Z"}`,
		string(storableEvent.PayloadJSON),
	)
	assert.Equal(t, event, domainEvent)
	assert.Equal(t, metadata, readMetadata)
	assert.Equal(t, "user-1", readMetadata.ActorID)
	assert.Equal(t, readMetadata.MessageID, readMetadata.CorrelationID)
}

func Test_DomainEventsFrom_AllEventTypes(t *testing.T) {
	// arrange
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	draft := core.BuildReviewDraft(core.MovieSnapshot{ID: 603, Title: "The Matrix"}, core.Viewer{ID: "user-1"}, "Great", 8, 1)
	events := core.DomainEvents{
		core.BuildReviewWritten("r-1", draft, now),
		core.BuildReactionSet(603, "r-1", "user-2", core.Smile, now),
		core.BuildReactionCleared(603, "r-1", "user-2", now),
		core.BuildMovieAddedToWatchlist("user-1", core.MovieSnapshot{ID: 603, Title: "The Matrix", VoteAverage: 8.2}, now),
		core.BuildMovieRemovedFromWatchlist("user-1", 603, now),
		core.BuildMovieMarkedAsViewed("user-1", 603, 4, now),
		core.BuildMovieViewingRemoved("user-1", 603, now),
	}

	storableEvents := make(eventstore.StorableEvents, 0, len(events))
	for _, event := range events {
		storableEvent, err := shell.StorableEventFrom(event, shell.NewEventMetadataFor("user-1"))
		require.NoError(t, err)
		storableEvents = append(storableEvents, storableEvent)
	}

	// act
	domainEvents, err := shell.DomainEventsFrom(storableEvents)

	// assert
	require.NoError(t, err)
	assert.Equal(t, events, domainEvents)
}

func Test_DomainEventFrom_UnknownEventType(t *testing.T) {
	// arrange
	storableEvent, err := eventstore.BuildStorableEventWithEmptyMetadata("TicketSold", time.Now(), []byte(`{}`))
	require.NoError(t, err)

	// act
	_, err = shell.DomainEventFrom(storableEvent)

	// assert
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventFailed)
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventUnknownEventType)
}

func Test_DomainEventFrom_BrokenPayload(t *testing.T) {
	// arrange
	storableEvent := eventstore.StorableEvent{EventType: core.ReviewWrittenEventType, PayloadJSON: []byte(`{"MovieID":"x"}`)}

	// act
	_, err := shell.DomainEventFrom(storableEvent)

	// assert
	assert.ErrorIs(t, err, shell.ErrMappingToDomainEventFailed)
}

func Test_DecodableDomainEventsFrom_Skips_What_Does_Not_Map(t *testing.T) {
	// arrange
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	reactionSet := core.BuildReactionSet(603, "r-1", "user-2", core.Smile, now)
	valid, err := shell.StorableEventFrom(reactionSet, shell.NewEventMetadataFor("user-2"))
	require.NoError(t, err)

	broken := eventstore.StorableEvent{EventType: core.ReviewWrittenEventType, PayloadJSON: []byte(`{"Rating":"ten"}`)}
	unknown := eventstore.StorableEvent{EventType: "TicketSold", PayloadJSON: []byte(`{}`)}

	var skipped []string

	// act
	domainEvents := shell.DecodableDomainEventsFrom(
		eventstore.StorableEvents{broken, valid, unknown},
		func(storableEvent eventstore.StorableEvent, err error) {
			assert.ErrorIs(t, err, shell.ErrMappingToDomainEventFailed)
			skipped = append(skipped, storableEvent.EventType)
		},
	)

	// assert
	assert.Equal(t, core.DomainEvents{reactionSet}, domainEvents)
	assert.Equal(t, []string{core.ReviewWrittenEventType, "TicketSold"}, skipped)
	assert.Len(t, shell.DecodableDomainEventsFrom(eventstore.StorableEvents{broken, valid}, nil), 1)
}
