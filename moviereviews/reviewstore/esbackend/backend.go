package esbackend

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/reviewstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

const (
	logMsgSkippedEvent    = "esbackend: skipped undecodable review event"
	logMsgTailerStarted   = "esbackend: tailer started"
	logMsgTailerStopped   = "esbackend: tailer stopped"
	logMsgListenerClosed  = "esbackend: append listener closed, listening again"
	logMsgCatchUpFailed   = "esbackend: catching up with appended events failed"
	logMsgNotified        = "esbackend: notified subscribers"
	logAttrSequenceNumber = "sequence_number"
	logAttrMovieCount     = "movie_count"
	logAttrError          = "error"

	defaultRelistenDelay = time.Second
)

// ErrNilEventStore is returned by New without an event store.
var ErrNilEventStore = errors.New("event store must not be nil")

// EventStore is the part of an event store engine this backend needs.
type EventStore interface {
	shell.QueriesEvents
	shell.AppendsEventsUnconditionally
	LatestSequenceNumber(ctx context.Context) (eventstore.MaxSequenceNumberUint, error)
}

// Backend keeps reviews and reactions as events.
type Backend struct {
	store         EventStore
	listener      eventstore.AppendListener
	hub           *reviewstore.Hub
	logger        eventstore.ContextualLogger
	clock         func() time.Time
	relistenDelay time.Duration
}

// Option configures a Backend.
type Option func(*Backend)

// WithContextualLogger sets the logger for skipped events and the tailer.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithClock replaces time.Now as the source of OccurredAt.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		b.clock = clock
	}
}

// WithRelistenDelay sets the pause before listening again after the listener channel closed.
func WithRelistenDelay(delay time.Duration) Option {
	return func(b *Backend) {
		b.relistenDelay = delay
	}
}

// New creates a Backend. The listener may be nil, then only writes through this Backend notify subscribers.
func New(store EventStore, listener eventstore.AppendListener, options ...Option) (*Backend, error) {
	if store == nil {
		return nil, ErrNilEventStore
	}

	b := &Backend{
		store:         store,
		listener:      listener,
		clock:         time.Now,
		relistenDelay: defaultRelistenDelay,
	}

	for _, option := range options {
		option(b)
	}

	b.hub = reviewstore.NewHub(b.load, b.logger)

	return b, nil
}

// SubscribeReviews implements reviewstore.Backend.
func (b *Backend) SubscribeReviews(
	ctx context.Context,
	movieID core.MovieID,
	onChange func([]reviewstore.RawRecord),
) (func(), error) {
	return b.hub.Subscribe(ctx, movieID, onChange)
}

// PushReview appends a ReviewWritten event with a new time-ordered id.
func (b *Backend) PushReview(
	ctx context.Context,
	movieID core.MovieID,
	document reviewstore.Document,
) (core.ReviewID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	reviewID := id.String()

	event := core.BuildReviewWritten(reviewID, document.Draft(movieID), b.clock())

	if err = b.append(ctx, event, document.UserID); err != nil {
		return "", err
	}

	b.hub.Notify(movieID)

	return reviewID, nil
}

// ReadReaction folds the reaction events of one user on one review.
func (b *Backend) ReadReaction(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
) (string, error) {
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf(core.ReactionSetEventType, core.ReactionClearedEventType).
		AndAllPredicatesOf(
			eventstore.PInt("MovieID", int64(movieID)),
			eventstore.P("ReviewID", reviewID),
			eventstore.P("UserID", userID),
		).
		Finalize()

	storableEvents, _, err := b.store.Query(eventstore.WithStrongConsistency(ctx), filter)
	if err != nil {
		return "", err
	}

	current := core.NoReaction

	for _, storableEvent := range storableEvents {
		domainEvent, mapErr := shell.DomainEventFrom(storableEvent)
		if mapErr != nil {
			b.logSkipped(ctx, storableEvent, mapErr)
			continue
		}

		switch e := domainEvent.(type) {
		case core.ReactionSet:
			current = e.Symbol
		case core.ReactionCleared:
			current = core.NoReaction
		}
	}

	return current.Emoji(), nil
}

// WriteReaction appends ReactionSet for a symbol or ReactionCleared for "".
func (b *Backend) WriteReaction(
	ctx context.Context,
	movieID core.MovieID,
	reviewID core.ReviewID,
	userID core.UserID,
	symbol string,
) error {
	var event core.DomainEvent

	if symbol == "" {
		event = core.BuildReactionCleared(movieID, reviewID, userID, b.clock())
	} else {
		parsed, err := core.ParseReactionSymbol(symbol)
		if err != nil {
			return err
		}

		event = core.BuildReactionSet(movieID, reviewID, userID, parsed, b.clock())
	}

	if err := b.append(ctx, event, userID); err != nil {
		return err
	}

	b.hub.Notify(movieID)

	return nil
}

func (b *Backend) append(ctx context.Context, event core.DomainEvent, actorID core.UserID) error {
	storableEvent, err := shell.StorableEventFrom(event, shell.NewEventMetadataFor(actorID))
	if err != nil {
		return err
	}

	return b.store.AppendUnconditionally(ctx, storableEvent)
}

func (b *Backend) logSkipped(ctx context.Context, storableEvent eventstore.StorableEvent, err error) {
	if b.logger != nil {
		b.logger.WarnContext(ctx, logMsgSkippedEvent,
			logAttrSequenceNumber, storableEvent.SequenceNumber,
			logAttrError, err.Error())
	}
}
