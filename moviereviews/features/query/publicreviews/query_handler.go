package publicreviews

import (
	"context"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

const (
	logMsgSkippedEvent  = "publicreviews: skipped undecodable event"
	logMsgSkippedReview = "publicreviews: skipped malformed review"

	logAttrEventType = "event_type"
	logAttrReviewID  = "review_id"
	logAttrError     = "error"
)

// QueryHandler handles only business logic: Query → Unmarshal → Project.
// It reads with the store's default consistency, a slightly stale public feed is acceptable.
// Events that do not decode and reviews that are not showable are skipped, never fatal.
type QueryHandler struct {
	eventStore shell.QueriesEvents
	logger     eventstore.ContextualLogger
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithContextualLogger sets the logger for skipped events and reviews.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(h *QueryHandler) {
		h.logger = logger
	}
}

// NewQueryHandler creates a new QueryHandler with the provided event store dependency.
func NewQueryHandler(eventStore shell.QueriesEvents, options ...Option) QueryHandler {
	h := QueryHandler{
		eventStore: eventStore,
	}

	for _, option := range options {
		option(&h)
	}

	return h
}

// Handle executes the query.
func (h QueryHandler) Handle(ctx context.Context, query Query) (PublicReviews, error) {
	if err := query.validate(); err != nil {
		return PublicReviews{}, err
	}

	storableEvents, maxSequenceNumber, err := h.eventStore.Query(ctx, BuildEventFilter())
	if err != nil {
		return PublicReviews{}, err
	}

	history := shell.DecodableDomainEventsFrom(storableEvents, func(storableEvent eventstore.StorableEvent, err error) {
		if h.logger != nil {
			h.logger.WarnContext(ctx, logMsgSkippedEvent,
				logAttrEventType, storableEvent.EventType,
				logAttrError, err.Error())
		}
	})

	result := Project(history, query, maxSequenceNumber)

	if h.logger != nil {
		for reviewID, reason := range result.Skipped {
			h.logger.WarnContext(ctx, logMsgSkippedReview,
				logAttrReviewID, reviewID,
				logAttrError, reason.Error())
		}
	}

	return result, nil
}
