package memoryengine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

const (
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logMsgUndecodablePayload  = "skipping event with undecodable payload"
	logAttrEventCount         = "event_count"
	logAttrEventType          = "event_type"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrSequenceNumber     = "sequence_number"
	logAttrError              = "error"

	metricQueryDuration  = "eventstore_query_duration_seconds"
	metricAppendDuration = "eventstore_append_duration_seconds"
	labelOperation       = "operation"
	labelStatus          = "status"
	labelEngine          = "engine"
)

var payloadJSON = jsoniter.Config{UseNumber: true}.Froze()

// EventStore keeps all events in a slice, the sequence number of an event is its index plus one.
type EventStore struct {
	mu               sync.RWMutex
	events           eventstore.StorableEvents
	subscribers      map[int]chan struct{}
	nextSubscriberID int
	logger           eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore)

// WithContextualLogger sets the logger for append and conflict logs.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) {
		es.logger = logger
	}
}

// WithMetrics sets the metrics collector for query and append durations.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) {
		es.metricsCollector = collector
	}
}

// NewEventStore creates an empty EventStore.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{
		events:      make(eventstore.StorableEvents, 0),
		subscribers: make(map[int]chan struct{}),
	}

	for _, option := range options {
		option(es)
	}

	return es
}

// Query returns all events matching the filter in sequence order and the max sequence number among them.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	start := time.Now()

	es.mu.RLock()
	defer es.mu.RUnlock()

	matching, maxSequenceNumber := es.matching(ctx, filter)
	es.recordDuration(metricQueryDuration, "query", time.Since(start))

	return matching, maxSequenceNumber, nil
}

// Append appends the events only if the stream defined by filter still ends at expectedMaxSequenceNumber.
// A sequence lower bound on the filter is ignored here.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	start := time.Now()

	es.mu.Lock()
	defer es.mu.Unlock()

	_, currentMaxSequenceNumber := es.matching(ctx, filter.WithSequenceNumberHigherThan(0))
	if currentMaxSequenceNumber != expectedMaxSequenceNumber {
		if es.logger != nil {
			es.logger.InfoContext(ctx, logMsgConcurrencyConflict, logAttrExpectedSequence, expectedMaxSequenceNumber)
		}

		return eventstore.ErrConcurrencyConflict
	}

	es.appendLocked(ctx, append(eventstore.StorableEvents{event}, additionalEvents...))
	es.recordDuration(metricAppendDuration, "append", time.Since(start))

	return nil
}

// AppendUnconditionally appends the events without a concurrency check.
func (es *EventStore) AppendUnconditionally(
	ctx context.Context,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	start := time.Now()

	es.mu.Lock()
	defer es.mu.Unlock()

	es.appendLocked(ctx, append(eventstore.StorableEvents{event}, additionalEvents...))
	es.recordDuration(metricAppendDuration, "append", time.Since(start))

	return nil
}

// LatestSequenceNumber returns the sequence number of the last appended event, 0 if there is none.
func (es *EventStore) LatestSequenceNumber(_ context.Context) (eventstore.MaxSequenceNumberUint, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return eventstore.MaxSequenceNumberUint(len(es.events)), nil
}

// Listen implements eventstore.AppendListener. The channel is closed when ctx is done.
func (es *EventStore) Listen(ctx context.Context) (<-chan struct{}, error) {
	signals := make(chan struct{}, 1)

	es.mu.Lock()
	id := es.nextSubscriberID
	es.nextSubscriberID++
	es.subscribers[id] = signals
	es.mu.Unlock()

	go func() {
		<-ctx.Done()

		es.mu.Lock()
		delete(es.subscribers, id)
		close(signals)
		es.mu.Unlock()
	}()

	return signals, nil
}

func (es *EventStore) appendLocked(ctx context.Context, events eventstore.StorableEvents) {
	for _, event := range events {
		event.SequenceNumber = eventstore.MaxSequenceNumberUint(len(es.events) + 1)
		es.events = append(es.events, event)
	}

	if es.logger != nil {
		es.logger.DebugContext(ctx, logMsgEventsAppended,
			logAttrEventCount, len(events),
			logAttrEventType, events[0].EventType,
			logAttrSequenceNumber, len(es.events))
	}

	for _, signals := range es.subscribers {
		eventstore.Signal(signals)
	}
}

func (es *EventStore) matching(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
) {

	matching := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, event := range es.events[min(int(filter.SequenceNumberHigherThan()), len(es.events)):] { //nolint:gosec
		if !es.matches(ctx, filter, event) {
			continue
		}

		matching = append(matching, event)
		maxSequenceNumber = event.SequenceNumber
	}

	return matching, maxSequenceNumber
}

func (es *EventStore) matches(ctx context.Context, filter eventstore.Filter, event eventstore.StorableEvent) bool {
	if len(filter.Items()) == 0 {
		return true
	}

	var payload map[string]any

	for _, item := range filter.Items() {
		if len(item.EventTypes()) > 0 && !containsEventType(item.EventTypes(), event.EventType) {
			continue
		}

		if len(item.Predicates()) == 0 {
			return true
		}

		if payload == nil {
			if err := payloadJSON.Unmarshal(event.PayloadJSON, &payload); err != nil {
				if es.logger != nil {
					es.logger.WarnContext(ctx, logMsgUndecodablePayload, logAttrSequenceNumber, event.SequenceNumber, logAttrError, err.Error())
				}

				return false
			}
		}

		if predicatesMatch(item, payload) {
			return true
		}
	}

	return false
}

func containsEventType(eventTypes []eventstore.FilterEventTypeString, eventType string) bool {
	for _, candidate := range eventTypes {
		if candidate == eventType {
			return true
		}
	}

	return false
}

func predicatesMatch(item eventstore.FilterItem, payload map[string]any) bool {
	for _, predicate := range item.Predicates() {
		matched := predicateMatches(predicate, payload)

		if item.AllPredicatesMustMatch() && !matched {
			return false
		}

		if !item.AllPredicatesMustMatch() && matched {
			return true
		}
	}

	return item.AllPredicatesMustMatch()
}

func predicateMatches(predicate eventstore.FilterPredicate, payload map[string]any) bool {
	actual, found := payload[predicate.Key()]
	if !found {
		return false
	}

	var expected any
	if err := payloadJSON.UnmarshalFromString(predicate.JSONLiteral(), &expected); err != nil {
		return false
	}

	return reflect.DeepEqual(actual, expected)
}

func (es *EventStore) recordDuration(metric string, operation string, duration time.Duration) {
	if es.metricsCollector == nil {
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, map[string]string{
		labelOperation: operation,
		labelStatus:    "success",
		labelEngine:    "memory",
	})
}
