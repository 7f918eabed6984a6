package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

const (
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSchemaEnsured            = "schema ensured"
	logMsgListenerStarted          = "listener started"
	logMsgListenerStopped          = "listener stopped"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "

	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedEvents   = "expected_events"
	logAttrRowsAffected     = "rows_affected"
	logAttrExpectedSequence = "expected_sequence"
	logAttrConsistency      = "consistency"
	logAttrTable            = "table"
	logAttrChannel          = "channel"

	logActionQuery  = "query"
	logActionAppend = "append"
	logActionSchema = "schema"

	metricQueryDuration        = "eventstore_query_duration_seconds"
	metricAppendDuration       = "eventstore_append_duration_seconds"
	metricEventsQueried        = "eventstore_events_queried_total"
	metricEventsAppended       = "eventstore_events_appended_total"
	metricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "eventstore_database_errors_total"

	spanNameQuery  = "eventstore.query"
	spanNameAppend = "eventstore.append"

	spanAttrOperation    = "operation"
	spanAttrEventCount   = "event_count"
	spanAttrEventType    = "event_type"
	spanAttrExpectedSeq  = "expected_sequence"
	spanAttrMaxSequence  = "max_sequence"
	spanAttrRowsAffected = "rows_affected"
	spanAttrDurationMS   = "duration_ms"
	spanAttrErrorType    = "error_type"

	labelOperation    = "operation"
	labelStatus       = "status"
	labelErrorType    = "error_type"
	labelConflictType = "conflict_type"

	operationQuery  = "query"
	operationAppend = "append"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery          = "build_query"
	errorTypeDatabaseQuery       = "database_query"
	errorTypeDatabaseExec        = "database_exec"
	errorTypeRowScan             = "row_scan"
	errorTypeConcurrencyConflict = "concurrency_conflict"
)

/***** Logging *****/

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (es *EventStore) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	es.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, es.toMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level.
func (es *EventStore) logOperation(ctx context.Context, action string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level.
func (es *EventStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if es.contextualLogger != nil {
		es.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if es.logger != nil {
		es.logger.Error(message, allArgs...)
	}
}

func (es *EventStore) logWarn(ctx context.Context, message string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if es.logger != nil {
		es.logger.Warn(message, args...)
	}
}

func (es *EventStore) logDebug(ctx context.Context, message string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.DebugContext(ctx, message, args...)
		return
	}

	if es.logger != nil {
		es.logger.Debug(message, args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (es *EventStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

/***** Metrics *****/

func (es *EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, labels)
}

func (es *EventStore) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metric, value, labels)
}

func (es *EventStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metric, labels)
}

// queryMetricsObserver encapsulates the metrics collection for query operations.
type queryMetricsObserver struct {
	es  *EventStore
	ctx context.Context
}

// appendMetricsObserver encapsulates the metrics collection for append operations.
type appendMetricsObserver struct {
	es  *EventStore
	ctx context.Context
}

func (es *EventStore) startQueryMetrics(ctx context.Context) *queryMetricsObserver {
	return &queryMetricsObserver{es: es, ctx: ctx}
}

func (es *EventStore) startAppendMetrics(ctx context.Context) *appendMetricsObserver {
	return &appendMetricsObserver{es: es, ctx: ctx}
}

func (qmo *queryMetricsObserver) recordSuccess(eventStream eventstore.StorableEvents, duration time.Duration) {
	labels := map[string]string{labelOperation: operationQuery, labelStatus: statusSuccess}
	qmo.es.recordDuration(qmo.ctx, metricQueryDuration, duration, labels)
	qmo.es.recordValue(qmo.ctx, metricEventsQueried, float64(len(eventStream)), labels)
}

func (qmo *queryMetricsObserver) recordError(errorType string, duration time.Duration) {
	qmo.es.recordDuration(qmo.ctx, metricQueryDuration, duration, map[string]string{labelOperation: operationQuery, labelStatus: statusError})
	qmo.es.incrementCounter(qmo.ctx, metricDatabaseErrors, map[string]string{
		labelOperation: operationQuery,
		labelStatus:    statusError,
		labelErrorType: errorType,
	})
}

func (amo *appendMetricsObserver) recordSuccess(eventCount int, duration time.Duration) {
	labels := map[string]string{labelOperation: operationAppend, labelStatus: statusSuccess}
	amo.es.recordDuration(amo.ctx, metricAppendDuration, duration, labels)
	amo.es.recordValue(amo.ctx, metricEventsAppended, float64(eventCount), labels)
}

func (amo *appendMetricsObserver) recordError(errorType string, duration time.Duration) {
	amo.es.recordDuration(amo.ctx, metricAppendDuration, duration, map[string]string{labelOperation: operationAppend, labelStatus: statusError})
	amo.es.incrementCounter(amo.ctx, metricDatabaseErrors, map[string]string{
		labelOperation: operationAppend,
		labelStatus:    statusError,
		labelErrorType: errorType,
	})
}

func (amo *appendMetricsObserver) recordConcurrencyConflict() {
	amo.es.incrementCounter(amo.ctx, metricConcurrencyConflicts, map[string]string{
		labelOperation:    operationAppend,
		labelConflictType: "concurrency",
	})
}

/***** Tracing *****/

// queryTracingObserver encapsulates the span lifecycle of a query operation.
type queryTracingObserver struct {
	es   *EventStore
	span eventstore.SpanContext
}

// appendTracingObserver encapsulates the span lifecycle of an append operation.
type appendTracingObserver struct {
	es   *EventStore
	span eventstore.SpanContext
}

func (es *EventStore) startQueryTracing(ctx context.Context) (*queryTracingObserver, context.Context) {
	if es.tracingCollector == nil {
		return &queryTracingObserver{es: es}, ctx
	}

	newCtx, span := es.tracingCollector.StartSpan(ctx, spanNameQuery, map[string]string{
		spanAttrOperation: operationQuery,
	})

	return &queryTracingObserver{es: es, span: span}, newCtx
}

func (es *EventStore) startAppendTracing(
	ctx context.Context,
	events eventstore.StorableEvents,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (*appendTracingObserver, context.Context) {

	if es.tracingCollector == nil {
		return &appendTracingObserver{es: es}, ctx
	}

	attrs := map[string]string{
		spanAttrOperation:   operationAppend,
		spanAttrEventCount:  fmt.Sprintf("%d", len(events)),
		spanAttrExpectedSeq: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	}

	if len(events) > 0 {
		attrs[spanAttrEventType] = events[0].EventType
	}

	newCtx, span := es.tracingCollector.StartSpan(ctx, spanNameAppend, attrs)

	return &appendTracingObserver{es: es, span: span}, newCtx
}

func (qto *queryTracingObserver) finishSuccess(
	eventStream eventstore.StorableEvents,
	maxSequenceNumber eventstore.MaxSequenceNumberUint,
	duration time.Duration,
) {

	if qto.span == nil {
		return
	}

	qto.es.tracingCollector.FinishSpan(qto.span, statusSuccess, map[string]string{
		spanAttrEventCount:  fmt.Sprintf("%d", len(eventStream)),
		spanAttrMaxSequence: fmt.Sprintf("%d", maxSequenceNumber),
		spanAttrDurationMS:  qto.es.formatDuration(duration),
	})
}

func (qto *queryTracingObserver) finishError(errorType string, duration time.Duration) {
	if qto.span == nil {
		return
	}

	qto.es.tracingCollector.FinishSpan(qto.span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: qto.es.formatDuration(duration),
	})
}

func (ato *appendTracingObserver) finishSuccess(rowsAffected int64, duration time.Duration) {
	if ato.span == nil {
		return
	}

	ato.es.tracingCollector.FinishSpan(ato.span, statusSuccess, map[string]string{
		spanAttrRowsAffected: fmt.Sprintf("%d", rowsAffected),
		spanAttrDurationMS:   ato.es.formatDuration(duration),
	})
}

func (ato *appendTracingObserver) finishError(errorType string, duration time.Duration) {
	ato.finishErrorWithAttrs(errorType, map[string]string{spanAttrDurationMS: ato.es.formatDuration(duration)})
}

func (ato *appendTracingObserver) finishErrorWithAttrs(errorType string, attrs map[string]string) {
	if ato.span == nil {
		return
	}

	allAttrs := map[string]string{spanAttrErrorType: errorType}
	for key, value := range attrs {
		allAttrs[key] = value
	}

	ato.es.tracingCollector.FinishSpan(ato.span, statusError, allAttrs)
}

func (es *EventStore) formatDuration(duration time.Duration) string {
	return fmt.Sprintf("%.3f", es.toMilliseconds(duration))
}
