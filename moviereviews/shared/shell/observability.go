package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/core"
)

const (
	CommandHandlerDurationMetric            = "commandhandler_handle_duration_seconds"
	CommandHandlerCallsMetric               = "commandhandler_handle_calls_total"
	CommandHandlerIdempotentMetric          = "commandhandler_idempotent_operations_total"
	CommandHandlerRejectedMetric            = "commandhandler_rejected_operations_total"
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"
	QueryHandlerCallsMetric    = "queryhandler_handle_calls_total"
)

const (
	StatusSuccess             = "success"
	StatusError               = "error"
	StatusIdempotent          = "idempotent"
	StatusRejected            = "rejected" // validation or authentication, a business outcome
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusConcurrencyConflict = "concurrency_conflict"
)

const (
	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryRejected    = "query handler rejected"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType = "command_type"
	LogAttrQueryType   = "query_type"
	LogAttrStatus      = "status"
	LogAttrDurationMS  = "duration_ms"
	LogAttrError       = "error"

	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

// Aliases of the eventstore observability interfaces, so slices don't import eventstore for them.
type (
	MetricsCollector           = eventstore.MetricsCollector
	ContextualMetricsCollector = eventstore.ContextualMetricsCollector
	TracingCollector           = eventstore.TracingCollector
	SpanContext                = eventstore.SpanContext
	ContextualLogger           = eventstore.ContextualLogger
	Logger                     = eventstore.Logger
)

// HandlerKind selects the metric names, span name and log messages for commands or queries.
type HandlerKind struct {
	durationMetric string
	callsMetric    string
	spanName       string
	typeAttr       string
	msgStarted     string
	msgCompleted   string
	msgRejected    string
	msgFailed      string
}

var (
	CommandKind = HandlerKind{
		durationMetric: CommandHandlerDurationMetric,
		callsMetric:    CommandHandlerCallsMetric,
		spanName:       SpanNameCommandHandle,
		typeAttr:       LogAttrCommandType,
		msgStarted:     LogMsgCommandStarted,
		msgCompleted:   LogMsgCommandCompleted,
		msgRejected:    LogMsgCommandRejected,
		msgFailed:      LogMsgCommandFailed,
	}

	QueryKind = HandlerKind{
		durationMetric: QueryHandlerDurationMetric,
		callsMetric:    QueryHandlerCallsMetric,
		spanName:       SpanNameQueryHandle,
		typeAttr:       LogAttrQueryType,
		msgStarted:     LogMsgQueryStarted,
		msgCompleted:   LogMsgQueryCompleted,
		msgRejected:    LogMsgQueryRejected,
		msgFailed:      LogMsgQueryFailed,
	}
)

// Observer bundles the optional collectors. A nil field disables that concern.
type Observer struct {
	Metrics          MetricsCollector
	Tracing          TracingCollector
	ContextualLogger ContextualLogger
	Logger           Logger
}

// IsCancellationError checks if the error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if the error is due to a context deadline.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if the conditional append lost against a concurrent writer.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}

// IsRejectedError is true for validation and authentication failures.
func IsRejectedError(err error) bool {
	return errors.Is(err, core.ErrValidationFailed) || errors.Is(err, core.ErrAuthenticationRequired)
}

// ClassifyError maps a handler error to a status.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsRejectedError(err):
		return StatusRejected
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	default:
		return StatusError
	}
}

// ToMilliseconds converts a duration to milliseconds rounded to 3 decimals.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Round(time.Microsecond).Microseconds()) / 1e3
}

// Start opens a span and logs the start of handling.
func (o Observer) Start(ctx context.Context, kind HandlerKind, handlerType string) (context.Context, SpanContext) {
	var span SpanContext
	if o.Tracing != nil {
		ctx, span = o.Tracing.StartSpan(ctx, kind.spanName, map[string]string{kind.typeAttr: handlerType})
	}

	o.log(ctx, infoLevel, kind.msgStarted, kind.typeAttr, handlerType)

	return ctx, span
}

// Finish records metrics, closes the span and logs the outcome.
func (o Observer) Finish(
	ctx context.Context,
	kind HandlerKind,
	handlerType string,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {

	o.recordMetrics(ctx, kind, handlerType, status, duration)
	o.finishSpan(span, status, duration, err)

	switch {
	case err == nil:
		o.log(ctx, infoLevel, kind.msgCompleted,
			kind.typeAttr, handlerType,
			LogAttrStatus, status,
			LogAttrDurationMS, ToMilliseconds(duration),
		)
	case status == StatusRejected:
		o.log(ctx, infoLevel, kind.msgRejected,
			kind.typeAttr, handlerType,
			LogAttrError, err.Error(),
		)
	default:
		o.log(ctx, errorLevel, kind.msgFailed,
			kind.typeAttr, handlerType,
			LogAttrStatus, status,
			LogAttrError, err.Error(),
		)
	}
}

func (o Observer) recordMetrics(ctx context.Context, kind HandlerKind, handlerType, status string, duration time.Duration) {
	if o.Metrics == nil {
		return
	}

	labels := map[string]string{kind.typeAttr: handlerType, LogAttrStatus: status}

	o.incrementCounter(ctx, kind.callsMetric, labels)
	o.recordDuration(ctx, kind.durationMetric, duration, labels)

	if kind.callsMetric != CommandHandlerCallsMetric {
		return
	}

	switch status {
	case StatusIdempotent:
		o.incrementCounter(ctx, CommandHandlerIdempotentMetric, labels)
	case StatusRejected:
		o.incrementCounter(ctx, CommandHandlerRejectedMetric, labels)
	case StatusConcurrencyConflict:
		o.incrementCounter(ctx, CommandHandlerConcurrencyConflictMetric, labels)
	}
}

func (o Observer) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if contextual, ok := o.Metrics.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	o.Metrics.IncrementCounter(metric, labels)
}

func (o Observer) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if contextual, ok := o.Metrics.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	o.Metrics.RecordDuration(metric, duration, labels)
}

func (o Observer) finishSpan(span SpanContext, status string, duration time.Duration, err error) {
	if o.Tracing == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.3f", ToMilliseconds(duration)),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	o.Tracing.FinishSpan(span, status, attrs)
}

type logLevel int

const (
	infoLevel logLevel = iota
	errorLevel
)

func (o Observer) log(ctx context.Context, level logLevel, msg string, args ...any) {
	if o.ContextualLogger != nil {
		if level == errorLevel {
			o.ContextualLogger.ErrorContext(ctx, msg, args...)
		} else {
			o.ContextualLogger.InfoContext(ctx, msg, args...)
		}

		return
	}

	if o.Logger != nil {
		if level == errorLevel {
			o.Logger.Error(msg, args...)
		} else {
			o.Logger.Info(msg, args...)
		}
	}
}
