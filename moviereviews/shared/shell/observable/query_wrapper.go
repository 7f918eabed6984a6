package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

// QueryWrapper instruments a shell.QueryHandler.
type QueryWrapper[Q shell.Query, R shell.QueryResult] struct {
	coreHandler shell.QueryHandler[Q, R]
	queryType   string
	observer    shell.Observer
}

// NewQueryWrapper wraps coreHandler. The query type is taken from the zero value of Q.
func NewQueryWrapper[Q shell.Query, R shell.QueryResult](
	coreHandler shell.QueryHandler[Q, R],
	opts ...QueryOption[Q, R],
) (*QueryWrapper[Q, R], error) {

	if coreHandler == nil {
		return nil, ErrNilHandler
	}

	var zeroQuery Q

	wrapper := &QueryWrapper[Q, R]{
		coreHandler: coreHandler,
		queryType:   zeroQuery.QueryType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the wrapped handler and reports the outcome.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	start := time.Now()
	ctx, span := w.observer.Start(ctx, shell.QueryKind, w.queryType)

	result, err := w.coreHandler.Handle(ctx, query)

	w.observer.Finish(ctx, shell.QueryKind, w.queryType, span, shell.ClassifyError(err), time.Since(start), err)

	return result, err
}

// QueryOption configures a QueryWrapper.
type QueryOption[Q shell.Query, R shell.QueryResult] func(*QueryWrapper[Q, R]) error

// WithQueryMetrics sets the metrics collector.
func WithQueryMetrics[Q shell.Query, R shell.QueryResult](collector shell.MetricsCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.observer.Metrics = collector
		return nil
	}
}

// WithQueryTracing sets the tracing collector.
func WithQueryTracing[Q shell.Query, R shell.QueryResult](collector shell.TracingCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.observer.Tracing = collector
		return nil
	}
}

// WithQueryContextualLogging sets the contextual logger.
func WithQueryContextualLogging[Q shell.Query, R shell.QueryResult](logger shell.ContextualLogger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.observer.ContextualLogger = logger
		return nil
	}
}

// WithQueryLogging sets the basic logger.
func WithQueryLogging[Q shell.Query, R shell.QueryResult](logger shell.Logger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.observer.Logger = logger
		return nil
	}
}

// WithQueryObserver sets all collectors at once.
func WithQueryObserver[Q shell.Query, R shell.QueryResult](observer shell.Observer) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.observer = observer
		return nil
	}
}
