package observable

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell"
)

// ErrNilHandler is returned when there is nothing to wrap.
var ErrNilHandler = errors.New("nil handler supplied")

// CommandWrapper instruments a shell.CommandHandler.
type CommandWrapper[C shell.Command] struct {
	coreHandler shell.CommandHandler[C]
	commandType string
	observer    shell.Observer
}

// NewCommandWrapper wraps coreHandler. The command type is taken from the zero value of C.
func NewCommandWrapper[C shell.Command](
	coreHandler shell.CommandHandler[C],
	opts ...CommandOption[C],
) (*CommandWrapper[C], error) {

	if coreHandler == nil {
		return nil, ErrNilHandler
	}

	var zeroCommand C

	wrapper := &CommandWrapper[C]{
		coreHandler: coreHandler,
		commandType: zeroCommand.CommandType(),
	}

	for _, opt := range opts {
		if err := opt(wrapper); err != nil {
			return nil, err
		}
	}

	return wrapper, nil
}

// Handle delegates to the wrapped handler and reports the outcome.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	start := time.Now()
	ctx, span := w.observer.Start(ctx, shell.CommandKind, w.commandType)

	result, err := w.coreHandler.Handle(ctx, command)

	status := shell.ClassifyError(err)
	if err == nil && result.Idempotent {
		status = shell.StatusIdempotent
	}

	w.observer.Finish(ctx, shell.CommandKind, w.commandType, span, status, time.Since(start), err)

	return result, err
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

// WithCommandMetrics sets the metrics collector.
func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.observer.Metrics = collector
		return nil
	}
}

// WithCommandTracing sets the tracing collector.
func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.observer.Tracing = collector
		return nil
	}
}

// WithCommandContextualLogging sets the contextual logger, which is preferred over the basic one.
func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.observer.ContextualLogger = logger
		return nil
	}
}

// WithCommandLogging sets the basic logger.
func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.observer.Logger = logger
		return nil
	}
}

// WithCommandObserver sets all collectors at once.
func WithCommandObserver[C shell.Command](observer shell.Observer) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.observer = observer
		return nil
	}
}
