// Package observable decorates command and query handlers with metrics, tracing and logging.
//
// The wrapped handlers contain business logic only. Every outcome is classified as one of
// success, idempotent, rejected, canceled, timeout, concurrency_conflict or error and reported
// through the configured collectors:
//
//	handler, err := observable.NewCommandWrapper[submitreview.Command](
//	    submitreview.NewCommandHandler(adapter),
//	    observable.WithCommandMetrics[submitreview.Command](metrics),
//	    observable.WithCommandContextualLogging[submitreview.Command](logger),
//	)
package observable
