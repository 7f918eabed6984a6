// Package helper provides test spies for the dependency-free observability interfaces:
// a slog.Handler that captures records, a MetricsCollector and a TracingCollector.
package helper
