// Package promadapters implements eventstore.MetricsCollector with the Prometheus client library.
//
// Durations become histograms in seconds, counters become counter vectors and values become gauges.
// The label names of a metric are fixed by its first use, later calls fill missing labels with ""
// and drop labels the metric was not declared with.
package promadapters
