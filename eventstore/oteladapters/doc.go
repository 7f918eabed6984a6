// Package oteladapters implements the eventstore observability interfaces on top of OpenTelemetry.
//
// The service wires these collectors into the postgres engine, the memory engine, the command and
// query handlers and the feed controller when telemetry.metrics is "otel" or tracing is enabled.
package oteladapters
