package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
	"github.com/AntonStoeckl/reviewfeed/eventstore/oteladapters"
	"github.com/AntonStoeckl/reviewfeed/eventstore/promadapters"
	"github.com/AntonStoeckl/reviewfeed/moviereviews/shared/shell/config"
)

const telemetryShutdownTimeout = 5 * time.Second

// telemetry holds the collectors handed to the event store and the handler wrappers.
// A nil collector disables that concern.
type telemetry struct {
	registry       *prometheus.Registry
	metrics        eventstore.MetricsCollector
	tracing        eventstore.TracingCollector
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

func newTelemetry(ctx context.Context, cfg config.TelemetryConfig) (*telemetry, error) {
	t := &telemetry{registry: prometheus.NewRegistry()}
	t.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry resource: %w", err)
	}

	switch cfg.Metrics {
	case config.MetricsPrometheus:
		t.metrics = promadapters.NewMetricsCollector(t.registry)
	case config.MetricsOTel:
		// TODO: attach an OTLP metric reader once a collector endpoint is part of the telemetry config.
		t.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		otel.SetMeterProvider(t.meterProvider)
		t.metrics = oteladapters.NewMetricsCollector(t.meterProvider.Meter(cfg.ServiceName))
	}

	if cfg.Tracing {
		t.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		otel.SetTracerProvider(t.tracerProvider)
		t.tracing = oteladapters.NewTracingCollector(t.tracerProvider.Tracer(cfg.ServiceName))
	}

	return t, nil
}

func (t *telemetry) shutdown(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			logger.WarnContext(ctx, "tracer provider shutdown failed", "error", err.Error())
		}
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			logger.WarnContext(ctx, "meter provider shutdown failed", "error", err.Error())
		}
	}
}
