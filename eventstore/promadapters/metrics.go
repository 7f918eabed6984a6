package promadapters

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/reviewfeed/eventstore"
)

// MetricsCollector registers its vectors on the given Registerer lazily.
type MetricsCollector struct {
	reg       prometheus.Registerer
	namespace string
	buckets   []float64

	mu         sync.Mutex
	histograms map[string]labeled[*prometheus.HistogramVec]
	counters   map[string]labeled[*prometheus.CounterVec]
	gauges     map[string]labeled[*prometheus.GaugeVec]
}

type labeled[V any] struct {
	vec    V
	labels []string
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithNamespace prefixes all metric names, e.g. "reviewfeed".
func WithNamespace(namespace string) Option {
	return func(m *MetricsCollector) {
		m.namespace = namespace
	}
}

// WithBuckets overrides prometheus.DefBuckets for duration histograms.
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = slices.Clone(buckets)
	}
}

// NewMetricsCollector creates a collector. A nil Registerer means prometheus.DefaultRegisterer.
func NewMetricsCollector(reg prometheus.Registerer, options ...Option) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsCollector{
		reg:        reg,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]labeled[*prometheus.HistogramVec]),
		counters:   make(map[string]labeled[*prometheus.CounterVec]),
		gauges:     make(map[string]labeled[*prometheus.GaugeVec]),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	h, ok := m.histogram(metric, labels)
	if !ok {
		return
	}

	h.vec.WithLabelValues(labelValues(h.labels, labels)...).Observe(duration.Seconds())
}

func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	c, ok := m.counter(metric, labels)
	if !ok {
		return
	}

	c.vec.WithLabelValues(labelValues(c.labels, labels)...).Inc()
}

func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	g, ok := m.gauge(metric, labels)
	if !ok {
		return
	}

	g.vec.WithLabelValues(labelValues(g.labels, labels)...).Set(value)
}

func (m *MetricsCollector) histogram(name string, labels map[string]string) (labeled[*prometheus.HistogramVec], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h, true
	}

	names := labelNames(labels)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      "Duration of " + name + " in seconds",
		Buckets:   m.buckets,
	}, names)

	registered, ok := register(m.reg, vec)
	if !ok {
		return labeled[*prometheus.HistogramVec]{}, false
	}

	h := labeled[*prometheus.HistogramVec]{vec: registered, labels: names}
	m.histograms[name] = h

	return h, true
}

func (m *MetricsCollector) counter(name string, labels map[string]string) (labeled[*prometheus.CounterVec], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c, true
	}

	names := labelNames(labels)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      "Total of " + name,
	}, names)

	registered, ok := register(m.reg, vec)
	if !ok {
		return labeled[*prometheus.CounterVec]{}, false
	}

	c := labeled[*prometheus.CounterVec]{vec: registered, labels: names}
	m.counters[name] = c

	return c, true
}

func (m *MetricsCollector) gauge(name string, labels map[string]string) (labeled[*prometheus.GaugeVec], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gauges[name]; ok {
		return g, true
	}

	names := labelNames(labels)
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      "Current value of " + name,
	}, names)

	registered, ok := register(m.reg, vec)
	if !ok {
		return labeled[*prometheus.GaugeVec]{}, false
	}

	g := labeled[*prometheus.GaugeVec]{vec: registered, labels: names}
	m.gauges[name] = g

	return g, true
}

// register reuses a vector that was registered before with the same descriptor,
// e.g. by a second collector sharing the registry.
func register[V prometheus.Collector](reg prometheus.Registerer, vec V) (V, bool) {
	err := reg.Register(vec)
	if err == nil {
		return vec, true
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(V); ok {
			return existing, true
		}
	}

	var zero V

	return zero, false
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for key := range labels {
		names = append(names, key)
	}

	slices.Sort(names)

	return names
}

func labelValues(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

var _ eventstore.MetricsCollector = (*MetricsCollector)(nil)
