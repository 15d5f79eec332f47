// Package metrics instruments synthesis invocations and the capability
// registry with Prometheus collectors.
//
// Metrics:
//   - shapeshift_synth_invocations_total: invocations by outcome
//   - shapeshift_synth_diagnostics_total: diagnostics by code
//   - shapeshift_synth_blueprints_total: implementations emitted
//   - shapeshift_synth_duration_seconds: invocation duration
//   - shapeshift_registry_registrations_total: registrations by kind
//   - shapeshift_registry_capabilities: resolvable capabilities
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/funvibe/shapeshift/internal/diagnostics"
)

// Config names the metrics. Zero values fall back to shapeshift/synth.
type Config struct {
	Namespace       string
	Subsystem       string
	DurationBuckets []float64
}

// Outcomes of a synthesis invocation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector records metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	invocations   *prometheus.CounterVec
	diagnostics   *prometheus.CounterVec
	blueprints    prometheus.Counter
	duration      prometheus.Histogram
	registrations *prometheus.CounterVec
	capabilities  prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics on registry.
// If registry is nil, a fresh registry is used.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "shapeshift"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "synth"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Synthesis is in-memory work: 10µs to ~100ms.
		cfg.DurationBuckets = prometheus.ExponentialBuckets(0.00001, 4, 8)
	}

	c := &Collector{
		registry: registry,
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "invocations_total",
				Help:      "Total number of synthesis invocations",
			},
			[]string{"outcome"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics reported",
			},
			[]string{"code", "kind"},
		),
		blueprints: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "blueprints_total",
				Help:      "Total number of forwarding implementations emitted",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "duration_seconds",
				Help:      "Duration of synthesis invocations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "registry",
				Name:      "registrations_total",
				Help:      "Total number of capability registrations",
			},
			[]string{"kind"},
		),
		capabilities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: "registry",
				Name:      "capabilities",
				Help:      "Number of resolvable capabilities",
			},
		),
	}

	registry.MustRegister(
		c.invocations,
		c.diagnostics,
		c.blueprints,
		c.duration,
		c.registrations,
		c.capabilities,
	)
	return c
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordInvocation records one finished invocation. err is the aggregated
// diagnostic, or nil on success.
func (c *Collector) RecordInvocation(d time.Duration, blueprints int, err error) {
	if c == nil {
		return
	}
	c.duration.Observe(d.Seconds())
	if err == nil {
		c.invocations.WithLabelValues(OutcomeSuccess).Inc()
		c.blueprints.Add(float64(blueprints))
		return
	}
	c.invocations.WithLabelValues(OutcomeFailure).Inc()
	if agg, ok := diagnostics.AsAggregate(err); ok {
		for _, e := range agg.Errors {
			c.diagnostics.WithLabelValues(string(e.Code), e.Code.Kind()).Inc()
		}
	}
}

// CapabilityRegistered implements capability.Observer.
func (c *Collector) CapabilityRegistered(name string, replaced bool) {
	if c == nil {
		return
	}
	kind := "new"
	if replaced {
		kind = "replaced"
	}
	c.registrations.WithLabelValues(kind).Inc()
}

// RegistrySize implements capability.Observer.
func (c *Collector) RegistrySize(n int) {
	if c == nil {
		return
	}
	c.capabilities.Set(float64(n))
}

// WriteTextfile writes every metric to path in the text exposition format,
// for node exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
