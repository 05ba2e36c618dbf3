// Package prometheus exposes synchronisation metrics in the Prometheus
// text format.
package prometheus

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/gateway-sync/internal/core/domain"
	"github.com/custodia-labs/gateway-sync/internal/core/ports/driven"
)

const (
	namespace = "gateway"
	subsystem = "sync"
)

// Ensure Metrics implements the interface.
var _ driven.SyncMetrics = (*Metrics)(nil)

// Metrics records synchronisation observations in its own registry.
type Metrics struct {
	registry  *prom.Registry
	artifacts *prom.CounterVec
	failures  *prom.CounterVec
	scans     *prom.HistogramVec
}

// New creates the metric set. Go runtime and process collectors are
// registered alongside.
func New() *Metrics {
	m := &Metrics{
		registry: prom.NewRegistry(),
		artifacts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "artifacts_total",
			Help:      "Change gate decisions by artifact kind and outcome.",
		}, []string{"kind", "outcome"}),
		failures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "Contained failures by pipeline stage.",
		}, []string{"stage"}),
		scans: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scan_duration_seconds",
			Help:      "The number of seconds a pass over the source directory takes.",
			Buckets:   prom.DefBuckets,
		}, []string{"trigger"}),
	}

	m.registry.MustRegister(
		m.artifacts,
		m.failures,
		m.scans,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveArtifact counts one change gate decision.
func (m *Metrics) ObserveArtifact(kind domain.ArtifactKind, outcome domain.WriteOutcome) {
	m.artifacts.WithLabelValues(kind.String(), outcome.String()).Inc()
}

// ObserveFailure counts a contained failure at the given stage.
func (m *Metrics) ObserveFailure(stage string) {
	m.failures.WithLabelValues(stage).Inc()
}

// ObserveScan records a completed pass.
func (m *Metrics) ObserveScan(trigger domain.Trigger, duration time.Duration) {
	m.scans.WithLabelValues(trigger.String()).Observe(duration.Seconds())
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
