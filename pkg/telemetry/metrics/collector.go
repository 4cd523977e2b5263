package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "auditum"
	subsystem = "callisto"
)

// Collector owns the Prometheus metrics for the audit pipeline.
type Collector struct {
	registry *prometheus.Registry

	auditsTotal       *prometheus.CounterVec
	auditDuration     prometheus.Histogram
	findingsTotal     *prometheus.CounterVec
	collectorRuns     *prometheus.CounterVec
	collectorDuration *prometheus.HistogramVec
	apiCallsTotal     prometheus.Counter
	apiErrorsTotal    prometheus.Counter
	rateLimitedTotal  prometheus.Counter
	circuitState      prometheus.Gauge
	riskScore         prometheus.Gauge
}

// NewCollector creates a metrics collector backed by registry. If registry
// is nil a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		auditsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "audits_total",
			Help:      "Completed audit runs by outcome.",
		}, []string{"outcome"}),
		auditDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "audit_duration_seconds",
			Help:      "End-to-end audit duration.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		findingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "findings_total",
			Help:      "Findings produced by audits, by severity.",
		}, []string{"severity"}),
		collectorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "collector_runs_total",
			Help:      "Collector executions by collector name and status.",
		}, []string{"collector", "status"}),
		collectorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "collector_duration_seconds",
			Help:      "Per-collector execution duration.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		}, []string{"collector"}),
		apiCallsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_api_calls_total",
			Help:      "Successful AI provider API calls.",
		}),
		apiErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_api_errors_total",
			Help:      "Failed AI provider API calls.",
		}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter or circuit breaker.",
		}),
		circuitState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
		riskScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_risk_score",
			Help:      "Risk score of the most recent audit (0-100).",
		}),
	}

	registry.MustRegister(
		c.auditsTotal,
		c.auditDuration,
		c.findingsTotal,
		c.collectorRuns,
		c.collectorDuration,
		c.apiCallsTotal,
		c.apiErrorsTotal,
		c.rateLimitedTotal,
		c.circuitState,
		c.riskScore,
	)
	return c
}

// RecordAudit records a completed audit run.
func (c *Collector) RecordAudit(outcome string, duration time.Duration, riskScore int) {
	c.auditsTotal.WithLabelValues(outcome).Inc()
	c.auditDuration.Observe(duration.Seconds())
	c.riskScore.Set(float64(riskScore))
}

// RecordFinding counts one finding by severity.
func (c *Collector) RecordFinding(severity string) {
	c.findingsTotal.WithLabelValues(severity).Inc()
}

// RecordCollector records one collector execution.
func (c *Collector) RecordCollector(name, status string, duration time.Duration) {
	c.collectorRuns.WithLabelValues(name, status).Inc()
	c.collectorDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordAPICalls adds a run's provider call and error counts.
func (c *Collector) RecordAPICalls(calls, errors int64) {
	c.apiCallsTotal.Add(float64(calls))
	c.apiErrorsTotal.Add(float64(errors))
}

// RecordRateLimited adds a run's rejected acquisition count.
func (c *Collector) RecordRateLimited(n int64) {
	c.rateLimitedTotal.Add(float64(n))
}

// SetCircuitState publishes the breaker state as a gauge.
func (c *Collector) SetCircuitState(state string) {
	switch state {
	case "closed":
		c.circuitState.Set(0)
	case "half_open":
		c.circuitState.Set(1)
	case "open":
		c.circuitState.Set(2)
	}
}
