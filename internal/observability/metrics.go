package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wellrelay"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	submissions      *prometheus.CounterVec
	submissionErrors *prometheus.CounterVec
	enrichment       *prometheus.CounterVec
	activityFailures prometheus.Counter
	llmLatency       *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// Labels: code, risk_level
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "submissions_total",
			Help:      "Persisted assessment submissions by instrument and risk level",
		}, []string{"code", "risk_level"}),

		// Labels: kind (validation, dependency)
		submissionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assessment",
			Name:      "submission_errors_total",
			Help:      "Rejected or failed assessment submissions",
		}, []string{"kind"}),

		// Labels: flow (assessment, journal), status (ok, degraded)
		enrichment: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "enrichment_total",
			Help:      "LLM enrichment outcomes",
		}, []string{"flow", "status"}),

		activityFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activity",
			Name:      "log_failures_total",
			Help:      "Activity log inserts that failed and were skipped",
		}),

		// Labels: provider, status (success, error)
		llmLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "LLM completion latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveSubmission(code, riskLevel string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(code, riskLevel).Inc()
}

func (m *Metrics) ObserveSubmissionError(kind string) {
	if m == nil {
		return
	}
	m.submissionErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveEnrichment(flow, status string) {
	if m == nil {
		return
	}
	m.enrichment.WithLabelValues(flow, status).Inc()
}

func (m *Metrics) ObserveActivityFailure() {
	if m == nil {
		return
	}
	m.activityFailures.Inc()
}

func (m *Metrics) ObserveLLMLatency(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider, status).Observe(seconds)
}
