// Package metrics exposes Prometheus collectors for the import pipeline and
// the HTTP layer. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"terroir/internal/importer"
)

const namespace = "terroir"

// Outcome labels for import operations.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeRefused   = "refused"
	OutcomeCommitted = "committed"
	OutcomeFailed    = "failed"
)

// Metrics groups every collector registered by the service.
type Metrics struct {
	registry       *prometheus.Registry
	imports        *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	sanitizerSteps *prometheus.CounterVec
	corrections    prometheus.Counter
	findings       *prometheus.CounterVec
	completeness   prometheus.Histogram
	quality        prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates and registers the collectors on a fresh registry. cached, when
// non-nil, backs a gauge reporting how many previews are memoized.
func New(cached func() int) *Metrics {
	reg := prometheus.NewRegistry()
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)

	m := &Metrics{
		registry: reg,
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Import operations by mode and outcome.",
		}, []string{"mode", "outcome"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent running an import operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		sanitizerSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sanitizer_steps_total",
			Help:      "Sanitizer passes that changed the input, by pass name.",
		}, []string{"step"}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_corrections_total",
			Help:      "Automatic corrections logged in import previews.",
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_findings_total",
			Help:      "Validation findings by rule and severity.",
		}, []string{"rule", "severity"}),
		completeness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completeness_score",
			Help:      "Completeness score of previewed dossiers.",
			Buckets:   scoreBuckets,
		}),
		quality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quality_score",
			Help:      "Quality score of previewed dossiers.",
			Buckets:   scoreBuckets,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.imports, m.importDuration, m.sanitizerSteps, m.corrections,
		m.findings, m.completeness, m.quality, m.httpRequests, m.httpDuration,
	)
	if cached != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "preview_cache_entries",
			Help:      "Previews currently memoized by the import pipeline.",
		}, func() float64 { return float64(cached()) }))
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveImport records the outcome and latency of one import operation.
func (m *Metrics) ObserveImport(mode, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(mode, outcome).Inc()
	m.importDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObservePreview records what the pipeline did to one input.
func (m *Metrics) ObservePreview(pv *importer.Preview) {
	if m == nil || pv == nil {
		return
	}
	for _, s := range pv.Sanitized.Steps {
		m.sanitizerSteps.WithLabelValues(s.Name).Inc()
	}
	m.corrections.Add(float64(len(pv.Corrections)))
	if v := pv.Validation; v != nil {
		for _, f := range v.Findings {
			m.findings.WithLabelValues(f.RuleKey, string(f.Severity)).Inc()
		}
		m.completeness.Observe(float64(v.CompletenessScore))
		m.quality.Observe(float64(v.QualityScore))
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
