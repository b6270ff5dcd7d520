package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/importer"
	"terroir/internal/metrics"
	"terroir/internal/validator"
)

func counterSum(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestObserveImportAndPreview(t *testing.T) {
	m := metrics.New(func() int { return 3 })

	pv, err := importer.New().Preview(`{"dimensions": {"hydrology": {"description": "Rivers", "data": {}},}, "sources": []}`, validator.Options{})
	require.NoError(t, err)

	m.ObserveImport("preview", metrics.OutcomeOK, 20*time.Millisecond)
	m.ObservePreview(pv)

	assert.Equal(t, 1.0, counterSum(t, m, "terroir_imports_total"))
	assert.Equal(t, float64(len(pv.Sanitized.Steps)), counterSum(t, m, "terroir_sanitizer_steps_total"))
	assert.Equal(t, float64(len(pv.Validation.Findings)), counterSum(t, m, "terroir_validation_findings_total"))
	assert.Equal(t, float64(len(pv.Corrections)), counterSum(t, m, "terroir_import_corrections_total"))
}

func TestHandlerExposesCacheGauge(t *testing.T) {
	m := metrics.New(func() int { return 7 })
	m.ObserveHTTP(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "terroir_preview_cache_entries 7"))
	assert.Contains(t, body, `terroir_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveImport("commit", metrics.OutcomeFailed, time.Second)
		m.ObservePreview(&importer.Preview{})
		m.ObserveHTTP(http.MethodPost, "/x", 500, time.Second)
	})
}
