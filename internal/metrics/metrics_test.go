package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordCollectorOutcomes(t *testing.T) {
	InitRegistry()

	before := value(t, CollectorDocumentsTotal.WithLabelValues("metrics_test_source"))
	RecordCollectorSuccess("metrics_test_source", 7, 0.2)
	assert.Equal(t, before+7, value(t, CollectorDocumentsTotal.WithLabelValues("metrics_test_source")))

	failures := value(t, CollectorFailuresTotal.WithLabelValues("metrics_test_source"))
	RecordCollectorFailure("metrics_test_source", 1.5)
	assert.Equal(t, failures+1, value(t, CollectorFailuresTotal.WithLabelValues("metrics_test_source")))
}

func TestRecordRun(t *testing.T) {
	InitRegistry()

	before := value(t, RunsTotal.WithLabelValues("success"))
	RecordRun("success", 1700000000, 12)

	assert.Equal(t, before+1, value(t, RunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1700000000), value(t, LastRunTimestamp))
	assert.Equal(t, float64(12), value(t, RacesScored))
}

func TestRecordersDoNotPanic(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordStage("SCORE", 0.01)
		RecordDocumentRejected("csv_feed")
		RecordRacesMerged(3)
		RecordRacesFiltered(1)
		RecordScore(75)
		RecordSinkFailure("json")
		RecordCircuitBreakerTrip()
		RecordCacheHit("racecards_api")
	})
}

func TestHandlerExposesNamespacedMetrics(t *testing.T) {
	RecordRacesMerged(1)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "paddock_races_merged_total")
}
