package debuginfos

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	mem := prometheus.NewGauge(prometheus.GaugeOpts{Name: "process_memory_used_bytes"})
	mem.Set(3 * 1024 * 1024)
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total"}, []string{"path"})
	requests.WithLabelValues("/health").Add(1500)
	latency := prometheus.NewSummary(prometheus.SummaryOpts{Name: "request_seconds"})
	latency.Observe(0.5)
	latency.Observe(1)
	require.NoError(t, reg.Register(mem))
	require.NoError(t, reg.Register(requests))
	require.NoError(t, reg.Register(latency))
	return reg
}

func TestDescribeMetric(t *testing.T) {
	families, err := testRegistry(t).Gather()
	require.NoError(t, err)

	var lines []string
	for _, family := range families {
		for _, m := range family.GetMetric() {
			lines = append(lines, describeMetric(family, m))
		}
	}

	assert.Equal(t, []string{
		`http_requests_total{path="/health"}: COUNT: 1,500`,
		`process_memory_used_bytes: VALUE: 3MB`,
		`request_seconds: COUNT: 2, TOTAL: 1.50`,
	}, lines)
}

func TestMetricsText(t *testing.T) {
	families, err := testRegistry(t).Gather()
	require.NoError(t, err)

	text, err := metricsText(families)
	require.NoError(t, err)
	assert.Contains(t, string(text), "# TYPE process_memory_used_bytes gauge")
	assert.Contains(t, string(text), `http_requests_total{path="/health"} 1500`)
}
