package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/pkg/cpusampler"
	"github.com/voluzi/debugpilot/pkg/procmetrics"
)

const namespace = "debugpilot"

type metrics struct {
	registry    *prometheus.Registry
	threadUsage *prometheus.GaugeVec
}

func newMetrics(source procmetrics.Source) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		threadUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "thread_cpu_usage_percent",
			Help:      "CPU usage of each thread of the monitored process over the last sampling interval.",
		}, []string{"thread", "tid"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.threadUsage,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_usage",
			Help:      "Recent CPU usage of the monitored process as a fraction of one CPU.",
		}, func() float64 {
			v, err := source.ProcessCPUUsage()
			if err != nil {
				log.WithError(err).Debug("failed to get process cpu usage")
			}
			return v
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_memory_used_bytes",
			Help:      "Resident memory of the monitored process.",
		}, func() float64 {
			v, err := source.MemoryUsed()
			if err != nil {
				log.WithError(err).Debug("failed to get process memory usage")
			}
			return float64(v)
		}),
	)
	return m
}

// recordThreadUsage replaces the thread gauges with the latest tick.
func (m *metrics) recordThreadUsage(record cpusampler.TimeAndThreadCpuUsages) {
	m.threadUsage.Reset()
	for _, usage := range record.ThreadCpuUsages {
		m.threadUsage.
			WithLabelValues(usage.ThreadName, strconv.FormatInt(usage.ThreadID, 10)).
			Set(float64(usage.CPUUsage))
	}
}
