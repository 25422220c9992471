package debuginfos

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	prom "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	log "github.com/sirupsen/logrus"
)

// describeMetric renders a single sample as "name{labels}: STAT: value, ...".
func describeMetric(family *prom.MetricFamily, m *prom.Metric) string {
	name := family.GetName()
	var stats []string
	switch family.GetType() {
	case prom.MetricType_COUNTER:
		stats = append(stats, "COUNT: "+FormatSample(name, m.GetCounter().GetValue()))
	case prom.MetricType_GAUGE:
		stats = append(stats, "VALUE: "+FormatSample(name, m.GetGauge().GetValue()))
	case prom.MetricType_SUMMARY:
		stats = append(stats,
			"COUNT: "+FormatSample(name, float64(m.GetSummary().GetSampleCount())),
			"TOTAL: "+FormatSample(name, m.GetSummary().GetSampleSum()),
		)
	case prom.MetricType_HISTOGRAM:
		stats = append(stats,
			"COUNT: "+FormatSample(name, float64(m.GetHistogram().GetSampleCount())),
			"TOTAL: "+FormatSample(name, m.GetHistogram().GetSampleSum()),
		)
	default:
		stats = append(stats, "VALUE: "+FormatSample(name, m.GetUntyped().GetValue()))
	}
	return fmt.Sprintf("%s%s: %s", name, formatLabels(m.GetLabel()), strings.Join(stats, ", "))
}

func formatLabels(labels []*prom.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for _, lp := range labels {
		pairs = append(pairs, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ",") + "}"
}

func logMetrics(families []*prom.MetricFamily) {
	log.Info("Metrics:")
	for _, family := range families {
		for _, m := range family.GetMetric() {
			log.Info(describeMetric(family, m))
		}
	}
}

// metricsText renders the families in the prometheus text exposition format.
func metricsText(families []*prom.MetricFamily) ([]byte, error) {
	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
