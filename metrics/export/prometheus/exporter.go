package prometheus

import (
	"bytes"
	"net/http"

	goCred "github.com/MrEthical07/goCred"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

type metricsSource interface {
	MetricsSnapshot() goCred.MetricsSnapshot
}

// PrometheusExporter serves goCred metrics from a private registry holding
// only a [Collector]. Use it when nothing else in the process exposes
// Prometheus metrics.
type PrometheusExporter struct {
	registry *prometheus.Registry
}

// NewPrometheusExporter creates a Prometheus exporter that reads from the given [goCred.Engine].
func NewPrometheusExporter(engine *goCred.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

// NewPrometheusExporterFromSource creates a Prometheus exporter from any
// value that can produce a snapshot.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	reg := prometheus.NewPedanticRegistry()
	reg.MustRegister(NewCollectorFromSource(source))
	return &PrometheusExporter{registry: reg}
}

// Handler returns an http.Handler that serves the metrics with content
// negotiation.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Render returns the current metrics in Prometheus text exposition format.
// It returns "" when metrics are disabled on the engine or gathering fails.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.registry == nil {
		return ""
	}

	families, err := p.registry.Gather()
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return ""
		}
	}
	return buf.String()
}
