package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolscout/internal/domain"
)

type PrometheusMetrics struct {
	scanDuration        *prometheus.HistogramVec
	scanFiles           prometheus.Histogram
	scanTools           prometheus.Gauge
	recommendDuration   *prometheus.HistogramVec
	modelCallDuration   *prometheus.HistogramVec
	modelTokens         *prometheus.CounterVec
	resolutionPrecision prometheus.Histogram
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		scanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolscout_scan_duration_seconds",
				Help:    "Duration of directory scans in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),
		scanFiles: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolscout_scan_files",
				Help:    "Number of Python files visited per scan",
				Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
			},
		),
		scanTools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "toolscout_catalog_tools",
				Help: "Number of tools in the catalog after the last successful scan",
			},
		),
		recommendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolscout_recommendation_duration_seconds",
				Help:    "Duration of recommendation requests in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"},
		),
		modelCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolscout_model_call_duration_seconds",
				Help:    "Latency of LLM calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "model", "status"},
		),
		modelTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolscout_model_tokens_total",
				Help: "Total number of tokens consumed by LLM calls",
			},
			[]string{"provider", "model"},
		),
		resolutionPrecision: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolscout_resolution_precision",
				Help:    "Ratio of model-selected tool names that resolved to catalog entries",
				Buckets: []float64{.1, .25, .5, .75, .9, 1},
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveScan(duration time.Duration, files, tools int, err error) {
	p.scanDuration.WithLabelValues(statusLabel(err)).Observe(duration.Seconds())
	p.scanFiles.Observe(float64(files))
	if err == nil {
		p.scanTools.Set(float64(tools))
	}
}

func (p *PrometheusMetrics) ObserveRecommendation(duration time.Duration, err error) {
	p.recommendDuration.WithLabelValues(statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveModelCall(provider, model string, duration time.Duration, err error) {
	p.modelCallDuration.WithLabelValues(provider, model, statusLabel(err)).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveModelTokens(provider, model string, tokens int) {
	p.modelTokens.WithLabelValues(provider, model).Add(float64(tokens))
}

func (p *PrometheusMetrics) ObserveResolution(requested, resolved int) {
	if requested <= 0 {
		return
	}
	p.resolutionPrecision.Observe(float64(resolved) / float64(requested))
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
