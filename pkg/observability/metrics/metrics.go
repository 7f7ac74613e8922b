package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prediction service collectors on their own registry.
type Metrics struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	factors     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	latency     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ckd",
			Name:      "predictions_total",
			Help:      "Number of persisted CKD risk predictions by risk level.",
		}, []string{"risk_level"}),
		factors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ckd",
			Name:      "risk_factors_total",
			Help:      "Number of times each risk factor was triggered.",
		}, []string{"factor"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ckd",
			Name:      "prediction_failures_total",
			Help:      "Number of failed prediction requests by error kind.",
		}, []string{"kind"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ckd",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent evaluating and persisting a submission.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.predictions,
		m.factors,
		m.failures,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObservePrediction(level string, factors []string, took time.Duration) {
	m.predictions.WithLabelValues(level).Inc()
	for _, f := range factors {
		m.factors.WithLabelValues(f).Inc()
	}
	m.latency.Observe(took.Seconds())
}

func (m *Metrics) ObserveFailure(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
