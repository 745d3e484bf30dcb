// Package metrics exposes Prometheus collectors for the API and the
// prediction pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cadence"

// Prediction outcomes recorded by PredictionServed
const (
	OutcomePredicted    = "predicted"
	OutcomeNoCandidate  = "no_candidate"
	OutcomeInsufficient = "insufficient_data"
)

// Recorder owns a private registry and the collectors registered on it
type Recorder struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	modelLookups  *prometheus.CounterVec
	modelBuild    prometheus.Histogram
	historySize   prometheus.Histogram
	predictions   *prometheus.CounterVec
	insightsCount prometheus.Histogram
}

// New creates a Recorder with its own registry, including the Go runtime
// and process collectors.
func New() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		modelLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "prediction",
				Name:      "model_lookups_total",
				Help:      "Model cache lookups by result",
			},
			[]string{"result"},
		),
		modelBuild: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "prediction",
				Name:      "model_build_duration_seconds",
				Help:      "Time spent building a model from history",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		historySize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "prediction",
				Name:      "history_size",
				Help:      "Number of sessions fetched per model build",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "prediction",
				Name:      "predictions_total",
				Help:      "Next-session predictions served by outcome",
			},
			[]string{"outcome"},
		),
		insightsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "prediction",
				Name:      "insights_per_request",
				Help:      "Number of insights returned per request",
				Buckets:   []float64{0, 1, 2, 3},
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests,
		r.httpDuration,
		r.modelLookups,
		r.modelBuild,
		r.historySize,
		r.predictions,
		r.insightsCount,
	)

	return r
}

// Handler returns the HTTP handler for the metrics endpoint
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRequest records one finished HTTP request. route is the matched
// route template, never the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveRequest(method, route string, status int, latency time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}

// ModelLookup records a model cache hit or miss
func (r *Recorder) ModelLookup(cached bool) {
	result := "miss"
	if cached {
		result = "hit"
	}
	r.modelLookups.WithLabelValues(result).Inc()
}

// ModelBuilt records the cost of one model build
func (r *Recorder) ModelBuilt(latency time.Duration, historySize int) {
	r.modelBuild.Observe(latency.Seconds())
	r.historySize.Observe(float64(historySize))
}

// PredictionServed records the outcome of a next-session prediction
func (r *Recorder) PredictionServed(outcome string) {
	r.predictions.WithLabelValues(outcome).Inc()
}

// InsightsServed records how many insights a request returned
func (r *Recorder) InsightsServed(count int) {
	r.insightsCount.Observe(float64(count))
}
