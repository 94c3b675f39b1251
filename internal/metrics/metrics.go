// Package metrics holds the Prometheus collectors for Orderly API traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderly"

const (
	OutcomeOK          = "ok"
	OutcomeAPIError    = "api_error"
	OutcomeTransport   = "transport_error"
	OutcomeInvalidBody = "invalid_body"
)

// requests are short; the upper buckets catch stalled connections
var durationBuckets = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Recorder is nil-safe so callers can leave metrics unconfigured.
type Recorder struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	streamMessages  *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Orderly REST requests by method, path and outcome.",
		}, []string{"method", "path", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Orderly REST request latency in seconds.",
			Buckets:   durationBuckets,
		}, []string{"method", "path"}),
		streamMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_messages_total",
			Help:      "Websocket data messages received by topic.",
		}, []string{"topic"}),
	}
	r.registry.MustRegister(r.requests, r.requestDuration, r.streamMessages)
	return r
}

// ObserveRequest records one finished REST call. path must not carry the query string.
func (r *Recorder) ObserveRequest(method, path, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, path, outcome).Inc()
	r.requestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveStreamMessage(topic string) {
	if r == nil {
		return
	}
	r.streamMessages.WithLabelValues(topic).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
