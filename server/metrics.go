package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "portal"

type metrics struct {
	gatherer        prometheus.Gatherer
	gateDecisions   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// newMetrics registers the gateway metrics on a private registry so several
// servers (tests) can coexist in one process
func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &metrics{
		gatherer: registry,
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "gate_decisions_total",
			Help:      "Route gate decisions by action",
		}, []string{"action"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Requests served by the gateway",
		}, []string{"method", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Gateway request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *metrics) observeDecision(a Action) {
	m.gateDecisions.WithLabelValues(a.String()).Inc()
}

func (m *metrics) observeRequest(method string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
