// Package metrics holds the Prometheus collectors of the vault service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vault", Subsystem: "service", Name: "operations_total", Help: "Vault operations by outcome"},
		[]string{"op", "outcome"},
	)
	operationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "vault", Subsystem: "service", Name: "operation_duration_seconds", Help: "Vault operation latency", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)
	decryptionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "vault", Subsystem: "cipher", Name: "decryption_failures_total", Help: "Secrets that failed integrity checks on reveal"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "vault", Subsystem: "http", Name: "requests_total", Help: "HTTP requests by route and status code"},
		[]string{"method", "route", "code"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "vault", Subsystem: "http", Name: "request_duration_seconds", Help: "HTTP request duration", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(operations, operationLatency, decryptionFailures, httpRequests, httpLatency)
}

// ObserveOperation records one completed service operation.
func ObserveOperation(op, outcome string, d time.Duration) {
	operations.WithLabelValues(op, outcome).Inc()
	operationLatency.WithLabelValues(op).Observe(d.Seconds())
}

func IncDecryptionFailure() { decryptionFailures.Inc() }

// ObserveHTTPRequest records one served request. route must be the route pattern,
// not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var promhttpHandler = promhttp.Handler()

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttpHandler }
