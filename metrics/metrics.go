// Package metrics holds the Prometheus collectors for the bridge service.
// The Metrics struct is passed by injection; components treat a nil
// pointer as "metrics disabled".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	rpcCallsTotal   *prometheus.CounterVec
	rpcCallDuration *prometheus.HistogramVec

	depositsCreatedTotal      *prometheus.CounterVec
	withdrawalsSubmittedTotal *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all collectors. If registry is nil,
// prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_rpc_calls_total",
				Help: "External service calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_rpc_call_duration_seconds",
				Help:    "External service call latency by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		depositsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_deposits_created_total",
				Help: "Deposit addresses issued by network",
			},
			[]string{"network"},
		),
		withdrawalsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_withdrawals_submitted_total",
				Help: "Withdrawal contract calls submitted by network",
			},
			[]string{"network"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_http_requests_total",
				Help: "API requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_http_request_duration_seconds",
				Help:    "API request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

func (m *Metrics) RecordRPCCall(operation, status string, seconds float64) {
	m.rpcCallsTotal.WithLabelValues(operation, status).Inc()
	m.rpcCallDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) RecordDepositCreated(network string) {
	m.depositsCreatedTotal.WithLabelValues(network).Inc()
}

func (m *Metrics) RecordWithdrawalSubmitted(network string) {
	m.withdrawalsSubmittedTotal.WithLabelValues(network).Inc()
}

func (m *Metrics) RecordHTTPRequest(route, method, code string, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(seconds)
}
