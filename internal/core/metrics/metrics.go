// Package metrics provides the Prometheus metrics recorded by policystore.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics for policystore.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	RulesLoaded     *prometheus.CounterVec
	GRPCRequests    *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		StoreOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policystore",
				Name:      "store_operations_total",
				Help:      "Total number of policy store operations",
			},
			[]string{"op", "outcome"}, // outcome=ok/error
		),
		StoreDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "policystore",
				Name:      "store_operation_duration_seconds",
				Help:      "Policy store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		RulesLoaded: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policystore",
				Name:      "rules_loaded_total",
				Help:      "Total rules returned by loads, by category",
			},
			[]string{"category"}, // category=p/g
		),
		GRPCRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "policystore",
				Name:      "grpc_requests_total",
				Help:      "Total gRPC requests handled",
			},
			[]string{"method", "code"},
		),
	}
}

// ObserveStore records one store operation.
func (m *Metrics) ObserveStore(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.StoreOperations.WithLabelValues(op, outcome).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddLoaded records rules returned by a load.
func (m *Metrics) AddLoaded(category string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RulesLoaded.WithLabelValues(category).Add(float64(n))
}

// ObserveGRPC records one gRPC request.
func (m *Metrics) ObserveGRPC(method, code string) {
	if m == nil {
		return
	}
	m.GRPCRequests.WithLabelValues(method, code).Inc()
}
