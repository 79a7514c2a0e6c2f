package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateways.
const (
	GatewayStorage = "storage"
	GatewaySearch  = "search"
	GatewayImport  = "import"
	GatewayLedger  = "ledger"
)

// Vendor gateway Prometheus metrics.
var (
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of calls to external services",
		},
		[]string{"gateway", "operation", "status"}, // status: "ok" / "error"
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "External service call duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"gateway", "operation"},
	)

	ImportOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "import_operations_total",
			Help:      "Import operations by terminal state",
		},
		[]string{"state"}, // succeeded / failed / timeout
	)

	UploadedBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes written to blob storage",
		},
		[]string{"content_type"},
	)
)

var registerOnce sync.Once

// RegisterGatewayMetrics registers the gateway metrics. Safe to call more than once.
func RegisterGatewayMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			GatewayRequestsTotal,
			GatewayRequestDuration,
			ImportOperationsTotal,
			UploadedBytesTotal,
		)
	})
}

// ObserveGateway records one external call. Use it as
//
//	defer metrics.ObserveGateway(metrics.GatewaySearch, "search", time.Now(), &err)
func ObserveGateway(gateway, operation string, start time.Time, errp *error) {
	status := "ok"
	if errp != nil && *errp != nil {
		status = "error"
	}
	GatewayRequestsTotal.WithLabelValues(gateway, operation, status).Inc()
	GatewayRequestDuration.WithLabelValues(gateway, operation).Observe(time.Since(start).Seconds())
}
