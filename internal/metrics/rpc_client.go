// Package metrics records per-method RPC outcomes for a probe run and can
// dump them in Prometheus text format, for the node-exporter textfile
// collector or any scraper that reads files.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmagro/eth-rpc-probe/internal/rpc"
)

const namespace = "eth_rpc_probe"

// RPCClient tracks metrics for RPC calls against one endpoint. Each instance
// owns its registry so repeated runs in one process never collide.
type RPCClient struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRPCClient constructs a metrics collector labelled with endpoint.
func NewRPCClient(endpoint string) *RPCClient {
	if endpoint == "" {
		endpoint = "unknown"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"endpoint": endpoint}

	return &RPCClient{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "rpc_client",
			Name:        "operations_total",
			Help:        "Count of node RPC operations.",
			ConstLabels: labels,
		}, []string{"method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "rpc_client",
			Name:        "operation_duration_seconds",
			Help:        "Duration of node RPC operations.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Observe records a single RPC call outcome and duration. Failed calls are
// labelled with their error class.
func (m *RPCClient) Observe(method string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = string(rpc.TypeOf(err))
	}

	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method, status).Observe(time.Since(started).Seconds())
}

// WriteTextfile writes every collected metric to path atomically.
func (m *RPCClient) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
