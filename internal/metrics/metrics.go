// Package metrics exposes Prometheus counters for engine operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operations counts engine operations by name and outcome. Status is one of
// "ok", "not_found", "conflict", "invalid", "forbidden", "error".
var Operations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "listmaster_operations_total",
		Help: "Engine operations by name and outcome.",
	},
	[]string{"operation", "status"},
)

// Record increments the counter for one finished operation.
func Record(operation, status string) {
	Operations.WithLabelValues(operation, status).Inc()
}
