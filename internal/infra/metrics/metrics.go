// Package metrics holds the process-wide Prometheus counters; they are
// served by the http package on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportRows counts import rows by kind (ingredients|recipes) and result
	// (created|updated|skipped|error).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_import_rows_total",
		Help: "Rows processed by bulk imports.",
	}, []string{"kind", "result"})

	// SkippedLines counts recipe items and movements left out of a fold
	// because their unit did not convert.
	SkippedLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_skipped_lines_total",
		Help: "Lines skipped by cost, needs and stock computations.",
	}, []string{"component"})

	StockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_stock_movements_total",
		Help: "Stock movements appended, by type.",
	}, []string{"type"})
)
