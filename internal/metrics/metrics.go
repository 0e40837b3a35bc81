// Package metrics exposes prometheus instrumentation for the façade.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wardroom/messbook/internal/model"
)

var (
	opsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messbook",
			Subsystem: "facade",
			Name:      "operations_total",
			Help:      "Façade operations by outcome (ok or error kind).",
		},
		[]string{"op", "outcome"},
	)

	opDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "messbook",
			Subsystem: "facade",
			Name:      "operation_duration_seconds",
			Help:      "Façade operation latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	ledgerRejects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "messbook",
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Ledger inserts rejected before mutation.",
		},
		[]string{"kind"},
	)
)

// ObserveOp records one façade operation's outcome and latency.
func ObserveOp(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		kind := model.KindOf(err)
		outcome = string(kind)
		switch kind {
		case model.KindItemNotFound, model.KindInsufficientStock:
			ledgerRejects.WithLabelValues(string(kind)).Inc()
		}
	}
	opsTotal.WithLabelValues(op, outcome).Inc()
	opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
