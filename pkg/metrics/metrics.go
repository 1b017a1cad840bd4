package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transfer metrics

	// TransfersTotal counts remote operations by protocol, operation and result.
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exabanque_transfers_total",
			Help: "Total number of remote file operations",
		},
		[]string{"protocol", "op", "result"},
	)

	// SessionsOpened counts connection attempts per protocol and result.
	SessionsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exabanque_sessions_total",
			Help: "Total number of transfer sessions opened",
		},
		[]string{"protocol", "result"},
	)

	// Reconciliation metrics

	// TransactionStates counts state transitions by action kind and target state.
	TransactionStates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exabanque_transactions_state_total",
			Help: "Total number of transaction state transitions",
		},
		[]string{"kind", "state"},
	)

	// Scheduler metrics

	// CycleDuration is the wall time of one scheduling cycle.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exabanque_cycle_duration_seconds",
			Help:    "Scheduling cycle duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// LastCycleTimestamp is the unix time of the last finished cycle.
	LastCycleTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exabanque_last_cycle_timestamp",
			Help: "Timestamp of the last finished scheduling cycle",
		},
	)

	// CycleSkipped counts cycles skipped because another run held the lock.
	CycleSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exabanque_cycle_skipped_total",
			Help: "Total number of cycles skipped because the cycle lock was held",
		},
	)
)

// ObserveTransfer records one remote operation.
func ObserveTransfer(protocol, op string, err error) {
	TransfersTotal.WithLabelValues(protocol, op, result(err)).Inc()
}

// ObserveSession records one connection attempt.
func ObserveSession(protocol string, err error) {
	SessionsOpened.WithLabelValues(protocol, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
