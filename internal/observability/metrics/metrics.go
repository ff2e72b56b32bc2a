package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_service_mutations_total",
		Help: "Optimistic mutations by kind and outcome",
	}, []string{"kind", "result"})

	rollbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_service_rollbacks_total",
		Help: "Tentative cache values rolled back to their snapshot",
	}, []string{"kind"})

	assignmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_service_assignments_total",
		Help: "Assignment coordinator outcomes",
	}, []string{"result"})

	rankingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_service_ranking_duration_seconds",
		Help:    "Duration of match ranking calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	historyAppendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "assignment_service_history_appends_total",
		Help: "Status history entries appended",
	})

	outboxEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assignment_service_outbox_events_total",
		Help: "Outbox relay processing outcomes",
	}, []string{"result"})
)

// ObserveMutation records one optimistic mutation outcome
// (committed, superseded, rolled_back, rejected_in_flight).
func ObserveMutation(kind, result string) {
	mutationsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveRollback counts a snapshot restore for the given mutation kind.
func ObserveRollback(kind string) {
	rollbacksTotal.WithLabelValues(kind).Inc()
}

// ObserveAssignment records an assignment coordinator outcome.
func ObserveAssignment(result string) {
	assignmentsTotal.WithLabelValues(result).Inc()
}

// ObserveRanking records the duration and result of a match ranking call.
func ObserveRanking(result string, duration time.Duration) {
	rankingDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveHistoryAppend counts a committed status history entry.
func ObserveHistoryAppend() {
	historyAppendsTotal.Inc()
}

// ObserveOutboxEvent records a relay processing outcome.
func ObserveOutboxEvent(result string) {
	outboxEventsTotal.WithLabelValues(result).Inc()
}
