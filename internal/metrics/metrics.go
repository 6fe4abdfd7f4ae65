package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TicketTransitions counts lifecycle actions by outcome.
var TicketTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tickets",
	Subsystem: "lifecycle",
	Name:      "transitions_total",
	Help:      "Ticket lifecycle actions by action and result (ok, invalid, state, store).",
}, []string{"action", "result"})

// DuplicateSubmits counts submissions refused by the double-submit guard.
var DuplicateSubmits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tickets",
	Subsystem: "lifecycle",
	Name:      "duplicate_submits_total",
	Help:      "Create/checkout submissions rejected inside the cooldown window.",
})

var ReconciliationWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tickets",
	Subsystem: "reconcile",
	Name:      "warnings_total",
	Help:      "Reconciliation findings by warning kind.",
}, []string{"kind"})

var ReconciliationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tickets",
	Subsystem: "reconcile",
	Name:      "runs_total",
	Help:      "Comparison runs by trigger (request, schedule) and result.",
}, []string{"trigger", "result"})

var RelaxedReads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tickets",
	Subsystem: "store",
	Name:      "relaxed_reads_total",
	Help:      "Reads answered by the relaxed re-query after an empty filtered read.",
}, []string{"query"})

var CaptureEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tickets",
	Subsystem: "capture",
	Name:      "events_total",
	Help:      "Auto-capture events by direction and outcome.",
}, []string{"direction", "outcome"})

// ObserveTransition records one lifecycle action with its result label.
func ObserveTransition(action string, result string) {
	TicketTransitions.WithLabelValues(action, result).Inc()
}
