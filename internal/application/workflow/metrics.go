package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/application-fsm/internal/domain/fsm"
)

const outcomePersisted = "PERSISTED"

var (
	// dispatchTransitionsTotal counts transitions applied by machines, before persistence
	dispatchTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_dispatch_transitions_total",
		Help: "Total number of transitions applied by state machines by machine, from_state, to_state and event",
	}, []string{"machine", "from_state", "to_state", "event"})

	// dispatchRejectionsTotal counts events the machines did not accept
	dispatchRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_dispatch_rejections_total",
		Help: "Total number of events not accepted by state machines by machine, state and event",
	}, []string{"machine", "state", "event"})

	// sendEventTotal counts SendEvent calls by their final outcome
	sendEventTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_send_event_total",
		Help: "Total number of SendEvent calls by machine, event and outcome",
	}, []string{"machine", "event", "outcome"})

	// sendEventDuration tracks SendEvent latency including storage I/O
	sendEventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fsm_send_event_duration_seconds",
		Help:    "Duration of SendEvent calls by machine and outcome",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"machine", "outcome"})
)

func observeSendEvent(machine, event, outcome string, elapsed time.Duration) {
	sendEventTotal.WithLabelValues(machine, event, outcome).Inc()
	sendEventDuration.WithLabelValues(machine, outcome).Observe(elapsed.Seconds())
}

// MetricsListener counts machine transitions and rejections
type MetricsListener[S fsm.State, E fsm.Event] struct {
	machine string
}

// NewMetricsListener creates a metrics listener labelled with the machine name
func NewMetricsListener[S fsm.State, E fsm.Event](machine string) *MetricsListener[S, E] {
	return &MetricsListener[S, E]{machine: machine}
}

// StateChanged implements fsm.Listener
func (l *MetricsListener[S, E]) StateChanged(from, to S, event E) {
	dispatchTransitionsTotal.WithLabelValues(l.machine, from.String(), to.String(), event.String()).Inc()
}

// EventNotAccepted implements fsm.Listener
func (l *MetricsListener[S, E]) EventNotAccepted(state S, event E, reason string) {
	dispatchRejectionsTotal.WithLabelValues(l.machine, state.String(), event.String()).Inc()
}

// ContextErrorSet implements fsm.Listener
func (l *MetricsListener[S, E]) ContextErrorSet(reason string) {}
