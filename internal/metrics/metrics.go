package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the broker's Prometheus collectors.
type Metrics struct {
	AppointmentsCreated prometheus.Counter
	Transitions         *prometheus.CounterVec
	Rejections          *prometheus.CounterVec
	MessagesSent        prometheus.Counter
	PublishFailures     *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AppointmentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "broker_appointments_created_total",
			Help: "Appointments booked.",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_status_transitions_total",
			Help: "Committed appointment status transitions.",
		}, []string{"from", "to"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_operation_errors_total",
			Help: "Operations refused by the core, by error kind.",
		}, []string{"op", "kind"}),
		MessagesSent: f.NewCounter(prometheus.CounterOpts{
			Name: "broker_messages_sent_total",
			Help: "Chat messages appended.",
		}),
		PublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "broker_event_publish_failures_total",
			Help: "Domain events that could not be delivered.",
		}, []string{"type"}),
	}
}
