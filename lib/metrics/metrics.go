package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the purchase request workflow.
type Metrics struct {
	Transitions      *prometheus.CounterVec
	CommandFailures  *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	RemindersSent    prometheus.Counter
	EventsPublished  *prometheus.CounterVec
	NumberCollisions prometheus.Counter
}

var Instance = New()

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_pr_events_total",
			Help: "Audit events recorded, by action",
		}, []string{"action"}),
		CommandFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_command_failures_total",
			Help: "Rejected workflow commands, by command and error kind",
		}, []string{"command", "kind"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procurement_command_duration_seconds",
			Help:    "Duration of workflow commands including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"command"}),
		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "procurement_approval_reminders_total",
			Help: "Approval reminders recorded",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procurement_events_published_total",
			Help: "Workflow events handed to the publisher, by result",
		}, []string{"result"}),
		NumberCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "procurement_pr_number_collisions_total",
			Help: "PR number allocations that hit the unique index and were retried",
		}),
	}
}

func (m *Metrics) ObserveCommand(command string, start time.Time) {
	m.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementEvent(action string) {
	m.Transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementFailure(command, kind string) {
	m.CommandFailures.WithLabelValues(command, kind).Inc()
}

func (m *Metrics) IncrementPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}
