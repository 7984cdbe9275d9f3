// Package metrics exposes Prometheus instrumentation for the roster service.
package metrics

import (
	"net/http"

	"github.com/mergington/activities/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the roster collectors. Each Recorder registers against its
// own Registerer so tests can build independent instances.
type Recorder struct {
	gatherer prometheus.Gatherer

	RosterChanges *prometheus.CounterVec
	RosterErrors  *prometheus.CounterVec
	Participants  *prometheus.GaugeVec
	EventsDropped prometheus.Counter
	SinkFailures  *prometheus.CounterVec
}

// New registers the roster collectors on reg. gatherer is used by Handler
// and is usually the same registry.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: gatherer,

		RosterChanges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_changes_total",
				Help: "Total number of successful roster changes",
			},
			[]string{"activity", "type"},
		),

		RosterErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_errors_total",
				Help: "Total number of rejected roster operations",
			},
			[]string{"operation", "reason"},
		),

		Participants: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "roster_participants",
				Help: "Current number of participants per activity",
			},
			[]string{"activity"},
		),

		EventsDropped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "roster_events_dropped_total",
				Help: "Roster events dropped because the delivery buffer was full",
			},
		),

		SinkFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_event_sink_failures_total",
				Help: "Roster events a sink failed to write",
			},
			[]string{"sink"},
		),
	}
}

// NewDefault creates a Recorder on a fresh registry that also carries the Go
// runtime and process collectors.
func NewDefault() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg, reg)
}

// Seed sets the participant gauge for every activity in the snapshot.
func (r *Recorder) Seed(activities map[string]domain.Activity) {
	for name, a := range activities {
		r.Participants.WithLabelValues(name).Set(float64(len(a.Participants)))
	}
}

// ObserveEvent records a successful roster change. It matches
// roster.Listener so it can be attached to the registry directly.
func (r *Recorder) ObserveEvent(evt domain.RosterEvent) {
	r.RosterChanges.WithLabelValues(evt.Activity, string(evt.Type)).Inc()
	r.Participants.WithLabelValues(evt.Activity).Set(float64(evt.ParticipantCount))
}

// ObserveError records a rejected signup or unregister.
func (r *Recorder) ObserveError(operation, reason string) {
	r.RosterErrors.WithLabelValues(operation, reason).Inc()
}

// Handler serves the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
