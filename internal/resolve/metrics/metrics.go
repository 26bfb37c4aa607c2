package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the resolve module.
type Metrics struct {
	// Resolution outcomes by outcome and group
	Outcomes *prometheus.CounterVec

	// Collaborator call latencies by call name
	CollaboratorLatency *prometheus.HistogramVec

	// Overall resolution latency
	ResolveLatency prometheus.Histogram
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all resolve module metrics on the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Outcomes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "facesign_resolve_outcomes_total",
			Help: "Total resolution outcomes by outcome and group",
		}, []string{"outcome", "group"}),

		CollaboratorLatency: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "facesign_resolve_collaborator_duration_seconds",
			Help:    "Duration of collaborator calls by call",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"call"}), // call: "liveness", "search", "enroll", "insert", "earliest_of", "count"

		ResolveLatency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "facesign_resolve_duration_seconds",
			Help:    "Duration of full identity resolution including collaborator calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementOutcome records a resolution outcome.
func (m *Metrics) IncrementOutcome(outcome, group string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome, group).Inc()
	}
}

// ObserveCollaborator records the duration of one collaborator call.
func (m *Metrics) ObserveCollaborator(call string, d time.Duration) {
	if m != nil {
		m.CollaboratorLatency.WithLabelValues(call).Observe(d.Seconds())
	}
}

// ObserveResolve records the total resolution duration.
func (m *Metrics) ObserveResolve(d time.Duration) {
	if m != nil {
		m.ResolveLatency.Observe(d.Seconds())
	}
}
