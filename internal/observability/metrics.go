// Package observability translates the bot's lifecycle hooks into Prometheus
// metrics.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/bakecake/pkg/domain"
)

// Metrics holds the collectors fed by the dialogue engine's hooks.
type Metrics struct {
	events      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	recovered   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakecake_events_total",
				Help: "Total number of inbound dialogue events, by the state they arrived in",
			},
			[]string{"state"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakecake_transitions_total",
				Help: "Total number of dialogue state transitions",
			},
			[]string{"from", "to"},
		),
		recovered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakecake_recovered_errors_total",
				Help: "Total number of errors absorbed into user-visible replies",
			},
			[]string{"state", "kind"},
		),
	}
	reg.MustRegister(m.events, m.transitions, m.recovered)
	return m
}

// Hooks returns lifecycle hooks feeding these collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvent: func(_ context.Context, _ string, state domain.State) {
			m.events.WithLabelValues(string(state)).Inc()
		},
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			m.transitions.WithLabelValues(string(ev.From), string(ev.To)).Inc()
		},
		OnRecoveredError: func(_ context.Context, ev *domain.RecoveredErrorEvent) {
			m.recovered.WithLabelValues(string(ev.State), ev.Kind).Inc()
		},
	}
}
