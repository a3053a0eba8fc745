package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/iron-and-snow/pkg/engine"
	"github.com/jwebster45206/iron-and-snow/pkg/state"
)

// Metrics counts engine activity. It is registered on its own registry so
// tests and multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	actionsAccepted *prometheus.CounterVec
	actionsRejected *prometheus.CounterVec
	phaseEntries    *prometheus.CounterVec
	activeGames     prometheus.Gauge
}

var _ engine.Observer = (*Metrics)(nil)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		actionsAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ironsnow_actions_accepted_total",
				Help: "Total number of actions accepted by the engine, partitioned by action.",
			},
			[]string{"action"},
		),
		actionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ironsnow_actions_rejected_total",
				Help: "Total number of actions rejected by the engine, partitioned by action and reason.",
			},
			[]string{"action", "reason"},
		),
		phaseEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ironsnow_phase_entries_total",
				Help: "Total number of times a session entered a phase.",
			},
			[]string{"phase"},
		),
		activeGames: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ironsnow_active_games",
				Help: "Number of sessions currently held in memory.",
			},
		),
	}
}

// Accepted implements engine.Observer.
func (m *Metrics) Accepted(kind engine.ActionKind, from, to state.Phase) {
	m.actionsAccepted.WithLabelValues(string(kind)).Inc()
	if from != to || kind == engine.KindRestart {
		m.phaseEntries.WithLabelValues(string(to)).Inc()
	}
}

// Rejected implements engine.Observer.
func (m *Metrics) Rejected(kind engine.ActionKind, phase state.Phase, err error) {
	m.actionsRejected.WithLabelValues(string(kind), reason(err)).Inc()
}

// GameStarted and GameEnded track the in-memory session count.
func (m *Metrics) GameStarted() { m.activeGames.Inc() }
func (m *Metrics) GameEnded()   { m.activeGames.Dec() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func reason(err error) string {
	switch {
	case errors.Is(err, engine.ErrBusy):
		return "busy"
	case errors.Is(err, engine.ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, engine.ErrUnknownChoice):
		return "unknown_choice"
	case errors.Is(err, engine.ErrUnknownLabel):
		return "unknown_label"
	case errors.Is(err, engine.ErrInvalidTransition):
		return "illegal"
	default:
		return "other"
	}
}
