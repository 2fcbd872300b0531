// Package metrics holds the Prometheus instruments of the tracker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rotation_tracker"

type Metrics struct {
	// LegalityChecks counts validator runs. Labels: outcome
	LegalityChecks *prometheus.CounterVec
	// Derivations counts "rotate from previous" runs.
	Derivations prometheus.Counter
	// StrokesErased counts strokes removed by eraser gestures.
	StrokesErased prometheus.Counter
	// LibraryOps counts remote persistence calls. Labels: op, status
	LibraryOps *prometheus.CounterVec
	// EditorSessions tracks open editor connections.
	EditorSessions prometheus.Gauge
	// EditorCommands counts commands handled by editor sessions. Labels: type
	EditorCommands *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers every instrument on reg. A nil reg uses a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		LegalityChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legality_checks_total",
			Help:      "Legality checks by outcome.",
		}, []string{"outcome"}),
		Derivations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_total",
			Help:      "Rotations derived from the previous one.",
		}),
		StrokesErased: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strokes_erased_total",
			Help:      "Strokes removed by eraser gestures.",
		}),
		LibraryOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_operations_total",
			Help:      "Remote library operations by kind and status.",
		}, []string{"op", "status"}),
		EditorSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editor_sessions",
			Help:      "Open editor sessions.",
		}),
		EditorCommands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_commands_total",
			Help:      "Editor commands handled by type.",
		}, []string{"type"}),
		gatherer: reg,
	}
}

// Discard returns instruments that are registered nowhere visible.
func Discard() *Metrics {
	return New(nil)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveLegality(outcome string) {
	m.LegalityChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLibrary(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LibraryOps.WithLabelValues(op, status).Inc()
}
