// Package metrics exposes viewer activity as Prometheus collectors.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/pkiviz/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pkiviz"

// Metrics holds the viewer collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	Selections   *prometheus.CounterVec
	ModeChanges  *prometheus.CounterVec
	FlowChanges  *prometheus.CounterVec
	FlowSteps    *prometheus.CounterVec
	Playbacks    *prometheus.CounterVec
	Copies       *prometheus.CounterVec
	CopyFailures *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_selections_total",
			Help:      "Total number of node selections",
		}, []string{"node_id"}),
		ModeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mode_changes_total",
			Help:      "Total number of view mode changes",
		}, []string{"mode"}),
		FlowChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_changes_total",
			Help:      "Total number of beginner flow switches",
		}, []string{"flow_id"}),
		FlowSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_steps_total",
			Help:      "Total number of autoplay steps shown",
		}, []string{"flow_id"}),
		Playbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playbacks_total",
			Help:      "Total number of finished autoplay runs",
		}, []string{"flow_id", "completed"}),
		Copies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_copies_total",
			Help:      "Total number of command copies",
		}, []string{"node_id"}),
		CopyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_copy_failures_total",
			Help:      "Total number of failed command copies",
		}, []string{"node_id"}),
	}
	m.registry.MustRegister(
		m.Selections, m.ModeChanges, m.FlowChanges, m.FlowSteps,
		m.Playbacks, m.Copies, m.CopyFailures,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks binds the collectors to viewer lifecycle events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSelect: func(_ context.Context, e *domain.ViewEvent) {
			m.Selections.WithLabelValues(e.NodeID).Inc()
		},
		OnModeChange: func(_ context.Context, e *domain.ViewEvent) {
			mode := "full"
			if e.BeginnerMode {
				mode = "beginner"
			}
			m.ModeChanges.WithLabelValues(mode).Inc()
		},
		OnFlowChange: func(_ context.Context, e *domain.ViewEvent) {
			m.FlowChanges.WithLabelValues(e.FlowID).Inc()
		},
		OnStep: func(_ context.Context, e *domain.ViewEvent) {
			m.FlowSteps.WithLabelValues(e.FlowID).Inc()
		},
		OnPlaybackStop: func(_ context.Context, e *domain.ViewEvent) {
			completed := "false"
			if e.Completed {
				completed = "true"
			}
			m.Playbacks.WithLabelValues(e.FlowID, completed).Inc()
		},
		OnCopy: func(_ context.Context, e *domain.CopyEvent) {
			if e.Err != nil {
				m.CopyFailures.WithLabelValues(e.NodeID).Inc()
				return
			}
			m.Copies.WithLabelValues(e.NodeID).Inc()
		},
	}
}
