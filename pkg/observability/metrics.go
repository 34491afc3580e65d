package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "switchboard"

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	Turns        *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	NodeVisits   *prometheus.CounterVec
	TurnDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of completed turns by branch",
			},
			[]string{"branch"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turn_failures_total",
				Help:      "Total number of failed turns by failure kind",
			},
			[]string{"kind"},
		),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_visits_total",
				Help:      "Total number of node visits",
			},
			[]string{"node"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Duration of whole turns",
				Buckets:   prometheus.DefBuckets,
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(m.Turns, m.Failures, m.NodeVisits, m.TurnDuration)
	return m
}

// Hooks records node visits and turn outcomes.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(e.NodeID)).Inc()
		},
		OnTurnComplete: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.Branch)).Inc()
			if e.Failure != "" {
				m.Failures.WithLabelValues(e.Failure).Inc()
			}
			m.TurnDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
