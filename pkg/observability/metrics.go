package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/stater/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatch collectors.
type Metrics struct {
	Dispatches *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total number of dispatched updates by handler.",
			},
			[]string{"kind", "handler", "fallback"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_failures_total",
				Help:      "Total number of dispatches that returned an error.",
			},
			[]string{"handler"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Duration of dispatches, handler included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Dispatches, m.Failures, m.Duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Hooks records every dispatch.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.Dispatches.WithLabelValues(e.Kind.String(), e.Handler, strconv.FormatBool(e.Fallback)).Inc()
			m.Duration.WithLabelValues(e.Handler).Observe(e.Duration.Seconds())
		},
		OnError: func(_ context.Context, e *domain.DispatchEvent) {
			m.Failures.WithLabelValues(e.Handler).Inc()
		},
	}
}
