// Package metrics holds the Prometheus collectors of the daemon.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

// Metrics groups collectors registered on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	EffectsTotal        *prometheus.CounterVec
	CoinsAwarded        prometheus.Counter
	ActiveSessions      prometheus.Gauge
	PersistenceFailures prometheus.Counter
}

// New registers collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "crafty_grpc_requests_total", Help: "Total number of gRPC requests"},
			[]string{"method", "code"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crafty_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method"},
		),
		EffectsTotal: f.NewCounterVec(
			prometheus.CounterOpts{Name: "crafty_effects_total", Help: "Effects published by workspace mutations"},
			[]string{"kind"},
		),
		CoinsAwarded: f.NewCounter(prometheus.CounterOpts{
			Name: "crafty_coins_awarded_total",
			Help: "Coins granted through achievement rewards",
		}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "crafty_active_sessions",
			Help: "Profiles with state loaded in memory",
		}),
		PersistenceFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "crafty_persistence_failures_total",
			Help: "Failed record writes",
		}),
	}
}

// ObserveEffect counts one effect.
func (m *Metrics) ObserveEffect(e model.Effect) {
	m.EffectsTotal.WithLabelValues(string(e.Kind)).Inc()
	if e.Kind == model.EffectCoinsAwarded {
		m.CoinsAwarded.Add(float64(e.Amount))
	}
}

// SessionsOpen sets the number of profiles held in memory.
func (m *Metrics) SessionsOpen(n int) { m.ActiveSessions.Set(float64(n)) }

// PersistFailed counts one failed state write.
func (m *Metrics) PersistFailed() { m.PersistenceFailures.Inc() }

// UnaryInterceptor counts requests and observes their latency.
func (m *Metrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		m.RequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.RequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
