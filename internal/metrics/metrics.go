// Package metrics exports transform execution counters and timings to
// Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bethropolis/textforge/internal/coordinator"
	"github.com/bethropolis/textforge/internal/logger"
	"github.com/bethropolis/textforge/internal/transform"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure Metrics implements coordinator.Observer
var _ coordinator.Observer = (*Metrics)(nil)

// Outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeEngineFault  = "engine_fault"
	OutcomeChannelFault = "channel_fault"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
)

// Config holds the [metrics] settings. An empty Addr disables the endpoint.
type Config struct {
	Addr string `toml:"addr"`
}

// Metrics records transform executions on its own registry.
type Metrics struct {
	registry   *prometheus.Registry
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "textforge_transform_executions_total",
				Help: "Total number of transform requests by action, mode and outcome",
			},
			[]string{"action", "mode", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "textforge_transform_duration_seconds",
				Help:    "Duration of successful transforms",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"action", "mode"},
		),
	}
	m.registry.MustRegister(m.executions, m.duration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TransformFinished implements coordinator.Observer.
func (m *Metrics) TransformFinished(action transform.Action, mode coordinator.Mode, elapsed time.Duration, err error) {
	m.executions.WithLabelValues(action.String(), mode.String(), outcome(err)).Inc()
	if err == nil {
		m.duration.WithLabelValues(action.String(), mode.String()).Observe(elapsed.Seconds())
	}
}

// TransformRejected implements coordinator.Observer.
func (m *Metrics) TransformRejected(action transform.Action) {
	m.executions.WithLabelValues(action.String(), coordinator.ModeOffload.String(), OutcomeRejected).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, coordinator.ErrEngineFault):
		return OutcomeEngineFault
	case errors.Is(err, coordinator.ErrChannelFault):
		return OutcomeChannelFault
	}
	return OutcomeError
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Metrics: serving on %s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
